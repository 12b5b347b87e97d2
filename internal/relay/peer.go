package relay

import (
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"tcprelay/util"
)

// State is the lifecycle stage of a peer connection.
type State int32

const (
	// StateActive peers are registered and readable/writable.
	StateActive State = iota
	// StateRemoving peers have been taken out of the registry and are
	// being torn down.
	StateRemoving
	// StateClosed peers have released their socket.
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateRemoving:
		return "removing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Peer is one accepted connection together with its remote address.
//
// Reads belong to the peer's Session.  Writes may come from any
// dispatcher goroutine and are serialised by the peer's write lock so
// that concurrent broadcasts never interleave partial frames.
type Peer struct {
	ID     uuid.UUID
	Joined time.Time

	conn net.Conn
	host string
	port int
	addr string

	state   atomic.Int32
	writeMu sync.Mutex

	closeOnce sync.Once
	closeErr  error
}

// NewPeer wraps an accepted connection.  The peer starts Active.
func NewPeer(conn net.Conn) *Peer {
	host, port := util.SplitAddr(conn.RemoteAddr())
	return &Peer{
		ID:     uuid.New(),
		Joined: time.Now(),
		conn:   conn,
		host:   host,
		port:   port,
		addr:   util.FormatAddr(host, port),
	}
}

// Addr returns the remote endpoint as "host:port".
func (p *Peer) Addr() string { return p.addr }

// Host returns the remote host.
func (p *Peer) Host() string { return p.host }

// Port returns the remote port.
func (p *Peer) Port() int { return p.port }

// State returns the current lifecycle state.
func (p *Peer) State() State { return State(p.state.Load()) }

// markRemoving moves an Active peer to Removing.  Only the first caller
// gets true.
func (p *Peer) markRemoving() bool {
	return p.state.CompareAndSwap(int32(StateActive), int32(StateRemoving))
}

// Send writes the whole payload to the peer.  A positive timeout bounds
// the write; zero blocks until the transport accepts the bytes.
func (p *Peer) Send(payload []byte, timeout time.Duration) error {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()

	if timeout > 0 {
		if err := p.conn.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
			return err
		}
	}
	_, err := p.conn.Write(payload)
	return err
}

// Close shuts both directions of the socket down and closes it.  Only
// the first call does any work; later calls return the same result.
func (p *Peer) Close() error {
	p.closeOnce.Do(func() {
		p.closeErr = util.ShutdownConn(p.conn)
		p.state.Store(int32(StateClosed))
	})
	return p.closeErr
}

func (p *Peer) String() string { return p.addr }
