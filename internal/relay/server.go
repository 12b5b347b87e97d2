// Package relay is the broadcast relay core: a registry of live peers,
// one receive session per connection, a dispatcher that fans messages
// out, and the accept loop that ties them together.
//
// Control flow:
//
//	accept → Registry.Add → go Session.Run → read → validate →
//	Dispatcher.Broadcast → Registry.Snapshot → Peer.Send →
//	(on failure) Registry.Evict
package relay

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"tcprelay/config"
	ncerr "tcprelay/internal/errors"
	"tcprelay/internal/message"
	"tcprelay/internal/metrics"
	"tcprelay/util"
)

// maxAcceptDelay caps the pause after consecutive accept failures.
const maxAcceptDelay = time.Second

// Options tunes a Server.  Zero values take the defaults from the
// config package.
type Options struct {
	Addr            string        // listen address, "host:port"
	ReadPoll        time.Duration // session read deadline used to observe cancellation
	WriteTimeout    time.Duration // per-peer write bound; 0 = unbounded
	BufferSize      int           // bytes read per receive call
	MaxMessageBytes int           // validator limit
	GracePeriod     time.Duration // how long shutdown waits for sessions
}

func (o *Options) setDefaults() {
	if o.Addr == "" {
		o.Addr = util.FormatAddr(config.DefaultHost, config.DefaultPort)
	}
	if o.ReadPoll <= 0 {
		o.ReadPoll = config.DefaultReadPoll
	}
	if o.BufferSize <= 0 {
		o.BufferSize = config.DefaultBufferSize
	}
	if o.MaxMessageBytes <= 0 {
		o.MaxMessageBytes = message.MaxBytes
	}
	if o.GracePeriod <= 0 {
		o.GracePeriod = config.DefaultGracePeriod
	}
}

// Server accepts peers and relays their messages.
type Server struct {
	opts       Options
	registry   *Registry
	dispatcher *Dispatcher
	pool       *util.BufPool
	logger     *util.Logger
	metrics    *metrics.Collector

	wg sync.WaitGroup

	mu      sync.Mutex
	addr    net.Addr
	serving bool
}

// New builds a Server.  m may be nil.
func New(opts Options, logger *util.Logger, m *metrics.Collector) *Server {
	opts.setDefaults()
	reg := NewRegistry(logger.Named("registry"), m)
	return &Server{
		opts:       opts,
		registry:   reg,
		dispatcher: NewDispatcher(reg, opts.WriteTimeout, logger.Named("dispatch"), m),
		pool:       util.NewBufPool(opts.BufferSize),
		logger:     logger,
		metrics:    m,
	}
}

// Registry exposes the live peer set (read-only use: Snapshot, Len).
func (s *Server) Registry() *Registry { return s.registry }

// Metrics returns the collector the server records into (may be nil).
func (s *Server) Metrics() *metrics.Collector { return s.metrics }

// Addr returns the bound address once the server is serving.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// ListenAndServe binds Options.Addr and serves until ctx is cancelled.
// A bind failure is returned before any connection is accepted.
func (s *Server) ListenAndServe(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.opts.Addr)
	if err != nil {
		return ncerr.Wrap("listen", s.opts.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then closes
// every registered peer and waits up to the grace period for sessions
// to finish.  It takes ownership of ln.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.mu.Lock()
	if s.serving {
		s.mu.Unlock()
		ln.Close()
		return ncerr.ErrServerClosed
	}
	s.serving = true
	s.addr = ln.Addr()
	s.mu.Unlock()

	s.logger.Info("listening on %s", ln.Addr())

	// Closing the listener is what unblocks Accept on cancellation.
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
		case <-stop:
		}
		ln.Close()
	}()

	err := s.acceptLoop(ctx, ln)
	s.shutdown()
	return err
}

func (s *Server) acceptLoop(ctx context.Context, ln net.Listener) error {
	var delay time.Duration
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return ncerr.Wrap("accept", ln.Addr().String(), ncerr.ErrServerClosed)
			}

			if delay == 0 {
				delay = 5 * time.Millisecond
			} else {
				delay *= 2
			}
			if delay > maxAcceptDelay {
				delay = maxAcceptDelay
			}
			s.logger.Error("accept failed: %v; retrying in %v", err, delay)
			s.metrics.AcceptFailed(err.Error())

			select {
			case <-ctx.Done():
				return nil
			case <-time.After(delay):
			}
			continue
		}
		delay = 0
		s.admit(ctx, conn)
	}
}

// admit registers a freshly accepted connection and starts its session.
func (s *Server) admit(ctx context.Context, conn net.Conn) {
	peer := NewPeer(conn)
	if err := s.registry.Add(peer); err != nil {
		s.logger.Error("registering %s: %v", peer, err)
		peer.Close() //nolint:errcheck
		return
	}
	s.logger.Info("peer connected from %s", peer)

	sess := &Session{
		peer:       peer,
		registry:   s.registry,
		dispatcher: s.dispatcher,
		validator:  message.Validator{Limit: s.opts.MaxMessageBytes},
		pool:       s.pool,
		readPoll:   s.opts.ReadPoll,
		logger:     s.logger.Named("session"),
		metrics:    s.metrics,
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		sess.Run(ctx)
	}()
}

// shutdown evicts every registered peer and waits for the sessions.
func (s *Server) shutdown() {
	peers := s.registry.Snapshot()
	s.logger.Info("closing %d peer connection(s)", len(peers))
	for _, p := range peers {
		s.registry.Evict(p)
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		s.logger.Verbose("all sessions finished")
	case <-time.After(s.opts.GracePeriod):
		s.logger.Warn("sessions still running after %v, giving up on them", s.opts.GracePeriod)
	}
}
