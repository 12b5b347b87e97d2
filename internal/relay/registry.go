package relay

import (
	"sync"

	ncerr "tcprelay/internal/errors"
	"tcprelay/internal/metrics"
	"tcprelay/util"
)

// Registry is the authoritative set of live peers.  Every entry is
// Active and appears once.  All access goes through one mutex; no I/O
// happens while it is held.
type Registry struct {
	mu    sync.Mutex
	peers map[*Peer]struct{}

	logger  *util.Logger
	metrics *metrics.Collector
}

// NewRegistry returns an empty registry.  m may be nil.
func NewRegistry(logger *util.Logger, m *metrics.Collector) *Registry {
	return &Registry{
		peers:   make(map[*Peer]struct{}),
		logger:  logger,
		metrics: m,
	}
}

// Add inserts p.  The peer must be Active and not yet registered.
func (r *Registry) Add(p *Peer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p.State() != StateActive {
		return ncerr.ErrPeerNotActive
	}
	if _, ok := r.peers[p]; ok {
		return ncerr.ErrAlreadyRegistered
	}
	r.peers[p] = struct{}{}
	r.metrics.PeerJoined()
	return nil
}

// Remove takes p out of the registry and marks it Removing.  It reports
// whether this call did the removal; removing an absent peer is a no-op.
func (r *Registry) Remove(p *Peer) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.peers[p]; !ok {
		return false
	}
	delete(r.peers, p)
	p.markRemoving()
	r.metrics.PeerLeft()
	return true
}

// Evict removes p and closes its socket.  Safe to call any number of
// times from any goroutine.
func (r *Registry) Evict(p *Peer) bool {
	removed := r.Remove(p)
	if removed {
		r.logger.Info("peer %s disconnected and removed, active peers: %d", p, r.Len())
	} else {
		r.logger.Debug("peer %s is no longer registered", p)
	}

	if err := p.Close(); err != nil {
		r.logger.Debug("shutting down socket of %s: %v", p, err)
	}
	if removed {
		r.logger.Debug("socket of %s closed", p)
	}
	return removed
}

// Snapshot returns a point-in-time copy of the membership in no
// particular order.  The slice is owned by the caller.
func (r *Registry) Snapshot() []*Peer {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*Peer, 0, len(r.peers))
	for p := range r.peers {
		out = append(out, p)
	}
	return out
}

// Len returns the number of registered peers.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.peers)
}
