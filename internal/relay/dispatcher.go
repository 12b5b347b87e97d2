package relay

import (
	"time"

	ncerr "tcprelay/internal/errors"
	"tcprelay/internal/metrics"
	"tcprelay/util"
)

// Dispatcher fans a frame out to every registered peer but its sender.
type Dispatcher struct {
	registry     *Registry
	writeTimeout time.Duration
	logger       *util.Logger
	metrics      *metrics.Collector
}

// NewDispatcher returns a Dispatcher over reg.  A zero writeTimeout
// leaves writes unbounded, so one stalled peer delays the peers that
// follow it in the same broadcast.
func NewDispatcher(reg *Registry, writeTimeout time.Duration, logger *util.Logger, m *metrics.Collector) *Dispatcher {
	return &Dispatcher{
		registry:     reg,
		writeTimeout: writeTimeout,
		logger:       logger,
		metrics:      m,
	}
}

// Broadcast writes payload to every peer in a registry snapshot except
// origin.  A peer whose write fails is evicted and the broadcast goes on
// to the rest.  Delivery is best effort.
func (d *Dispatcher) Broadcast(payload []byte, origin *Peer) {
	d.metrics.Broadcast()

	for _, p := range d.registry.Snapshot() {
		if p == origin {
			continue
		}
		if err := p.Send(payload, d.writeTimeout); err != nil {
			d.metrics.SendFailed()
			switch {
			case ncerr.IsDisconnect(err):
				d.logger.Verbose("send to %s failed, peer is gone: %v", p, err)
			default:
				d.logger.Warn("send to %s failed: %v", p, ncerr.Wrap("write", p.Addr(), err))
			}
			d.registry.Evict(p)
			continue
		}
		d.metrics.FrameDelivered(len(payload))
	}
}
