// Package metrics provides lightweight, lock-free counters and gauges
// for tracking runtime statistics of a relay.
//
// All methods are safe for concurrent use.  A nil *Collector is a
// valid no-op receiver, so callers never need to nil-check.
//
// Collector also implements prometheus.Collector, so the same counters
// can be scraped without keeping a second set of metrics in sync.
package metrics

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"
)

// Namespace prefixes every exported Prometheus metric.
const Namespace = "tcprelay"

// Collector tracks runtime metrics for a relay.
// A nil Collector is safe to use — all methods become no-ops.
type Collector struct {
	peersActive      atomic.Int64
	peersTotal       atomic.Int64
	messagesReceived atomic.Int64
	messagesRejected atomic.Int64
	broadcasts       atomic.Int64
	framesDelivered  atomic.Int64
	sendFailures     atomic.Int64
	bytesIn          atomic.Int64
	bytesOut         atomic.Int64
	acceptErrors     atomic.Int64
	errorsTotal      atomic.Int64

	mu           sync.RWMutex
	startTime    time.Time
	lastError    time.Time
	lastErrorMsg string
}

// New creates a metrics collector with the start time set to now.
func New() *Collector {
	return &Collector{startTime: time.Now()}
}

// ── Peer metrics ─────────────────────────────────────────────────────

// PeerJoined increments both the active and total peer counters.
func (c *Collector) PeerJoined() {
	if c == nil {
		return
	}
	c.peersActive.Add(1)
	c.peersTotal.Add(1)
}

// PeerLeft decrements the active peer counter.
func (c *Collector) PeerLeft() {
	if c == nil {
		return
	}
	c.peersActive.Add(-1)
}

// ActivePeers returns the current number of registered peers.
func (c *Collector) ActivePeers() int64 {
	if c == nil {
		return 0
	}
	return c.peersActive.Load()
}

// TotalPeers returns the lifetime peer count.
func (c *Collector) TotalPeers() int64 {
	if c == nil {
		return 0
	}
	return c.peersTotal.Load()
}

// ── Message metrics ──────────────────────────────────────────────────

// MessageReceived records one successful read of n bytes from a peer.
func (c *Collector) MessageReceived(n int) {
	if c == nil {
		return
	}
	c.messagesReceived.Add(1)
	c.bytesIn.Add(int64(n))
}

// MessageRejected records a message discarded by validation.
func (c *Collector) MessageRejected() {
	if c == nil {
		return
	}
	c.messagesRejected.Add(1)
}

// Broadcast records one accepted message handed to the dispatcher.
func (c *Collector) Broadcast() {
	if c == nil {
		return
	}
	c.broadcasts.Add(1)
}

// FrameDelivered records a frame of n bytes written to one peer.
func (c *Collector) FrameDelivered(n int) {
	if c == nil {
		return
	}
	c.framesDelivered.Add(1)
	c.bytesOut.Add(int64(n))
}

// SendFailed records a failed write to a peer.
func (c *Collector) SendFailed() {
	if c == nil {
		return
	}
	c.sendFailures.Add(1)
}

// ── Error metrics ────────────────────────────────────────────────────

// AcceptFailed records an accept-loop error and stores its message.
func (c *Collector) AcceptFailed(msg string) {
	if c == nil {
		return
	}
	c.acceptErrors.Add(1)
	c.RecordError(msg)
}

// RecordError increments the error counter and stores the message.
func (c *Collector) RecordError(msg string) {
	if c == nil {
		return
	}
	c.errorsTotal.Add(1)
	c.mu.Lock()
	c.lastError = time.Now()
	c.lastErrorMsg = msg
	c.mu.Unlock()
}

// ErrorCount returns the total number of errors recorded.
func (c *Collector) ErrorCount() int64 {
	if c == nil {
		return 0
	}
	return c.errorsTotal.Load()
}

// ── Snapshot ─────────────────────────────────────────────────────────

// Snapshot is a point-in-time view of all metrics.
type Snapshot struct {
	Uptime           string `json:"uptime"`
	PeersActive      int64  `json:"peers_active"`
	PeersTotal       int64  `json:"peers_total"`
	MessagesReceived int64  `json:"messages_received"`
	MessagesRejected int64  `json:"messages_rejected"`
	Broadcasts       int64  `json:"broadcasts"`
	FramesDelivered  int64  `json:"frames_delivered"`
	SendFailures     int64  `json:"send_failures"`
	BytesIn          int64  `json:"bytes_in"`
	BytesOut         int64  `json:"bytes_out"`
	AcceptErrors     int64  `json:"accept_errors"`
	ErrorsTotal      int64  `json:"errors_total"`
	LastError        string `json:"last_error,omitempty"`
	LastErrorMessage string `json:"last_error_message,omitempty"`
}

// Snapshot returns a copy of all current metrics.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := Snapshot{
		Uptime:           time.Since(c.startTime).Truncate(time.Second).String(),
		PeersActive:      c.peersActive.Load(),
		PeersTotal:       c.peersTotal.Load(),
		MessagesReceived: c.messagesReceived.Load(),
		MessagesRejected: c.messagesRejected.Load(),
		Broadcasts:       c.broadcasts.Load(),
		FramesDelivered:  c.framesDelivered.Load(),
		SendFailures:     c.sendFailures.Load(),
		BytesIn:          c.bytesIn.Load(),
		BytesOut:         c.bytesOut.Load(),
		AcceptErrors:     c.acceptErrors.Load(),
		ErrorsTotal:      c.errorsTotal.Load(),
	}
	if !c.lastError.IsZero() {
		s.LastError = c.lastError.Format(time.RFC3339)
		s.LastErrorMessage = c.lastErrorMsg
	}
	return s
}

// JSON returns the snapshot as an indented JSON string.
func (c *Collector) JSON() string {
	s := c.Snapshot()
	data, _ := json.MarshalIndent(s, "", "  ")
	return string(data)
}
