package relay

import (
	"context"
	"errors"
	"io"
	"time"

	ncerr "tcprelay/internal/errors"
	"tcprelay/internal/message"
	"tcprelay/internal/metrics"
	"tcprelay/util"
)

// Session runs the receive loop of one peer.  Each read that yields
// valid text is treated as one message, framed with the sender's
// address and broadcast to everybody else.
type Session struct {
	peer       *Peer
	registry   *Registry
	dispatcher *Dispatcher
	validator  message.Validator
	pool       *util.BufPool
	readPoll   time.Duration
	logger     *util.Logger
	metrics    *metrics.Collector
}

// Run reads from the peer until it disconnects, a fault occurs or ctx is
// cancelled, then evicts the peer.  It never panics into its caller.
func (s *Session) Run(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("session %s panicked: %v", s.peer, r)
			s.metrics.RecordError("session panic")
		}
		s.registry.Evict(s.peer)
	}()

	s.logger.Verbose("session started for %s (id %s)", s.peer, s.peer.ID)

	bufp := s.pool.Get()
	defer s.pool.Put(bufp)
	buf := *bufp

	for {
		if ctx.Err() != nil {
			return
		}
		if s.readPoll > 0 {
			s.peer.conn.SetReadDeadline(time.Now().Add(s.readPoll)) //nolint:errcheck
		}

		n, err := s.peer.conn.Read(buf)
		if n > 0 {
			if !s.handle(buf[:n]) {
				return
			}
		}
		if err == nil {
			continue
		}

		switch {
		case ncerr.IsTimeout(err):
			continue
		case errors.Is(err, io.EOF):
			s.logger.Verbose("peer %s closed the connection", s.peer)
		case ncerr.IsReset(err):
			s.logger.Info("peer %s disconnected abruptly: %v", s.peer, err)
		case ncerr.IsClosed(err):
			// Evicted by a dispatcher or by shutdown while reading.
			s.logger.Debug("connection of %s closed locally", s.peer)
		default:
			s.logger.Error("unexpected error with peer %s: %v", s.peer, err)
			s.metrics.RecordError(ncerr.Wrap("read", s.peer.Addr(), err).Error())
		}
		return
	}
}

// handle processes one received chunk.  It returns false when the
// session must end.
func (s *Session) handle(p []byte) bool {
	s.metrics.MessageReceived(len(p))

	text, err := message.Decode(p)
	if err != nil {
		s.logger.Warn("dropping %s: %v", s.peer, err)
		return false
	}
	if !s.validator.Valid(text) {
		s.metrics.MessageRejected()
		s.logger.Debug("discarding invalid message from %s (%d bytes)", s.peer, len(text))
		return true
	}

	s.logger.Debug("message from %s: %d bytes", s.peer, len(text))
	s.dispatcher.Broadcast(message.Format(s.peer.Addr(), text), s.peer)
	return true
}
