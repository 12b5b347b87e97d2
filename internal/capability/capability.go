// Package capability defines what the client does over an established
// relay connection.  A Capability operates on a Session rather than a
// raw net.Conn, which keeps it testable and independent of whether the
// connection is plain TCP or SSH-tunnelled.
package capability

import (
	"context"

	"tcprelay/internal/session"
)

// Capability handles a single connection according to a specific
// behaviour.  The interactive chat (Chat) is the only one tcprelay
// ships.
type Capability interface {
	// Handle runs the capability against the given session.
	// It blocks until the connection is done or the context is
	// cancelled.
	Handle(ctx context.Context, sess *session.Session) error
}
