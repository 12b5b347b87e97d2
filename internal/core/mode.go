// Package core is the orchestration layer.  It composes the relay,
// transports and capabilities into complete operational modes and
// provides a builder that selects the right mode from a Config.
//
// Architecture layers (bottom → top):
//
//	relay / transport  →  capability  →  session  →  core  →  cmd (CLI)
package core

import "context"

// Mode represents a complete operational mode of tcprelay: serving the
// relay or chatting through it.  Each mode owns its full lifecycle from
// connection establishment to teardown.
type Mode interface {
	Run(ctx context.Context) error
}
