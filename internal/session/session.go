// Package session represents the client's single connection to a relay,
// binding the network connection with the local I/O endpoints.
//
// Capabilities use the session's Reader/Writer and never touch os.Stdin
// directly, so a test can drive a chat from a buffer.
package session

import (
	"fmt"
	"io"
	"net"
	"sync"

	"tcprelay/util"
)

// Session encapsulates the runtime context for one client connection.
type Session struct {
	Conn   net.Conn
	Stdin  io.Reader
	Stdout io.Writer
	Logger *util.Logger

	// Interactive is true when a person is typing at a terminal; it
	// turns on the "> " prompt and the carriage-return redraw.
	Interactive bool

	outMu sync.Mutex
}

// New creates a Session bound to the given connection and I/O pair.
func New(conn net.Conn, stdin io.Reader, stdout io.Writer, logger *util.Logger) *Session {
	return &Session{
		Conn:   conn,
		Stdin:  stdin,
		Stdout: stdout,
		Logger: logger,
	}
}

// Remote returns the relay's address.
func (s *Session) Remote() string {
	if s.Conn == nil || s.Conn.RemoteAddr() == nil {
		return ""
	}
	return s.Conn.RemoteAddr().String()
}

// Print writes to Stdout.  The receive loop and the prompt share the
// terminal, so writes are serialised.
func (s *Session) Print(format string, args ...interface{}) {
	s.outMu.Lock()
	defer s.outMu.Unlock()
	fmt.Fprintf(s.Stdout, format, args...)
}

// Prompt shows "> " on interactive sessions.
func (s *Session) Prompt() {
	if s.Interactive {
		s.Print("> ")
	}
}
