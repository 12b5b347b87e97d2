package config

import "time"

// ── Default values ───────────────────────────────────────────────────
//
// All tuneable defaults live here so they are easy to audit and reuse
// across CLI flags, environment variable loading and the relay itself.

const (
	// DefaultHost is the address the relay binds and the client dials.
	DefaultHost = "127.0.0.1"

	// DefaultPort is the relay's TCP port.
	DefaultPort = 3001

	// DefaultReadPoll bounds each session read so that the receive loop
	// notices shutdown.  It is not a protocol timeout for peers.
	DefaultReadPoll = 1 * time.Second

	// DefaultClientPoll is the client's receive poll interval.
	DefaultClientPoll = 500 * time.Millisecond

	// DefaultBufferSize is the number of bytes read per receive call.
	DefaultBufferSize = 1024

	// DefaultMaxMessageBytes is the largest accepted message in UTF-8 bytes.
	DefaultMaxMessageBytes = 1024

	// DefaultWriteTimeout of zero leaves broadcast writes unbounded.
	DefaultWriteTimeout = time.Duration(0)

	// DefaultGracePeriod is how long shutdown waits for sessions.
	DefaultGracePeriod = 5 * time.Second

	// DefaultExitWord ends the interactive client.
	DefaultExitWord = "exit"

	// DefaultSSHPort is the standard SSH port.
	DefaultSSHPort = 22

	// DefaultConnTimeout is the TCP/SSH connection timeout.
	DefaultConnTimeout = 30 * time.Second

	// DefaultMaxRetryBackoff caps the backoff between client dial attempts.
	DefaultMaxRetryBackoff = 10 * time.Second
)
