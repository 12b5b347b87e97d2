package core

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"syscall"
	"time"

	"tcprelay/config"
	"tcprelay/internal/capability"
	ncerr "tcprelay/internal/errors"
	"tcprelay/internal/retry"
	"tcprelay/internal/session"
	"tcprelay/internal/transport"
	"tcprelay/util"
)

// ConnectMode dials the relay and runs the chat on the resulting
// connection.
type ConnectMode struct {
	Dialer      transport.Dialer
	Capability  capability.Capability
	Network     string
	Address     string
	Port        int
	Retries     int // extra dial attempts after the first
	Interactive bool
	Logger      *util.Logger

	// Stdin/Stdout default to os.Stdin/os.Stdout when nil.
	// Override in tests for deterministic I/O.
	Stdin  io.Reader
	Stdout io.Writer
}

func (m *ConnectMode) stdin() io.Reader {
	if m.Stdin != nil {
		return m.Stdin
	}
	return os.Stdin
}

func (m *ConnectMode) stdout() io.Writer {
	if m.Stdout != nil {
		return m.Stdout
	}
	return os.Stdout
}

// Run dials the relay, creates a session, and hands it to the
// capability.  The transport is closed when Run returns.
func (m *ConnectMode) Run(ctx context.Context) error {
	defer m.Dialer.Close()

	conn, err := m.dial(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	m.Logger.Verbose("connected to %s", conn.RemoteAddr())

	sess := session.New(conn, m.stdin(), m.stdout(), m.Logger)
	sess.Interactive = m.Interactive
	return m.Capability.Handle(ctx, sess)
}

func (m *ConnectMode) dial(ctx context.Context) (net.Conn, error) {
	var conn net.Conn

	b := retry.ForDial(m.Retries, config.DefaultMaxRetryBackoff)
	b.RetryIf = ncerr.IsRetryable
	b.OnRetry = func(attempt int, err error, wait time.Duration) {
		m.Logger.Warn("attempt %d to reach %s failed: %v; retrying in %v",
			attempt, m.Address, err, wait.Round(time.Millisecond))
	}

	m.Logger.Verbose("connecting to %s (%s)", m.Address, m.Network)
	err := b.Do(ctx, func(int) error {
		c, err := m.Dialer.Dial(ctx, m.Network, m.Address)
		if err != nil {
			if ctx.Err() != nil {
				return retry.Permanent(err)
			}
			return err
		}
		conn = c
		return nil
	})
	if err != nil {
		if ncerr.Is(err, syscall.ECONNREFUSED) {
			return nil, fmt.Errorf("connect to %s: %w\n  hint: is the relay running? start it with: tcprelay -l -p %d",
				m.Address, err, m.Port)
		}
		return nil, fmt.Errorf("connect to %s: %w", m.Address, err)
	}
	return conn, nil
}
