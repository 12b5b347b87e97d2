package util

import (
	"errors"
	"io"
	"net"
)

// DefaultBufSize is the receive buffer size for a single peer read.
const DefaultBufSize = 1024

// halfCloser is implemented by *net.TCPConn and *net.UnixConn.
type halfCloser interface {
	CloseRead() error
	CloseWrite() error
}

// ShutdownConn shuts both directions of conn down and then closes it.
// Errors caused by the socket already being shut down or closed are
// swallowed; anything else is returned (the socket is closed anyway).
func ShutdownConn(conn net.Conn) error {
	var firstErr error
	if hc, ok := conn.(halfCloser); ok {
		if err := hc.CloseRead(); err != nil && !IsHarmless(err) {
			firstErr = err
		}
		if err := hc.CloseWrite(); err != nil && !IsHarmless(err) && firstErr == nil {
			firstErr = err
		}
	}
	if err := conn.Close(); err != nil && !IsHarmless(err) && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// IsHarmless returns true for errors that are expected during shutdown.
func IsHarmless(err error) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) || errors.Is(err, io.ErrClosedPipe) {
		return true
	}
	// net.OpError wrapping "use of closed network connection"
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return errors.Is(opErr.Err, net.ErrClosed)
	}
	return false
}
