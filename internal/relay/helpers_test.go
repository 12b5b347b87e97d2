package relay

import (
	"bufio"
	"context"
	"io"
	"net"
	"strings"
	"testing"
	"time"

	"tcprelay/internal/metrics"
	"tcprelay/util"
)

// quietLogger discards everything.
func quietLogger() *util.Logger {
	l := util.NewLogger(int(util.LogDebug))
	l.SetOutput(io.Discard)
	return l
}

// tcpPair returns both ends of a loopback TCP connection: the accepted
// side first, the dialled side second.
func tcpPair(t *testing.T) (net.Conn, net.Conn) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	accepted := make(chan net.Conn, 1)
	go func() {
		c, err := ln.Accept()
		if err != nil {
			close(accepted)
			return
		}
		accepted <- c
	}()

	client, err := net.Dial("tcp", ln.Addr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	server, ok := <-accepted
	if !ok {
		t.Fatal("accept failed")
	}
	t.Cleanup(func() {
		client.Close()
		server.Close()
	})
	return server, client
}

// startServer runs a relay on an ephemeral loopback port.  The returned
// stop function cancels it and returns Serve's error.
func startServer(t *testing.T, opts Options) (*Server, func() error) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	if opts.ReadPoll == 0 {
		opts.ReadPoll = 50 * time.Millisecond
	}
	if opts.GracePeriod == 0 {
		opts.GracePeriod = 2 * time.Second
	}

	srv := New(opts, quietLogger(), metrics.New())
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ctx, ln) }()

	var stopped bool
	var serveErr error
	stop := func() error {
		if stopped {
			return serveErr
		}
		stopped = true
		cancel()
		select {
		case serveErr = <-errCh:
		case <-time.After(5 * time.Second):
			t.Fatal("Serve did not return after cancel")
		}
		return serveErr
	}
	t.Cleanup(func() { stop() }) //nolint:errcheck

	waitFor(t, func() bool { return srv.Addr() != nil })
	return srv, stop
}

// client is a test participant connected to a relay.
type client struct {
	t    *testing.T
	conn net.Conn
	r    *bufio.Reader
}

func dialClient(t *testing.T, srv *Server) *client {
	t.Helper()
	conn, err := net.Dial("tcp", srv.Addr().String())
	if err != nil {
		t.Fatalf("dial relay: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return &client{t: t, conn: conn, r: bufio.NewReader(conn)}
}

// joinClients dials n clients and waits until the relay registered them.
func joinClients(t *testing.T, srv *Server, n int) []*client {
	t.Helper()
	base := srv.Registry().Len()
	out := make([]*client, n)
	for i := range out {
		out[i] = dialClient(t, srv)
	}
	waitFor(t, func() bool { return srv.Registry().Len() == base+n })
	return out
}

func (c *client) send(text string) {
	c.t.Helper()
	if _, err := c.conn.Write([]byte(text)); err != nil {
		c.t.Fatalf("write: %v", err)
	}
}

// line reads one frame, failing after timeout.
func (c *client) line(timeout time.Duration) string {
	c.t.Helper()
	c.conn.SetReadDeadline(time.Now().Add(timeout)) //nolint:errcheck
	s, err := c.r.ReadString('\n')
	if err != nil {
		c.t.Fatalf("read frame: %v (partial %q)", err, s)
	}
	return s
}

// silent asserts nothing arrives within d.
func (c *client) silent(d time.Duration) {
	c.t.Helper()
	c.conn.SetReadDeadline(time.Now().Add(d)) //nolint:errcheck
	s, err := c.r.ReadString('\n')
	if err == nil || len(s) > 0 {
		c.t.Fatalf("expected no data, got %q (err %v)", s, err)
	}
}

// closed asserts the relay closed the connection.
func (c *client) closed(timeout time.Duration) {
	c.t.Helper()
	c.conn.SetReadDeadline(time.Now().Add(timeout)) //nolint:errcheck
	for {
		_, err := c.r.ReadByte()
		if err == nil {
			continue
		}
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			c.t.Fatal("connection still open")
		}
		return
	}
}

func (c *client) localAddr() string {
	return c.conn.LocalAddr().String()
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func hasPrefix(s, prefix string) bool { return strings.HasPrefix(s, prefix) }
