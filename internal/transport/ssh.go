package transport

import (
	"context"
	"fmt"
	"net"
	"sync"

	"tcprelay/tunnel"
	"tcprelay/util"
)

// SSHDialer routes the client's connection through an SSH gateway.
// The tunnel is connected lazily on the first Dial call, reconnected if
// it has dropped, and torn down on Close.
type SSHDialer struct {
	tunnel tunnel.Tunnel
	config *tunnel.SSHConfig
	logger *util.Logger
	mu     sync.Mutex
	up     bool
}

// NewSSHDialer creates a dialer that forwards connections through an
// SSH tunnel.  The tunnel is not connected until the first Dial.
func NewSSHDialer(cfg *tunnel.SSHConfig, logger *util.Logger) *SSHDialer {
	return &SSHDialer{
		tunnel: tunnel.NewSSHTunnel(cfg, logger.Named("ssh")),
		config: cfg,
		logger: logger,
	}
}

// connect establishes the SSH tunnel if it is not already up.
func (d *SSHDialer) connect(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.up && d.tunnel.IsAlive() {
		return nil
	}
	if d.up {
		d.logger.Warn("SSH tunnel to %s dropped, reconnecting", d.config.Host)
		d.tunnel.Close() //nolint:errcheck
		d.up = false
	}

	d.logger.Verbose("establishing SSH tunnel to %s@%s:%d",
		d.config.User, d.config.Host, d.config.Port)

	if err := d.tunnel.Connect(ctx); err != nil {
		return fmt.Errorf("tunnel: %w", err)
	}
	d.up = true
	return nil
}

// Dial connects to address through the SSH tunnel.
func (d *SSHDialer) Dial(ctx context.Context, network, address string) (net.Conn, error) {
	if err := d.connect(ctx); err != nil {
		return nil, err
	}
	return d.tunnel.Dial(ctx, network, address)
}

// Close tears down the underlying SSH tunnel.
func (d *SSHDialer) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.up {
		d.up = false
		return d.tunnel.Close()
	}
	return nil
}
