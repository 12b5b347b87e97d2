// Package config defines the runtime configuration for tcprelay and
// provides helpers for parsing ports and tunnel specifications.
package config

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	ncerr "tcprelay/internal/errors"
)

// Config holds every tuneable for one tcprelay process, either the relay
// server (Listen) or the interactive client.
type Config struct {
	// ── Connection ───────────────────────────────────────────────────
	Listen bool
	Host   string
	Port   int

	// ── Relay ────────────────────────────────────────────────────────
	ReadPoll        time.Duration
	WriteTimeout    time.Duration // 0 = unbounded broadcast writes
	BufferSize      int
	MaxMessageBytes int
	GracePeriod     time.Duration
	MetricsAddr     string // admin HTTP address; empty disables it

	// ── Client ───────────────────────────────────────────────────────
	ExitWord    string
	Retries     int // extra dial attempts after the first
	DialTimeout time.Duration

	// ── SSH tunnel ───────────────────────────────────────────────────
	TunnelSpec     string // raw user@host[:port] from -T
	TunnelEnabled  bool
	TunnelUser     string
	TunnelHost     string
	TunnelPort     int
	SSHKeyPath     string
	SSHPassword    bool // true → prompt interactively
	UseSSHAgent    bool
	StrictHostKey  bool
	KnownHostsPath string

	// ── Output ───────────────────────────────────────────────────────
	Verbose int
	DryRun  bool
}

// Default returns a Config populated from defaults.go.
func Default() *Config {
	return &Config{
		Host:            DefaultHost,
		Port:            DefaultPort,
		ReadPoll:        DefaultReadPoll,
		WriteTimeout:    DefaultWriteTimeout,
		BufferSize:      DefaultBufferSize,
		MaxMessageBytes: DefaultMaxMessageBytes,
		GracePeriod:     DefaultGracePeriod,
		ExitWord:        DefaultExitWord,
		DialTimeout:     DefaultConnTimeout,
		Verbose:         1,
	}
}

// Address returns "host:port" for the relay.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ── Port helper ──────────────────────────────────────────────────────

// ParsePort accepts a numeric port in 1-65535.
func ParsePort(spec string) (int, error) {
	port, err := strconv.Atoi(strings.TrimSpace(spec))
	if err != nil {
		return 0, fmt.Errorf("invalid port %q", spec)
	}
	if port < 1 || port > 65535 {
		return 0, fmt.Errorf("port %d out of range 1-65535", port)
	}
	return port, nil
}

// ── Tunnel-spec parser ───────────────────────────────────────────────

// tunnelRe matches [user@]host[:port].
var tunnelRe = regexp.MustCompile(`^(?:([^@]+)@)?([^:]+)(?::(\d+))?$`)

// ParseTunnelSpec extracts user, host, and port from a string such as
// "admin@bastion.example.com:2222".  Port defaults to 22.
func ParseTunnelSpec(spec string) (user, host string, port int, err error) {
	m := tunnelRe.FindStringSubmatch(spec)
	if m == nil {
		return "", "", 0, fmt.Errorf("invalid tunnel spec %q – expected [user@]host[:port]", spec)
	}
	user = m[1]
	host = m[2]
	port = DefaultSSHPort
	if m[3] != "" {
		port, err = strconv.Atoi(m[3])
		if err != nil || port < 1 || port > 65535 {
			return "", "", 0, fmt.Errorf("invalid tunnel port %q", m[3])
		}
	}
	if host == "" {
		return "", "", 0, fmt.Errorf("tunnel host is required")
	}
	return user, host, port, nil
}

// ── Validation ───────────────────────────────────────────────────────

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	if c.Listen {
		if c.Port < 0 || c.Port > 65535 {
			return &ncerr.ConfigError{Field: "port", Value: c.Port,
				Message: "out of range 0-65535",
				Hint:    "use -p 0 to let the system pick a free port"}
		}
		if c.TunnelEnabled {
			return &ncerr.ConfigError{Field: "tunnel",
				Message: "the relay cannot listen through an SSH tunnel",
				Hint:    "use -T only when connecting as a client"}
		}
		if c.ReadPoll <= 0 {
			return &ncerr.ConfigError{Field: "read-poll", Value: c.ReadPoll,
				Message: "must be positive",
				Hint:    "the read poll bounds how long shutdown waits for a session, e.g. --read-poll 1s"}
		}
		if c.WriteTimeout < 0 {
			return &ncerr.ConfigError{Field: "write-timeout", Value: c.WriteTimeout,
				Message: "must not be negative",
				Hint:    "use 0 for unbounded writes"}
		}
		if c.BufferSize < 1 {
			return &ncerr.ConfigError{Field: "buffer-size", Value: c.BufferSize,
				Message: "must be at least 1 byte"}
		}
		if c.MaxMessageBytes < 1 {
			return &ncerr.ConfigError{Field: "max-message", Value: c.MaxMessageBytes,
				Message: "must be at least 1 byte"}
		}
		if c.GracePeriod < 0 {
			return &ncerr.ConfigError{Field: "grace", Value: c.GracePeriod,
				Message: "must not be negative"}
		}
	} else {
		if c.Host == "" {
			return &ncerr.ConfigError{Field: "host",
				Message: "hostname is required",
				Hint:    "tcprelay <host> <port>, or -l to run the relay"}
		}
		if c.Port < 1 || c.Port > 65535 {
			return &ncerr.ConfigError{Field: "port", Value: c.Port,
				Message: "out of range 1-65535",
				Hint:    "the relay listens on 3001 by default"}
		}
		if strings.TrimSpace(c.ExitWord) == "" {
			return &ncerr.ConfigError{Field: "exit-word",
				Message: "must not be blank"}
		}
		if c.Retries < 0 {
			return &ncerr.ConfigError{Field: "retries", Value: c.Retries,
				Message: "must not be negative"}
		}
		if c.MetricsAddr != "" {
			return &ncerr.ConfigError{Field: "metrics-addr", Value: c.MetricsAddr,
				Message: "only the relay serves metrics",
				Hint:    "add -l to run the relay"}
		}
	}

	if c.TunnelEnabled && c.TunnelHost == "" {
		return &ncerr.ConfigError{Field: "tunnel", Message: "tunnel host is required"}
	}

	return nil
}
