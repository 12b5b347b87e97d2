package config

// loader.go - configuration loading from environment variables.
//
// Precedence order (highest wins):
//   1. CLI flags  (handled by cmd/root.go)
//   2. Environment variables  (this file)
//   3. Defaults   (defaults.go)

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// ── Environment variable mapping ─────────────────────────────────────
//
// Every supported env var uses the TCPRELAY_ prefix.  Boolean values
// accept "1", "true", "yes" (case-insensitive).  Durations accept Go
// duration strings ("500ms", "2s") or a plain number of seconds.

// LoadFromEnv overlays environment variables onto cfg.  Only non-empty,
// parseable env vars override the existing value.  This should be called
// BEFORE CLI flag parsing so that flags take precedence.
func LoadFromEnv(cfg *Config) {
	if envBool("TCPRELAY_LISTEN") {
		cfg.Listen = true
	}
	if v := os.Getenv("TCPRELAY_HOST"); v != "" {
		cfg.Host = v
	}
	if v := envInt("TCPRELAY_PORT"); v > 0 {
		cfg.Port = v
	}

	// Relay
	if v := envDuration("TCPRELAY_READ_POLL"); v > 0 {
		cfg.ReadPoll = v
	}
	if v := envDuration("TCPRELAY_WRITE_TIMEOUT"); v > 0 {
		cfg.WriteTimeout = v
	}
	if v := envInt("TCPRELAY_BUFFER_SIZE"); v > 0 {
		cfg.BufferSize = v
	}
	if v := envInt("TCPRELAY_MAX_MESSAGE"); v > 0 {
		cfg.MaxMessageBytes = v
	}
	if v := envDuration("TCPRELAY_GRACE"); v > 0 {
		cfg.GracePeriod = v
	}
	if v := os.Getenv("TCPRELAY_METRICS_ADDR"); v != "" {
		cfg.MetricsAddr = v
	}

	// Client
	if v := os.Getenv("TCPRELAY_EXIT_WORD"); v != "" {
		cfg.ExitWord = v
	}
	if v := envInt("TCPRELAY_RETRIES"); v > 0 {
		cfg.Retries = v
	}
	if v := envDuration("TCPRELAY_TIMEOUT"); v > 0 {
		cfg.DialTimeout = v
	}

	// SSH tunnel
	if v := os.Getenv("TCPRELAY_TUNNEL"); v != "" {
		cfg.TunnelSpec = v
	}
	if v := os.Getenv("TCPRELAY_SSH_KEY"); v != "" {
		cfg.SSHKeyPath = v
	}
	if envBool("TCPRELAY_SSH_PASSWORD") {
		cfg.SSHPassword = true
	}
	if envBool("TCPRELAY_SSH_AGENT") {
		cfg.UseSSHAgent = true
	}
	if envBool("TCPRELAY_STRICT_HOSTKEY") {
		cfg.StrictHostKey = true
	}
	if v := os.Getenv("TCPRELAY_KNOWN_HOSTS"); v != "" {
		cfg.KnownHostsPath = v
	}

	// Output
	if v := envInt("TCPRELAY_VERBOSE"); v > 0 {
		cfg.Verbose = v
	}
}

// ── helpers ──────────────────────────────────────────────────────────

func envInt(key string) int {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

func envBool(key string) bool {
	v := strings.ToLower(os.Getenv(key))
	return v == "1" || v == "true" || v == "yes"
}

func envDuration(key string) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return secondsDuration(n)
	}
	return 0
}

func secondsDuration(sec int) time.Duration {
	return time.Duration(sec) * time.Second
}
