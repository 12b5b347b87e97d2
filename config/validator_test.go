package config

import (
	"strings"
	"testing"

	ncerr "tcprelay/internal/errors"
)

// TestValidate_ErrorMessages verifies that Validate returns actionable
// error messages with hints.
func TestValidate_ErrorMessages(t *testing.T) {
	tests := []struct {
		name    string
		mut     func(*Config)
		wantSub string // substring expected in error
	}{
		{
			name:    "client without host has hint",
			mut:     func(c *Config) { c.Host = "" },
			wantSub: "hint:",
		},
		{
			name:    "relay through tunnel",
			mut:     func(c *Config) { c.Listen = true; c.TunnelEnabled = true; c.TunnelHost = "gw" },
			wantSub: "cannot listen through an SSH tunnel",
		},
		{
			name:    "names the flag",
			mut:     func(c *Config) { c.Listen = true; c.BufferSize = -4 },
			wantSub: "--buffer-size=-4",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mut(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			var ce *ncerr.ConfigError
			if !ncerr.As(err, &ce) {
				t.Fatalf("error %T should be *ConfigError", err)
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("error %q should contain %q", err.Error(), tt.wantSub)
			}
		})
	}
}

// TestParsePort_Fuzz covers edge-case port strings.
func TestParsePort_Fuzz(t *testing.T) {
	edgeCases := []string{
		"1", "65535", "-1", "65536", "abc", "-", "1-2", "0", "99999", "0x50", "+80",
	}
	for _, s := range edgeCases {
		t.Run(s, func(t *testing.T) {
			port, err := ParsePort(s)
			if err == nil && (port < 1 || port > 65535) {
				t.Errorf("ParsePort(%q) = %d without error", s, port)
			}
		})
	}
}
