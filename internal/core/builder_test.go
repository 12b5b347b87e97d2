package core

import (
	"testing"
	"time"

	"tcprelay/config"
	"tcprelay/internal/capability"
	ncerr "tcprelay/internal/errors"
	"tcprelay/internal/transport"
	"tcprelay/util"
)

// TestBuild_Connect verifies that Build produces a ConnectMode for
// a simple connect configuration.
func TestBuild_Connect(t *testing.T) {
	cfg := config.Default()
	cfg.Host = "relay.example.com"
	cfg.Retries = 2
	cfg.ExitWord = "salir"

	mode, err := Build(cfg, util.NewLogger(0))
	if err != nil {
		t.Fatal(err)
	}
	cm, ok := mode.(*ConnectMode)
	if !ok {
		t.Fatalf("expected *ConnectMode, got %T", mode)
	}
	if cm.Address != "relay.example.com:3001" || cm.Retries != 2 {
		t.Errorf("Address/Retries = %q/%d", cm.Address, cm.Retries)
	}
	if _, ok := cm.Dialer.(*transport.TCPDialer); !ok {
		t.Errorf("dialer = %T, want *TCPDialer", cm.Dialer)
	}
	chat, ok := cm.Capability.(*capability.Chat)
	if !ok || chat.ExitWord != "salir" {
		t.Errorf("capability = %#v", cm.Capability)
	}
}

// TestBuild_Serve verifies Build produces a ServeMode carrying the
// relay tuning.
func TestBuild_Serve(t *testing.T) {
	cfg := config.Default()
	cfg.Listen = true
	cfg.Port = 4001
	cfg.WriteTimeout = 3 * time.Second
	cfg.MetricsAddr = "127.0.0.1:9100"

	mode, err := Build(cfg, util.NewLogger(0))
	if err != nil {
		t.Fatal(err)
	}
	sm, ok := mode.(*ServeMode)
	if !ok {
		t.Fatalf("expected *ServeMode, got %T", mode)
	}
	if sm.Options.Addr != "127.0.0.1:4001" || sm.Options.WriteTimeout != 3*time.Second {
		t.Errorf("options = %+v", sm.Options)
	}
	if sm.MetricsAddr != "127.0.0.1:9100" {
		t.Errorf("MetricsAddr = %q", sm.MetricsAddr)
	}
}

// TestBuild_Tunnel verifies -T selects the SSH dialer.
func TestBuild_Tunnel(t *testing.T) {
	cfg := config.Default()
	cfg.TunnelEnabled = true
	cfg.TunnelUser = "admin"
	cfg.TunnelHost = "bastion"
	cfg.TunnelPort = 22

	mode, err := Build(cfg, util.NewLogger(0))
	if err != nil {
		t.Fatal(err)
	}
	cm := mode.(*ConnectMode)
	if _, ok := cm.Dialer.(*transport.SSHDialer); !ok {
		t.Errorf("dialer = %T, want *SSHDialer", cm.Dialer)
	}
}

// TestBuild_InvalidConfig verifies validation runs before building.
func TestBuild_InvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Host = ""

	_, err := Build(cfg, util.NewLogger(0))
	var ce *ncerr.ConfigError
	if !ncerr.As(err, &ce) {
		t.Fatalf("err = %v, want ConfigError", err)
	}
}
