package core

import (
	"os"

	"golang.org/x/term"

	"tcprelay/config"
	"tcprelay/internal/capability"
	"tcprelay/internal/relay"
	"tcprelay/internal/transport"
	"tcprelay/tunnel"
	"tcprelay/util"
)

// Build constructs the appropriate Mode from the given configuration.
func Build(cfg *config.Config, logger *util.Logger) (Mode, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Listen {
		return buildServe(cfg, logger), nil
	}
	return buildConnect(cfg, logger), nil
}

// ── mode builders ────────────────────────────────────────────────────

func buildServe(cfg *config.Config, logger *util.Logger) *ServeMode {
	return &ServeMode{
		Options: relay.Options{
			Addr:            cfg.Address(),
			ReadPoll:        cfg.ReadPoll,
			WriteTimeout:    cfg.WriteTimeout,
			BufferSize:      cfg.BufferSize,
			MaxMessageBytes: cfg.MaxMessageBytes,
			GracePeriod:     cfg.GracePeriod,
		},
		MetricsAddr: cfg.MetricsAddr,
		Logger:      logger,
	}
}

func buildConnect(cfg *config.Config, logger *util.Logger) *ConnectMode {
	return &ConnectMode{
		Dialer: buildDialer(cfg, logger),
		Capability: &capability.Chat{
			ExitWord:   cfg.ExitWord,
			Poll:       config.DefaultClientPoll,
			BufferSize: cfg.BufferSize,
		},
		Network:     "tcp",
		Address:     cfg.Address(),
		Port:        cfg.Port,
		Retries:     cfg.Retries,
		Interactive: term.IsTerminal(int(os.Stdin.Fd())),
		Logger:      logger,
	}
}

// ── shared helpers ───────────────────────────────────────────────────

// buildDialer creates the right transport.Dialer for the given config.
func buildDialer(cfg *config.Config, logger *util.Logger) transport.Dialer {
	if sshCfg := tunnel.FromConfig(cfg); sshCfg != nil {
		return transport.NewSSHDialer(sshCfg, logger)
	}
	return &transport.TCPDialer{Timeout: cfg.DialTimeout}
}
