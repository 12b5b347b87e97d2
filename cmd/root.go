// Package cmd wires up the CLI flags and dispatches to the core modes.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	flag "github.com/spf13/pflag"

	"tcprelay/config"
	"tcprelay/internal/core"
	"tcprelay/util"
)

// version is overridable at link time:
//
//	go build -ldflags "-X tcprelay/cmd.version=2.0.0"
var version = "1.0.0" //nolint:gochecknoglobals

// Execute parses args and runs the relay or the chat client.
func Execute(ctx context.Context, args []string) error {
	return execute(ctx, args, os.Stdout, os.Stderr)
}

func execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	// Environment first, so flags given on the command line win.
	cfg := config.Default()
	config.LoadFromEnv(cfg)

	fs := flag.NewFlagSet("tcprelay", flag.ContinueOnError)
	fs.SetOutput(stderr)

	// ── connection ───────────────────────────────────────────────
	fs.BoolVarP(&cfg.Listen, "listen", "l", cfg.Listen, "Run the relay server")
	fs.IntVarP(&cfg.Port, "port", "p", cfg.Port, "Relay port")

	// ── relay ────────────────────────────────────────────────────
	fs.DurationVar(&cfg.ReadPoll, "read-poll", cfg.ReadPoll, "Session read poll (bounds shutdown latency)")
	fs.DurationVar(&cfg.WriteTimeout, "write-timeout", cfg.WriteTimeout, "Per-peer write timeout (0 = unbounded)")
	fs.IntVar(&cfg.BufferSize, "buffer-size", cfg.BufferSize, "Bytes read per receive")
	fs.IntVar(&cfg.MaxMessageBytes, "max-message", cfg.MaxMessageBytes, "Largest accepted message in bytes")
	fs.DurationVar(&cfg.GracePeriod, "grace", cfg.GracePeriod, "How long shutdown waits for sessions")
	fs.StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "Serve /metrics, /healthz, /stats and /peers on this address")

	// ── client ───────────────────────────────────────────────────
	fs.StringVar(&cfg.ExitWord, "exit-word", cfg.ExitWord, "Word that leaves the chat (any case)")
	fs.IntVar(&cfg.Retries, "retries", cfg.Retries, "Extra connection attempts")
	fs.DurationVarP(&cfg.DialTimeout, "timeout", "w", cfg.DialTimeout, "Connection timeout")

	// ── SSH tunnel ───────────────────────────────────────────────
	fs.StringVarP(&cfg.TunnelSpec, "tunnel", "T", cfg.TunnelSpec, "Reach the relay through SSH via [user@]host[:port]")
	fs.StringVar(&cfg.SSHKeyPath, "ssh-key", cfg.SSHKeyPath, "SSH private key file")
	fs.BoolVar(&cfg.SSHPassword, "ssh-password", cfg.SSHPassword, "Prompt for SSH password")
	fs.BoolVar(&cfg.UseSSHAgent, "ssh-agent", cfg.UseSSHAgent, "Use SSH agent")
	fs.BoolVar(&cfg.StrictHostKey, "strict-hostkey", cfg.StrictHostKey, "Verify SSH host keys")
	fs.StringVar(&cfg.KnownHostsPath, "known-hosts", cfg.KnownHostsPath, "Custom known_hosts path")

	// ── output ───────────────────────────────────────────────────
	var verbose int
	fs.CountVarP(&verbose, "verbose", "v", "Increase verbosity (repeatable)")
	fs.BoolVar(&cfg.DryRun, "dry-run", false, "Validate the configuration, print it and exit")

	var showVersion, showHelp bool
	fs.BoolVar(&showVersion, "version", false, "Print version and exit")
	fs.BoolVarP(&showHelp, "help", "h", false, "Show this help")

	fs.Usage = func() { printUsage(stderr, fs) }

	// ── parse ────────────────────────────────────────────────────
	if err := fs.Parse(args); err != nil {
		return err
	}

	if showHelp || len(args) == 0 {
		printUsage(stderr, fs)
		return nil
	}
	if showVersion {
		fmt.Fprintf(stdout, "tcprelay %s\n", version)
		return nil
	}
	if verbose > 0 {
		cfg.Verbose += verbose
	}

	// ── positional arguments ─────────────────────────────────────
	if err := parsePositional(cfg, fs.Args()); err != nil {
		return err
	}

	// ── tunnel spec ──────────────────────────────────────────────
	if cfg.TunnelSpec != "" {
		user, host, port, err := config.ParseTunnelSpec(cfg.TunnelSpec)
		if err != nil {
			return fmt.Errorf("tunnel: %w", err)
		}
		cfg.TunnelEnabled = true
		cfg.TunnelUser = user
		cfg.TunnelHost = host
		cfg.TunnelPort = port
	}

	// ── build ────────────────────────────────────────────────────
	logger := util.NewLogger(cfg.Verbose)
	logger.SetTimestamps(cfg.Verbose >= int(util.LogDebug))

	mode, err := core.Build(cfg, logger)
	if err != nil {
		return err
	}

	if cfg.DryRun {
		printPlan(stdout, cfg)
		return nil
	}
	return mode.Run(ctx)
}

// ── helpers ──────────────────────────────────────────────────────────

func parsePositional(cfg *config.Config, remaining []string) error {
	if len(remaining) > 2 {
		if cfg.Listen {
			return fmt.Errorf("too many arguments for listen mode")
		}
		return fmt.Errorf("too many arguments (expected <host> [port])")
	}
	if len(remaining) >= 1 {
		cfg.Host = remaining[0]
	}
	if len(remaining) == 2 {
		port, err := config.ParsePort(remaining[1])
		if err != nil {
			return fmt.Errorf("port: %w", err)
		}
		cfg.Port = port
	}
	return nil
}

// printPlan describes what a real run would do.
func printPlan(w io.Writer, cfg *config.Config) {
	if cfg.Listen {
		fmt.Fprintf(w, "mode:          relay\n")
		fmt.Fprintf(w, "listen:        %s\n", cfg.Address())
		fmt.Fprintf(w, "max message:   %d bytes\n", cfg.MaxMessageBytes)
		fmt.Fprintf(w, "buffer size:   %d bytes\n", cfg.BufferSize)
		fmt.Fprintf(w, "read poll:     %v\n", cfg.ReadPoll)
		if cfg.WriteTimeout > 0 {
			fmt.Fprintf(w, "write timeout: %v\n", cfg.WriteTimeout)
		} else {
			fmt.Fprintf(w, "write timeout: none\n")
		}
		fmt.Fprintf(w, "grace period:  %v\n", cfg.GracePeriod)
		if cfg.MetricsAddr != "" {
			fmt.Fprintf(w, "admin:         http://%s\n", cfg.MetricsAddr)
		}
		return
	}
	fmt.Fprintf(w, "mode:          client\n")
	fmt.Fprintf(w, "relay:         %s\n", cfg.Address())
	if cfg.TunnelEnabled {
		fmt.Fprintf(w, "via:           ssh %s@%s:%d\n", cfg.TunnelUser, cfg.TunnelHost, cfg.TunnelPort)
	}
	fmt.Fprintf(w, "exit word:     %s\n", cfg.ExitWord)
	fmt.Fprintf(w, "retries:       %d\n", cfg.Retries)
}

func printUsage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintf(w, `tcprelay – multi-client TCP broadcast relay v%s

Every message a client sends is relayed to all other connected clients
as "[host:port] message".

Usage:
  tcprelay -l [options] [host [port]]          Run the relay
  tcprelay [options] <host> [port]             Join a relay
  tcprelay -T user@gateway <host> [port]       Join through SSH

Options:
`, version)
	fs.PrintDefaults()
	fmt.Fprintf(w, `
Examples:
  tcprelay -l                                  Relay on 127.0.0.1:3001
  tcprelay -l -p 4000 0.0.0.0 --metrics-addr :9100
  tcprelay 127.0.0.1 3001                      Chat
  tcprelay -T admin@bastion 10.0.0.5           Chat through a bastion
  echo "hello" | tcprelay relay.example.com    Send one message

Environment:
  TCPRELAY_* variables (e.g. TCPRELAY_PORT, TCPRELAY_WRITE_TIMEOUT) set
  defaults; flags override them.
`)
}
