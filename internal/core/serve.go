package core

import (
	"context"
	"net"

	"tcprelay/config"
	"tcprelay/internal/admin"
	ncerr "tcprelay/internal/errors"
	"tcprelay/internal/metrics"
	"tcprelay/internal/relay"
	"tcprelay/util"
)

// ServeMode runs the broadcast relay and, when MetricsAddr is set, the
// admin HTTP endpoint next to it.  Both stop when ctx is cancelled.
type ServeMode struct {
	Options     relay.Options
	MetricsAddr string
	Logger      *util.Logger

	// Ready, if set, is called once both listeners are bound.  admin is
	// nil when the admin endpoint is disabled.
	Ready func(relayAddr, adminAddr net.Addr)
}

// Run binds every listener up front, so a port conflict is reported
// before any client is accepted, then serves until ctx is cancelled.
func (m *ServeMode) Run(ctx context.Context) error {
	collector := metrics.New()
	srv := relay.New(m.Options, m.Logger, collector)

	var lc net.ListenConfig
	addr := m.Options.Addr
	if addr == "" {
		addr = util.FormatAddr(config.DefaultHost, config.DefaultPort)
	}
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return ncerr.Wrap("listen", addr, err)
	}

	var (
		adminLn   net.Listener
		adminSrv  *admin.Server
		adminDone chan error
	)
	if m.MetricsAddr != "" {
		adminSrv, err = admin.New(srv.Registry(), collector, m.Logger.Named("admin"))
		if err == nil {
			adminLn, err = lc.Listen(ctx, "tcp", m.MetricsAddr)
			if err != nil {
				err = ncerr.Wrap("listen", m.MetricsAddr, err)
			}
		}
		if err != nil {
			ln.Close()
			return err
		}
		adminDone = make(chan error, 1)
		go func() { adminDone <- adminSrv.Serve(ctx, adminLn) }()
	}

	if m.Ready != nil {
		var aa net.Addr
		if adminLn != nil {
			aa = adminLn.Addr()
		}
		m.Ready(ln.Addr(), aa)
	}

	err = srv.Serve(ctx, ln)
	if adminDone != nil {
		if aerr := <-adminDone; aerr != nil {
			m.Logger.Error("admin endpoint: %v", aerr)
		}
	}

	snap := collector.Snapshot()
	m.Logger.Verbose("relay stopped after %s: %d peers served, %d broadcasts",
		snap.Uptime, snap.PeersTotal, snap.Broadcasts)
	return err
}
