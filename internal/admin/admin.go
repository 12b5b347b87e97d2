// Package admin serves the relay's read-only HTTP surface: Prometheus
// metrics, a health probe, a JSON stats dump and the live peer list.
package admin

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	ncerr "tcprelay/internal/errors"
	"tcprelay/internal/metrics"
	"tcprelay/internal/relay"
	"tcprelay/util"
)

const shutdownTimeout = 2 * time.Second

// PeerInfo is the JSON shape of one entry in /peers.
type PeerInfo struct {
	ID     string    `json:"id"`
	Addr   string    `json:"addr"`
	Joined time.Time `json:"joined"`
	State  string    `json:"state"`
}

// Server exposes registry and collector state over HTTP.
type Server struct {
	registry *relay.Registry
	metrics  *metrics.Collector
	logger   *util.Logger
	router   chi.Router
}

// New builds the router.  The collector is registered on a private
// Prometheus registry so repeated construction never collides.
func New(reg *relay.Registry, m *metrics.Collector, logger *util.Logger) (*Server, error) {
	promReg := prometheus.NewRegistry()
	if err := promReg.Register(m); err != nil {
		return nil, err
	}

	s := &Server{registry: reg, metrics: m, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Get("/stats", s.handleStats)
	r.Get("/peers", s.handlePeers)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(promReg, promhttp.HandlerOpts{}))

	s.router = r
	return s, nil
}

// Handler returns the routed handler, mostly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe binds addr and serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return ncerr.Wrap("listen", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve handles requests on ln until ctx is cancelled, then shuts the
// HTTP server down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	hs := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := hs.Shutdown(sctx); err != nil {
			s.logger.Debug("admin shutdown: %v", err)
		}
	}()

	s.logger.Info("admin endpoint on http://%s", ln.Addr())
	err := hs.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		<-done
		return nil
	}
	return err
}

// ── handlers ─────────────────────────────────────────────────────────

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok\n")) //nolint:errcheck
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, s.metrics.Snapshot())
}

func (s *Server) handlePeers(w http.ResponseWriter, _ *http.Request) {
	peers := s.registry.Snapshot()
	out := make([]PeerInfo, 0, len(peers))
	for _, p := range peers {
		out = append(out, PeerInfo{
			ID:     p.ID.String(),
			Addr:   p.Addr(),
			Joined: p.Joined,
			State:  p.State().String(),
		})
	}
	writeJSON(w, out)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(v) //nolint:errcheck
}

// logRequests writes one debug line per request.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("%s %s → %d (%v)", r.Method, r.URL.Path, ww.Status(), time.Since(start))
	})
}
