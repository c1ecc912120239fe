package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/kubenetlabs/pipeline-demo/internal/config"
	"github.com/kubenetlabs/pipeline-demo/internal/handlers"
	"github.com/kubenetlabs/pipeline-demo/internal/metrics"
)

const (
	landingPath = "/"
	healthPath  = "/health"
	metricsPath = "/metrics"
)

// Server is the demo HTTP server: the application router plus an optional
// metrics endpoint on its own listener.
type Server struct {
	Router  chi.Router
	Config  config.Config
	Metrics *metrics.Metrics
}

// New creates a new Server with all routes and middleware configured.
func New(cfg config.Config) *Server {
	r := chi.NewRouter()
	m := metrics.New()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(RequestLogger)
	r.Use(m.Middleware)
	r.Use(Recoverer(cfg.Debug))
	r.Use(MaxBodySize(1 << 20)) // 1MB max body size
	r.Use(chimw.GetHead)

	s := &Server{Router: r, Config: cfg, Metrics: m}
	s.registerRoutes()

	return s
}

// registerRoutes mounts the two application routes. Everything else falls
// through to chi's default 404 and 405 handlers.
func (s *Server) registerRoutes() {
	s.Router.Get(landingPath, handlers.Landing)
	s.Router.Get(healthPath, handlers.HealthCheck)
}

// MetricsHandler returns the handler served on the metrics listener.
func (s *Server) MetricsHandler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle(metricsPath, s.Metrics.Handler())
	return mux
}

// Listeners holds the sockets bound by Listen.
type Listeners struct {
	App     net.Listener
	Metrics net.Listener // nil when the metrics listener is disabled
}

// Close releases both sockets.
func (l *Listeners) Close() error {
	var errs []error
	if l.App != nil {
		errs = append(errs, l.App.Close())
	}
	if l.Metrics != nil {
		errs = append(errs, l.Metrics.Close())
	}
	return errors.Join(errs...)
}

// Listen binds the application listener and, when configured, the metrics
// listener. A bind failure is returned before anything starts serving.
func (s *Server) Listen() (*Listeners, error) {
	app, err := net.Listen("tcp", s.Config.Addr())
	if err != nil {
		return nil, fmt.Errorf("binding %s: %w", s.Config.Addr(), err)
	}
	ls := &Listeners{App: app}

	if s.Config.MetricsAddr != "" {
		ml, err := net.Listen("tcp", s.Config.MetricsAddr)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("binding metrics %s: %w", s.Config.MetricsAddr, err)
		}
		ls.Metrics = ml
	}
	return ls, nil
}

// Serve handles requests on the given listeners until ctx is cancelled or a
// listener fails, then shuts down gracefully within Config.ShutdownTimeout.
func (s *Server) Serve(ctx context.Context, ls *Listeners) error {
	servers := []*http.Server{{
		Handler:           s.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}}
	listeners := []net.Listener{ls.App}
	if ls.Metrics != nil {
		servers = append(servers, &http.Server{
			Handler:           s.MetricsHandler(),
			ReadHeaderTimeout: 10 * time.Second,
		})
		listeners = append(listeners, ls.Metrics)
	}

	errCh := make(chan error, len(servers))
	for i, srv := range servers {
		ln := listeners[i]
		go func() {
			slog.Info("listening", "addr", ln.Addr().String())
			if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("serving %s: %w", ln.Addr(), err)
			}
		}()
	}

	var serveErr error
	select {
	case serveErr = <-errCh:
	case <-ctx.Done():
		slog.Info("shutting down server", "reason", context.Cause(ctx).Error())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.Config.ShutdownTimeout)
	defer cancel()

	for _, srv := range servers {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return errors.Join(serveErr, fmt.Errorf("server shutdown: %w", err))
		}
	}
	if serveErr != nil {
		return serveErr
	}
	slog.Info("server stopped gracefully")
	return nil
}

// Run binds the configured listeners and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ls, err := s.Listen()
	if err != nil {
		return err
	}
	return s.Serve(ctx, ls)
}
