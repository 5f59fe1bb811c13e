package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/getmockd/canaryd/pkg/config"
	"github.com/getmockd/canaryd/pkg/logging"
	"github.com/getmockd/canaryd/pkg/metrics"
	"github.com/getmockd/canaryd/pkg/notify"
	"github.com/getmockd/canaryd/pkg/routes"
)

// Server binds the listener and dispatches every request to a Handler.
type Server struct {
	cfg      *config.Configuration
	table    *routes.Table
	log      *slog.Logger
	notifier notify.Notifier
	metrics  *metrics.Metrics
	handler  *Handler

	mu            sync.RWMutex
	running       bool
	httpServer    *http.Server
	listener      net.Listener
	metricsServer *http.Server
	metricsLn     net.Listener
}

// ServerOption is a functional option for configuring a Server.
type ServerOption func(*Server)

// WithLogger sets the logger for the server and its handler.
func WithLogger(log *slog.Logger) ServerOption {
	return func(s *Server) {
		if log != nil {
			s.log = log
		}
	}
}

// WithNotifier sets the notifier that receives match lines.
func WithNotifier(n notify.Notifier) ServerOption {
	return func(s *Server) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithMetrics sets the metrics collectors. When the configuration names a
// metrics listener they are served there.
func WithMetrics(m *metrics.Metrics) ServerOption {
	return func(s *Server) {
		s.metrics = m
	}
}

// NewServer creates a Server for table. A nil cfg uses defaults.
func NewServer(cfg *config.Configuration, table *routes.Table, opts ...ServerOption) *Server {
	if cfg == nil {
		cfg = config.DefaultConfiguration()
	}
	if table == nil {
		table = routes.New(nil)
	}

	s := &Server{
		cfg:      cfg,
		table:    table,
		log:      logging.Nop(),
		notifier: notify.Nop{},
	}
	for _, opt := range opts {
		opt(s)
	}

	s.metrics.SetRoutes(table.Len())
	s.handler = NewHandler(table,
		WithHandlerLogger(s.log),
		WithHandlerNotifier(s.notifier),
		WithHandlerMetrics(s.metrics),
		WithClientIPHeader(cfg.Server.ClientIPHeaderName()),
		WithNotifyTimeout(cfg.Notifier.TimeoutDuration()),
	)
	return s
}

// Handler returns the request handler.
func (s *Server) Handler() *Handler {
	return s.handler
}

// Start binds the listeners and serves in the background. Bind errors are
// returned before anything is served.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return errors.New("server is already running")
	}

	addr := s.cfg.Server.Address()
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	if s.cfg.Server.MetricsListen != "" && s.metrics != nil {
		mln, err := net.Listen("tcp", s.cfg.Server.MetricsListen)
		if err != nil {
			_ = ln.Close()
			return fmt.Errorf("failed to listen on metrics address %s: %w", s.cfg.Server.MetricsListen, err)
		}
		mux := http.NewServeMux()
		mux.Handle("/metrics", s.metrics.Handler())
		s.metricsLn = mln
		s.metricsServer = &http.Server{
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		}
		go s.serve(s.metricsServer, mln, "metrics")
		s.log.Info("metrics listener started", "address", mln.Addr().String())
	}

	s.listener = ln
	s.httpServer = &http.Server{
		Handler:      s.handler,
		ReadTimeout:  time.Duration(s.cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.cfg.Server.WriteTimeout) * time.Second,
	}

	s.log.Info("Starting server on "+ln.Addr().String(), "routes", s.table.Len())
	go s.serve(s.httpServer, ln, "HTTP")

	s.running = true
	return nil
}

func (s *Server) serve(srv *http.Server, ln net.Listener, name string) {
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.log.Error(name+" server error", "error", err)
	}
}

// Addr returns the bound address of the main listener, or "" when stopped.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// MetricsAddr returns the bound address of the metrics listener, or "" when
// it is disabled.
func (s *Server) MetricsAddr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.metricsLn == nil {
		return ""
	}
	return s.metricsLn.Addr().String()
}

// IsRunning reports whether the server is serving.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Stop shuts the listeners down gracefully, then waits for in-flight
// notifications. ctx bounds the whole operation.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	var errs []error
	if err := s.httpServer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("HTTP shutdown: %w", err))
	}
	if s.metricsServer != nil {
		if err := s.metricsServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("metrics shutdown: %w", err))
		}
	}
	if err := s.handler.WaitContext(ctx); err != nil {
		errs = append(errs, fmt.Errorf("waiting for notifications: %w", err))
	}

	s.running = false
	s.listener = nil
	s.metricsLn = nil
	s.metricsServer = nil
	s.log.Info("server stopped")

	return errors.Join(errs...)
}
