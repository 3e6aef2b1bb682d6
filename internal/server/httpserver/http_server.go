// Package httpserver wires the dispatch monitor's HTTP surfaces: the API
// server (manifest intake, tag reads, status, history) and the admin server
// (health, metrics).
package httpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"git.home.luguber.info/inful/dispatchmon/internal/config"
	derrors "git.home.luguber.info/inful/dispatchmon/internal/errors"
	"git.home.luguber.info/inful/dispatchmon/internal/server/handlers"
	smw "git.home.luguber.info/inful/dispatchmon/internal/server/middleware"
)

// Options carries the collaborators the servers expose.
type Options struct {
	Monitor           handlers.MonitorAPI
	History           handlers.HistorySource
	Daemon            handlers.DaemonInterface
	PrometheusHandler http.Handler
}

// Server manages the API and admin HTTP servers.
type Server struct {
	apiServer   *http.Server
	adminServer *http.Server
	cfg         *config.Config
	opts        Options

	dispatchHandlers   *handlers.DispatchHandlers
	monitoringHandlers *handlers.MonitoringHandlers

	// middleware chain
	mchain func(http.Handler) http.Handler
}

// New constructs a new HTTP server wiring instance.
func New(cfg *config.Config, opts Options) *Server {
	s := &Server{cfg: cfg, opts: opts}

	s.dispatchHandlers = handlers.NewDispatchHandlers(opts.Monitor, opts.History)
	s.monitoringHandlers = handlers.NewMonitoringHandlers(opts.Daemon)
	s.mchain = smw.Chain(slog.Default(), derrors.NewHTTPErrorAdapter(slog.Default()))

	return s
}

// Start binds and starts both HTTP servers.
func (s *Server) Start(ctx context.Context) error {
	// Pre-bind both ports so startup fails fast with an aggregate error
	// instead of logging independent 'address already in use' lines after
	// partial initialization.
	type preBind struct {
		name string
		port int
		ln   net.Listener
	}
	binds := []preBind{
		{name: "api", port: s.cfg.HTTP.APIPort},
		{name: "admin", port: s.cfg.HTTP.AdminPort},
	}
	var bindErrs []error
	lc := net.ListenConfig{}
	for i := range binds {
		addr := fmt.Sprintf(":%d", binds[i].port)
		ln, err := lc.Listen(ctx, "tcp", addr)
		if err != nil {
			bindErrs = append(bindErrs, fmt.Errorf("%s port %d: %w", binds[i].name, binds[i].port, err))
			continue
		}
		binds[i].ln = ln
	}
	if len(bindErrs) > 0 {
		for _, b := range binds {
			if b.ln != nil {
				_ = b.ln.Close()
			}
		}
		return fmt.Errorf("http startup failed: %w", errors.Join(bindErrs...))
	}

	if err := s.startAPIServerWithListener(binds[0].ln); err != nil {
		return fmt.Errorf("failed to start api server: %w", err)
	}
	if err := s.startAdminServerWithListener(binds[1].ln); err != nil {
		return fmt.Errorf("failed to start admin server: %w", err)
	}

	slog.Info("HTTP servers started",
		slog.Int("api_port", s.cfg.HTTP.APIPort),
		slog.Int("admin_port", s.cfg.HTTP.AdminPort))
	return nil
}

// Stop gracefully shuts down both HTTP servers.
func (s *Server) Stop(ctx context.Context) error {
	var errs []error

	if s.adminServer != nil {
		if err := s.adminServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("admin server shutdown: %w", err))
		}
	}
	if s.apiServer != nil {
		if err := s.apiServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("api server shutdown: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}

	slog.Info("HTTP servers stopped")
	return nil
}

// apiMux builds the dispatch API routing table.
func (s *Server) apiMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/manifest", s.dispatchHandlers.HandleManifest)
	mux.HandleFunc("/api/v1/reads", s.dispatchHandlers.HandleReads)
	mux.HandleFunc("/api/v1/status", s.dispatchHandlers.HandleStatus)
	mux.HandleFunc("/api/v1/history", s.dispatchHandlers.HandleHistory)
	return mux
}

// adminMux builds the health and metrics routing table.
func (s *Server) adminMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.monitoringHandlers.HandleHealthCheck)
	mux.HandleFunc("/healthz", s.monitoringHandlers.HandleHealthCheck) // Kubernetes-style alias
	if s.opts.PrometheusHandler != nil {
		mux.Handle("/metrics", s.opts.PrometheusHandler)
	}
	return mux
}

func (s *Server) startAPIServerWithListener(ln net.Listener) error {
	s.apiServer = &http.Server{
		Handler:      s.mchain(s.apiMux()),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return s.startServerWithListener("api", s.apiServer, ln)
}

func (s *Server) startAdminServerWithListener(ln net.Listener) error {
	s.adminServer = &http.Server{
		Handler:      s.mchain(s.adminMux()),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return s.startServerWithListener("admin", s.adminServer, ln)
}

// startServerWithListener launches an http.Server on a pre-bound listener or
// binds itself. It standardizes goroutine startup and error logging.
func (s *Server) startServerWithListener(kind string, srv *http.Server, ln net.Listener) error {
	go func() {
		var err error
		if ln != nil {
			err = srv.Serve(ln)
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			slog.Error(fmt.Sprintf("%s server error", kind), "error", err)
		}
	}()
	return nil
}
