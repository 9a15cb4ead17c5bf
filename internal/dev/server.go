package dev

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	clientdist "github.com/viaduct-dev/viaduct/client/dist"
	"github.com/viaduct-dev/viaduct/internal/config"
	"github.com/viaduct-dev/viaduct/internal/errors"
	"github.com/viaduct-dev/viaduct/pkg/middleware"
	"github.com/viaduct-dev/viaduct/pkg/render"
	"github.com/viaduct-dev/viaduct/pkg/route"
	"github.com/viaduct-dev/viaduct/pkg/router"
)

const (
	// WSEndpoint is the WebSocket path browsers connect to for live reload.
	WSEndpoint = "/_viaduct/ws"

	// RoutesEndpoint serves the compiled route table as JSON.
	RoutesEndpoint = "/_viaduct/routes.json"

	// MetricsEndpoint serves Prometheus metrics for the hosted router.
	MetricsEndpoint = "/metrics"

	// ClientEndpoint serves the embedded browser bootstrap script.
	ClientEndpoint = "/_viaduct/client.js"
)

// Options configures the development server.
type Options struct {
	// Config is the project configuration.
	Config *config.Config

	// Router is the hosted application router. Its tree backs the route
	// introspection endpoint, its registry receives hot swaps, and its
	// counters are exported at /metrics.
	Router *router.Router

	// Shell is the base HTML document served for application paths. The
	// server adds the reload script and boot config per request.
	Shell render.Shell

	// Logger receives server logs. Defaults to slog.Default().
	Logger *slog.Logger
}

// Server is the development server.
type Server struct {
	config   *config.Config
	router   *router.Router
	shell    render.Shell
	logger   *slog.Logger
	hub      *Hub
	registry *prometheus.Registry
	handler  http.Handler

	mu         sync.Mutex
	running    bool
	httpServer *http.Server
}

// NewServer creates a new development server.
func NewServer(options Options) *Server {
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(middleware.StatsCollector(options.Router))

	s := &Server{
		config:   options.Config,
		router:   options.Router,
		shell:    options.Shell,
		logger:   logger,
		hub:      NewHub(),
		registry: registry,
	}
	s.handler = s.buildMux()
	return s
}

// Handler returns the server's HTTP handler, for mounting or testing
// without binding a port.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Hub returns the live-reload hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

func (s *Server) buildMux() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)

	r.Get(WSEndpoint, s.hub.HandleWebSocket)
	r.Get(RoutesEndpoint, s.handleRoutes)
	r.Get(ClientEndpoint, s.handleClient)
	r.Method(http.MethodGet, MetricsEndpoint, promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(s.config.PublicPath()))))

	// Every other path belongs to the client-side router, which resolves
	// it after boot. Serve the shell for all of them.
	r.Get("/*", s.handleShell)

	return r
}

// handleShell serves the HTML document that boots the application.
func (s *Server) handleShell(w http.ResponseWriter, req *http.Request) {
	shell := s.shell
	if shell.Title == "" {
		shell.Title = s.config.Name
	}

	boot := make(map[string]any, len(s.shell.BootConfig)+1)
	for k, v := range s.shell.BootConfig {
		boot[k] = v
	}
	boot["wsPath"] = WSEndpoint
	shell.BootConfig = boot

	scripts := make([]render.ScriptTag, 0, len(s.shell.Scripts)+1)
	scripts = append(scripts, s.shell.Scripts...)
	scripts = append(scripts, render.ScriptTag{Inline: ReloadScript})
	shell.Scripts = scripts

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := render.RenderShell(w, shell); err != nil {
		s.logger.Error("render shell", "path", req.URL.Path, "error", err)
	}
}

// handleClient serves the embedded browser bootstrap script.
func (s *Server) handleClient(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/javascript; charset=utf-8")
	w.Write(clientdist.ViaductJS)
}

// routeInfo is one row of the route table endpoint.
type routeInfo struct {
	ID       string `json:"id"`
	Pattern  string `json:"pattern"`
	Kind     string `json:"kind"`
	Name     string `json:"name,omitempty"`
	Title    string `json:"title,omitempty"`
	Redirect string `json:"redirect,omitempty"`
}

// handleRoutes serves the compiled route table.
func (s *Server) handleRoutes(w http.ResponseWriter, _ *http.Request) {
	all := s.router.Tree().All()
	infos := make([]routeInfo, 0, len(all))
	for _, rt := range all {
		infos = append(infos, routeInfo{
			ID:       string(rt.ID()),
			Pattern:  rt.Pattern(),
			Kind:     routeKind(rt),
			Name:     rt.Name(),
			Title:    rt.Title(),
			Redirect: rt.Redirect(),
		})
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(infos); err != nil {
		s.logger.Error("encode routes", "error", err)
	}
}

func routeKind(rt *route.Route) string {
	switch {
	case rt.Wildcard():
		return "wildcard"
	case rt.Dynamic():
		return "dynamic"
	default:
		return "static"
	}
}

// HotSwap installs a replacement component for the route with the given
// id, re-renders the hosted router, and tells connected browsers to pick
// up the change.
func (s *Server) HotSwap(ctx context.Context, id route.ID, h route.Handler) error {
	rt, ok := s.router.Tree().ByID(id)
	if !ok {
		return errors.New("R006").WithDetailf("no compiled route has id %q", string(id))
	}

	s.router.Registry().Install(rt.ID(), h)

	if err := s.router.Refresh(ctx); err != nil {
		s.hub.NotifyError(err.Error())
		return err
	}

	s.hub.ClearError()
	s.hub.NotifyHotSwap(string(id))
	s.logger.Info("hot swapped component", "route", string(id), "clients", s.hub.ClientCount())
	return nil
}

// Start runs the server until ctx is cancelled or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.httpServer = &http.Server{
		Addr:    s.config.Address(),
		Handler: s.handler,
	}
	s.mu.Unlock()

	s.logger.Info("dev server running", "url", s.config.URL())

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		s.Stop()
		return nil
	case err := <-errCh:
		s.Stop()
		return err
	}
}

// Stop shuts the server down and disconnects reload clients.
func (s *Server) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	s.running = false

	s.hub.Close()

	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.httpServer.Shutdown(ctx)
	}
}
