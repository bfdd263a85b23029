// Package server runs the ResumeWorthy HTTP API: it opens the configured
// block store (starting a DefraDB container when asked to), builds the
// ingestion pipeline and serves the endpoint registry on a chi router.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/sync/errgroup"

	"github.com/Julien-ser/ResumeWorthy/internal/api"
	"github.com/Julien-ser/ResumeWorthy/internal/config"
	"github.com/Julien-ser/ResumeWorthy/internal/defra"
	"github.com/Julien-ser/ResumeWorthy/internal/export"
	"github.com/Julien-ser/ResumeWorthy/internal/home"
	"github.com/Julien-ser/ResumeWorthy/internal/ingest"
	"github.com/Julien-ser/ResumeWorthy/internal/providers"
	"github.com/Julien-ser/ResumeWorthy/internal/server/endpoints"
	"github.com/Julien-ser/ResumeWorthy/internal/store"
	"github.com/Julien-ser/ResumeWorthy/internal/svcctx"
)

const shutdownTimeout = 30 * time.Second

// Server is the main ResumeWorthy HTTP server.
// When the store driver is defra with no URL configured, it manages the
// DefraDB container lifecycle: started in Init, stopped on shutdown.
type Server struct {
	httpServer   *http.Server
	configMgr    *config.Manager
	registry     *providers.Registry
	home         *home.Dir
	logger       *slog.Logger
	defraManager *defra.DockerManager
	store        store.Store
	pipeline     *pipelineHolder

	// services holds all core services for context enrichment
	services atomic.Pointer[svcctx.Services]

	endpointRegistry *api.Registry

	mu      sync.RWMutex
	running bool
}

// Config holds server configuration.
type Config struct {
	// ConfigManager provides configuration with hot-reload support (required).
	ConfigManager *config.Manager
	// Home is the home directory; DefraDB data lives under it.
	Home *home.Dir
	// Store, when set, is used instead of opening the configured backend.
	Store store.Store
	// Registry, when set, is used instead of building one from config.
	Registry *providers.Registry
	// Logger is the structured logger to use
	Logger *slog.Logger
}

// New creates a new Server. Nothing is started until Init or Start.
func New(cfg Config) (*Server, error) {
	if cfg.ConfigManager == nil {
		return nil, errors.New("server: config manager is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Home == nil {
		h, err := home.New("")
		if err != nil {
			return nil, err
		}
		cfg.Home = h
	}
	c := cfg.ConfigManager.Get()

	registry := cfg.Registry
	if registry == nil {
		registry = providers.NewRegistry()
		registry.SetLogger(cfg.Logger)
		registry.Reload(c.ToProviderRegistryConfig())
		cfg.ConfigManager.OnChange(func(c *config.Config) {
			registry.Reload(c.ToProviderRegistryConfig())
			cfg.Logger.Info("provider registry reloaded from config")
		})
	}

	s := &Server{
		configMgr: cfg.ConfigManager,
		registry:  registry,
		home:      cfg.Home,
		logger:    cfg.Logger,
		store:     cfg.Store,
	}

	s.endpointRegistry = api.NewRegistry()
	for _, ep := range endpoints.All(endpoints.Config{}) {
		s.endpointRegistry.Register(ep)
	}

	s.httpServer = &http.Server{
		Addr:              c.Server.Addr(),
		Handler:           s.router(c.Server),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s, nil
}

// router builds the chi router with the middleware stack and every endpoint.
func (s *Server) router(cfg config.ServerCfg) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	if cfg.RequestTimeoutSeconds > 0 {
		r.Use(middleware.Timeout(time.Duration(cfg.RequestTimeoutSeconds) * time.Second))
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(s.withServices)

	s.endpointRegistry.RegisterRoutes(r, s.requireInit)
	return r
}

// Init opens the block store and builds the pipeline. It is called by
// Start; tests call it directly and drive Handler.
func (s *Server) Init(ctx context.Context) error {
	c := s.configMgr.Get()
	storeCfg := c.ToStoreConfig()

	if s.store == nil {
		if storeCfg.Driver == store.DriverDefra && c.Store.Defra.Managed() {
			url, err := s.startDefra(ctx, c.Store.Defra)
			if err != nil {
				return err
			}
			storeCfg.DefraURL = url
		}

		st, err := store.Open(ctx, storeCfg, s.logger)
		if err != nil {
			s.stopDefra()
			return fmt.Errorf("failed to open %s store: %w", storeCfg.Driver, err)
		}
		s.store = st
	}
	driver := storeCfg.Driver
	if driver == "" {
		driver = store.DriverMemory
	}
	s.logger.Info("block store ready", "driver", driver)

	s.pipeline = newPipelineHolder(s.registry, s.store, s.logger)
	s.pipeline.rebuild(c)
	s.configMgr.OnChange(s.pipeline.rebuild)

	s.services.Store(&svcctx.Services{
		Store:        s.store,
		StoreDriver:  driver,
		Ingester:     s.pipeline,
		Exporter:     export.NewService(s.store, s.logger),
		Registry:     s.registry,
		Config:       s.configMgr,
		DefraManager: s.defraManager,
		Logger:       s.logger,
		Home:         s.home,
	})
	return nil
}

func (s *Server) startDefra(ctx context.Context, cfg config.DefraCfg) (string, error) {
	mgr, err := defra.NewDockerManager(defra.DockerConfig{
		ContainerName: cfg.ContainerName,
		Image:         cfg.Image,
		DataPath:      s.home.DefraDataPath(),
		HostPort:      cfg.Port,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create defra manager: %w", err)
	}

	s.logger.Info("starting DefraDB", "container", mgr.ContainerName())
	if err := mgr.Start(ctx); err != nil {
		mgr.Close()
		return "", fmt.Errorf("failed to start DefraDB: %w", err)
	}
	s.defraManager = mgr
	s.logger.Info("DefraDB is ready", "url", mgr.URL())
	return mgr.URL(), nil
}

// Start initializes the server and serves HTTP until ctx is cancelled or
// the listener fails, then shuts everything down.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("server already running")
	}
	s.running = true
	s.mu.Unlock()
	defer s.setNotRunning()

	if err := s.Init(ctx); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("shutdown signal received")
		return s.shutdown()
	})
	return g.Wait()
}

// shutdown stops the HTTP server, closes the store and stops DefraDB.
func (s *Server) shutdown() error {
	s.logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Error("store close error", "error", err)
		}
	}
	s.stopDefra()

	s.logger.Info("server stopped")
	return nil
}

func (s *Server) stopDefra() {
	if s.defraManager == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.logger.Info("stopping DefraDB")
	if err := s.defraManager.Stop(ctx); err != nil {
		s.logger.Error("DefraDB stop error", "error", err)
	}
	if err := s.defraManager.Close(); err != nil {
		s.logger.Error("DefraDB manager close error", "error", err)
	}
	s.defraManager = nil
}

func (s *Server) setNotRunning() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

// IsRunning returns whether the server is currently running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Addr returns the server's listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Registry returns the provider registry.
func (s *Server) Registry() *providers.Registry {
	return s.registry
}

// Endpoints returns the endpoint registry, used to build CLI commands.
func (s *Server) Endpoints() *api.Registry {
	return s.endpointRegistry
}

// withServices wraps a handler to enrich the request context with services.
func (s *Server) withServices(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc := s.services.Load(); svc != nil {
			ctx = svcctx.WithServices(ctx, svc)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireInit is middleware that ensures the server is fully initialized.
// Returns 503 Service Unavailable if the store isn't open yet.
func (s *Server) requireInit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.services.Load() == nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"error":"server not fully initialized"}`))
			return
		}
		next(w, r)
	}
}

// requestLogger logs one line per request with the chi request id.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("http.request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// pipelineHolder swaps the ingestion pipeline when providers change.
type pipelineHolder struct {
	registry *providers.Registry
	store    store.Inserter
	logger   *slog.Logger

	mu       sync.RWMutex
	pipeline *ingest.Pipeline
	err      error
}

func newPipelineHolder(registry *providers.Registry, st store.Inserter, logger *slog.Logger) *pipelineHolder {
	return &pipelineHolder{registry: registry, store: st, logger: logger}
}

func (h *pipelineHolder) rebuild(c *config.Config) {
	p, err := ingest.Build(c, h.registry, h.store, h.logger)
	if err != nil {
		h.logger.Warn("ingestion pipeline unavailable", "error", err)
	}
	h.mu.Lock()
	h.pipeline, h.err = p, err
	h.mu.Unlock()
}

// Ingest runs the current pipeline, or reports why there is none.
func (h *pipelineHolder) Ingest(ctx context.Context, document []byte, ownerID string) (*ingest.Result, error) {
	h.mu.RLock()
	p, err := h.pipeline, h.err
	h.mu.RUnlock()
	if p == nil {
		if err == nil {
			err = ingest.ErrNoProvider
		}
		return nil, err
	}
	return p.Ingest(ctx, document, ownerID)
}
