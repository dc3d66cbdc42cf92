package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/andocmdo/eink-display-control-panel/dashboard"
	"github.com/andocmdo/eink-display-control-panel/db"
	"github.com/andocmdo/eink-display-control-panel/display"
	"github.com/andocmdo/eink-display-control-panel/log"
	"github.com/andocmdo/eink-display-control-panel/notifications"
	"github.com/andocmdo/eink-display-control-panel/refresh"
	"github.com/andocmdo/eink-display-control-panel/store"
	"github.com/andocmdo/eink-display-control-panel/watch"
	"github.com/andocmdo/eink-display-control-panel/workers/scheduler"
)

// NotificationStreamPath is excluded from compression so events flush
const NotificationStreamPath = "/api/notifications/stream"

// Server owns and coordinates all application components
type Server struct {
	cfg *Config

	// Components (owned by server)
	database     *db.DB // nil with the file backend
	store        store.Store
	dashboard    *dashboard.Service
	refresher    *refresh.Refresher
	pipeline     *display.Pipeline
	notifService *notifications.Service
	watcher      *watch.Watcher // nil unless watching the data file
	scheduler    *scheduler.Worker

	// Shutdown context - cancelled when server is shutting down.
	// SSE handlers listen to this.
	shutdownCtx    context.Context
	shutdownCancel context.CancelFunc

	// HTTP
	router *gin.Engine
	http   *http.Server
}

// New creates a new server with all components initialized. Nothing runs
// until Start.
func New(cfg *Config) (*Server, error) {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		cfg:            cfg,
		shutdownCtx:    ctx,
		shutdownCancel: cancel,
	}

	// 1. Open the snapshot store
	if err := s.openStore(); err != nil {
		cancel()
		return nil, err
	}

	// 2. Create notifications service
	s.notifService = notifications.NewService()

	// 3. Value sources and services
	weather, err := cfg.WeatherSource()
	if err != nil {
		s.Close()
		return nil, err
	}
	prices, err := cfg.PriceSource()
	if err != nil {
		s.Close()
		return nil, err
	}

	s.dashboard = dashboard.NewService(s.store, cfg.ToLimits(), dashboard.WithNotifier(s.notifService))
	s.refresher = refresh.NewRefresher(s.store, prices, weather, cfg.LookupTimeout)
	s.pipeline = display.NewPipeline(cfg.ToDeviceConfig(), s.store)
	s.scheduler = scheduler.NewWorker(cfg.ToSchedulerConfig(), s.refresher, s.pipeline)

	// 4. Watch the data file for edits made outside the server
	if cfg.WatchDataFile && cfg.StoreBackend != "sqlite" {
		s.watcher = watch.NewWatcher(cfg.DataFile, watch.DefaultDebounceDelay)
	}

	// 5. Wire service connections
	s.connectServices()

	// 6. Setup HTTP router
	s.setupRouter()

	log.Info().
		Str("store", cfg.StoreBackend).
		Str("weather", cfg.WeatherProvider).
		Str("stocks", cfg.StockProvider).
		Msg("server initialized successfully")
	return s, nil
}

func (s *Server) openStore() error {
	switch s.cfg.StoreBackend {
	case "", "file":
		s.store = store.NewFileStore(s.cfg.DataFile)
		log.Info().Str("path", s.cfg.DataFile).Msg("using file store")
	case "sqlite":
		database, err := db.Open(s.cfg.ToDBConfig())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		s.database = database
		s.store = db.NewSnapshotStore(database)
		log.Info().Str("path", s.cfg.DatabasePath).Msg("using sqlite store")
	default:
		return fmt.Errorf("unknown store backend %q", s.cfg.StoreBackend)
	}
	return nil
}

// connectServices wires up event handlers between services
func (s *Server) connectServices() {
	s.refresher.SetNotifier(s.notifService)
	s.pipeline.SetNotifier(s.notifService)

	// Watch → UI: edits by dashctl or by hand
	if s.watcher != nil {
		s.watcher.SetChangeHandler(func(path string) {
			s.notifService.NotifyDashboardChanged(notifications.SectionExternal)
		})
	}
}

// setupRouter creates and configures the Gin router
func (s *Server) setupRouter() {
	if !s.cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	s.router = gin.New()

	// Middleware
	s.router.Use(gin.Recovery())
	s.router.Use(log.GinLogger())

	if !s.cfg.IsDevelopment() {
		s.router.Use(securityHeadersMiddleware())
	}

	// Gzip compression (skip SSE)
	s.router.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{
		NotificationStreamPath,
	})))

	s.router.SetTrustedProxies(nil)

	// Ignore .well-known requests
	s.router.GET("/.well-known/*path", func(c *gin.Context) {
		c.Status(http.StatusNotFound)
	})

	// Note: routes are registered by api.SetupRoutes to avoid import cycles
}

// securityHeadersMiddleware adds security headers for production
func securityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "SAMEORIGIN")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Next()
	}
}

// Start starts all background services and the HTTP server. It blocks
// until the server stops.
func (s *Server) Start() error {
	log.Info().Msg("starting server components")

	if s.watcher != nil {
		if err := s.watcher.Start(); err != nil {
			// the dashboard works without it
			log.Warn().Err(err).Str("path", s.cfg.DataFile).Msg("data file watcher not started")
			s.watcher = nil
		}
	}

	s.scheduler.Start()

	s.http = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          log.StdErrorLogger(), // Route Go's internal HTTP errors through zerolog
	}

	log.Info().
		Str("addr", s.http.Addr).
		Str("env", s.cfg.Env).
		Msg("HTTP server starting")

	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	log.Info().Msg("shutting down server")

	// 1. Signal long-running handlers (SSE) to stop
	s.shutdownCancel()

	// 2. Close notification service to cleanly disconnect SSE clients
	s.notifService.Shutdown()

	// 3. Stop accepting requests and wait for in-flight ones
	if s.http != nil {
		if err := s.http.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("http server shutdown error")
		}
	}

	// 4. Stop background services (in reverse order of startup)
	s.scheduler.Stop()
	if s.watcher != nil {
		s.watcher.Stop()
	}

	if err := s.Close(); err != nil {
		return err
	}

	log.Info().Msg("server shutdown complete")
	return nil
}

// Close releases the storage. It is all that is needed when the server was
// created for one-off commands and never started.
func (s *Server) Close() error {
	s.shutdownCancel()
	if s.database != nil {
		if err := s.database.Close(); err != nil {
			log.Error().Err(err).Msg("database close error")
			return err
		}
		s.database = nil
	}
	return nil
}

// Component accessors for API handlers
func (s *Server) Config() *Config                        { return s.cfg }
func (s *Server) Store() store.Store                     { return s.store }
func (s *Server) Dashboard() *dashboard.Service          { return s.dashboard }
func (s *Server) Refresher() *refresh.Refresher          { return s.refresher }
func (s *Server) Display() *display.Pipeline             { return s.pipeline }
func (s *Server) Notifications() *notifications.Service  { return s.notifService }
func (s *Server) Router() *gin.Engine                    { return s.router }
func (s *Server) ShutdownContext() context.Context       { return s.shutdownCtx }
