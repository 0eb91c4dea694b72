// Package server is the HTTP widget service: it hands out ephemeral chart
// handles, computes layouts for whatever width an embedded widget measures,
// serves the widget page, and relays the widget's selections to the host
// page over a websocket.
package server

import (
	"context"
	stderrors "errors"
	"net"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/stackbar/internal/config"
	"github.com/matzehuels/stackbar/pkg/cache"
	"github.com/matzehuels/stackbar/pkg/pipeline"
	"github.com/matzehuels/stackbar/pkg/session"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 4 << 20

// Server wires the chart store, the layout runner and the selection hub to
// a chi router.
type Server struct {
	cfg      *config.Config
	store    *session.Store
	runner   *pipeline.Runner
	hub      *Hub
	limiter  *RateLimiter
	upgrader websocket.Upgrader
	logger   *log.Logger
	router   chi.Router

	// caches opened by Open, closed by Close.
	caches []cache.Cache
}

// New builds a server around store and runner.
func New(cfg *config.Config, store *session.Store, runner *pipeline.Runner, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		cfg:    cfg,
		store:  store,
		runner: runner,
		hub:    NewHub(logger),
		logger: logger,
	}
	if cfg.RateLimit.Enabled {
		s.limiter = NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.BurstSize)
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
	s.router = s.routes()
	return s
}

// Open builds the caches named by cfg and a server on top of them.
// Chart handles always need a store, so the "none" backend only disables
// layout and artifact caching.
func Open(ctx context.Context, cfg *config.Config, logger *log.Logger) (*Server, error) {
	var layouts, handles cache.Cache
	switch cfg.Cache.Backend {
	case config.CacheRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisOptions{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})
		if err != nil {
			return nil, err
		}
		layouts, handles = rc, rc
	case config.CacheNone:
		layouts, handles = cache.NewNullCache(), cache.NewMemoryCache()
	default:
		mc := cache.NewMemoryCache()
		layouts, handles = mc, mc
	}

	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), "stackbar:")
	store := session.NewStore(handles, keyer, cfg.Cache.ChartTTL)
	runner := pipeline.NewRunner(layouts, keyer, logger)
	s := New(cfg, store, runner, logger)
	s.caches = []cache.Cache{layouts}
	if handles != layouts {
		s.caches = append(s.caches, handles)
	}
	return s, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// Hub returns the selection hub.
func (s *Server) Hub() *Hub { return s.hub }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(RequestID)
	r.Use(RequestLogger(s.logger))
	r.Use(s.Recover)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", RequestIDHeader},
		ExposedHeaders:   []string{RequestIDHeader, "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	if s.limiter != nil {
		r.Use(s.rateLimit(s.limiter))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, r, errNoRoute(r))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, r, errNoRoute(r))
	})

	r.Get("/health", s.handleHealth)
	r.Get("/version", s.handleVersion)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/layout", s.handleLayout)
		r.Route("/charts", func(r chi.Router) {
			r.Post("/", s.handleCreateChart)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetChart)
				r.Delete("/", s.handleDeleteChart)
				r.Get("/layout", s.handleChartLayout)
				r.Post("/selections", s.handleSelection)
				r.Get("/events", s.handleEvents)
			})
		})
	})

	r.Get("/widget/{id}", s.handleWidget)
	return r
}

// Background runs the hub and the rate limiter sweeper until ctx is done.
func (s *Server) Background(ctx context.Context) {
	if s.limiter != nil {
		go s.limiter.Run(ctx)
	}
	s.hub.Run(ctx)
}

// Run serves on cfg.Server.Addr until ctx is done, then shuts down
// gracefully within the configured timeout.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Server.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.Background(gctx)
		return nil
	})
	g.Go(func() error {
		s.logger.Info("listening", "addr", ln.Addr().String(), "cache", s.cfg.Cache.Backend)
		if err := srv.Serve(ln); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("shutting down", "timeout", s.cfg.Server.ShutdownTimeout)
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// Close releases the caches opened by [Open].
func (s *Server) Close() error {
	var errs []error
	for _, c := range s.caches {
		errs = append(errs, c.Close())
	}
	s.caches = nil
	return stderrors.Join(errs...)
}
