// Package api provides the HTTP API server and handlers for Rootmarks.
package api

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/rootmarks/rootmarks-server/internal/auth"
	"github.com/rootmarks/rootmarks-server/internal/metrics"
	"github.com/rootmarks/rootmarks-server/internal/ratelimit"
	"github.com/rootmarks/rootmarks-server/internal/sse"
	"github.com/rootmarks/rootmarks-server/internal/store"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	store      store.Store
	services   *Services
	tokens     *auth.TokenService
	sseManager *sse.Manager
	sseHandler *sse.Handler
	metrics    *metrics.Metrics
	limiter    *ratelimit.KeyedRateLimiter
	router     *chi.Mux
	api        huma.API
	logger     *slog.Logger

	// Users whose profile row is known to exist.
	knownProfiles sync.Map

	now func() time.Time
}

// NewServer creates a new HTTP server with all routes configured. limiter may
// be nil to disable rate limiting.
func NewServer(
	st store.Store,
	services *Services,
	tokens *auth.TokenService,
	sseManager *sse.Manager,
	m *metrics.Metrics,
	limiter *ratelimit.KeyedRateLimiter,
	opts Options,
	logger *slog.Logger,
) *Server {
	s := &Server{
		store:      st,
		services:   services,
		tokens:     tokens,
		sseManager: sseManager,
		sseHandler: sse.NewHandler(sseManager, logger),
		metrics:    m,
		limiter:    limiter,
		router:     chi.NewRouter(),
		logger:     logger,
		now:        time.Now,
	}

	s.setupMiddleware(opts)

	humaConfig := huma.DefaultConfig("Rootmarks API", opts.version())
	humaConfig.Info.Description = "Gamified reading tracker: books, XP, badges and plant scans."
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)

	s.api = humachi.New(s.router, humaConfig)
	RegisterErrorHandler()

	s.setupRoutes()

	return s
}

// Options holds the HTTP-facing settings NewServer needs from config.
type Options struct {
	AllowedOrigins []string
	Version        string
}

func (o Options) version() string {
	if o.Version == "" {
		return "1.0.0"
	}
	return o.Version
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API exposes the huma API, used by tests and the OpenAPI dump.
func (s *Server) API() huma.API {
	return s.api
}

// setupMiddleware configures the middleware stack. It must run before any
// route is registered.
func (s *Server) setupMiddleware(opts Options) {
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.logger, s.metrics))
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "If-None-Match"},
		ExposedHeaders:   []string{"ETag", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	s.router.Use(middleware.Compress(5))
}

// setupRoutes registers huma operations and the handful of routes that write
// to the response directly (streams, binary bodies, metrics).
func (s *Server) setupRoutes() {
	s.registerHealthRoutes()
	s.registerReferenceRoutes()
	s.registerProfileRoutes()
	s.registerBadgeRoutes()
	s.registerBookRoutes()
	s.registerLookupRoutes()
	s.registerPlantRoutes()

	s.router.Handle("/metrics", s.metrics.Handler())

	s.router.Group(func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Get("/api/v1/events", s.sseHandler.ServeHTTP)
		r.Get("/plant-scans/{id}/image", s.handlePlantScanImage)
		r.With(s.rateLimit).Post("/api/v1/plant-scans", s.handleCreatePlantScan)
	})
}
