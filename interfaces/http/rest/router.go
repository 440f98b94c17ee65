package rest

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"mindgraph/interfaces/http/rest/handlers"
	"mindgraph/interfaces/http/rest/middleware"
	"mindgraph/pkg/errors"
)

// RouterConfig holds the HTTP surface switches
type RouterConfig struct {
	EnableCORS     bool
	AllowedOrigins []string

	// RateLimit is the number of requests a client may make per RateWindow.
	// Zero disables limiting.
	RateLimit  int
	RateWindow time.Duration
}

// Router creates and configures the HTTP router
type Router struct {
	deps    handlers.Deps
	cfg     RouterConfig
	metrics middleware.RequestRecorder
	expose  http.Handler
	logger  *zap.Logger
}

// NewRouter creates a new router instance. metrics and metricsHandler may be
// nil when metrics are disabled.
func NewRouter(deps handlers.Deps, cfg RouterConfig, metrics middleware.RequestRecorder, metricsHandler http.Handler) *Router {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
		deps.Logger = logger
	}
	if deps.Errors == nil {
		deps.Errors = errors.NewErrorHandler(logger, false)
	}
	return &Router{
		deps:    deps,
		cfg:     cfg,
		metrics: metrics,
		expose:  metricsHandler,
		logger:  logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(rt.deps.Errors.Middleware)
	router.Use(middleware.Logger(rt.logger))
	if rt.metrics != nil {
		router.Use(middleware.Metrics(rt.metrics))
	}
	if rt.cfg.RateLimit > 0 {
		window := rt.cfg.RateWindow
		if window <= 0 {
			window = time.Minute
		}
		limiter := middleware.NewSlidingWindowLimiter(rt.cfg.RateLimit, window)
		router.Use(middleware.RateLimit(limiter, rt.deps.Errors))
	}

	if rt.cfg.EnableCORS {
		origins := rt.cfg.AllowedOrigins
		if len(origins) == 0 {
			origins = []string{"http://localhost:3000", "http://localhost:5173"}
		}
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   origins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	router.Get("/health", rt.healthCheck)
	if rt.expose != nil {
		router.Handle("/metrics", rt.expose)
	}

	maps := handlers.NewMapHandler(rt.deps)
	nodes := handlers.NewNodeHandler(rt.deps)
	edges := handlers.NewEdgeHandler(rt.deps)
	intents := handlers.NewIntentHandler(rt.deps)
	documents := handlers.NewDocumentHandler(rt.deps)

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/map", func(r chi.Router) {
			r.Get("/", maps.GetMap)
			r.Post("/", maps.CreateMap)
			r.Put("/", maps.ImportMap)
			r.Patch("/", maps.RenameMap)
			r.Post("/undo", maps.Undo)
			r.Post("/redo", maps.Redo)
			r.Put("/layout-direction", maps.SetLayoutDirection)
			r.Get("/history", maps.History)
			r.Get("/cycles", maps.Cycles)
		})

		r.Route("/nodes", func(r chi.Router) {
			r.Post("/", nodes.CreateNode)
			r.Put("/positions", nodes.UpdatePositions)
			r.Patch("/{nodeID}", nodes.UpdateNode)
			r.Delete("/{nodeID}", nodes.DeleteNode)
			r.Get("/{nodeID}/relations", nodes.Relations)
			r.Get("/{nodeID}/nearest", nodes.Nearest)
		})

		r.Route("/edges", func(r chi.Router) {
			r.Post("/", edges.CreateEdge)
			r.Patch("/{edgeID}", edges.UpdateEdge)
			r.Delete("/{edgeID}", edges.DeleteEdge)
		})

		r.Post("/layout", intents.Layout)
		r.Post("/intents", intents.Intent)

		r.Route("/documents", func(r chi.Router) {
			r.Get("/", documents.List)
			r.Post("/", documents.Save)
			r.Get("/{fileID}", documents.Open)
			r.Delete("/{fileID}", documents.Delete)
		})
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}
