package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/utafrali/ReviewSentiment/internal/service"
	"github.com/utafrali/ReviewSentiment/pkg/health"
	"github.com/utafrali/ReviewSentiment/pkg/httputil"
	"github.com/utafrali/ReviewSentiment/pkg/middleware"
)

// RouterConfig carries the cross-cutting pieces mounted around the API.
type RouterConfig struct {
	ServiceName       string
	Version           string
	CORSOrigins       []string
	RequestTimeout    time.Duration
	PprofAllowedCIDRs []string
	// CacheMaxAge is advertised on single-review reads; zero disables it.
	CacheMaxAge time.Duration

	// Optional; nil disables the corresponding feature.
	Metrics        *middleware.HTTPMetrics
	MetricsHandler http.Handler
	RateLimiter    *middleware.RateLimiter
	TracingEnabled bool
}

// ServiceInfo is the body of GET /.
type ServiceInfo struct {
	Name      string   `json:"name"`
	Version   string   `json:"version"`
	Endpoints []string `json:"endpoints"`
}

var endpoints = []string{
	"POST /api/v1/reviews",
	"GET /api/v1/reviews",
	"GET /api/v1/reviews/{id}",
	"GET /api/v1/reviews/report",
	"GET /health",
	"GET /metrics",
}

// NewRouter creates a chi router with all review service routes registered.
func NewRouter(
	cfg RouterConfig,
	reviews *service.ReviewService,
	reports *service.ReportService,
	healthHandler *health.Handler,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	cors := middleware.DefaultCORSConfig()
	if len(cfg.CORSOrigins) > 0 {
		cors.AllowedOrigins = cfg.CORSOrigins
	}

	// Global middleware
	r.Use(middleware.CORS(cors))
	r.Use(middleware.Recovery(logger))
	if cfg.TracingEnabled {
		r.Use(middleware.Tracing(cfg.ServiceName))
	}
	r.Use(middleware.RequestLogging(logger, "/health", "/health/live", "/health/ready", "/metrics"))
	r.Use(middleware.RequestLogger(logger))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware)
	}
	if cfg.RequestTimeout > 0 {
		r.Use(chimw.Timeout(cfg.RequestTimeout))
	}

	// Health check endpoints
	r.Get("/health", healthHandler.LivenessHandler())
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}
	middleware.RegisterPprof(r, cfg.PprofAllowedCIDRs, logger)

	info := ServiceInfo{Name: cfg.ServiceName, Version: cfg.Version, Endpoints: endpoints}
	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, info)
	})

	// Review API endpoints
	reviewHandler := NewReviewHandler(reviews, reports, logger)

	r.Route("/api/v1/reviews", func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)

		r.Get("/", reviewHandler.ListReviews)
		r.Get("/report", reviewHandler.Report)
		r.Group(func(r chi.Router) {
			if cfg.CacheMaxAge > 0 {
				r.Use(middleware.CacheControl(cfg.CacheMaxAge))
			}
			r.Get("/{id}", reviewHandler.GetReview)
		})

		r.Group(func(r chi.Router) {
			if cfg.RateLimiter != nil {
				r.Use(cfg.RateLimiter.Middleware)
			}
			r.Post("/", reviewHandler.CreateReview)
		})
	})

	return r
}
