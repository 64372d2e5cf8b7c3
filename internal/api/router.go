// Package api provides the HTTP API for JamRoute.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/jamroute/jamroute/internal/api/handler"
	"github.com/jamroute/jamroute/internal/api/middleware"
	"github.com/jamroute/jamroute/internal/api/models"
	"github.com/jamroute/jamroute/internal/geo"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version     string
	BuildTime   string
	Logger      zerolog.Logger
	ServiceName string
	Metrics     *middleware.Metrics

	// Evaluator runs the congestion pipeline.
	Evaluator handler.Evaluator

	// Ready gates the readiness endpoint and the pipeline subsystem status.
	Ready func() bool

	// Bottlenecks is the static table served by the metadata surface.
	Bottlenecks []geo.Bottleneck

	// ProviderStatus reports external provider state, nil for none.
	ProviderStatus func() []models.ProviderStatus
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "jamroute-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)            // Generate/propagate request ID first
	r.Use(middleware.Tracing(serviceName)) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))   // Structured logging
	r.Use(middleware.Recovery(cfg.Logger)) // Panic recovery
	r.Use(chimiddleware.RealIP)            // Real IP extraction
	r.Use(middleware.SecurityHeaders)      // Security headers (HSTS, CSP, etc.)
	r.Use(middleware.RequireTLS)           // TLS enforcement (enabled via REQUIRE_TLS=true)
	r.Use(middleware.ContentTypeJSON)      // JSON content type
	r.Use(middleware.RequireJSON)          // Reject non-JSON bodies early

	congestionHandler := handler.NewCongestionHandler(cfg.Evaluator, cfg.Logger)
	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.Ready, cfg.ProviderStatus)
	metadataHandler := handler.NewMetadataHandler(cfg.Bottlenecks)

	expensiveRateLimit := middleware.RateLimitByIP(middleware.ExpensiveRateLimit) // 30 req/min
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit)   // 100 req/min

	// API v1 routes
	r.Route("/v1", func(r chi.Router) {
		// Ops endpoints (public)
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			r.Get("/status", opsHandler.SystemStatus)
		})

		// Metadata endpoints (public) - standard rate limiting
		r.Route("/metadata", func(r chi.Router) {
			r.Use(standardRateLimit)
			r.Get("/bottlenecks", metadataHandler.ListBottlenecks)
			r.Get("/enums", metadataHandler.GetEnums)
		})

		// Evaluation endpoint - expensive compute, strict rate limiting
		r.With(expensiveRateLimit).Post("/congestion:evaluate", congestionHandler.Evaluate)
	})

	return r
}
