package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"freightpulse/internal/config"
	"freightpulse/internal/infrastructure"
	"freightpulse/internal/services"
)

// NewRouter assembles the HTTP API: middleware chain, health probes,
// Prometheus metrics and the /api/v1 recommendation routes.
func NewRouter(cfg *config.Config, service *services.RecommendationService, metrics *infrastructure.Metrics, logger *slog.Logger, version string) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(StructuredLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(Metrics(metrics))
	if cfg.Server.RateLimit.Enabled {
		r.Use(RateLimit(cfg.Server.RateLimit.RPS, cfg.Server.RateLimit.Burst))
	}

	health := NewHealthHandler(service, version)
	r.Get("/healthz", health.Liveness)
	r.Get("/readyz", health.Readiness)
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	recommendations := NewRecommendationHandler(service, logger)
	r.Route("/api/v1", func(r chi.Router) {
		recommendations.RegisterRoutes(r)
	})

	return r
}
