package infrastructure

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the application's Prometheus collectors.
type Metrics struct {
	Registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	ObservationsGenerated prometheus.Counter
	TrainDurationSeconds  prometheus.Gauge
	RankingsTotal         *prometheus.CounterVec
}

// NewMetrics builds and registers all collectors on a fresh registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		Registry: registry,
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "freightpulse_http_requests_total",
			Help: "HTTP requests by route and status code.",
		}, []string{"route", "status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "freightpulse_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		ObservationsGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "freightpulse_observations_generated_total",
			Help: "Market observations generated since process start.",
		}),
		TrainDurationSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "freightpulse_model_train_duration_seconds",
			Help: "Duration of the most recent model training run.",
		}),
		RankingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "freightpulse_rankings_total",
			Help: "Booking rankings served by criterion.",
		}, []string{"criterion"}),
	}

	registry.MustRegister(
		m.RequestsTotal,
		m.RequestDuration,
		m.ObservationsGenerated,
		m.TrainDurationSeconds,
		m.RankingsTotal,
	)
	return m
}
