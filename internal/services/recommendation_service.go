// Package services wires the market simulator, price predictor and booking
// optimizer into one application-facing service.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"freightpulse/internal/booking"
	"freightpulse/internal/config"
	"freightpulse/internal/forecast"
	"freightpulse/internal/infrastructure"
	"freightpulse/internal/market"
)

// RecommendationService owns the full pipeline: it generates the market
// dataset, trains the per-carrier price models and serves forecasts and
// ranked booking recommendations.
type RecommendationService struct {
	cfg     config.SimulationConfig
	catalog *market.Catalog
	logger  *slog.Logger
	metrics *infrastructure.Metrics

	mu        sync.RWMutex
	ready     bool
	dataset   *market.Dataset
	predictor *forecast.Predictor
	optimizer *booking.Optimizer
	routeIDs  map[string]struct{}
}

// NewRecommendationService creates the service. Call Initialize before
// serving requests.
func NewRecommendationService(cfg config.SimulationConfig, logger *slog.Logger, metrics *infrastructure.Metrics) *RecommendationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecommendationService{
		cfg:     cfg,
		catalog: market.DefaultCatalog(),
		logger:  logger,
		metrics: metrics,
	}
}

// Initialize generates the simulated dataset and trains the price models.
// It is safe to call again to regenerate and retrain from scratch.
func (s *RecommendationService) Initialize(ctx context.Context) error {
	start, end, err := s.cfg.Window()
	if err != nil {
		return err
	}
	if !s.cfg.Reproducible() {
		s.logger.WarnContext(ctx, "running without a fixed seed, results are not reproducible")
	}

	rng := market.NewRand(s.cfg.Seed)
	policy := market.NewActivationPolicy(s.catalog, rng)

	simCfg := market.SimulatorConfig{
		Carriers:    market.DefaultCarriers(),
		Routes:      market.DefaultRoutes(),
		Adjustments: market.DefaultRouteAdjustments(),
		Params:      market.DefaultSimulationParams(),
	}
	simulator, err := market.NewSimulator(simCfg, policy, rng, s.logger)
	if err != nil {
		return fmt.Errorf("create simulator: %w", err)
	}

	dataset, err := simulator.GenerateRange(ctx, start, end)
	if err != nil {
		return fmt.Errorf("generate dataset: %w", err)
	}
	if s.metrics != nil {
		s.metrics.ObservationsGenerated.Add(float64(dataset.Len()))
	}

	predictor := forecast.NewPredictor(dataset, s.catalog, simCfg.Carriers, s.logger)
	trainStart := time.Now()
	if err := predictor.Train(ctx); err != nil {
		return fmt.Errorf("train models: %w", err)
	}
	if s.metrics != nil {
		s.metrics.TrainDurationSeconds.Set(time.Since(trainStart).Seconds())
	}

	optimizer, err := booking.NewOptimizer(predictor, dataset, booking.DefaultParams(), s.logger)
	if err != nil {
		return fmt.Errorf("create optimizer: %w", err)
	}

	routeIDs := make(map[string]struct{}, len(simCfg.Routes))
	for _, r := range simCfg.Routes {
		routeIDs[r.ID] = struct{}{}
	}

	s.mu.Lock()
	s.dataset = dataset
	s.predictor = predictor
	s.optimizer = optimizer
	s.routeIDs = routeIDs
	s.ready = true
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "recommendation service initialized",
		"observations", dataset.Len(),
		"start", start.Format(config.DateLayout),
		"end", end.Format(config.DateLayout),
		"seed", s.cfg.Seed,
	)
	return nil
}

// Ready reports whether the service has generated data and trained models.
func (s *RecommendationService) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// Dataset returns the generated dataset, or an error before Initialize.
func (s *RecommendationService) Dataset() (*market.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.ready {
		return nil, fmt.Errorf("service not initialized")
	}
	return s.dataset, nil
}

// KnownRoute reports whether the route ID exists in the simulated network.
func (s *RecommendationService) KnownRoute(routeID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.routeIDs[routeID]
	return ok
}

// Recommendations ranks booking candidates for a shipment ready on
// readyDate over the configured horizon.
func (s *RecommendationService) Recommendations(ctx context.Context, readyDate time.Time, routeID string, criterion booking.Criterion) ([]booking.Recommendation, error) {
	s.mu.RLock()
	optimizer, ready := s.optimizer, s.ready
	s.mu.RUnlock()
	if !ready {
		return nil, fmt.Errorf("service not initialized")
	}
	if !s.KnownRoute(routeID) {
		return nil, fmt.Errorf("unknown route %q", routeID)
	}

	recommendations, err := optimizer.Rank(ctx, readyDate, routeID, criterion, s.cfg.HorizonDays)
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.RankingsTotal.WithLabelValues(string(criterion)).Inc()
	}
	return recommendations, nil
}

// Forecast returns a recursive multi-day price forecast for one carrier on
// one route.
func (s *RecommendationService) Forecast(ctx context.Context, carrierID, routeID string, start time.Time, horizonDays int) ([]forecast.ForecastPoint, error) {
	s.mu.RLock()
	predictor, ready := s.predictor, s.ready
	s.mu.RUnlock()
	if !ready {
		return nil, fmt.Errorf("service not initialized")
	}
	if !s.KnownRoute(routeID) {
		return nil, fmt.Errorf("unknown route %q", routeID)
	}
	if horizonDays <= 0 {
		horizonDays = s.cfg.HorizonDays
	}
	return predictor.Forecast(carrierID, routeID, start, horizonDays)
}

// SeasonalSummaries builds per carrier/route seasonal forecast summaries
// for one target month.
func (s *RecommendationService) SeasonalSummaries(month time.Month, year int) ([]forecast.Summary, error) {
	dataset, err := s.Dataset()
	if err != nil {
		return nil, err
	}
	return forecast.SeasonalSummaries(dataset, month, year, forecast.DefaultTrendFactor)
}
