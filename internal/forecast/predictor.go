package forecast

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"freightpulse/internal/market"
)

// ForecastPoint is one predicted price for a carrier/route on a date.
type ForecastPoint struct {
	Date  time.Time `json:"date"`
	Price float64   `json:"predicted_price"`
}

// Predictor owns one regression model per carrier, trained on engineered
// features from the dataset. Models are replaced, not mutated, when the
// predictor is retrained.
type Predictor struct {
	dataset  *market.Dataset
	carriers map[string]market.CarrierProfile
	builder  *FeatureBuilder
	logger   *slog.Logger

	// maxConcurrency bounds parallel per-carrier training.
	maxConcurrency int

	mu     sync.RWMutex
	models map[string]*linearModel
}

// NewPredictor creates an untrained predictor for the given carriers.
func NewPredictor(dataset *market.Dataset, catalog *market.Catalog, carriers []market.CarrierProfile, logger *slog.Logger) *Predictor {
	if logger == nil {
		logger = slog.Default()
	}
	byID := make(map[string]market.CarrierProfile, len(carriers))
	for _, cp := range carriers {
		byID[cp.ID] = cp
	}
	return &Predictor{
		dataset:        dataset,
		carriers:       byID,
		builder:        NewFeatureBuilder(catalog),
		logger:         logger,
		maxConcurrency: 4,
		models:         make(map[string]*linearModel),
	}
}

// Train fits one model per carrier. Carriers train independently, so they
// run concurrently; results do not depend on completion order.
func (p *Predictor) Train(ctx context.Context) error {
	start := time.Now()
	ids := p.dataset.CarrierIDs()
	p.logger.InfoContext(ctx, "training price models",
		"carriers", len(ids),
		"observations", p.dataset.Len(),
	)

	models := make(map[string]*linearModel, len(ids))
	var modelsMu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.maxConcurrency)
	for _, carrierID := range ids {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			model, err := p.trainCarrier(carrierID)
			if err != nil {
				return fmt.Errorf("train carrier %q: %w", carrierID, err)
			}
			p.logger.DebugContext(gctx, "trained carrier model",
				"carrier", carrierID,
				"r2", model.r2,
			)
			modelsMu.Lock()
			models[carrierID] = model
			modelsMu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	p.mu.Lock()
	p.models = models
	p.mu.Unlock()

	p.logger.InfoContext(ctx, "model training completed",
		"carriers", len(models),
		"duration", time.Since(start),
	)
	return nil
}

// trainCarrier builds feature rows for every historical observation of one
// carrier, per (carrier, route) series so lags never cross routes, pooled
// into a single fit.
func (p *Predictor) trainCarrier(carrierID string) (*linearModel, error) {
	var rows [][]float64
	var targets []float64

	for _, routeID := range p.dataset.RouteIDs() {
		group := p.dataset.Group(carrierID, routeID)
		for i, o := range group {
			lag1 := lagOrCurrent(group, i, 1)
			lag7 := lagOrCurrent(group, i, 7)
			lag30 := lagOrCurrent(group, i, 30)
			rows = append(rows, p.builder.Build(lag1, lag7, lag30, o.Month, o.DayOfWeek))
			targets = append(targets, o.Price)
		}
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no observations")
	}

	return fitOLS(rows, targets)
}

// lagOrCurrent returns the price k observations earlier in the series,
// falling back to the current price when the history is shorter than k.
func lagOrCurrent(group []market.Observation, i, k int) float64 {
	if i-k >= 0 {
		return group[i-k].Price
	}
	return group[i].Price
}

// Predict applies one carrier's trained model to a feature vector.
func (p *Predictor) Predict(carrierID string, features []float64) (float64, error) {
	p.mu.RLock()
	model, ok := p.models[carrierID]
	p.mu.RUnlock()
	if !ok {
		return 0, fmt.Errorf("no trained model for carrier %q", carrierID)
	}
	if len(features) != p.builder.Size() {
		return 0, fmt.Errorf("feature vector size %d, want %d", len(features), p.builder.Size())
	}
	return model.predict(features), nil
}

// Forecast produces a date-ordered multi-day forecast for one carrier and
// route by recursive prediction: each day's predicted price enters the lag
// buffer and becomes an input for the next day.
//
// When the (carrier, route) pair has no history, the lag buffer is seeded
// from the carrier's base cost rather than failing.
func (p *Predictor) Forecast(carrierID, routeID string, start time.Time, horizonDays int) ([]ForecastPoint, error) {
	if horizonDays <= 0 {
		return nil, fmt.Errorf("non-positive forecast horizon %d", horizonDays)
	}
	carrier, ok := p.carriers[carrierID]
	if !ok {
		return nil, fmt.Errorf("unknown carrier %q", carrierID)
	}
	p.mu.RLock()
	model, ok := p.models[carrierID]
	p.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no trained model for carrier %q", carrierID)
	}

	history := p.dataset.LastBefore(carrierID, routeID, start, LagBufferSize)
	buffer := newLagBuffer(history, carrier.BaseCost)

	points := make([]ForecastPoint, 0, horizonDays)
	date := start
	for day := 0; day < horizonDays; day++ {
		features := p.builder.Build(
			buffer.lag(1), buffer.lag(7), buffer.lag(30),
			date.Month(), date.Weekday(),
		)
		price := model.predict(features)
		buffer.push(price)
		points = append(points, ForecastPoint{Date: date, Price: market.Round2(price)})
		date = date.AddDate(0, 0, 1)
	}
	return points, nil
}

// ForecastAll forecasts every carrier on one route concurrently and
// returns the results keyed by carrier ID. Per-carrier sequences keep
// their internal ordering; no ordering is guaranteed across carriers.
func (p *Predictor) ForecastAll(ctx context.Context, routeID string, start time.Time, horizonDays int) (map[string][]ForecastPoint, error) {
	ids := p.dataset.CarrierIDs()
	results := make(map[string][]ForecastPoint, len(ids))
	var mu sync.Mutex

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(p.maxConcurrency)
	for _, carrierID := range ids {
		g.Go(func() error {
			points, err := p.Forecast(carrierID, routeID, start, horizonDays)
			if err != nil {
				return fmt.Errorf("forecast carrier %q: %w", carrierID, err)
			}
			mu.Lock()
			results[carrierID] = points
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
