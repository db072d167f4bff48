// Package booking ranks carrier and booking-date candidates against a
// selectable optimization criterion using forecast prices and historical
// on-time statistics.
package booking

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"freightpulse/internal/forecast"
	"freightpulse/internal/market"
)

// Criterion selects what a ranking optimizes for.
type Criterion string

const (
	// CriterionPrice ranks by predicted price, lower is better.
	CriterionPrice Criterion = "price"
	// CriterionOnTime ranks by historical mean on-time percentage.
	CriterionOnTime Criterion = "ontime"
	// CriterionTotalCost ranks by the estimated total cost of ownership:
	// predicted price plus an expected-lateness penalty.
	CriterionTotalCost Criterion = "tco"
)

// ParseCriterion validates a criterion string.
func ParseCriterion(s string) (Criterion, error) {
	switch Criterion(s) {
	case CriterionPrice, CriterionOnTime, CriterionTotalCost:
		return Criterion(s), nil
	}
	return "", fmt.Errorf("unknown criterion %q (use price, ontime or tco)", s)
}

// Params are the optimizer's configuration constants.
type Params struct {
	// TopK is the maximum number of recommendations returned.
	TopK int `json:"top_k" yaml:"top_k"`
	// AvgTransitDays is the assumed door-to-door transit time used to turn
	// on-time shortfall into expected late days.
	AvgTransitDays float64 `json:"avg_transit_days" yaml:"avg_transit_days"`
	// PenaltyPerLateDay is the cost attributed to each expected late day.
	PenaltyPerLateDay float64 `json:"penalty_per_late_day" yaml:"penalty_per_late_day"`
	// PriceRefMax and TotalCostRefMax are the reference maxima used to
	// normalize prices and TCO estimates into scores.
	PriceRefMax     float64 `json:"price_ref_max" yaml:"price_ref_max"`
	TotalCostRefMax float64 `json:"total_cost_ref_max" yaml:"total_cost_ref_max"`
}

// IsValid checks if the optimizer parameters are usable.
func (p Params) IsValid() bool {
	return p.TopK > 0 && p.AvgTransitDays > 0 && p.PenaltyPerLateDay >= 0 &&
		p.PriceRefMax > 0 && p.TotalCostRefMax > 0
}

// DefaultParams returns the calibrated default optimizer parameters.
func DefaultParams() Params {
	return Params{
		TopK:              3,
		AvgTransitDays:    12,
		PenaltyPerLateDay: 100,
		PriceRefMax:       3000,
		TotalCostRefMax:   4000,
	}
}

// Recommendation is one ranked booking candidate. Recommendations are
// created fresh per call and immutable once returned.
type Recommendation struct {
	BookingDate        time.Time `json:"booking_date"`
	CarrierID          string    `json:"carrier_id"`
	PredictedPrice     float64   `json:"predicted_price"`
	HistoricalOnTime   float64   `json:"historical_on_time_pct"`
	EstimatedTotalCost float64   `json:"estimated_total_cost"`
	Score              float64   `json:"score"`
	Rationale          string    `json:"rationale"`
}

// Optimizer scores carrier x date candidates from predictor output plus
// historical on-time statistics.
type Optimizer struct {
	predictor *forecast.Predictor
	dataset   *market.Dataset
	params    Params
	logger    *slog.Logger
}

// NewOptimizer creates a booking optimizer.
func NewOptimizer(predictor *forecast.Predictor, dataset *market.Dataset, params Params, logger *slog.Logger) (*Optimizer, error) {
	if !params.IsValid() {
		return nil, fmt.Errorf("invalid optimizer parameters")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Optimizer{
		predictor: predictor,
		dataset:   dataset,
		params:    params,
		logger:    logger,
	}, nil
}

// EstimatedTotalCost computes predicted price plus the expected-lateness
// penalty derived from historical on-time performance.
func (o *Optimizer) EstimatedTotalCost(price, onTimePct float64) float64 {
	expectedLateDays := (100 - onTimePct) / 100 * o.params.AvgTransitDays
	return price + expectedLateDays*o.params.PenaltyPerLateDay
}

// Rank scores every carrier on every forecast day in
// [readyDate, readyDate+horizonDays) and returns the top-K candidates,
// descending by score. Ties break by earliest booking date, then carrier
// ID, so rankings are deterministic. Fewer than K candidates is valid;
// the result is never padded.
func (o *Optimizer) Rank(ctx context.Context, readyDate time.Time, routeID string, criterion Criterion, horizonDays int) ([]Recommendation, error) {
	if _, err := ParseCriterion(string(criterion)); err != nil {
		return nil, err
	}
	if horizonDays <= 0 {
		return nil, fmt.Errorf("non-positive horizon %d", horizonDays)
	}

	o.logger.InfoContext(ctx, "ranking booking candidates",
		"ready_date", readyDate.Format("2006-01-02"),
		"route", routeID,
		"criterion", string(criterion),
		"horizon_days", horizonDays,
	)

	forecasts, err := o.predictor.ForecastAll(ctx, routeID, readyDate, horizonDays)
	if err != nil {
		return nil, fmt.Errorf("forecast candidates: %w", err)
	}

	var candidates []Recommendation
	for _, carrierID := range o.dataset.CarrierIDs() {
		stats, err := o.dataset.StatsForCarrier(carrierID)
		if err != nil {
			return nil, fmt.Errorf("historical stats: %w", err)
		}
		onTime := market.Round1(stats.OnTimeMean)

		for _, point := range forecasts[carrierID] {
			tco := market.Round2(o.EstimatedTotalCost(point.Price, onTime))
			candidates = append(candidates, Recommendation{
				BookingDate:        point.Date,
				CarrierID:          carrierID,
				PredictedPrice:     point.Price,
				HistoricalOnTime:   onTime,
				EstimatedTotalCost: tco,
				Score:              o.score(criterion, point.Price, onTime, tco),
				Rationale:          o.rationale(criterion, point.Price, onTime),
			})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		if !candidates[i].BookingDate.Equal(candidates[j].BookingDate) {
			return candidates[i].BookingDate.Before(candidates[j].BookingDate)
		}
		return candidates[i].CarrierID < candidates[j].CarrierID
	})

	if len(candidates) > o.params.TopK {
		candidates = candidates[:o.params.TopK]
	}
	return candidates, nil
}

// score maps a candidate onto a single comparable number per criterion.
// Price and TCO are linearly normalized against their reference maxima so
// that cheaper candidates score higher; on-time uses the historical
// percentage directly.
func (o *Optimizer) score(criterion Criterion, price, onTime, tco float64) float64 {
	var s float64
	switch criterion {
	case CriterionPrice:
		s = 100 - price/o.params.PriceRefMax*100
	case CriterionOnTime:
		s = onTime
	case CriterionTotalCost:
		s = 100 - tco/o.params.TotalCostRefMax*100
	}
	return market.Round2(s)
}

// Rationale threshold bands.
const (
	priceBandBudget    = 2100
	priceBandMid       = 2200
	onTimeBandHigh     = 92
	onTimeBandReliable = 90
)

func (o *Optimizer) rationale(criterion Criterion, price, onTime float64) string {
	switch criterion {
	case CriterionPrice:
		switch {
		case price < priceBandBudget:
			return "below-average price"
		case price < priceBandMid:
			return "average price"
		default:
			return "premium price"
		}
	case CriterionOnTime:
		switch {
		case onTime > onTimeBandHigh:
			return "highly reliable (>92% on-time)"
		case onTime > onTimeBandReliable:
			return "reliable (90-92% on-time)"
		default:
			return "less reliable (<90% on-time)"
		}
	case CriterionTotalCost:
		return "best value (price + reliability)"
	}
	return "alternative"
}
