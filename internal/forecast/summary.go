package forecast

import (
	"fmt"
	"math"
	"time"

	"freightpulse/internal/market"
)

// Summary is a seasonal forecast for one (carrier, route) pair and target
// month, derived from the historical observations of that calendar month
// across all simulated years. The confidence band is the forecast plus or
// minus one historical standard deviation.
type Summary struct {
	CarrierID      string     `json:"carrier_id"`
	RouteID        string     `json:"route_id"`
	Month          time.Month `json:"month"`
	Year           int        `json:"year"`
	ForecastPrice  float64    `json:"forecast_price"`
	ConfidenceMin  float64    `json:"confidence_min"`
	ConfidenceMax  float64    `json:"confidence_max"`
	ForecastOnTime float64    `json:"forecast_on_time"`
	SampleCount    int        `json:"basis_sample_count"`
}

// DefaultTrendFactor is the year-over-year price drift applied to seasonal
// forecasts.
const DefaultTrendFactor = 1.02

// SeasonalSummaries forecasts the target month for every (carrier, route)
// pair in the dataset. Pairs with no observations in that month are
// skipped. Results are ordered by carrier then route.
func SeasonalSummaries(dataset *market.Dataset, month time.Month, year int, trendFactor float64) ([]Summary, error) {
	if month < time.January || month > time.December {
		return nil, fmt.Errorf("invalid target month %d", month)
	}
	if trendFactor <= 0 {
		trendFactor = DefaultTrendFactor
	}

	var summaries []Summary
	for _, carrierID := range dataset.CarrierIDs() {
		for _, routeID := range dataset.RouteIDs() {
			slice := dataset.MonthSlice(carrierID, routeID, month)
			if len(slice) == 0 {
				continue
			}

			prices := make([]float64, len(slice))
			onTimes := make([]float64, len(slice))
			for i, o := range slice {
				prices[i] = o.Price
				onTimes[i] = o.OnTimePct
			}
			priceMean, priceStd := meanStd(prices)
			onTimeMean, _ := meanStd(onTimes)

			price := market.Round2(priceMean * trendFactor)
			summaries = append(summaries, Summary{
				CarrierID:      carrierID,
				RouteID:        routeID,
				Month:          month,
				Year:           year,
				ForecastPrice:  price,
				ConfidenceMin:  market.Round2(price - priceStd),
				ConfidenceMax:  market.Round2(price + priceStd),
				ForecastOnTime: market.Round1(onTimeMean),
				SampleCount:    len(slice),
			})
		}
	}
	return summaries, nil
}

func meanStd(values []float64) (mean, std float64) {
	if len(values) == 0 {
		return 0, 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	mean = sum / float64(len(values))

	sumSquared := 0.0
	for _, v := range values {
		sumSquared += (v - mean) * (v - mean)
	}
	std = math.Sqrt(sumSquared / float64(len(values)))
	return mean, std
}
