package booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"freightpulse/internal/forecast"
	"freightpulse/internal/market"
)

type carrierFixture struct {
	id     string
	price  float64
	onTime float64
}

// trainedFixture builds a constant-price dataset for the given carriers and
// returns a trained predictor over it.
func trainedFixture(t *testing.T, fixtures []carrierFixture) (*forecast.Predictor, *market.Dataset) {
	t.Helper()

	start := time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)
	var observations []market.Observation
	var carriers []market.CarrierProfile
	for _, f := range fixtures {
		carriers = append(carriers, market.CarrierProfile{
			ID: f.id, BaseCost: f.price, BaseOnTime: f.onTime, OnTimeStd: 1,
		})
		for i := 0; i < 90; i++ {
			d := start.AddDate(0, 0, i)
			observations = append(observations, market.Observation{
				Date: d, CarrierID: f.id, RouteID: "R",
				Price: f.price, OnTimePct: f.onTime, ShipmentCount: 1,
				Year: d.Year(), Month: d.Month(), DayOfWeek: d.Weekday(),
			})
		}
	}

	dataset := market.NewDataset(observations)
	predictor := forecast.NewPredictor(dataset, market.DefaultCatalog(), carriers, nil)
	require.NoError(t, predictor.Train(context.Background()))
	return predictor, dataset
}

func TestParseCriterion(t *testing.T) {
	for _, valid := range []string{"price", "ontime", "tco"} {
		c, err := ParseCriterion(valid)
		require.NoError(t, err)
		assert.Equal(t, Criterion(valid), c)
	}

	_, err := ParseCriterion("speed")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown criterion")
}

func TestDefaultParamsValid(t *testing.T) {
	assert.True(t, DefaultParams().IsValid())
}

func TestNewOptimizerRejectsInvalidParams(t *testing.T) {
	predictor, dataset := trainedFixture(t, []carrierFixture{{"Line A", 2000, 90}})

	params := DefaultParams()
	params.TopK = 0
	_, err := NewOptimizer(predictor, dataset, params, nil)
	require.Error(t, err)
}

func TestEstimatedTotalCost(t *testing.T) {
	predictor, dataset := trainedFixture(t, []carrierFixture{{"Line A", 2000, 90}})
	optimizer, err := NewOptimizer(predictor, dataset, DefaultParams(), nil)
	require.NoError(t, err)

	// 10% late shipments x 12 transit days x 100 per late day.
	assert.InDelta(t, 2120, optimizer.EstimatedTotalCost(2000, 90), 0.001)
	assert.InDelta(t, 2000, optimizer.EstimatedTotalCost(2000, 100), 0.001)
}

func TestRankByPricePrefersCheapestCarrier(t *testing.T) {
	predictor, dataset := trainedFixture(t, []carrierFixture{
		{"Premium Line", 2400, 95},
		{"Budget Line", 1600, 82},
		{"Middle Line", 2000, 90},
	})
	optimizer, err := NewOptimizer(predictor, dataset, DefaultParams(), nil)
	require.NoError(t, err)

	ready := time.Date(2020, time.April, 1, 0, 0, 0, 0, time.UTC)
	recommendations, err := optimizer.Rank(context.Background(), ready, "R", CriterionPrice, 14)
	require.NoError(t, err)
	require.Len(t, recommendations, 3)

	// Constant forecasts give the cheapest carrier an identical winning
	// score on every day; ties resolve to the earliest dates.
	for i, r := range recommendations {
		assert.Equal(t, "Budget Line", r.CarrierID)
		assert.Equal(t, ready.AddDate(0, 0, i), r.BookingDate)
	}
	assert.Contains(t, recommendations[0].Rationale, "below-average price")
}

func TestRankByOnTimePrefersReliableCarrier(t *testing.T) {
	predictor, dataset := trainedFixture(t, []carrierFixture{
		{"Premium Line", 2400, 95},
		{"Budget Line", 1600, 82},
	})
	optimizer, err := NewOptimizer(predictor, dataset, DefaultParams(), nil)
	require.NoError(t, err)

	ready := time.Date(2020, time.April, 1, 0, 0, 0, 0, time.UTC)
	recommendations, err := optimizer.Rank(context.Background(), ready, "R", CriterionOnTime, 14)
	require.NoError(t, err)
	require.Len(t, recommendations, 3)

	for _, r := range recommendations {
		assert.Equal(t, "Premium Line", r.CarrierID)
		assert.InDelta(t, 95, r.HistoricalOnTime, 0.001)
		assert.InDelta(t, 95, r.Score, 0.001)
	}
	assert.Contains(t, recommendations[0].Rationale, "highly reliable")
}

func TestRankByTotalCostBalancesPriceAndReliability(t *testing.T) {
	// Cheap-but-late vs pricier-but-punctual: the punctual carrier's lower
	// lateness penalty must not fully offset a 800 price gap, so the cheap
	// carrier still wins on TCO.
	predictor, dataset := trainedFixture(t, []carrierFixture{
		{"Premium Line", 2400, 95},
		{"Budget Line", 1600, 82},
	})
	optimizer, err := NewOptimizer(predictor, dataset, DefaultParams(), nil)
	require.NoError(t, err)

	ready := time.Date(2020, time.April, 1, 0, 0, 0, 0, time.UTC)
	recommendations, err := optimizer.Rank(context.Background(), ready, "R", CriterionTotalCost, 14)
	require.NoError(t, err)
	require.NotEmpty(t, recommendations)

	// Budget: 1600 + 18%*12*100 = 1816. Premium: 2400 + 5%*12*100 = 2460.
	top := recommendations[0]
	assert.Equal(t, "Budget Line", top.CarrierID)
	assert.InDelta(t, 1816, top.EstimatedTotalCost, 5)
	assert.Equal(t, "best value (price + reliability)", top.Rationale)
}

func TestRankTopKTruncation(t *testing.T) {
	predictor, dataset := trainedFixture(t, []carrierFixture{
		{"Line A", 2000, 90},
		{"Line B", 1900, 88},
	})

	params := DefaultParams()
	params.TopK = 5
	optimizer, err := NewOptimizer(predictor, dataset, params, nil)
	require.NoError(t, err)

	ready := time.Date(2020, time.April, 1, 0, 0, 0, 0, time.UTC)
	recommendations, err := optimizer.Rank(context.Background(), ready, "R", CriterionPrice, 20)
	require.NoError(t, err)
	assert.Len(t, recommendations, 5)
}

func TestRankFewerCandidatesThanK(t *testing.T) {
	predictor, dataset := trainedFixture(t, []carrierFixture{{"Line A", 2000, 90}})
	optimizer, err := NewOptimizer(predictor, dataset, DefaultParams(), nil)
	require.NoError(t, err)

	// One carrier over a two-day horizon yields two candidates; the result
	// is not padded to K.
	ready := time.Date(2020, time.April, 1, 0, 0, 0, 0, time.UTC)
	recommendations, err := optimizer.Rank(context.Background(), ready, "R", CriterionPrice, 2)
	require.NoError(t, err)
	assert.Len(t, recommendations, 2)
}

func TestRankInvalidInputs(t *testing.T) {
	predictor, dataset := trainedFixture(t, []carrierFixture{{"Line A", 2000, 90}})
	optimizer, err := NewOptimizer(predictor, dataset, DefaultParams(), nil)
	require.NoError(t, err)

	ready := time.Date(2020, time.April, 1, 0, 0, 0, 0, time.UTC)

	_, err = optimizer.Rank(context.Background(), ready, "R", Criterion("speed"), 14)
	require.Error(t, err)

	_, err = optimizer.Rank(context.Background(), ready, "R", CriterionPrice, 0)
	require.Error(t, err)
}
