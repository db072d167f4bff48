package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"freightpulse/internal/booking"
	"freightpulse/internal/config"
)

func testSimulationConfig() config.SimulationConfig {
	return config.SimulationConfig{
		StartDate:   "2023-10-01",
		EndDate:     "2024-01-31",
		Seed:        42,
		HorizonDays: 7,
	}
}

func initializedService(t *testing.T) *RecommendationService {
	t.Helper()
	service := NewRecommendationService(testSimulationConfig(), nil, nil)
	require.NoError(t, service.Initialize(context.Background()))
	return service
}

func TestServiceNotReadyBeforeInitialize(t *testing.T) {
	service := NewRecommendationService(testSimulationConfig(), nil, nil)

	assert.False(t, service.Ready())
	_, err := service.Dataset()
	require.Error(t, err)

	_, err = service.Recommendations(context.Background(), time.Now(),
		"Shanghai -> Hamburg", booking.CriterionPrice)
	require.Error(t, err)
}

func TestServiceInitialize(t *testing.T) {
	service := initializedService(t)

	assert.True(t, service.Ready())
	dataset, err := service.Dataset()
	require.NoError(t, err)

	// 123 days x 5 carriers x 9 routes.
	assert.Equal(t, 123*5*9, dataset.Len())
	assert.True(t, service.KnownRoute("Shanghai -> Hamburg"))
	assert.False(t, service.KnownRoute("Mars -> Venus"))
}

func TestServiceRecommendations(t *testing.T) {
	service := initializedService(t)
	ready := time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)

	recommendations, err := service.Recommendations(context.Background(), ready,
		"Shanghai -> Hamburg", booking.CriterionTotalCost)
	require.NoError(t, err)
	require.NotEmpty(t, recommendations)
	assert.LessOrEqual(t, len(recommendations), 3)

	// Descending by score.
	for i := 1; i < len(recommendations); i++ {
		assert.GreaterOrEqual(t, recommendations[i-1].Score, recommendations[i].Score)
	}
}

func TestServiceRecommendationsUnknownRoute(t *testing.T) {
	service := initializedService(t)

	_, err := service.Recommendations(context.Background(), time.Now(),
		"Mars -> Venus", booking.CriterionPrice)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown route")
}

func TestServiceForecastDefaultsHorizon(t *testing.T) {
	service := initializedService(t)
	start := time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)

	points, err := service.Forecast(context.Background(),
		"Premium Express", "Shanghai -> Hamburg", start, 0)
	require.NoError(t, err)
	assert.Len(t, points, 7)
}

func TestServiceSeasonalSummaries(t *testing.T) {
	service := initializedService(t)

	summaries, err := service.SeasonalSummaries(time.December, 2024)
	require.NoError(t, err)
	// Every (carrier, route) pair has December history in the window.
	assert.Len(t, summaries, 45)
}

func TestServiceSeededRunsAgree(t *testing.T) {
	first := initializedService(t)
	second := initializedService(t)

	d1, err := first.Dataset()
	require.NoError(t, err)
	d2, err := second.Dataset()
	require.NoError(t, err)
	assert.Equal(t, d1.Observations(), d2.Observations())
}
