package exporter

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"freightpulse/internal/booking"
	"freightpulse/internal/forecast"
	"freightpulse/internal/market"
)

func TestWriteExcelReport(t *testing.T) {
	d := time.Date(2024, time.November, 1, 0, 0, 0, 0, time.UTC)
	dataset := market.NewDataset([]market.Observation{
		{Date: d, CarrierID: "SeaValue", RouteID: "Shanghai -> Hamburg",
			Price: 2000, OnTimePct: 88, ShipmentCount: 1,
			Year: 2024, Month: time.November, DayOfWeek: d.Weekday()},
	})

	path := filepath.Join(t.TempDir(), "booking_report.xlsx")
	err := WriteExcelReport(path, ReportInput{
		GeneratedAt: time.Now(),
		Criterion:   booking.CriterionTotalCost,
		Dataset:     dataset,
		Recommendations: []booking.Recommendation{{
			BookingDate:        d,
			CarrierID:          "SeaValue",
			PredictedPrice:     2000,
			HistoricalOnTime:   88,
			EstimatedTotalCost: 2144,
			Score:              46.4,
			Rationale:          "best value (price + reliability)",
		}},
		Summaries: []forecast.Summary{{
			CarrierID: "SeaValue", RouteID: "Shanghai -> Hamburg",
			Month: time.December, Year: 2025,
			ForecastPrice: 2550, ConfidenceMin: 2450, ConfidenceMax: 2650,
			ForecastOnTime: 88.2, SampleCount: 31,
		}},
	})
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t, []string{summarySheet, recommendationSheet, forecastSheet}, f.GetSheetList())

	carrier, err := f.GetCellValue(recommendationSheet, "C2")
	require.NoError(t, err)
	assert.Equal(t, "SeaValue", carrier)

	criterion, err := f.GetCellValue(summarySheet, "B2")
	require.NoError(t, err)
	assert.Equal(t, "tco", criterion)

	price, err := f.GetCellValue(forecastSheet, "E2")
	require.NoError(t, err)
	assert.Equal(t, "2550", price)
}
