package exporter

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"freightpulse/internal/booking"
	"freightpulse/internal/forecast"
	"freightpulse/internal/market"
)

const (
	summarySheet        = "Summary"
	recommendationSheet = "Recommendations"
	forecastSheet       = "Seasonal Forecast"
)

// ReportInput bundles everything the Excel booking report draws from.
type ReportInput struct {
	GeneratedAt     time.Time
	Criterion       booking.Criterion
	Dataset         *market.Dataset
	Recommendations []booking.Recommendation
	Summaries       []forecast.Summary
}

// WriteExcelReport writes a multi-sheet booking report: dataset summary,
// ranked recommendations and the seasonal forecast table.
func WriteExcelReport(path string, input ReportInput) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", summarySheet)
	if _, err := f.NewSheet(recommendationSheet); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	if _, err := f.NewSheet(forecastSheet); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#DDEBF7"}},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	if err := writeSummarySheet(f, input, headerStyle); err != nil {
		return err
	}
	if err := writeRecommendationSheet(f, input.Recommendations, headerStyle); err != nil {
		return err
	}
	if err := writeForecastSheet(f, input.Summaries, headerStyle); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	return nil
}

func writeSummarySheet(f *excelize.File, input ReportInput, headerStyle int) error {
	first, last := input.Dataset.DateRange()

	rows := [][]interface{}{
		{"Generated", input.GeneratedAt.Format(time.RFC3339)},
		{"Criterion", string(input.Criterion)},
		{"Observations", input.Dataset.Len()},
		{"Carriers", len(input.Dataset.CarrierIDs())},
		{"Routes", len(input.Dataset.RouteIDs())},
		{"First observation", first.Format(dateLayout)},
		{"Last observation", last.Format(dateLayout)},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return err
		}
	}

	// Per-route cheapest carrier table below the run facts.
	tableStart := len(rows) + 2
	header := []interface{}{"Route", "Carrier", "Average Price", "Cheapest"}
	cell, err := excelize.CoordinatesToCellName(1, tableStart)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(summarySheet, cell, &header); err != nil {
		return err
	}
	endCell, err := excelize.CoordinatesToCellName(len(header), tableStart)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(summarySheet, cell, endCell, headerStyle); err != nil {
		return err
	}

	for i, avg := range input.Dataset.CheapestByRoute() {
		cheapest := ""
		if avg.Cheapest {
			cheapest = "yes"
		}
		row := []interface{}{avg.RouteID, avg.CarrierID, avg.MeanPrice, cheapest}
		cell, err := excelize.CoordinatesToCellName(1, tableStart+1+i)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return err
		}
	}
	return f.SetColWidth(summarySheet, "A", "B", 28)
}

func writeRecommendationSheet(f *excelize.File, recommendations []booking.Recommendation, headerStyle int) error {
	header := []interface{}{
		"Rank", "Booking Date", "Carrier", "Predicted Price",
		"On-Time %", "Estimated Total Cost", "Score", "Rationale",
	}
	if err := f.SetSheetRow(recommendationSheet, "A1", &header); err != nil {
		return err
	}
	endCell, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(recommendationSheet, "A1", endCell, headerStyle); err != nil {
		return err
	}

	for i, r := range recommendations {
		row := []interface{}{
			i + 1,
			r.BookingDate.Format(dateLayout),
			r.CarrierID,
			r.PredictedPrice,
			r.HistoricalOnTime,
			r.EstimatedTotalCost,
			r.Score,
			r.Rationale,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(recommendationSheet, cell, &row); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(recommendationSheet, "B", "G", 18); err != nil {
		return err
	}
	return f.SetColWidth(recommendationSheet, "H", "H", 44)
}

func writeForecastSheet(f *excelize.File, summaries []forecast.Summary, headerStyle int) error {
	header := []interface{}{
		"Carrier", "Route", "Month", "Year", "Forecast Price",
		"Confidence Min", "Confidence Max", "Forecast On-Time %", "Samples",
	}
	if err := f.SetSheetRow(forecastSheet, "A1", &header); err != nil {
		return err
	}
	endCell, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(forecastSheet, "A1", endCell, headerStyle); err != nil {
		return err
	}

	for i, s := range summaries {
		row := []interface{}{
			s.CarrierID,
			s.RouteID,
			int(s.Month),
			s.Year,
			s.ForecastPrice,
			s.ConfidenceMin,
			s.ConfidenceMax,
			s.ForecastOnTime,
			s.SampleCount,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(forecastSheet, cell, &row); err != nil {
			return err
		}
	}
	return f.SetColWidth(forecastSheet, "A", "B", 24)
}
