// Package exporter persists generated datasets, forecast summaries and
// booking recommendations as CSV files and Excel reports.
package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"freightpulse/internal/booking"
	"freightpulse/internal/forecast"
	"freightpulse/internal/market"
)

// NoEventsMarker replaces an empty active-event list in exported rows.
const NoEventsMarker = "none"

const dateLayout = "2006-01-02"

// writeCSV writes headers plus records to a new file, creating parent
// directories as needed.
func writeCSV(path string, headers []string, records [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(headers); err != nil {
		return fmt.Errorf("write headers: %w", err)
	}
	for i, record := range records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write record %d: %w", i, err)
		}
	}
	return writer.Error()
}

// ObservationHeaders is the column contract for observation rows.
var ObservationHeaders = []string{
	"date", "carrier_id", "route_id", "price", "on_time_pct",
	"shipment_count", "active_events", "year", "month", "day_of_week",
}

// ObservationRecord formats one observation per the output contract:
// ISO-8601 date, price with 2 decimals, on-time with 1 decimal, event
// names joined in activation order or an explicit "none" marker.
func ObservationRecord(o market.Observation) []string {
	events := NoEventsMarker
	if len(o.ActiveEvents) > 0 {
		events = strings.Join(o.ActiveEvents, " | ")
	}
	return []string{
		o.Date.Format(dateLayout),
		o.CarrierID,
		o.RouteID,
		strconv.FormatFloat(o.Price, 'f', 2, 64),
		strconv.FormatFloat(o.OnTimePct, 'f', 1, 64),
		strconv.Itoa(o.ShipmentCount),
		events,
		strconv.Itoa(o.Year),
		strconv.Itoa(int(o.Month)),
		o.DayOfWeek.String(),
	}
}

// WriteObservations writes the full dataset to one CSV file.
func WriteObservations(path string, dataset *market.Dataset) error {
	observations := dataset.Observations()
	records := make([][]string, len(observations))
	for i, o := range observations {
		records[i] = ObservationRecord(o)
	}

	slog.Info("writing observations CSV", "path", path, "rows", len(records))
	return writeCSV(path, ObservationHeaders, records)
}

// ForecastHeaders is the column contract for forecast summary rows.
var ForecastHeaders = []string{
	"carrier_id", "route_id", "month", "year", "forecast_price",
	"confidence_min", "confidence_max", "forecast_on_time", "basis_sample_count",
}

// WriteForecastSummaries writes seasonal forecast summaries to a CSV file.
func WriteForecastSummaries(path string, summaries []forecast.Summary) error {
	records := make([][]string, len(summaries))
	for i, s := range summaries {
		records[i] = []string{
			s.CarrierID,
			s.RouteID,
			strconv.Itoa(int(s.Month)),
			strconv.Itoa(s.Year),
			strconv.FormatFloat(s.ForecastPrice, 'f', 2, 64),
			strconv.FormatFloat(s.ConfidenceMin, 'f', 2, 64),
			strconv.FormatFloat(s.ConfidenceMax, 'f', 2, 64),
			strconv.FormatFloat(s.ForecastOnTime, 'f', 1, 64),
			strconv.Itoa(s.SampleCount),
		}
	}

	slog.Info("writing forecast summary CSV", "path", path, "rows", len(records))
	return writeCSV(path, ForecastHeaders, records)
}

// RecommendationHeaders is the column contract for recommendation rows.
var RecommendationHeaders = []string{
	"booking_date", "carrier_id", "predicted_price",
	"historical_on_time_pct", "estimated_total_cost", "score", "rationale",
}

// RecommendationRecord formats one recommendation row.
func RecommendationRecord(r booking.Recommendation) []string {
	return []string{
		r.BookingDate.Format(dateLayout),
		r.CarrierID,
		strconv.FormatFloat(r.PredictedPrice, 'f', 2, 64),
		strconv.FormatFloat(r.HistoricalOnTime, 'f', 1, 64),
		strconv.FormatFloat(r.EstimatedTotalCost, 'f', 2, 64),
		strconv.FormatFloat(r.Score, 'f', 2, 64),
		r.Rationale,
	}
}

// WriteRecommendations writes ranked recommendations to a CSV file.
func WriteRecommendations(path string, recommendations []booking.Recommendation) error {
	records := make([][]string, len(recommendations))
	for i, r := range recommendations {
		records[i] = RecommendationRecord(r)
	}

	slog.Info("writing recommendations CSV", "path", path, "rows", len(records))
	return writeCSV(path, RecommendationHeaders, records)
}
