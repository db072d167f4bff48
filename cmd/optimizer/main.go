// Command optimizer runs the full booking pipeline: generate the market
// dataset, train the per-carrier price models, rank booking candidates for
// one route and write the CSV outputs and the Excel report.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"freightpulse/internal/booking"
	"freightpulse/internal/config"
	"freightpulse/internal/exporter"
	"freightpulse/internal/infrastructure"
	"freightpulse/internal/services"
)

func main() {
	configFile := flag.String("config", "", "path to YAML config file")
	routeID := flag.String("route", "Shanghai -> Hamburg", "route to optimize")
	readyDate := flag.String("ready", "", "shipment ready date (YYYY-MM-DD, default simulation end + 1 day)")
	criterionName := flag.String("criterion", "tco", "optimization criterion: price, ontime or tco")
	summaryMonth := flag.Int("month", int(time.December), "target month for the seasonal forecast summary")
	report := flag.Bool("report", true, "write the Excel booking report")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Error("failed to initialize logger", "error", err)
		os.Exit(1)
	}

	criterion, err := booking.ParseCriterion(*criterionName)
	if err != nil {
		logger.Error("invalid criterion", "error", err)
		os.Exit(1)
	}
	if *summaryMonth < 1 || *summaryMonth > 12 {
		logger.Error("invalid month", "month", *summaryMonth)
		os.Exit(1)
	}

	if err := run(cfg, *routeID, *readyDate, criterion, time.Month(*summaryMonth), *report, logger); err != nil {
		logger.Error("optimization failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, routeID, readyRaw string, criterion booking.Criterion, summaryMonth time.Month, report bool, logger *slog.Logger) error {
	ctx := context.Background()

	service := services.NewRecommendationService(cfg.Simulation, logger, nil)
	if err := service.Initialize(ctx); err != nil {
		return err
	}
	if !service.KnownRoute(routeID) {
		return fmt.Errorf("unknown route %q", routeID)
	}

	_, end, err := cfg.Simulation.Window()
	if err != nil {
		return err
	}
	ready := end.AddDate(0, 0, 1)
	if readyRaw != "" {
		ready, err = time.Parse(config.DateLayout, readyRaw)
		if err != nil {
			return fmt.Errorf("invalid ready date %q: %w", readyRaw, err)
		}
	}

	recommendations, err := service.Recommendations(ctx, ready, routeID, criterion)
	if err != nil {
		return err
	}
	printRecommendations(routeID, criterion, recommendations)

	summaryYear := ready.Year()
	if summaryMonth < ready.Month() {
		summaryYear++
	}
	summaries, err := service.SeasonalSummaries(summaryMonth, summaryYear)
	if err != nil {
		return err
	}

	recommendationsCSV := filepath.Join(cfg.Output.ReportsDir, "recommendations.csv")
	if err := exporter.WriteRecommendations(recommendationsCSV, recommendations); err != nil {
		return err
	}
	summariesCSV := filepath.Join(cfg.Output.ReportsDir, "seasonal_forecast.csv")
	if err := exporter.WriteForecastSummaries(summariesCSV, summaries); err != nil {
		return err
	}

	if report {
		dataset, err := service.Dataset()
		if err != nil {
			return err
		}
		reportPath := filepath.Join(cfg.Output.ReportsDir, "booking_report.xlsx")
		if err := exporter.WriteExcelReport(reportPath, exporter.ReportInput{
			GeneratedAt:     time.Now(),
			Criterion:       criterion,
			Dataset:         dataset,
			Recommendations: recommendations,
			Summaries:       summaries,
		}); err != nil {
			return err
		}
		logger.InfoContext(ctx, "report written", "path", reportPath)
	}
	return nil
}

func printRecommendations(routeID string, criterion booking.Criterion, recommendations []booking.Recommendation) {
	fmt.Printf("\nTop booking recommendations for %s (criterion: %s)\n\n", routeID, criterion)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tDATE\tCARRIER\tPRICE\tON-TIME\tTOTAL COST\tSCORE\tRATIONALE\t")
	for i, r := range recommendations {
		fmt.Fprintf(w, "%d\t%s\t%s\t%.2f\t%.1f%%\t%.2f\t%.2f\t%s\t\n",
			i+1,
			r.BookingDate.Format(config.DateLayout),
			r.CarrierID,
			r.PredictedPrice,
			r.HistoricalOnTime,
			r.EstimatedTotalCost,
			r.Score,
			r.Rationale,
		)
	}
	w.Flush()
	fmt.Println()
}
