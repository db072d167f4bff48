// Command generator simulates the freight market over the configured date
// range and writes the observation dataset to CSV, followed by a
// validation summary of the generated data.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"text/tabwriter"
	"time"

	"freightpulse/internal/config"
	"freightpulse/internal/exporter"
	"freightpulse/internal/infrastructure"
	"freightpulse/internal/market"
)

func main() {
	configFile := flag.String("config", "", "path to YAML config file")
	startDate := flag.String("start", "", "simulation start date (YYYY-MM-DD, overrides config)")
	endDate := flag.String("end", "", "simulation end date (YYYY-MM-DD, overrides config)")
	seed := flag.Int64("seed", -1, "random seed (0 = unseeded exploratory run, overrides config)")
	output := flag.String("out", "", "output CSV path (default <data_dir>/freight_data.csv)")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	if *startDate != "" {
		cfg.Simulation.StartDate = *startDate
	}
	if *endDate != "" {
		cfg.Simulation.EndDate = *endDate
	}
	if *seed >= 0 {
		cfg.Simulation.Seed = *seed
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Error("failed to initialize logger", "error", err)
		os.Exit(1)
	}

	if err := run(cfg, *output, logger); err != nil {
		logger.Error("generation failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, output string, logger *slog.Logger) error {
	ctx := context.Background()
	start, end, err := cfg.Simulation.Window()
	if err != nil {
		return err
	}
	if !cfg.Simulation.Reproducible() {
		logger.Warn("running without a fixed seed, results are not reproducible")
	}

	rng := market.NewRand(cfg.Simulation.Seed)
	policy := market.NewActivationPolicy(market.DefaultCatalog(), rng)
	simulator, err := market.NewSimulator(market.SimulatorConfig{
		Carriers:    market.DefaultCarriers(),
		Routes:      market.DefaultRoutes(),
		Adjustments: market.DefaultRouteAdjustments(),
		Params:      market.DefaultSimulationParams(),
	}, policy, rng, logger)
	if err != nil {
		return err
	}

	generated := time.Now()
	dataset, err := simulator.GenerateRange(ctx, start, end)
	if err != nil {
		return err
	}
	logger.InfoContext(ctx, "dataset generated",
		"observations", dataset.Len(),
		"duration", time.Since(generated),
		"seed", cfg.Simulation.Seed,
	)

	if output == "" {
		output = filepath.Join(cfg.Output.DataDir, "freight_data.csv")
	}
	if err := exporter.WriteObservations(output, dataset); err != nil {
		return err
	}

	printValidationSummary(dataset)
	return nil
}

// printValidationSummary prints per-carrier statistics, the cheapest
// carrier per route and event activation frequencies so a generated
// dataset can be eyeballed before training on it.
func printValidationSummary(dataset *market.Dataset) {
	first, last := dataset.DateRange()
	fmt.Printf("\nGenerated %d observations from %s to %s\n",
		dataset.Len(), first.Format(config.DateLayout), last.Format(config.DateLayout))

	if dataset.Len() > 0 {
		observations := dataset.Observations()
		minPrice, maxPrice := observations[0].Price, observations[0].Price
		sum := 0.0
		for _, o := range observations {
			if o.Price < minPrice {
				minPrice = o.Price
			}
			if o.Price > maxPrice {
				maxPrice = o.Price
			}
			sum += o.Price
		}
		fmt.Printf("Price range %.2f - %.2f, mean %.2f\n",
			minPrice, maxPrice, sum/float64(dataset.Len()))
	}
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CARRIER\tROWS\tAVG PRICE\tPRICE STD\tAVG ON-TIME\t")
	for _, carrierID := range dataset.CarrierIDs() {
		stats, err := dataset.StatsForCarrier(carrierID)
		if err != nil {
			continue
		}
		fmt.Fprintf(w, "%s\t%d\t%.2f\t%.2f\t%.1f%%\t\n",
			stats.CarrierID, stats.Count, stats.PriceMean, stats.PriceStd, stats.OnTimeMean)
	}
	w.Flush()

	fmt.Println("\nCheapest carrier per route (historical average):")
	current := ""
	for _, avg := range dataset.CheapestByRoute() {
		if avg.RouteID != current {
			current = avg.RouteID
			fmt.Printf("  %s\n", avg.RouteID)
		}
		marker := " "
		if avg.Cheapest {
			marker = "*"
		}
		fmt.Printf("  %s %-20s %.2f\n", marker, avg.CarrierID, avg.MeanPrice)
	}

	frequencies := dataset.EventFrequencies()
	names := make([]string, 0, len(frequencies))
	for name := range frequencies {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Println("\nEvent activation days:")
	for _, name := range names {
		fmt.Printf("  %-24s %d\n", name, frequencies[name])
	}
}
