// Package market implements the synthetic freight market engine.
//
// It generates multi-year daily price and on-time-performance observations
// per carrier and trade route. Prices are driven by overlapping calendar
// events whose influence follows piecewise linear curves rather than step
// functions, plus a month-based seasonal slope and bounded market noise.
//
// # Core Components
//
//   - events.go: event catalog, curve phases and the phase interpolation engine
//   - activation.go: deterministic and probabilistic event activation
//   - simulator.go: per-day observation generation over a date range
//   - dataset.go: ordered, grouped access to generated observations
//   - rand.go: the injected, seedable randomness source
//
// # Determinism
//
// All randomness flows through a single *rand.Rand constructed by NewRand
// and threaded explicitly into the activation policy and the simulator.
// Regenerating a dataset with the same seed and configuration yields an
// identical observation sequence. Event curve evaluation itself is pure:
// for a fixed event and date the impact is identical on every call.
//
// # Usage Example
//
//	rng := market.NewRand(42)
//	catalog := market.DefaultCatalog()
//	policy := market.NewActivationPolicy(catalog, rng)
//	sim, err := market.NewSimulator(market.SimulatorConfig{
//		Carriers:    market.DefaultCarriers(),
//		Routes:      market.DefaultRoutes(),
//		Adjustments: market.DefaultRouteAdjustments(),
//		Params:      market.DefaultSimulationParams(),
//	}, policy, rng, slog.Default())
//	if err != nil {
//		log.Fatal(err)
//	}
//	dataset, err := sim.GenerateRange(ctx, start, end)
package market
