package market

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sort"
	"time"
)

// SimulatorConfig holds the read-only configuration tables of a simulator.
type SimulatorConfig struct {
	Carriers    []CarrierProfile
	Routes      []Route
	Adjustments map[string]float64 // destination -> fixed price delta
	Params      SimulationParams
}

// Validate checks the configuration tables before any generation begins.
func (sc SimulatorConfig) Validate() error {
	if len(sc.Carriers) == 0 {
		return fmt.Errorf("no carriers configured")
	}
	if len(sc.Routes) == 0 {
		return fmt.Errorf("no routes configured")
	}
	for _, cp := range sc.Carriers {
		if !cp.IsValid() {
			return fmt.Errorf("invalid carrier profile %q", cp.ID)
		}
	}
	for _, r := range sc.Routes {
		if !r.IsValid() {
			return fmt.Errorf("invalid route %q", r.ID)
		}
	}
	if !sc.Params.IsValid() {
		return fmt.Errorf("invalid simulation parameters")
	}
	return nil
}

// Simulator combines carrier/route base profiles, the seasonal factor, the
// active events' curve offsets and bounded noise into daily observations.
type Simulator struct {
	carriers    map[string]CarrierProfile
	carrierIDs  []string // sorted, fixes generation order
	routes      map[string]Route
	routeIDs    []string // sorted, fixes generation order
	adjustments map[string]float64
	params      SimulationParams

	policy *ActivationPolicy
	rng    *rand.Rand
	logger *slog.Logger
}

// NewSimulator creates a simulator from validated configuration. The
// random source must be the same one injected into the activation policy
// so a full run is reproducible from a single seed.
func NewSimulator(cfg SimulatorConfig, policy *ActivationPolicy, rng *rand.Rand, logger *slog.Logger) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate simulator config: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Simulator{
		carriers:    make(map[string]CarrierProfile, len(cfg.Carriers)),
		routes:      make(map[string]Route, len(cfg.Routes)),
		adjustments: cfg.Adjustments,
		params:      cfg.Params,
		policy:      policy,
		rng:         rng,
		logger:      logger,
	}
	for _, cp := range cfg.Carriers {
		s.carriers[cp.ID] = cp
		s.carrierIDs = append(s.carrierIDs, cp.ID)
	}
	for _, r := range cfg.Routes {
		s.routes[r.ID] = r
		s.routeIDs = append(s.routeIDs, r.ID)
	}
	sort.Strings(s.carrierIDs)
	sort.Strings(s.routeIDs)

	return s, nil
}

// Carriers returns the configured carrier profiles sorted by ID.
func (s *Simulator) Carriers() []CarrierProfile {
	carriers := make([]CarrierProfile, 0, len(s.carrierIDs))
	for _, id := range s.carrierIDs {
		carriers = append(carriers, s.carriers[id])
	}
	return carriers
}

// Routes returns the configured routes sorted by ID.
func (s *Simulator) Routes() []Route {
	routes := make([]Route, 0, len(s.routeIDs))
	for _, id := range s.routeIDs {
		routes = append(routes, s.routes[id])
	}
	return routes
}

// Carrier looks up a carrier profile. Unknown IDs are a configuration
// error, never a silent default.
func (s *Simulator) Carrier(id string) (CarrierProfile, error) {
	cp, ok := s.carriers[id]
	if !ok {
		return CarrierProfile{}, fmt.Errorf("unknown carrier %q", id)
	}
	return cp, nil
}

// Route looks up a route. Unknown IDs are a configuration error.
func (s *Simulator) Route(id string) (Route, error) {
	r, ok := s.routes[id]
	if !ok {
		return Route{}, fmt.Errorf("unknown route %q", id)
	}
	return r, nil
}

// dayImpact is the shared per-date component of every observation: the
// active event set and its summed curve offsets. Computing it once per day
// keeps the carriers x routes inner loop cheap.
type dayImpact struct {
	eventNames  []string
	priceDelta  float64
	onTimeDelta float64
}

func (s *Simulator) impactFor(date time.Time) dayImpact {
	events := s.policy.ActiveEvents(date)
	impact := dayImpact{eventNames: make([]string, 0, len(events))}
	for _, e := range events {
		price, onTime := e.Impact(date)
		impact.priceDelta += price
		impact.onTimeDelta += onTime
		impact.eventNames = append(impact.eventNames, e.Name)
	}
	return impact
}

// Generate produces the single observation for one (date, carrier, route)
// triple.
func (s *Simulator) Generate(date time.Time, carrierID, routeID string) (Observation, error) {
	carrier, err := s.Carrier(carrierID)
	if err != nil {
		return Observation{}, err
	}
	route, err := s.Route(routeID)
	if err != nil {
		return Observation{}, err
	}
	return s.observe(date, carrier, route, s.impactFor(date)), nil
}

func (s *Simulator) observe(date time.Time, carrier CarrierProfile, route Route, impact dayImpact) Observation {
	// Seasonal drift centers neutral at mid-year: cheaper early months,
	// more expensive late in the year.
	seasonal := carrier.BaseCost * float64(int(date.Month())-6) * s.params.SeasonalSlope
	noise := uniform(s.rng, s.params.NoiseMin, s.params.NoiseMax)
	price := carrier.BaseCost + s.adjustments[route.Destination] + seasonal + impact.priceDelta + noise

	onTime := carrier.BaseOnTime + impact.onTimeDelta + s.rng.NormFloat64()*carrier.OnTimeStd
	onTime = clip(onTime, OnTimeMin, OnTimeMax)

	shipments := poisson(s.rng, s.params.ShipmentMean)
	if shipments < 1 {
		shipments = 1
	}

	return Observation{
		Date:          date,
		CarrierID:     carrier.ID,
		RouteID:       route.ID,
		Price:         Round2(price),
		OnTimePct:     Round1(onTime),
		ShipmentCount: shipments,
		ActiveEvents:  impact.eventNames,
		Year:          date.Year(),
		Month:         date.Month(),
		DayOfWeek:     date.Weekday(),
	}
}

// GenerateRange generates one observation per (date, carrier, route)
// triple over [start, end] inclusive and returns them as a dataset. The
// iteration order (date, then carrier ID, then route ID) is fixed so a
// seeded run is byte-identical on every regeneration.
func (s *Simulator) GenerateRange(ctx context.Context, start, end time.Time) (*Dataset, error) {
	start = midnightUTC(start)
	end = midnightUTC(end)
	if !start.Before(end) && !start.Equal(end) {
		return nil, fmt.Errorf("non-monotonic date range: start %s after end %s",
			start.Format("2006-01-02"), end.Format("2006-01-02"))
	}

	days := int(end.Sub(start).Hours()/24) + 1
	total := days * len(s.carrierIDs) * len(s.routeIDs)
	s.logger.InfoContext(ctx, "generating market observations",
		"start", start.Format("2006-01-02"),
		"end", end.Format("2006-01-02"),
		"days", days,
		"carriers", len(s.carrierIDs),
		"routes", len(s.routeIDs),
		"expected_rows", total,
	)

	began := time.Now()
	observations := make([]Observation, 0, total)
	for date := start; !date.After(end); date = date.AddDate(0, 0, 1) {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("generation cancelled: %w", ctx.Err())
		default:
		}

		impact := s.impactFor(date)
		for _, carrierID := range s.carrierIDs {
			carrier := s.carriers[carrierID]
			for _, routeID := range s.routeIDs {
				observations = append(observations, s.observe(date, carrier, s.routes[routeID], impact))
			}
		}
	}

	s.logger.InfoContext(ctx, "market generation completed",
		"rows", len(observations),
		"duration", time.Since(began),
	)
	return NewDataset(observations), nil
}

func clip(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func midnightUTC(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
