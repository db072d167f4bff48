package market

import (
	"math"
	"time"
)

// On-time percentage bounds applied to every generated observation.
const (
	OnTimeMin = 70.0
	OnTimeMax = 99.0
)

// CarrierProfile is the immutable base configuration of one carrier.
type CarrierProfile struct {
	ID         string  `json:"id" yaml:"id"`
	BaseCost   float64 `json:"base_cost" yaml:"base_cost"`       // currency per ton
	BaseOnTime float64 `json:"base_on_time" yaml:"base_on_time"` // percent
	OnTimeStd  float64 `json:"on_time_std" yaml:"on_time_std"`   // percent points
}

// IsValid checks if the carrier profile is usable.
func (cp CarrierProfile) IsValid() bool {
	return cp.ID != "" && cp.BaseCost > 0 &&
		cp.BaseOnTime >= OnTimeMin && cp.BaseOnTime <= OnTimeMax &&
		cp.OnTimeStd >= 0
}

// Route is one origin/destination trade lane.
type Route struct {
	ID          string `json:"id" yaml:"id"`
	Origin      string `json:"origin" yaml:"origin"`
	Destination string `json:"destination" yaml:"destination"`
}

// IsValid checks if the route is usable.
func (r Route) IsValid() bool {
	return r.ID != "" && r.Origin != "" && r.Destination != ""
}

// Observation is one generated market data point. Exactly one observation
// exists per (date, carrier, route) triple in a generated dataset.
type Observation struct {
	Date          time.Time    `json:"date"`
	CarrierID     string       `json:"carrier_id"`
	RouteID       string       `json:"route_id"`
	Price         float64      `json:"price"`       // rounded to 2 decimal places
	OnTimePct     float64      `json:"on_time_pct"` // rounded to 1 decimal place, in [70, 99]
	ShipmentCount int          `json:"shipment_count"`
	ActiveEvents  []string     `json:"active_events"`
	Year          int          `json:"year"`
	Month         time.Month   `json:"month"`
	DayOfWeek     time.Weekday `json:"day_of_week"`
}

// IsValid checks basic observation invariants.
func (o Observation) IsValid() bool {
	return !o.Date.IsZero() && o.CarrierID != "" && o.RouteID != "" &&
		o.OnTimePct >= OnTimeMin && o.OnTimePct <= OnTimeMax &&
		o.ShipmentCount >= 1
}

// SimulationParams are the tunable constants of the market simulator.
type SimulationParams struct {
	// SeasonalSlope is the per-month price drift factor, neutral at June.
	SeasonalSlope float64 `json:"seasonal_slope" yaml:"seasonal_slope"`
	// NoiseMin/NoiseMax bound the uniform daily market noise. The band may
	// be asymmetric to skew toward price increases.
	NoiseMin float64 `json:"noise_min" yaml:"noise_min"`
	NoiseMax float64 `json:"noise_max" yaml:"noise_max"`
	// ShipmentMean is the Poisson mean for the daily shipment count.
	// Counts are floored at 1.
	ShipmentMean float64 `json:"shipment_mean" yaml:"shipment_mean"`
}

// IsValid checks if the simulation parameters are usable.
func (sp SimulationParams) IsValid() bool {
	return sp.NoiseMin <= sp.NoiseMax && sp.ShipmentMean >= 0
}

// DefaultSimulationParams returns the calibrated default parameters.
func DefaultSimulationParams() SimulationParams {
	return SimulationParams{
		SeasonalSlope: 0.025,
		NoiseMin:      -100,
		NoiseMax:      100,
		ShipmentMean:  0.7,
	}
}

// DefaultCarriers returns the built-in carrier table.
func DefaultCarriers() []CarrierProfile {
	return []CarrierProfile{
		{ID: "Budget Freight", BaseCost: 1800, BaseOnTime: 85, OnTimeStd: 4.5},
		{ID: "Eco Liner", BaseCost: 2350, BaseOnTime: 94, OnTimeStd: 1.5},
		{ID: "Premium Express", BaseCost: 2200, BaseOnTime: 92, OnTimeStd: 2.5},
		{ID: "SeaValue", BaseCost: 1950, BaseOnTime: 88, OnTimeStd: 3.5},
		{ID: "Standard Shipping", BaseCost: 2100, BaseOnTime: 90, OnTimeStd: 3.0},
	}
}

// DefaultRoutes returns the built-in Asia-Europe route table.
func DefaultRoutes() []Route {
	origins := []string{"Shanghai", "Singapore", "Ningbo"}
	destinations := []string{"Hamburg", "Rotterdam", "Antwerp"}

	routes := make([]Route, 0, len(origins)*len(destinations))
	for _, o := range origins {
		for _, d := range destinations {
			routes = append(routes, Route{
				ID:          o + " -> " + d,
				Origin:      o,
				Destination: d,
			})
		}
	}
	return routes
}

// DefaultRouteAdjustments returns the fixed per-destination price deltas.
func DefaultRouteAdjustments() map[string]float64 {
	return map[string]float64{
		"Hamburg":   0,
		"Rotterdam": -50,
		"Antwerp":   -100,
	}
}

// Round2 rounds to 2 decimal places, the price storage precision.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Round1 rounds to 1 decimal place, the on-time storage precision.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}
