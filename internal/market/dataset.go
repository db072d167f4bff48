package market

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// GroupKey identifies one (carrier, route) observation series.
type GroupKey struct {
	CarrierID string
	RouteID   string
}

// Dataset is the ordered collection of observations over a simulated
// horizon. Observations are sorted by date (then carrier, then route) and
// indexed by (carrier, route) group for lag-window queries. A dataset is
// immutable after creation; it is the sole input to model training.
type Dataset struct {
	observations []Observation
	groups       map[GroupKey][]Observation
}

// NewDataset builds a dataset from observations, sorting and grouping them.
func NewDataset(observations []Observation) *Dataset {
	sorted := make([]Observation, len(observations))
	copy(sorted, observations)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].Date.Equal(sorted[j].Date) {
			return sorted[i].Date.Before(sorted[j].Date)
		}
		if sorted[i].CarrierID != sorted[j].CarrierID {
			return sorted[i].CarrierID < sorted[j].CarrierID
		}
		return sorted[i].RouteID < sorted[j].RouteID
	})

	groups := make(map[GroupKey][]Observation)
	for _, o := range sorted {
		key := GroupKey{CarrierID: o.CarrierID, RouteID: o.RouteID}
		groups[key] = append(groups[key], o)
	}

	return &Dataset{observations: sorted, groups: groups}
}

// Len returns the number of observations.
func (d *Dataset) Len() int {
	return len(d.observations)
}

// Observations returns all observations in date order. The returned slice
// is shared; callers must not mutate it.
func (d *Dataset) Observations() []Observation {
	return d.observations
}

// Group returns the date-ordered observations for one (carrier, route)
// series. The result is empty when the pair never occurs in the dataset.
func (d *Dataset) Group(carrierID, routeID string) []Observation {
	return d.groups[GroupKey{CarrierID: carrierID, RouteID: routeID}]
}

// LastBefore returns the most recent up to n observations strictly before
// date for one (carrier, route) series, in date order. This is the rolling
// lag window used by feature engineering.
func (d *Dataset) LastBefore(carrierID, routeID string, date time.Time, n int) []Observation {
	group := d.Group(carrierID, routeID)
	// First index at or after date.
	idx := sort.Search(len(group), func(i int) bool {
		return !group[i].Date.Before(date)
	})
	start := idx - n
	if start < 0 {
		start = 0
	}
	return group[start:idx]
}

// DateRange returns the first and last observation dates.
func (d *Dataset) DateRange() (first, last time.Time) {
	if len(d.observations) == 0 {
		return time.Time{}, time.Time{}
	}
	return d.observations[0].Date, d.observations[len(d.observations)-1].Date
}

// CarrierIDs returns the distinct carrier identifiers, sorted.
func (d *Dataset) CarrierIDs() []string {
	seen := make(map[string]struct{})
	for key := range d.groups {
		seen[key.CarrierID] = struct{}{}
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// RouteIDs returns the distinct route identifiers, sorted.
func (d *Dataset) RouteIDs() []string {
	seen := make(map[string]struct{})
	for key := range d.groups {
		seen[key.RouteID] = struct{}{}
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// CarrierStats are dataset-wide aggregates for one carrier, pooled across
// its routes.
type CarrierStats struct {
	CarrierID  string  `json:"carrier_id"`
	Count      int     `json:"count"`
	PriceMean  float64 `json:"price_mean"`
	PriceStd   float64 `json:"price_std"`
	OnTimeMean float64 `json:"on_time_mean"`
	OnTimeStd  float64 `json:"on_time_std"`
}

// StatsForCarrier computes dataset-wide price and on-time aggregates for
// one carrier. An unknown carrier is a configuration error.
func (d *Dataset) StatsForCarrier(carrierID string) (CarrierStats, error) {
	var prices, onTimes []float64
	for _, o := range d.observations {
		if o.CarrierID == carrierID {
			prices = append(prices, o.Price)
			onTimes = append(onTimes, o.OnTimePct)
		}
	}
	if len(prices) == 0 {
		return CarrierStats{}, fmt.Errorf("no observations for carrier %q", carrierID)
	}

	priceMean, priceStd := meanStd(prices)
	onTimeMean, onTimeStd := meanStd(onTimes)
	return CarrierStats{
		CarrierID:  carrierID,
		Count:      len(prices),
		PriceMean:  priceMean,
		PriceStd:   priceStd,
		OnTimeMean: onTimeMean,
		OnTimeStd:  onTimeStd,
	}, nil
}

// MonthSlice returns the observations of one (carrier, route) series that
// fall in the given calendar month, across all years.
func (d *Dataset) MonthSlice(carrierID, routeID string, month time.Month) []Observation {
	var slice []Observation
	for _, o := range d.Group(carrierID, routeID) {
		if o.Month == month {
			slice = append(slice, o)
		}
	}
	return slice
}

// RouteCarrierAverage is the mean price of one carrier on one route, with
// a flag marking the cheapest carrier per route.
type RouteCarrierAverage struct {
	RouteID   string  `json:"route_id"`
	CarrierID string  `json:"carrier_id"`
	MeanPrice float64 `json:"mean_price"`
	Cheapest  bool    `json:"cheapest"`
}

// CheapestByRoute computes mean prices per (route, carrier) and flags the
// per-route minimum. Results are ordered by route then carrier.
func (d *Dataset) CheapestByRoute() []RouteCarrierAverage {
	type acc struct {
		sum   float64
		count int
	}
	sums := make(map[GroupKey]*acc)
	for _, o := range d.observations {
		key := GroupKey{CarrierID: o.CarrierID, RouteID: o.RouteID}
		a, ok := sums[key]
		if !ok {
			a = &acc{}
			sums[key] = a
		}
		a.sum += o.Price
		a.count++
	}

	var averages []RouteCarrierAverage
	for key, a := range sums {
		averages = append(averages, RouteCarrierAverage{
			RouteID:   key.RouteID,
			CarrierID: key.CarrierID,
			MeanPrice: Round2(a.sum / float64(a.count)),
		})
	}
	sort.Slice(averages, func(i, j int) bool {
		if averages[i].RouteID != averages[j].RouteID {
			return averages[i].RouteID < averages[j].RouteID
		}
		return averages[i].CarrierID < averages[j].CarrierID
	})

	// Flag the cheapest carrier within each route group.
	for start := 0; start < len(averages); {
		end := start
		minIdx := start
		for end < len(averages) && averages[end].RouteID == averages[start].RouteID {
			if averages[end].MeanPrice < averages[minIdx].MeanPrice {
				minIdx = end
			}
			end++
		}
		averages[minIdx].Cheapest = true
		start = end
	}
	return averages
}

// EventFrequencies counts, per event name, the observations on which the
// event was active.
func (d *Dataset) EventFrequencies() map[string]int {
	freq := make(map[string]int)
	for _, o := range d.observations {
		for _, name := range o.ActiveEvents {
			freq[name]++
		}
	}
	return freq
}

func meanStd(values []float64) (mean, std float64) {
	if len(values) == 0 {
		return 0, 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	mean = sum / float64(len(values))

	sumSquared := 0.0
	for _, v := range values {
		sumSquared += (v - mean) * (v - mean)
	}
	std = math.Sqrt(sumSquared / float64(len(values)))
	return mean, std
}
