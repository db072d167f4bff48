package market

import (
	"math/rand"
	"time"
)

// ActivationPolicy decides which events count as active on a given date.
//
// Seasonal events activate whenever the date's month lies in their
// configured month window. Probabilistic events additionally require the
// date's year to reach the event's start year and a Bernoulli draw at the
// configured probability. Exactly one draw is made per (event, date) and
// memoized, so every downstream computation in one generation run sees the
// same activation decision; the draw is never re-sampled per call site.
type ActivationPolicy struct {
	catalog *Catalog
	rng     *rand.Rand
	draws   map[drawKey]bool
}

type drawKey struct {
	event string
	day   int64 // days since the Unix epoch
}

// NewActivationPolicy creates an activation policy backed by the injected
// seedable random source.
func NewActivationPolicy(catalog *Catalog, rng *rand.Rand) *ActivationPolicy {
	return &ActivationPolicy{
		catalog: catalog,
		rng:     rng,
		draws:   make(map[drawKey]bool),
	}
}

// ActiveEvents returns the events active on the given date, in catalog
// order for deterministic downstream iteration.
func (p *ActivationPolicy) ActiveEvents(date time.Time) []Event {
	var active []Event
	for _, e := range p.catalog.Events() {
		if p.isActive(e, date) {
			active = append(active, e)
		}
	}
	return active
}

// ActiveEventNames returns the names of the active events in catalog order.
func (p *ActivationPolicy) ActiveEventNames(date time.Time) []string {
	events := p.ActiveEvents(date)
	names := make([]string, len(events))
	for i, e := range events {
		names[i] = e.Name
	}
	return names
}

func (p *ActivationPolicy) isActive(e Event, date time.Time) bool {
	if !e.InMonthWindow(date.Month()) {
		return false
	}
	if e.StartYear > 0 && date.Year() < e.StartYear {
		return false
	}
	if e.Deterministic() {
		return true
	}
	return p.draw(e, date)
}

// draw performs the single memoized Bernoulli draw for (event, date).
func (p *ActivationPolicy) draw(e Event, date time.Time) bool {
	key := drawKey{event: e.Name, day: date.Unix() / (24 * 60 * 60)}
	if result, ok := p.draws[key]; ok {
		return result
	}
	result := p.rng.Float64() < e.Probability
	p.draws[key] = result
	return result
}
