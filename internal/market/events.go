package market

import (
	"fmt"
	"time"
)

// CurvePhase is one sub-interval of an event's active window. Its
// contribution at a date is a linear interpolation between the start and
// end anchors by the fractional progress of the date through the span.
// Spans may wrap a year boundary (e.g. October 1 through January 14).
type CurvePhase struct {
	StartMonth time.Month `json:"start_month" yaml:"start_month"`
	StartDay   int        `json:"start_day" yaml:"start_day"`
	EndMonth   time.Month `json:"end_month" yaml:"end_month"`
	EndDay     int        `json:"end_day" yaml:"end_day"`

	PriceStart  float64 `json:"price_start" yaml:"price_start"`
	PriceEnd    float64 `json:"price_end" yaml:"price_end"`
	OnTimeStart float64 `json:"on_time_start" yaml:"on_time_start"`
	OnTimeEnd   float64 `json:"on_time_end" yaml:"on_time_end"`
}

// daysInYear uses a fixed non-leap calendar so that phase progress is
// identical across years.
const daysInYear = 365

var cumulativeDays = [13]int{0, 0, 31, 59, 90, 120, 151, 181, 212, 243, 273, 304, 334}

// dayOrdinal maps a month/day to a day index in the fixed reference year.
// February 29 clamps to the February 28 ordinal so leap days resolve to
// the same phase as the rest of late February instead of aliasing March 1.
func dayOrdinal(m time.Month, d int) int {
	if m == time.February && d > 28 {
		d = 28
	}
	return cumulativeDays[m] + d - 1
}

// progressAt reports whether the ordinal falls inside the phase span and,
// if so, the fractional progress through it, clamped to [0, 1].
func (p CurvePhase) progressAt(ord int) (float64, bool) {
	start := dayOrdinal(p.StartMonth, p.StartDay)
	end := dayOrdinal(p.EndMonth, p.EndDay)

	var elapsed, span int
	switch {
	case start <= end:
		if ord < start || ord > end {
			return 0, false
		}
		elapsed, span = ord-start, end-start
	default:
		// Span wraps the year boundary.
		switch {
		case ord >= start:
			elapsed = ord - start
		case ord <= end:
			elapsed = ord + daysInYear - start
		default:
			return 0, false
		}
		span = end + daysInYear - start
	}

	if span == 0 {
		return 0, true
	}
	progress := float64(elapsed) / float64(span)
	if progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}
	return progress, true
}

// IsValid checks if the phase boundaries are plausible calendar dates.
func (p CurvePhase) IsValid() bool {
	return p.StartMonth >= time.January && p.StartMonth <= time.December &&
		p.EndMonth >= time.January && p.EndMonth <= time.December &&
		p.StartDay >= 1 && p.StartDay <= 31 &&
		p.EndDay >= 1 && p.EndDay <= 31
}

// Event is a named, time-bounded influence on price and on-time
// performance, independent of any single carrier.
//
// Deterministic seasonal events activate whenever the date's month lies in
// Months. Probabilistic events additionally require a per-day Bernoulli
// draw at Probability, and never activate before StartYear. A chronic
// always-on effect is an event with all twelve months, Probability 1 and a
// single constant phase.
type Event struct {
	Name   string       `json:"name" yaml:"name"`
	Months []time.Month `json:"months" yaml:"months"`
	Phases []CurvePhase `json:"phases" yaml:"phases"`

	// Probability is the per-day activation probability. 1 means
	// deterministic activation.
	Probability float64 `json:"probability" yaml:"probability"`
	// StartYear is the first calendar year the event can occur. 0 means no
	// restriction.
	StartYear int `json:"start_year,omitempty" yaml:"start_year,omitempty"`
}

// Deterministic reports whether the event activates without a random draw.
func (e Event) Deterministic() bool {
	return e.Probability >= 1
}

// InMonthWindow reports whether the month lies in the event's nominal
// month window.
func (e Event) InMonthWindow(m time.Month) bool {
	for _, em := range e.Months {
		if em == m {
			return true
		}
	}
	return false
}

// Impact returns the event's additive (price, on-time) deltas at the given
// date via phase interpolation. Phases are tried in order and the first
// matching phase wins; if none matches, or the date precedes StartYear,
// the impact is zero. Impact is a pure function of (event, date).
func (e Event) Impact(date time.Time) (priceDelta, onTimeDelta float64) {
	if e.StartYear > 0 && date.Year() < e.StartYear {
		return 0, 0
	}

	ord := dayOrdinal(date.Month(), date.Day())
	for _, phase := range e.Phases {
		if progress, ok := phase.progressAt(ord); ok {
			return lerp(phase.PriceStart, phase.PriceEnd, progress),
				lerp(phase.OnTimeStart, phase.OnTimeEnd, progress)
		}
	}
	return 0, 0
}

func lerp(start, end, progress float64) float64 {
	return start + progress*(end-start)
}

// Catalog is the ordered, read-only table of event definitions.
// Construction order defines the activation reporting order, keeping
// generated event lists deterministic.
type Catalog struct {
	events []Event
	byName map[string]int
}

// NewCatalog builds and validates a catalog from event definitions.
func NewCatalog(events []Event) (*Catalog, error) {
	c := &Catalog{
		events: events,
		byName: make(map[string]int, len(events)),
	}
	for i, e := range events {
		if _, dup := c.byName[e.Name]; dup {
			return nil, fmt.Errorf("duplicate event name %q", e.Name)
		}
		c.byName[e.Name] = i
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Events returns the events in catalog order.
func (c *Catalog) Events() []Event {
	return c.events
}

// Event looks up an event by name.
func (c *Catalog) Event(name string) (Event, bool) {
	i, ok := c.byName[name]
	if !ok {
		return Event{}, false
	}
	return c.events[i], true
}

// Validate rejects ambiguous event configurations: an event whose phase
// predicates both match the same calendar day, malformed phases or
// probabilities, and deterministic seasonal events whose month windows
// overlap each other. Overlap between seasonal windows must be resolved in
// the configuration, not at runtime.
func (c *Catalog) Validate() error {
	for _, e := range c.events {
		if e.Name == "" {
			return fmt.Errorf("event with empty name")
		}
		if len(e.Months) == 0 {
			return fmt.Errorf("event %q: empty month window", e.Name)
		}
		if len(e.Phases) == 0 {
			return fmt.Errorf("event %q: no curve phases", e.Name)
		}
		if e.Probability <= 0 || e.Probability > 1 {
			return fmt.Errorf("event %q: probability %.3f outside (0, 1]", e.Name, e.Probability)
		}

		for i, p := range e.Phases {
			if !p.IsValid() {
				return fmt.Errorf("event %q: phase %d has invalid boundaries", e.Name, i)
			}
		}

		// Every calendar day must resolve to at most one phase.
		for ord := 0; ord < daysInYear; ord++ {
			matches := 0
			for _, p := range e.Phases {
				if _, ok := p.progressAt(ord); ok {
					matches++
				}
			}
			if matches > 1 {
				return fmt.Errorf("event %q: %d phases match day ordinal %d", e.Name, matches, ord)
			}
		}
	}

	// Deterministic seasonal events must have mutually exclusive months.
	for i := 0; i < len(c.events); i++ {
		for j := i + 1; j < len(c.events); j++ {
			a, b := c.events[i], c.events[j]
			if !a.Deterministic() || !b.Deterministic() {
				continue
			}
			if len(a.Months) == 12 || len(b.Months) == 12 {
				continue // chronic always-on effects stack by design
			}
			for _, m := range a.Months {
				if b.InMonthWindow(m) {
					return fmt.Errorf("seasonal events %q and %q overlap in month %s", a.Name, b.Name, m)
				}
			}
		}
	}

	return nil
}

// Default event names.
const (
	EventChristmasPeak   = "Christmas Peak"
	EventChineseNewYear  = "Chinese New Year"
	EventEasterHoliday   = "Easter Holiday"
	EventSummerPeak      = "Summer Peak"
	EventRedSeaBlockade  = "Red Sea Blockade"
	EventSuezCongestion  = "Suez Congestion"
	RedSeaBlockadeStart  = 2024
	RedSeaBlockadeDailyP = 0.4
)

var allMonths = []time.Month{
	time.January, time.February, time.March, time.April,
	time.May, time.June, time.July, time.August,
	time.September, time.October, time.November, time.December,
}

// DefaultCatalog returns the built-in event catalog.
//
// The year-end peak is modeled with six disjoint phases: slow October
// ramp, accelerating early-November surge, pre-peak climb through
// December 20, a flat absolute peak on December 21-24, a post-holiday
// decay and a tapering January residual. Seasonal month windows are
// mutually exclusive by construction; the year-end event owns January so
// Chinese New Year starts in February.
func DefaultCatalog() *Catalog {
	catalog, err := NewCatalog([]Event{
		{
			Name:        EventChristmasPeak,
			Months:      []time.Month{time.October, time.November, time.December, time.January},
			Probability: 1,
			Phases: []CurvePhase{
				{StartMonth: time.October, StartDay: 1, EndMonth: time.October, EndDay: 31,
					PriceStart: 10, PriceEnd: 50, OnTimeStart: -0.5, OnTimeEnd: -2.0},
				{StartMonth: time.November, StartDay: 1, EndMonth: time.November, EndDay: 15,
					PriceStart: 50, PriceEnd: 100, OnTimeStart: -2.0, OnTimeEnd: -2.5},
				{StartMonth: time.November, StartDay: 16, EndMonth: time.December, EndDay: 20,
					PriceStart: 100, PriceEnd: 250, OnTimeStart: -2.5, OnTimeEnd: -3.0},
				{StartMonth: time.December, StartDay: 21, EndMonth: time.December, EndDay: 24,
					PriceStart: 250, PriceEnd: 250, OnTimeStart: -3.0, OnTimeEnd: -3.0},
				{StartMonth: time.December, StartDay: 25, EndMonth: time.December, EndDay: 31,
					PriceStart: 250, PriceEnd: 150, OnTimeStart: -3.0, OnTimeEnd: -2.0},
				{StartMonth: time.January, StartDay: 1, EndMonth: time.January, EndDay: 14,
					PriceStart: 150, PriceEnd: 0, OnTimeStart: -1.0, OnTimeEnd: 0},
			},
		},
		{
			Name:        EventChineseNewYear,
			Months:      []time.Month{time.February},
			Probability: 1,
			Phases: []CurvePhase{
				{StartMonth: time.February, StartDay: 1, EndMonth: time.February, EndDay: 14,
					PriceStart: 80, PriceEnd: 150, OnTimeStart: -2.0, OnTimeEnd: -4.0},
				{StartMonth: time.February, StartDay: 15, EndMonth: time.February, EndDay: 28,
					PriceStart: 150, PriceEnd: 0, OnTimeStart: -4.0, OnTimeEnd: 0},
			},
		},
		{
			Name:        EventEasterHoliday,
			Months:      []time.Month{time.March, time.April},
			Probability: 1,
			Phases: []CurvePhase{
				{StartMonth: time.March, StartDay: 1, EndMonth: time.March, EndDay: 31,
					PriceStart: 20, PriceEnd: 100, OnTimeStart: -1.0, OnTimeEnd: -2.0},
				{StartMonth: time.April, StartDay: 1, EndMonth: time.April, EndDay: 15,
					PriceStart: 100, PriceEnd: 0, OnTimeStart: -2.0, OnTimeEnd: 0},
			},
		},
		{
			Name:        EventSummerPeak,
			Months:      []time.Month{time.June, time.July, time.August, time.September},
			Probability: 1,
			Phases: []CurvePhase{
				{StartMonth: time.June, StartDay: 1, EndMonth: time.June, EndDay: 30,
					PriceStart: 20, PriceEnd: 80, OnTimeStart: -0.5, OnTimeEnd: -1.0},
				{StartMonth: time.July, StartDay: 1, EndMonth: time.August, EndDay: 31,
					PriceStart: 80, PriceEnd: 80, OnTimeStart: -1.0, OnTimeEnd: -1.0},
				{StartMonth: time.September, StartDay: 1, EndMonth: time.September, EndDay: 15,
					PriceStart: 80, PriceEnd: 0, OnTimeStart: -1.0, OnTimeEnd: 0},
			},
		},
		{
			Name:        EventRedSeaBlockade,
			Months:      allMonths,
			Probability: RedSeaBlockadeDailyP,
			StartYear:   RedSeaBlockadeStart,
			Phases: []CurvePhase{
				{StartMonth: time.January, StartDay: 1, EndMonth: time.December, EndDay: 31,
					PriceStart: 300, PriceEnd: 300, OnTimeStart: -5.0, OnTimeEnd: -5.0},
			},
		},
		{
			Name:        EventSuezCongestion,
			Months:      allMonths,
			Probability: 1,
			Phases: []CurvePhase{
				{StartMonth: time.January, StartDay: 1, EndMonth: time.December, EndDay: 31,
					PriceStart: 50, PriceEnd: 50, OnTimeStart: -1.0, OnTimeEnd: -1.0},
			},
		},
	})
	if err != nil {
		// The default catalog is static and validated by tests.
		panic(fmt.Sprintf("default catalog invalid: %v", err))
	}
	return catalog
}
