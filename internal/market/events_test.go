package market

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDefaultCatalogIsValid(t *testing.T) {
	catalog := DefaultCatalog()
	require.NoError(t, catalog.Validate())
	assert.Len(t, catalog.Events(), 6)
}

func TestEventImpactYearEndCurve(t *testing.T) {
	catalog := DefaultCatalog()
	event, ok := catalog.Event(EventChristmasPeak)
	require.True(t, ok)

	tests := []struct {
		name       string
		date       time.Time
		wantPrice  float64
		wantOnTime float64
	}{
		{"october ramp start", date(2020, time.October, 1), 10, -0.5},
		{"october ramp end", date(2020, time.October, 31), 50, -2.0},
		{"early november surge end", date(2020, time.November, 15), 100, -2.5},
		{"pre-peak climb start", date(2020, time.November, 16), 100, -2.5},
		{"absolute peak holds flat", date(2020, time.December, 22), 250, -3.0},
		{"peak last day", date(2020, time.December, 24), 250, -3.0},
		{"january residual end", date(2020, time.January, 14), 0, 0},
		{"outside the window", date(2020, time.May, 10), 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			price, onTime := event.Impact(tt.date)
			assert.InDelta(t, tt.wantPrice, price, 0.001)
			assert.InDelta(t, tt.wantOnTime, onTime, 0.001)
		})
	}
}

func TestEventImpactIsPure(t *testing.T) {
	catalog := DefaultCatalog()
	event, ok := catalog.Event(EventChineseNewYear)
	require.True(t, ok)

	d := date(2021, time.February, 10)
	p1, o1 := event.Impact(d)
	for i := 0; i < 100; i++ {
		p2, o2 := event.Impact(d)
		require.Equal(t, p1, p2)
		require.Equal(t, o1, o2)
	}
}

func TestEventImpactBeforeStartYearIsZero(t *testing.T) {
	catalog := DefaultCatalog()
	event, ok := catalog.Event(EventRedSeaBlockade)
	require.True(t, ok)

	price, onTime := event.Impact(date(2023, time.June, 15))
	assert.Zero(t, price)
	assert.Zero(t, onTime)

	price, onTime = event.Impact(date(2024, time.June, 15))
	assert.InDelta(t, 300.0, price, 0.001)
	assert.InDelta(t, -5.0, onTime, 0.001)
}

func TestChronicEventConstantImpact(t *testing.T) {
	catalog := DefaultCatalog()
	event, ok := catalog.Event(EventSuezCongestion)
	require.True(t, ok)

	for _, d := range []time.Time{
		date(2015, time.January, 1),
		date(2020, time.July, 4),
		date(2024, time.December, 31),
	} {
		price, onTime := event.Impact(d)
		assert.InDelta(t, 50.0, price, 0.001)
		assert.InDelta(t, -1.0, onTime, 0.001)
	}
}

func TestCurvePhaseYearWrap(t *testing.T) {
	// A single phase spanning December into January interpolates across the
	// year boundary.
	event := Event{
		Name:        "winter surcharge",
		Months:      []time.Month{time.December, time.January},
		Probability: 1,
		Phases: []CurvePhase{
			{StartMonth: time.December, StartDay: 1, EndMonth: time.January, EndDay: 30,
				PriceStart: 0, PriceEnd: 60, OnTimeStart: 0, OnTimeEnd: 0},
		},
	}

	price, _ := event.Impact(date(2020, time.December, 1))
	assert.InDelta(t, 0.0, price, 0.001)

	price, _ = event.Impact(date(2021, time.January, 30))
	assert.InDelta(t, 60.0, price, 0.001)

	// December 31 is 30 of 60 elapsed days.
	price, _ = event.Impact(date(2020, time.December, 31))
	assert.InDelta(t, 30.0, price, 0.001)
}

func TestEventImpactLeapDay(t *testing.T) {
	// February 29 must resolve to the same phase as February 28, not fall
	// through to the March ordinal and report zero impact.
	event := Event{
		Name:        "february surcharge",
		Months:      []time.Month{time.February},
		Probability: 1,
		Phases: []CurvePhase{
			{StartMonth: time.February, StartDay: 1, EndMonth: time.February, EndDay: 28,
				PriceStart: 100, PriceEnd: 200, OnTimeStart: -1, OnTimeEnd: -3},
		},
	}

	p28, o28 := event.Impact(date(2024, time.February, 28))
	p29, o29 := event.Impact(date(2024, time.February, 29))
	assert.Equal(t, p28, p29)
	assert.Equal(t, o28, o29)
	assert.InDelta(t, 200.0, p29, 0.001)
	assert.InDelta(t, -3.0, o29, 0.001)

	// March 1 still belongs to no phase of this event.
	price, onTime := event.Impact(date(2024, time.March, 1))
	assert.Zero(t, price)
	assert.Zero(t, onTime)
}

func TestNewCatalogRejections(t *testing.T) {
	phase := CurvePhase{
		StartMonth: time.March, StartDay: 1, EndMonth: time.March, EndDay: 31,
		PriceStart: 10, PriceEnd: 20,
	}

	tests := []struct {
		name    string
		events  []Event
		wantErr string
	}{
		{
			name: "duplicate names",
			events: []Event{
				{Name: "a", Months: []time.Month{time.March}, Probability: 1, Phases: []CurvePhase{phase}},
				{Name: "a", Months: []time.Month{time.April}, Probability: 1, Phases: []CurvePhase{phase}},
			},
			wantErr: "duplicate event name",
		},
		{
			name: "probability out of range",
			events: []Event{
				{Name: "a", Months: []time.Month{time.March}, Probability: 1.5, Phases: []CurvePhase{phase}},
			},
			wantErr: "probability",
		},
		{
			name: "no phases",
			events: []Event{
				{Name: "a", Months: []time.Month{time.March}, Probability: 1},
			},
			wantErr: "no curve phases",
		},
		{
			name: "overlapping phases within one event",
			events: []Event{
				{Name: "a", Months: []time.Month{time.March}, Probability: 1, Phases: []CurvePhase{
					phase,
					{StartMonth: time.March, StartDay: 15, EndMonth: time.April, EndDay: 10, PriceStart: 5, PriceEnd: 5},
				}},
			},
			wantErr: "phases match",
		},
		{
			name: "seasonal month windows overlap",
			events: []Event{
				{Name: "a", Months: []time.Month{time.March, time.April}, Probability: 1, Phases: []CurvePhase{phase}},
				{Name: "b", Months: []time.Month{time.April}, Probability: 1, Phases: []CurvePhase{
					{StartMonth: time.April, StartDay: 1, EndMonth: time.April, EndDay: 30, PriceStart: 5, PriceEnd: 5},
				}},
			},
			wantErr: "overlap in month",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCatalog(tt.events)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestProbabilisticSeasonalOverlapAllowed(t *testing.T) {
	// A probabilistic event may share months with a deterministic one; only
	// deterministic seasonal windows must be exclusive.
	events := []Event{
		{Name: "seasonal", Months: []time.Month{time.March}, Probability: 1, Phases: []CurvePhase{
			{StartMonth: time.March, StartDay: 1, EndMonth: time.March, EndDay: 31, PriceStart: 10, PriceEnd: 20},
		}},
		{Name: "disruption", Months: []time.Month{time.March}, Probability: 0.3, Phases: []CurvePhase{
			{StartMonth: time.March, StartDay: 1, EndMonth: time.March, EndDay: 31, PriceStart: 100, PriceEnd: 100},
		}},
	}
	_, err := NewCatalog(events)
	assert.NoError(t, err)
}
