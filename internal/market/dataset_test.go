package market

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func obs(d time.Time, carrier, route string, price, onTime float64, events ...string) Observation {
	return Observation{
		Date:          d,
		CarrierID:     carrier,
		RouteID:       route,
		Price:         price,
		OnTimePct:     onTime,
		ShipmentCount: 1,
		ActiveEvents:  events,
		Year:          d.Year(),
		Month:         d.Month(),
		DayOfWeek:     d.Weekday(),
	}
}

func TestNewDatasetSortsObservations(t *testing.T) {
	d1 := date(2020, time.January, 1)
	d2 := date(2020, time.January, 2)

	dataset := NewDataset([]Observation{
		obs(d2, "B", "R1", 2, 90),
		obs(d1, "B", "R1", 1, 90),
		obs(d2, "A", "R2", 3, 90),
		obs(d2, "A", "R1", 4, 90),
	})

	observations := dataset.Observations()
	require.Len(t, observations, 4)
	assert.Equal(t, d1, observations[0].Date)
	assert.Equal(t, "A", observations[1].CarrierID)
	assert.Equal(t, "R1", observations[1].RouteID)
	assert.Equal(t, "R2", observations[2].RouteID)
	assert.Equal(t, "B", observations[3].CarrierID)
}

func TestLastBefore(t *testing.T) {
	start := date(2020, time.January, 1)
	var observations []Observation
	for i := 0; i < 10; i++ {
		observations = append(observations, obs(start.AddDate(0, 0, i), "A", "R", float64(100+i), 90))
	}
	dataset := NewDataset(observations)

	t.Run("window before mid date", func(t *testing.T) {
		window := dataset.LastBefore("A", "R", start.AddDate(0, 0, 5), 3)
		require.Len(t, window, 3)
		assert.Equal(t, 102.0, window[0].Price)
		assert.Equal(t, 104.0, window[2].Price)
	})
	t.Run("excludes the query date itself", func(t *testing.T) {
		window := dataset.LastBefore("A", "R", start, 5)
		assert.Empty(t, window)
	})
	t.Run("short history", func(t *testing.T) {
		window := dataset.LastBefore("A", "R", start.AddDate(0, 0, 2), 30)
		require.Len(t, window, 2)
		assert.Equal(t, 100.0, window[0].Price)
	})
	t.Run("unknown series", func(t *testing.T) {
		assert.Empty(t, dataset.LastBefore("X", "R", start.AddDate(0, 0, 5), 3))
	})
}

func TestStatsForCarrier(t *testing.T) {
	d := date(2020, time.June, 1)
	dataset := NewDataset([]Observation{
		obs(d, "A", "R1", 100, 90),
		obs(d, "A", "R2", 200, 92),
		obs(d, "B", "R1", 300, 85),
	})

	stats, err := dataset.StatsForCarrier("A")
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Count)
	assert.InDelta(t, 150, stats.PriceMean, 0.001)
	assert.InDelta(t, 50, stats.PriceStd, 0.001)
	assert.InDelta(t, 91, stats.OnTimeMean, 0.001)

	_, err = dataset.StatsForCarrier("missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no observations")
}

func TestCheapestByRoute(t *testing.T) {
	d := date(2020, time.June, 1)
	dataset := NewDataset([]Observation{
		obs(d, "A", "R1", 100, 90),
		obs(d.AddDate(0, 0, 1), "A", "R1", 200, 90), // mean 150
		obs(d, "B", "R1", 120, 90),                  // mean 120, cheapest on R1
		obs(d, "A", "R2", 90, 90),                   // cheapest on R2
		obs(d, "B", "R2", 95, 90),
	})

	averages := dataset.CheapestByRoute()
	require.Len(t, averages, 4)

	byKey := make(map[GroupKey]RouteCarrierAverage)
	for _, a := range averages {
		byKey[GroupKey{CarrierID: a.CarrierID, RouteID: a.RouteID}] = a
	}
	assert.False(t, byKey[GroupKey{"A", "R1"}].Cheapest)
	assert.True(t, byKey[GroupKey{"B", "R1"}].Cheapest)
	assert.True(t, byKey[GroupKey{"A", "R2"}].Cheapest)
	assert.False(t, byKey[GroupKey{"B", "R2"}].Cheapest)
	assert.InDelta(t, 150, byKey[GroupKey{"A", "R1"}].MeanPrice, 0.001)

	// Ordered by route then carrier.
	assert.Equal(t, "R1", averages[0].RouteID)
	assert.Equal(t, "A", averages[0].CarrierID)
	assert.Equal(t, "R2", averages[3].RouteID)
}

func TestMonthSlice(t *testing.T) {
	dataset := NewDataset([]Observation{
		obs(date(2020, time.February, 10), "A", "R", 100, 90),
		obs(date(2021, time.February, 5), "A", "R", 110, 90),
		obs(date(2020, time.March, 1), "A", "R", 120, 90),
	})

	february := dataset.MonthSlice("A", "R", time.February)
	require.Len(t, february, 2)
	for _, o := range february {
		assert.Equal(t, time.February, o.Month)
	}
	assert.Empty(t, dataset.MonthSlice("A", "R", time.July))
}

func TestEventFrequencies(t *testing.T) {
	d := date(2020, time.December, 10)
	dataset := NewDataset([]Observation{
		obs(d, "A", "R", 100, 90, "Christmas Peak", "Suez Congestion"),
		obs(d.AddDate(0, 0, 1), "A", "R", 100, 90, "Christmas Peak"),
		obs(d.AddDate(0, 0, 2), "A", "R", 100, 90),
	})

	freq := dataset.EventFrequencies()
	assert.Equal(t, 2, freq["Christmas Peak"])
	assert.Equal(t, 1, freq["Suez Congestion"])
}

func TestDateRangeEmptyDataset(t *testing.T) {
	dataset := NewDataset(nil)
	first, last := dataset.DateRange()
	assert.True(t, first.IsZero())
	assert.True(t, last.IsZero())
	assert.Zero(t, dataset.Len())
}
