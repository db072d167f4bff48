package forecast

import (
	"math"
	"time"

	"freightpulse/internal/market"
)

// LagBufferSize is the maximum number of trailing observations kept for
// lag feature derivation.
const LagBufferSize = 30

// eventWindow is a seasonal event's nominal month window, used as a binary
// model feature.
type eventWindow struct {
	name   string
	months map[time.Month]bool
}

// FeatureBuilder derives model feature vectors from lag prices and
// calendar position. Feature vectors are recomputed on demand, never
// persisted.
type FeatureBuilder struct {
	windows []eventWindow
}

// NewFeatureBuilder builds the feature schema from the event catalog.
// Events active in every month contribute a constant column and carry no
// signal, so only events with a restricted month window become flags.
func NewFeatureBuilder(catalog *market.Catalog) *FeatureBuilder {
	b := &FeatureBuilder{}
	for _, e := range catalog.Events() {
		if len(e.Months) >= 12 {
			continue
		}
		months := make(map[time.Month]bool, len(e.Months))
		for _, m := range e.Months {
			months[m] = true
		}
		b.windows = append(b.windows, eventWindow{name: e.Name, months: months})
	}
	return b
}

// Size returns the feature vector length.
func (b *FeatureBuilder) Size() int {
	return 7 + len(b.windows)
}

// Build assembles one feature vector: lag prices, sinusoidal calendar
// encodings and event month-window flags.
func (b *FeatureBuilder) Build(lag1, lag7, lag30 float64, month time.Month, dow time.Weekday) []float64 {
	features := make([]float64, 0, b.Size())
	features = append(features,
		lag1, lag7, lag30,
		math.Sin(2*math.Pi*float64(month)/12),
		math.Cos(2*math.Pi*float64(month)/12),
		math.Sin(2*math.Pi*float64(dow)/7),
		math.Cos(2*math.Pi*float64(dow)/7),
	)
	for _, w := range b.windows {
		if w.months[month] {
			features = append(features, 1)
		} else {
			features = append(features, 0)
		}
	}
	return features
}

// lagBuffer is a bounded ring of trailing prices, oldest first. It backs
// the recursive forecast loop: real history seeds it, predictions feed it
// forward, and the oldest entry is evicted once the bound is reached.
type lagBuffer struct {
	prices []float64
}

func newLagBuffer(history []market.Observation, seed float64) *lagBuffer {
	b := &lagBuffer{prices: make([]float64, 0, LagBufferSize)}
	for _, o := range history {
		b.push(o.Price)
	}
	if len(b.prices) == 0 {
		// No historical observations: degraded-but-defined fallback to the
		// carrier's base cost as the seed value.
		b.push(seed)
	}
	return b
}

func (b *lagBuffer) push(price float64) {
	if len(b.prices) == LagBufferSize {
		copy(b.prices, b.prices[1:])
		b.prices = b.prices[:LagBufferSize-1]
	}
	b.prices = append(b.prices, price)
}

// lag returns the n-th most recent price, falling back to the most recent
// one when fewer than n entries exist.
func (b *lagBuffer) lag(n int) float64 {
	if len(b.prices) >= n {
		return b.prices[len(b.prices)-n]
	}
	return b.prices[len(b.prices)-1]
}
