package market

import (
	"math"
	"math/rand"
	"time"
)

// NewRand builds the randomness source threaded through a generation run.
// A non-zero seed yields a fully reproducible run. Seed 0 builds an
// unseeded source for exploratory use; callers must treat such runs as
// non-reproducible.
func NewRand(seed int64) *rand.Rand {
	if seed == 0 {
		return rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return rand.New(rand.NewSource(seed))
}

// uniform draws from [min, max).
func uniform(rng *rand.Rand, min, max float64) float64 {
	return min + rng.Float64()*(max-min)
}

// poisson draws a Poisson-distributed count with the given mean using
// Knuth's method. The mean values used here are small, so the linear
// number of draws is not a concern.
func poisson(rng *rand.Rand, mean float64) int {
	if mean <= 0 {
		return 0
	}
	limit := math.Exp(-mean)
	k := 0
	p := 1.0
	for {
		p *= rng.Float64()
		if p <= limit {
			return k
		}
		k++
	}
}
