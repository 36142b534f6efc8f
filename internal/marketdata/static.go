package marketdata

import (
	"context"
	"hash/fnv"
	"math/rand"
	"time"

	"quantsim/internal/types"
)

// Static synthesizes a random-walk daily history. The same seed and symbol
// always produce the same bars, so backtests over static data are
// reproducible.
type Static struct {
	seed int64
}

// NewStatic builds a static provider with a fixed seed.
func NewStatic(seed int64) *Static {
	return &Static{seed: seed}
}

// DailyBars generates weekday bars between from and to, inclusive.
func (s *Static) DailyBars(_ context.Context, symbol string, from, to time.Time) ([]types.Bar, error) {
	rng := rand.New(rand.NewSource(s.seed ^ symbolSeed(symbol)))
	price := 200 + rng.Float64()*800
	drift := (rng.Float64() - 0.45) * 0.002

	var bars []types.Bar
	for day := types.Day(from); !day.After(types.Day(to)); day = day.AddDate(0, 0, 1) {
		if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		ret := drift + rng.NormFloat64()*0.015
		open := price
		price *= 1 + ret
		if price < 1 {
			price = 1
		}
		high := maxF(open, price) * (1 + rng.Float64()*0.01)
		low := minF(open, price) * (1 - rng.Float64()*0.01)
		bars = append(bars, types.Bar{
			Date:   day,
			Open:   open,
			High:   high,
			Low:    low,
			Close:  price,
			Volume: 500_000 + rng.Float64()*1_500_000,
		})
	}
	return bars, nil
}

func symbolSeed(symbol string) int64 {
	h := fnv.New64a()
	h.Write([]byte(symbol))
	return int64(h.Sum64())
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
