package ta

import (
	"math"
	"sort"
)

// AdaptKind selects which adaptation curve AdaptPeriod applies.
type AdaptKind int

const (
	// AdaptRSI grows the lookback with volatility, clamped to [7,21].
	AdaptRSI AdaptKind = iota
	// AdaptMA shrinks the lookback with volatility, floored at 3 for short
	// windows and at the adaptive short period plus 5 for long windows.
	AdaptMA
)

// AdaptPeriod recomputes an indicator lookback from the current volatility.
// Volatility is expected in [0,1]; out-of-range inputs are clamped. All
// outputs are integers within the declared clamp bounds.
func AdaptPeriod(base int, volatility float64, kind AdaptKind, isShort bool) int {
	vol := clampF(volatility, 0, 1)
	switch kind {
	case AdaptRSI:
		return clampI(int(math.Round(float64(base)*(1+vol))), 7, 21)
	case AdaptMA:
		factor := math.Max(0.7, 1-vol)
		p := int(math.Round(float64(base) * factor))
		if isShort {
			return clampI(p, 3, base)
		}
		// A long window must stay clear of the adaptive short window it is
		// paired against, which derives from 0.3*base.
		shortBase := int(math.Round(0.3 * float64(base)))
		minLong := AdaptPeriod(shortBase, vol, AdaptMA, true) + 5
		return clampI(p, minLong, base)
	}
	return base
}

// PeriodRange enumerates every period AdaptPeriod can produce for a base,
// stepping volatility from 0 to 1 by 0.05. Rules wiring adaptive indicators
// pre-compute this range so every column they may request exists.
func PeriodRange(base int, kind AdaptKind, isShort bool) []int {
	seen := make(map[int]bool)
	for v := 0.0; v <= 1.0+1e-9; v += 0.05 {
		seen[AdaptPeriod(base, v, kind, isShort)] = true
	}
	periods := make([]int, 0, len(seen))
	for p := range seen {
		periods = append(periods, p)
	}
	sort.Ints(periods)
	return periods
}

func clampI(v, lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
