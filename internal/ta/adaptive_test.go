package ta

import "testing"

func TestAdaptPeriodRSIBounds(t *testing.T) {
	for v := 0.0; v <= 1.0; v += 0.05 {
		p := AdaptPeriod(14, v, AdaptRSI, false)
		if p < 7 || p > 21 {
			t.Errorf("AdaptPeriod(14, %.2f, RSI) = %d outside [7,21]", v, p)
		}
	}
	if got := AdaptPeriod(14, 0, AdaptRSI, false); got != 14 {
		t.Errorf("AdaptPeriod(14, 0, RSI) = %d, want 14", got)
	}
	if got := AdaptPeriod(14, 1, AdaptRSI, false); got != 21 {
		t.Errorf("AdaptPeriod(14, 1, RSI) = %d, want 21 (clamped from 28)", got)
	}
}

func TestAdaptPeriodMAShort(t *testing.T) {
	for v := 0.0; v <= 1.0; v += 0.05 {
		p := AdaptPeriod(10, v, AdaptMA, true)
		if p < 3 || p > 10 {
			t.Errorf("AdaptPeriod(10, %.2f, MA, short) = %d outside [3,10]", v, p)
		}
	}
	// Shrink factor bottoms out at 0.7.
	if got := AdaptPeriod(10, 1, AdaptMA, true); got != 7 {
		t.Errorf("AdaptPeriod(10, 1, MA, short) = %d, want 7", got)
	}
}

func TestAdaptPeriodMALongStaysAboveShort(t *testing.T) {
	for v := 0.0; v <= 1.0; v += 0.05 {
		long := AdaptPeriod(20, v, AdaptMA, false)
		short := AdaptPeriod(6, v, AdaptMA, true) // 0.3 * 20
		if long < short+5 {
			t.Errorf("vol %.2f: long period %d < short %d + 5", v, long, short)
		}
		if long > 20 {
			t.Errorf("vol %.2f: long period %d exceeds base 20", v, long)
		}
	}
}

func TestAdaptPeriodClampsVolatility(t *testing.T) {
	if got, want := AdaptPeriod(14, -3, AdaptRSI, false), AdaptPeriod(14, 0, AdaptRSI, false); got != want {
		t.Errorf("negative volatility: got %d, want %d", got, want)
	}
	if got, want := AdaptPeriod(14, 9, AdaptRSI, false), AdaptPeriod(14, 1, AdaptRSI, false); got != want {
		t.Errorf("volatility > 1: got %d, want %d", got, want)
	}
}

func TestPeriodRangeCoversAllOutputs(t *testing.T) {
	periods := PeriodRange(20, AdaptMA, false)
	if len(periods) == 0 {
		t.Fatal("PeriodRange returned no periods")
	}
	inRange := make(map[int]bool, len(periods))
	for _, p := range periods {
		inRange[p] = true
	}
	for v := 0.0; v <= 1.0; v += 0.01 {
		p := AdaptPeriod(20, v, AdaptMA, false)
		if !inRange[p] {
			t.Errorf("AdaptPeriod(20, %.2f) = %d not enumerated by PeriodRange", v, p)
		}
	}
}
