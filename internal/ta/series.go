// Package ta computes technical indicator columns from OHLCV series.
//
// All series functions return one value per input bar. Positions where the
// indicator is not yet defined (warm-up of a rolling window) hold math.NaN().
package ta

import "math"

// SMASeries is the rolling mean over n values. NaN for the first n-1 bars.
func SMASeries(vals []float64, n int) []float64 {
	out := nanSeries(len(vals))
	if n <= 0 || len(vals) < n {
		return out
	}
	sum := 0.0
	for i, v := range vals {
		sum += v
		if i >= n {
			sum -= vals[i-n]
		}
		if i >= n-1 {
			out[i] = sum / float64(n)
		}
	}
	return out
}

// EMASeries is the exponentially weighted mean with decay 2/(n+1), seeded at
// the first value.
func EMASeries(vals []float64, n int) []float64 {
	out := nanSeries(len(vals))
	if n <= 0 || len(vals) == 0 {
		return out
	}
	alpha := 2.0 / (float64(n) + 1.0)
	ema := vals[0]
	out[0] = ema
	for i := 1; i < len(vals); i++ {
		ema = alpha*vals[i] + (1-alpha)*ema
		out[i] = ema
	}
	return out
}

// WMASeries is the linearly weighted mean with weights 1..n, the most recent
// value weighted heaviest. NaN for the first n-1 bars.
func WMASeries(vals []float64, n int) []float64 {
	out := nanSeries(len(vals))
	if n <= 0 || len(vals) < n {
		return out
	}
	denom := float64(n*(n+1)) / 2.0
	for i := n - 1; i < len(vals); i++ {
		sum := 0.0
		for j := 0; j < n; j++ {
			sum += vals[i-n+1+j] * float64(j+1)
		}
		out[i] = sum / denom
	}
	return out
}

// RSISeries is the relative strength index over a rolling window of price
// deltas. Defined from bar index period onward. When the window has no
// losses RSI is 100; when it is completely flat RSI is 50.
func RSISeries(closes []float64, period int) []float64 {
	out := nanSeries(len(closes))
	if period <= 0 || len(closes) < period+1 {
		return out
	}
	for i := period; i < len(closes); i++ {
		gain, loss := 0.0, 0.0
		for j := i - period + 1; j <= i; j++ {
			d := closes[j] - closes[j-1]
			if d > 0 {
				gain += d
			} else {
				loss -= d
			}
		}
		switch {
		case loss == 0 && gain == 0:
			out[i] = 50
		case loss == 0:
			out[i] = 100
		default:
			rs := gain / loss
			out[i] = 100 - 100/(1+rs)
		}
	}
	return out
}

// MACD returns the MACD line EMA(fast)-EMA(slow), its EMA(signal) signal
// line, and the histogram (difference of the two).
func MACD(closes []float64, fast, slow, signal int) (macd, sig, hist []float64) {
	emaFast := EMASeries(closes, fast)
	emaSlow := EMASeries(closes, slow)
	macd = nanSeries(len(closes))
	for i := range closes {
		macd[i] = emaFast[i] - emaSlow[i]
	}
	sig = EMASeries(macd, signal)
	hist = nanSeries(len(closes))
	for i := range closes {
		hist[i] = macd[i] - sig[i]
	}
	return macd, sig, hist
}

// StdSeries is the rolling population standard deviation over n values.
func StdSeries(vals []float64, n int) []float64 {
	out := nanSeries(len(vals))
	if n <= 0 || len(vals) < n {
		return out
	}
	mean := SMASeries(vals, n)
	for i := n - 1; i < len(vals); i++ {
		s := 0.0
		for j := i - n + 1; j <= i; j++ {
			d := vals[j] - mean[i]
			s += d * d
		}
		out[i] = math.Sqrt(s / float64(n))
	}
	return out
}

// Bollinger returns middle/upper/lower bands plus the band width and the
// close position within the band (%B, 0.5 when the band has zero width).
func Bollinger(closes []float64, period int, k float64) (mid, upper, lower, width, pctB []float64) {
	mid = SMASeries(closes, period)
	sd := StdSeries(closes, period)
	n := len(closes)
	upper, lower, width, pctB = nanSeries(n), nanSeries(n), nanSeries(n), nanSeries(n)
	for i := 0; i < n; i++ {
		if math.IsNaN(mid[i]) {
			continue
		}
		upper[i] = mid[i] + k*sd[i]
		lower[i] = mid[i] - k*sd[i]
		width[i] = upper[i] - lower[i]
		if width[i] == 0 {
			pctB[i] = 0.5
		} else {
			pctB[i] = (closes[i] - lower[i]) / width[i]
		}
	}
	return mid, upper, lower, width, pctB
}

// KDJ returns the stochastic %K (raw), %D (rolling mean of %K over dPeriod)
// and J = 3K - 2D. A flat high/low window yields K=50.
func KDJ(highs, lows, closes []float64, kPeriod, dPeriod int) (k, d, j []float64) {
	n := len(closes)
	k, j = nanSeries(n), nanSeries(n)
	if kPeriod <= 0 || n < kPeriod {
		return k, nanSeries(n), j
	}
	for i := kPeriod - 1; i < n; i++ {
		hi, lo := highs[i], lows[i]
		for x := i - kPeriod + 1; x <= i; x++ {
			hi = math.Max(hi, highs[x])
			lo = math.Min(lo, lows[x])
		}
		if hi == lo {
			k[i] = 50
		} else {
			k[i] = (closes[i] - lo) / (hi - lo) * 100
		}
	}
	d = rollingMeanDefined(k, dPeriod)
	for i := 0; i < n; i++ {
		if !math.IsNaN(k[i]) && !math.IsNaN(d[i]) {
			j[i] = 3*k[i] - 2*d[i]
		}
	}
	return k, d, j
}

// ATRSeries is the rolling mean of the true range. The first bar's true
// range is high-low since there is no previous close.
func ATRSeries(highs, lows, closes []float64, period int) []float64 {
	n := len(closes)
	tr := make([]float64, n)
	for i := 0; i < n; i++ {
		if i == 0 {
			tr[i] = highs[i] - lows[i]
			continue
		}
		tr[i] = math.Max(highs[i]-lows[i],
			math.Max(math.Abs(highs[i]-closes[i-1]), math.Abs(lows[i]-closes[i-1])))
	}
	return SMASeries(tr, period)
}

// ADXSeries is the average directional index over period, using rolling-mean
// smoothing of +DI/-DI.
func ADXSeries(highs, lows, closes []float64, period int) []float64 {
	n := len(closes)
	out := nanSeries(n)
	if period <= 0 || n < 2*period {
		return out
	}
	plusDM := make([]float64, n)
	minusDM := make([]float64, n)
	tr := make([]float64, n)
	for i := 1; i < n; i++ {
		up := highs[i] - highs[i-1]
		down := lows[i-1] - lows[i]
		if up > down && up > 0 {
			plusDM[i] = up
		}
		if down > up && down > 0 {
			minusDM[i] = down
		}
		tr[i] = math.Max(highs[i]-lows[i],
			math.Max(math.Abs(highs[i]-closes[i-1]), math.Abs(lows[i]-closes[i-1])))
	}
	atr := SMASeries(tr, period)
	pdm := SMASeries(plusDM, period)
	mdm := SMASeries(minusDM, period)
	dx := nanSeries(n)
	for i := period - 1; i < n; i++ {
		if math.IsNaN(atr[i]) || atr[i] == 0 {
			continue
		}
		pdi := pdm[i] / atr[i] * 100
		mdi := mdm[i] / atr[i] * 100
		if pdi+mdi == 0 {
			dx[i] = 0
		} else {
			dx[i] = math.Abs(pdi-mdi) / (pdi + mdi) * 100
		}
	}
	return rollingMeanDefined(dx, period)
}

// VolumeRatio is the ratio of a short to a long rolling volume mean.
func VolumeRatio(volumes []float64, short, long int) []float64 {
	sv := SMASeries(volumes, short)
	lv := SMASeries(volumes, long)
	out := nanSeries(len(volumes))
	for i := range volumes {
		if math.IsNaN(sv[i]) || math.IsNaN(lv[i]) || lv[i] == 0 {
			continue
		}
		out[i] = sv[i] / lv[i]
	}
	return out
}

// PVTSeries is the cumulative price-volume trend.
func PVTSeries(closes, volumes []float64) []float64 {
	out := make([]float64, len(closes))
	for i := 1; i < len(closes); i++ {
		out[i] = out[i-1]
		if closes[i-1] != 0 {
			out[i] += volumes[i] * (closes[i] - closes[i-1]) / closes[i-1]
		}
	}
	return out
}

// RollingMax is the trailing max over window values. NaN for the warm-up.
func RollingMax(vals []float64, window int) []float64 {
	out := nanSeries(len(vals))
	if window <= 0 || len(vals) < window {
		return out
	}
	for i := window - 1; i < len(vals); i++ {
		m := vals[i]
		for j := i - window + 1; j <= i; j++ {
			m = math.Max(m, vals[j])
		}
		out[i] = m
	}
	return out
}

// RollingMin is the trailing min over window values. NaN for the warm-up.
func RollingMin(vals []float64, window int) []float64 {
	out := nanSeries(len(vals))
	if window <= 0 || len(vals) < window {
		return out
	}
	for i := window - 1; i < len(vals); i++ {
		m := vals[i]
		for j := i - window + 1; j <= i; j++ {
			m = math.Min(m, vals[j])
		}
		out[i] = m
	}
	return out
}

// LocalMax marks rolling local maxima over a centered window: each output is
// the max of the window centered on the bar, clamped at the series edges.
func LocalMax(vals []float64, window int) []float64 {
	return localExtreme(vals, window, math.Max)
}

// LocalMin is the centered-window counterpart of LocalMax.
func LocalMin(vals []float64, window int) []float64 {
	return localExtreme(vals, window, math.Min)
}

func localExtreme(vals []float64, window int, pick func(a, b float64) float64) []float64 {
	out := nanSeries(len(vals))
	if window <= 0 || len(vals) == 0 {
		return out
	}
	half := window / 2
	for i := range vals {
		lo, hi := i-half, i+half
		if lo < 0 {
			lo = 0
		}
		if hi > len(vals)-1 {
			hi = len(vals) - 1
		}
		m := vals[lo]
		for j := lo + 1; j <= hi; j++ {
			m = pick(m, vals[j])
		}
		out[i] = m
	}
	return out
}

// RollingQuantile is the trailing q-quantile (0..1) over window values,
// linearly interpolated. Used for dynamic support/resistance levels.
func RollingQuantile(vals []float64, window int, q float64) []float64 {
	out := nanSeries(len(vals))
	if window <= 0 || len(vals) < window || q < 0 || q > 1 {
		return out
	}
	buf := make([]float64, window)
	for i := window - 1; i < len(vals); i++ {
		copy(buf, vals[i-window+1:i+1])
		insertionSort(buf)
		pos := q * float64(window-1)
		lo := int(math.Floor(pos))
		hi := int(math.Ceil(pos))
		if lo == hi {
			out[i] = buf[lo]
		} else {
			frac := pos - float64(lo)
			out[i] = buf[lo]*(1-frac) + buf[hi]*frac
		}
	}
	return out
}

// rollingMeanDefined averages the last n defined values, skipping NaNs from
// the warm-up of the input series.
func rollingMeanDefined(vals []float64, n int) []float64 {
	out := nanSeries(len(vals))
	if n <= 0 {
		return out
	}
	for i := range vals {
		sum, cnt := 0.0, 0
		for j := i; j >= 0 && cnt < n; j-- {
			if math.IsNaN(vals[j]) {
				break
			}
			sum += vals[j]
			cnt++
		}
		if cnt == n {
			out[i] = sum / float64(n)
		}
	}
	return out
}

func insertionSort(a []float64) {
	for i := 1; i < len(a); i++ {
		v := a[i]
		j := i - 1
		for j >= 0 && a[j] > v {
			a[j+1] = a[j]
			j--
		}
		a[j+1] = v
	}
}

func nanSeries(n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = math.NaN()
	}
	return s
}
