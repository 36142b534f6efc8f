package ta

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"quantsim/internal/config"
	"quantsim/internal/types"
)

var (
	// ErrEmptyData is returned when an indicator computation is asked to run
	// over an empty bar series.
	ErrEmptyData = errors.New("ta: empty price series")
	// ErrUnknownColumn is returned for an indicator key the engine cannot
	// parse.
	ErrUnknownColumn = errors.New("ta: unknown indicator column")
)

// Options are the non-period parameters shared by generated columns.
type Options struct {
	BBStdDev         float64 // Bollinger band width in standard deviations
	KDJDPeriod       int     // %D smoothing for KDJ columns
	MACDFast         int
	MACDSlow         int
	MACDSignal       int
	ResistanceQuant  float64 // quantile for RES_Q_{n} columns
	SupportQuant     float64 // quantile for SUP_Q_{n} columns
}

// DefaultOptions match the common parameterizations (BB 2σ, KDJ %D 3,
// MACD 12/26/9, 80th/20th percentile levels).
func DefaultOptions() Options {
	return Options{
		BBStdDev:        2,
		KDJDPeriod:      3,
		MACDFast:        12,
		MACDSlow:        26,
		MACDSignal:      9,
		ResistanceQuant: 0.8,
		SupportQuant:    0.2,
	}
}

// FromConfig builds options from the indicators configuration section.
func FromConfig(cfg config.IndicatorsConfig) Options {
	return Options{
		BBStdDev:        cfg.BBStdDev,
		KDJDPeriod:      cfg.KDJDPeriod,
		MACDFast:        cfg.MACDFast,
		MACDSlow:        cfg.MACDSlow,
		MACDSignal:      cfg.MACDSignal,
		ResistanceQuant: cfg.ResistanceQuant,
		SupportQuant:    cfg.SupportQuant,
	}
}

// Frame holds named indicator columns aligned with their source bars.
// Column names follow the {TYPE}_{period} convention (SMA_20, RSI_14, ...)
// so adaptive rules can address dynamically chosen periods.
type Frame struct {
	n    int
	cols map[string][]float64
}

// Len returns the number of bars the frame covers.
func (f *Frame) Len() int { return f.n }

// Has reports whether the frame carries the named column.
func (f *Frame) Has(key string) bool {
	_, ok := f.cols[key]
	return ok
}

// At returns the column value at bar index i. The second return is false
// when the column is absent, the index is out of range, or the value is
// still in its warm-up window.
func (f *Frame) At(key string, i int) (float64, bool) {
	col, ok := f.cols[key]
	if !ok || i < 0 || i >= len(col) {
		return 0, false
	}
	v := col[i]
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// Keys returns the sorted column names.
func (f *Frame) Keys() []string {
	keys := make([]string, 0, len(f.cols))
	for k := range f.cols {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Key builds a {TYPE}_{period} column name.
func Key(typ string, period int) string {
	return fmt.Sprintf("%s_%d", typ, period)
}

// Compute builds a frame containing every requested column. Duplicate keys
// are computed once. Bars must be non-empty and date-ordered.
func Compute(bars []types.Bar, keys []string, opts Options) (*Frame, error) {
	if len(bars) == 0 {
		return nil, ErrEmptyData
	}
	n := len(bars)
	closes := make([]float64, n)
	highs := make([]float64, n)
	lows := make([]float64, n)
	volumes := make([]float64, n)
	for i, b := range bars {
		closes[i] = b.Close
		highs[i] = b.High
		lows[i] = b.Low
		volumes[i] = b.Volume
	}

	f := &Frame{n: n, cols: make(map[string][]float64, len(keys))}
	for _, key := range keys {
		if f.Has(key) {
			continue
		}
		if err := computeInto(f, key, closes, highs, lows, volumes, opts); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func computeInto(f *Frame, key string, closes, highs, lows, volumes []float64, opts Options) error {
	switch {
	case key == "PVT":
		f.cols[key] = PVTSeries(closes, volumes)
		return nil
	case key == "MACD" || key == "MACD_SIGNAL" || key == "MACD_HIST":
		macd, sig, hist := MACD(closes, opts.MACDFast, opts.MACDSlow, opts.MACDSignal)
		f.cols["MACD"] = macd
		f.cols["MACD_SIGNAL"] = sig
		f.cols["MACD_HIST"] = hist
		return nil
	}

	typ, period, ok := splitKey(key)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownColumn, key)
	}
	switch typ {
	case "SMA", "MA":
		f.cols[key] = SMASeries(closes, period)
	case "EMA":
		f.cols[key] = EMASeries(closes, period)
	case "WMA":
		f.cols[key] = WMASeries(closes, period)
	case "RSI":
		f.cols[key] = RSISeries(closes, period)
	case "ATR":
		f.cols[key] = ATRSeries(highs, lows, closes, period)
	case "ADX":
		f.cols[key] = ADXSeries(highs, lows, closes, period)
	case "STD":
		f.cols[key] = StdSeries(closes, period)
	case "BB_MID", "BB_UPPER", "BB_LOWER", "BB_WIDTH", "BB_PCTB":
		mid, upper, lower, width, pctB := Bollinger(closes, period, opts.BBStdDev)
		f.cols[Key("BB_MID", period)] = mid
		f.cols[Key("BB_UPPER", period)] = upper
		f.cols[Key("BB_LOWER", period)] = lower
		f.cols[Key("BB_WIDTH", period)] = width
		f.cols[Key("BB_PCTB", period)] = pctB
	case "KDJ_K", "KDJ_D", "KDJ_J":
		k, d, j := KDJ(highs, lows, closes, period, opts.KDJDPeriod)
		f.cols[Key("KDJ_K", period)] = k
		f.cols[Key("KDJ_D", period)] = d
		f.cols[Key("KDJ_J", period)] = j
	case "VOL_MA":
		f.cols[key] = SMASeries(volumes, period)
	case "HIGH":
		f.cols[key] = RollingMax(highs, period)
	case "LOW":
		f.cols[key] = RollingMin(lows, period)
	case "LOCAL_MAX":
		f.cols[key] = LocalMax(highs, period)
	case "LOCAL_MIN":
		f.cols[key] = LocalMin(lows, period)
	case "RES_Q":
		f.cols[key] = RollingQuantile(highs, period, opts.ResistanceQuant)
	case "SUP_Q":
		f.cols[key] = RollingQuantile(lows, period, opts.SupportQuant)
	default:
		// VOL_RATIO_{short}_{long} carries two periods.
		if strings.HasPrefix(key, "VOL_RATIO_") {
			parts := strings.Split(strings.TrimPrefix(key, "VOL_RATIO_"), "_")
			if len(parts) == 2 {
				short, err1 := strconv.Atoi(parts[0])
				long, err2 := strconv.Atoi(parts[1])
				if err1 == nil && err2 == nil {
					f.cols[key] = VolumeRatio(volumes, short, long)
					return nil
				}
			}
		}
		return fmt.Errorf("%w: %q", ErrUnknownColumn, key)
	}
	return nil
}

// splitKey separates a {TYPE}_{period} key into its type and trailing
// integer period.
func splitKey(key string) (typ string, period int, ok bool) {
	idx := strings.LastIndex(key, "_")
	if idx <= 0 || idx == len(key)-1 {
		return "", 0, false
	}
	p, err := strconv.Atoi(key[idx+1:])
	if err != nil || p <= 0 {
		return "", 0, false
	}
	return key[:idx], p, true
}
