// Package signals turns price history and market events into trading
// signals and merges the two streams into one per-symbol, per-day decision.
package signals

import (
	"context"
	"fmt"
	"math"

	"quantsim/internal/logger"
	"quantsim/internal/rules"
	"quantsim/internal/ta"
	"quantsim/internal/types"
)

const marketWindow = 20

// TechnicalGenerator evaluates every registered technical rule against a
// symbol's bar history.
type TechnicalGenerator struct {
	reg  *rules.Registry
	opts ta.Options
}

// NewTechnical builds a technical generator over a rule registry. The
// options parameterize the indicator columns the rules read.
func NewTechnical(reg *rules.Registry, opts ta.Options) *TechnicalGenerator {
	return &TechnicalGenerator{reg: reg, opts: opts}
}

// Generate runs all technical rules over each bar and returns the directional
// signals they emit. HOLD decisions are dropped. A rule that panics on one
// bar is logged and skipped for that bar; the remaining rules keep running.
func (g *TechnicalGenerator) Generate(ctx context.Context, symbol string, bars []types.Bar) ([]types.Signal, error) {
	if len(bars) == 0 {
		return nil, nil
	}
	keys := g.reg.RequiredColumns(
		ta.Key("VOL_MA", marketWindow),
		ta.Key("HIGH", marketWindow),
		ta.Key("LOW", marketWindow),
	)
	frame, err := ta.Compute(bars, keys, g.opts)
	if err != nil {
		return nil, fmt.Errorf("compute indicators for %s: %w", symbol, err)
	}

	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	vol := volatilitySeries(closes, marketWindow)

	var out []types.Signal
	for i, bar := range bars {
		if math.IsNaN(bar.Close) || math.IsInf(bar.Close, 0) || bar.Close <= 0 {
			logger.Warn(ctx, "skipping bar with unusable close", "symbol", symbol, "date", bar.Date)
			continue
		}
		bc := &rules.Context{
			Symbol:    symbol,
			Timestamp: bar.Date,
			Price:     bar.Close,
			Volume:    bar.Volume,
			Index:     i,
			Closes:    closes,
			Frame:     frame,
			Market:    marketContext(frame, vol, i),
		}
		for _, rule := range g.reg.TechnicalRules() {
			sig, ok := evaluateTechnical(ctx, rule, bc)
			if !ok || sig.Direction == types.DirectionHold {
				continue
			}
			logger.Signal(ctx, sig.Symbol, int(sig.Direction), sig.Strength, sig.RuleName, sig.Reason)
			out = append(out, sig)
		}
	}
	return out, nil
}

func evaluateTechnical(ctx context.Context, rule *rules.TechnicalRule, bc *rules.Context) (sig types.Signal, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error(ctx, "technical rule panicked",
				"rule", rule.Meta.Name, "symbol", bc.Symbol, "index", bc.Index, "panic", r)
			ok = false
		}
	}()
	return rule.Evaluate(bc)
}

func marketContext(frame *ta.Frame, vol []float64, i int) rules.MarketContext {
	mc := rules.MarketContext{}
	if i < len(vol) && !math.IsNaN(vol[i]) {
		mc.Volatility = vol[i]
	}
	if v, ok := frame.At(ta.Key("VOL_MA", marketWindow), i); ok {
		mc.AvgVolume = v
	}
	if v, ok := frame.At(ta.Key("HIGH", marketWindow), i); ok {
		mc.High20 = v
	}
	if v, ok := frame.At(ta.Key("LOW", marketWindow), i); ok {
		mc.Low20 = v
	}
	return mc
}

// volatilitySeries is the annualized standard deviation of daily returns
// over a trailing window, clamped to [0,1]. Values inside the warm-up window
// are NaN.
func volatilitySeries(closes []float64, window int) []float64 {
	n := len(closes)
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	if n < 2 {
		return out
	}
	returns := make([]float64, n)
	returns[0] = math.NaN()
	for i := 1; i < n; i++ {
		if closes[i-1] == 0 {
			returns[i] = 0
			continue
		}
		returns[i] = (closes[i] - closes[i-1]) / closes[i-1]
	}
	for i := window; i < n; i++ {
		var sum, sumSq float64
		for j := i - window + 1; j <= i; j++ {
			sum += returns[j]
			sumSq += returns[j] * returns[j]
		}
		mean := sum / float64(window)
		variance := sumSq/float64(window) - mean*mean
		if variance < 0 {
			variance = 0
		}
		v := math.Sqrt(variance) * math.Sqrt(252)
		if v > 1 {
			v = 1
		}
		out[i] = v
	}
	return out
}
