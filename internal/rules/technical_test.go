package rules

import (
	"math"
	"testing"
	"time"

	"quantsim/internal/ta"
	"quantsim/internal/types"
)

func barsFromCloses(closes []float64) []types.Bar {
	bars := make([]types.Bar, len(closes))
	day := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		bars[i] = types.Bar{
			Date: day.AddDate(0, 0, i), Open: c, High: c, Low: c, Close: c,
			Volume: 1_000_000,
		}
	}
	return bars
}

func contextAt(t *testing.T, bars []types.Bar, keys []string, i int) *Context {
	t.Helper()
	frame, err := ta.Compute(bars, keys, ta.DefaultOptions())
	if err != nil {
		t.Fatalf("compute frame: %v", err)
	}
	closes := make([]float64, len(bars))
	for j, b := range bars {
		closes[j] = b.Close
	}
	return &Context{
		Symbol:    "AAA",
		Timestamp: bars[i].Date,
		Price:     bars[i].Close,
		Volume:    bars[i].Volume,
		Index:     i,
		Closes:    closes,
		Frame:     frame,
	}
}

func TestMACrossGoldenCross(t *testing.T) {
	rule := NewMACross(MACrossParams{Short: 2, Long: 4})
	bars := barsFromCloses([]float64{10, 9, 8, 7, 6, 10, 14})
	c := contextAt(t, bars, rule.Meta.Required, 5)

	sig, ok := rule.Evaluate(c)
	if !ok {
		t.Fatal("rule could not evaluate")
	}
	if sig.Direction != types.DirectionBuy {
		t.Errorf("direction = %d, want buy on golden cross", sig.Direction)
	}
	if sig.Strength <= 0 || sig.Strength > 1 {
		t.Errorf("strength = %f, want in (0,1]", sig.Strength)
	}
	if len(sig.IndicatorsUsed) != 2 {
		t.Errorf("indicators used = %v, want the two SMA keys", sig.IndicatorsUsed)
	}
}

func TestMACrossDeathCross(t *testing.T) {
	rule := NewMACross(MACrossParams{Short: 2, Long: 4})
	bars := barsFromCloses([]float64{10, 11, 12, 13, 14, 10, 6})
	c := contextAt(t, bars, rule.Meta.Required, 5)

	sig, ok := rule.Evaluate(c)
	if !ok {
		t.Fatal("rule could not evaluate")
	}
	if sig.Direction != types.DirectionSell {
		t.Errorf("direction = %d, want sell on death cross", sig.Direction)
	}
}

func TestMACrossHoldWithoutCross(t *testing.T) {
	rule := NewMACross(MACrossParams{Short: 2, Long: 4})
	bars := barsFromCloses([]float64{10, 11, 12, 13, 14, 15, 16})
	c := contextAt(t, bars, rule.Meta.Required, 6)

	sig, ok := rule.Evaluate(c)
	if !ok {
		t.Fatal("rule could not evaluate")
	}
	if sig.Direction != types.DirectionHold {
		t.Errorf("direction = %d, want hold in an established trend", sig.Direction)
	}
}

func TestMACrossWarmupNotEvaluable(t *testing.T) {
	rule := NewMACross(MACrossParams{Short: 2, Long: 4})
	bars := barsFromCloses([]float64{10, 11, 12, 13, 14})
	c := contextAt(t, bars, rule.Meta.Required, 2)

	if _, ok := rule.Evaluate(c); ok {
		t.Error("rule evaluated inside the long MA warm-up window")
	}
}

func TestRSIOverboughtSell(t *testing.T) {
	rule := NewRSI(RSIParams{Period: 3, Oversold: 30, Overbought: 70})
	closes := make([]float64, 10)
	for i := range closes {
		closes[i] = 10 + float64(i)
	}
	c := contextAt(t, barsFromCloses(closes), rule.Meta.Required, 9)

	sig, ok := rule.Evaluate(c)
	if !ok {
		t.Fatal("rule could not evaluate")
	}
	if sig.Direction != types.DirectionSell {
		t.Errorf("direction = %d, want sell at RSI 100", sig.Direction)
	}
	if math.Abs(sig.Strength-1) > 1e-9 {
		t.Errorf("strength = %f, want 1 at RSI 100", sig.Strength)
	}
}

func TestRSINeutralHolds(t *testing.T) {
	rule := NewRSI(RSIParams{Period: 3, Oversold: 30, Overbought: 70})
	c := contextAt(t, barsFromCloses([]float64{10, 10, 10, 10, 10, 10}), rule.Meta.Required, 5)

	sig, ok := rule.Evaluate(c)
	if !ok {
		t.Fatal("rule could not evaluate")
	}
	if sig.Direction != types.DirectionHold {
		t.Errorf("direction = %d, want hold at RSI 50", sig.Direction)
	}
}

func TestRSIAdaptiveWidensThresholds(t *testing.T) {
	rule := NewRSI(RSIParams{Period: 14, Oversold: 30, Overbought: 70, Adaptive: true})
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	c := contextAt(t, barsFromCloses(closes), rule.Meta.Required, 39)
	c.Market.Volatility = 1

	// at vol 1 the period adapts to clamp(round(14*2)) = 21 and the
	// overbought bound widens to min(70*1.5, 80) = 80.
	sig, ok := rule.Evaluate(c)
	if !ok {
		t.Fatal("adaptive rule could not evaluate; adaptive keys missing from Required")
	}
	if sig.Direction != types.DirectionSell {
		t.Errorf("direction = %d, want sell with RSI 100 over widened bound", sig.Direction)
	}
}

func TestTrendStrengthBullishAlignment(t *testing.T) {
	rule := NewTrendStrength()
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 10 + float64(i)
	}
	c := contextAt(t, barsFromCloses(closes), rule.Meta.Required, 59)

	sig, ok := rule.Evaluate(c)
	if !ok {
		t.Fatal("rule could not evaluate")
	}
	if sig.Direction != types.DirectionBuy {
		t.Errorf("direction = %d, want buy on bullish alignment", sig.Direction)
	}
	if sig.Strength <= 0 {
		t.Errorf("strength = %f, want positive", sig.Strength)
	}
}

func TestBreakoutAboveRollingHigh(t *testing.T) {
	rule := NewBreakout(BreakoutParams{Window: 3})
	bars := barsFromCloses([]float64{10, 10, 10, 10, 12})
	c := contextAt(t, bars, rule.Meta.Required, 4)

	sig, ok := rule.Evaluate(c)
	if !ok {
		t.Fatal("rule could not evaluate")
	}
	if sig.Direction != types.DirectionBuy {
		t.Errorf("direction = %d, want buy on upside breakout", sig.Direction)
	}
	if sig.Strength != 1 {
		t.Errorf("strength = %f, want 1 for a 20%% breakout", sig.Strength)
	}
}

func TestBreakoutBelowRollingLow(t *testing.T) {
	rule := NewBreakout(BreakoutParams{Window: 3})
	bars := barsFromCloses([]float64{10, 10, 10, 10, 9.8})
	c := contextAt(t, bars, rule.Meta.Required, 4)

	sig, ok := rule.Evaluate(c)
	if !ok {
		t.Fatal("rule could not evaluate")
	}
	if sig.Direction != types.DirectionSell {
		t.Errorf("direction = %d, want sell on downside break", sig.Direction)
	}
}

func TestPreFilterVetoesEvaluation(t *testing.T) {
	rule := NewMACross(MACrossParams{Short: 2, Long: 4})
	rule.WithPreFilter(VolumeConfirmation(2))
	bars := barsFromCloses([]float64{10, 9, 8, 7, 6, 10, 14})
	c := contextAt(t, bars, rule.Meta.Required, 5)
	c.Market.AvgVolume = 1_000_000 // bar volume equals the average, not 2x

	if _, ok := rule.Evaluate(c); ok {
		t.Error("pre-filter did not veto the rule")
	}
}

func TestPostFilterDropsWeakSignal(t *testing.T) {
	rule := NewMACross(MACrossParams{Short: 2, Long: 4})
	rule.WithPostFilter(MinStrength(0.5))
	bars := barsFromCloses([]float64{10, 9, 8, 7, 6, 10, 14})
	c := contextAt(t, bars, rule.Meta.Required, 5)

	// the crossover fires with strength well under 0.5
	if _, ok := rule.Evaluate(c); ok {
		t.Error("post-filter did not drop the weak signal")
	}
}

func TestMomentumAlignmentFilter(t *testing.T) {
	f := MomentumAlignment(3)
	closes := []float64{10, 11, 12, 13, 14}
	c := &Context{Price: 14, Index: 4, Closes: closes}

	buy := &types.Signal{Direction: types.DirectionBuy}
	if !f.Keep(buy, c) {
		t.Error("buy against rising momentum was dropped")
	}
	sell := &types.Signal{Direction: types.DirectionSell}
	if f.Keep(sell, c) {
		t.Error("sell against rising momentum was kept")
	}
	hold := &types.Signal{Direction: types.DirectionHold}
	if !f.Keep(hold, c) {
		t.Error("hold must pass the momentum filter")
	}
}

func TestVolatilityBoundsFilter(t *testing.T) {
	f := VolatilityBounds(0.1, 0.5)
	c := &Context{Market: MarketContext{Volatility: 0.3}}
	if !f.Keep(nil, c) {
		t.Error("in-bounds volatility rejected")
	}
	c.Market.Volatility = 0.8
	if f.Keep(nil, c) {
		t.Error("out-of-bounds volatility accepted")
	}
}
