package rules

import (
	"fmt"
	"math"

	"quantsim/internal/ta"
	"quantsim/internal/types"
)

// MACrossParams configures a moving-average crossover rule.
type MACrossParams struct {
	Short     int
	Long      int
	Threshold float64 // minimum |short-long|/long, adaptive mode only
	Adaptive  bool
}

// NewMACross builds a golden/death-cross rule. In adaptive mode the short
// and long periods shrink with volatility and the crossover threshold is
// scaled by (1+volatility).
func NewMACross(p MACrossParams) *TechnicalRule {
	meta := Meta{
		Name:        "ma_cross",
		DisplayName: "均线交叉",
		Category:    CategoryTrendFollowing,
		Description: fmt.Sprintf("SMA(%d)/SMA(%d) golden and death crossovers", p.Short, p.Long),
	}
	if p.Adaptive {
		meta.Name = "ma_cross_adaptive"
		for _, period := range ta.PeriodRange(p.Short, ta.AdaptMA, true) {
			meta.Required = append(meta.Required, ta.Key("SMA", period))
		}
		for _, period := range ta.PeriodRange(p.Long, ta.AdaptMA, false) {
			meta.Required = append(meta.Required, ta.Key("SMA", period))
		}
	} else {
		meta.Required = []string{ta.Key("SMA", p.Short), ta.Key("SMA", p.Long)}
	}

	fn := func(c *Context) (types.Signal, bool) {
		shortP, longP := p.Short, p.Long
		threshold := 0.0
		if p.Adaptive {
			shortP = ta.AdaptPeriod(p.Short, c.Market.Volatility, ta.AdaptMA, true)
			longP = ta.AdaptPeriod(p.Long, c.Market.Volatility, ta.AdaptMA, false)
			threshold = p.Threshold * (1 + c.Market.Volatility)
		}
		shortKey, longKey := ta.Key("SMA", shortP), ta.Key("SMA", longP)

		s, ok1 := c.Ind(shortKey)
		l, ok2 := c.Ind(longKey)
		ps, ok3 := c.PrevInd(shortKey)
		pl, ok4 := c.PrevInd(longKey)
		if !ok1 || !ok2 || !ok3 || !ok4 || l == 0 {
			return types.Signal{}, false
		}

		used := []string{shortKey, longKey}
		diff := (s - l) / l
		sig := newSignal(c, meta, types.DirectionHold, 0, "no crossover", used)

		switch {
		case s > l && ps <= pl && math.Abs(diff) >= threshold:
			sig.Direction = types.DirectionBuy
			sig.Strength = math.Min(diff, 1)
			sig.Reason = fmt.Sprintf("golden cross: %s %.2f over %s %.2f", shortKey, s, longKey, l)
		case s < l && ps >= pl && math.Abs(diff) >= threshold:
			sig.Direction = types.DirectionSell
			sig.Strength = math.Min(-diff, 1)
			sig.Reason = fmt.Sprintf("death cross: %s %.2f under %s %.2f", shortKey, s, longKey, l)
		}
		return sig, true
	}

	return &TechnicalRule{Meta: meta, Fn: fn}
}

// RSIParams configures an overbought/oversold RSI rule.
type RSIParams struct {
	Period     int
	Oversold   float64
	Overbought float64
	Adaptive   bool
}

// NewRSI builds a mean-reversion RSI rule. In adaptive mode the period
// grows with volatility and the thresholds widen with it, clamped to
// [20,80].
func NewRSI(p RSIParams) *TechnicalRule {
	meta := Meta{
		Name:        "rsi_reversal",
		DisplayName: "RSI超买超卖",
		Category:    CategoryMeanReversion,
		Description: fmt.Sprintf("RSI(%d) below %.0f buys, above %.0f sells", p.Period, p.Oversold, p.Overbought),
	}
	if p.Adaptive {
		meta.Name = "rsi_reversal_adaptive"
		for _, period := range ta.PeriodRange(p.Period, ta.AdaptRSI, false) {
			meta.Required = append(meta.Required, ta.Key("RSI", period))
		}
	} else {
		meta.Required = []string{ta.Key("RSI", p.Period)}
	}

	fn := func(c *Context) (types.Signal, bool) {
		period := p.Period
		oversold, overbought := p.Oversold, p.Overbought
		if p.Adaptive {
			vol := c.Market.Volatility
			period = ta.AdaptPeriod(p.Period, vol, ta.AdaptRSI, false)
			oversold = clamp(p.Oversold*(1-0.5*vol), 20, 80)
			overbought = clamp(p.Overbought*(1+0.5*vol), 20, 80)
		}
		key := ta.Key("RSI", period)
		rsi, ok := c.Ind(key)
		if !ok {
			return types.Signal{}, false
		}

		used := []string{key}
		sig := newSignal(c, meta, types.DirectionHold, 0, fmt.Sprintf("%s %.1f neutral", key, rsi), used)
		switch {
		case rsi < oversold && oversold > 0:
			sig.Direction = types.DirectionBuy
			sig.Strength = math.Min((oversold-rsi)/oversold, 1)
			sig.Reason = fmt.Sprintf("%s %.1f below oversold %.1f", key, rsi, oversold)
		case rsi > overbought && overbought < 100:
			sig.Direction = types.DirectionSell
			sig.Strength = math.Min((rsi-overbought)/(100-overbought), 1)
			sig.Reason = fmt.Sprintf("%s %.1f above overbought %.1f", key, rsi, overbought)
		}
		return sig, true
	}

	return &TechnicalRule{Meta: meta, Fn: fn}
}

// NewTrendStrength builds the MA-alignment rule: SMA5 > SMA20 > SMA50 is a
// bullish stack, the reverse order a bearish one.
func NewTrendStrength() *TechnicalRule {
	meta := Meta{
		Name:        "trend_strength",
		DisplayName: "趋势强度",
		Category:    CategoryTrendFollowing,
		Required:    []string{"SMA_5", "SMA_20", "SMA_50"},
		Description: "bullish or bearish moving-average alignment",
	}
	fn := func(c *Context) (types.Signal, bool) {
		ma5, ok1 := c.Ind("SMA_5")
		ma20, ok2 := c.Ind("SMA_20")
		ma50, ok3 := c.Ind("SMA_50")
		if !ok1 || !ok2 || !ok3 || ma50 == 0 {
			return types.Signal{}, false
		}
		sig := newSignal(c, meta, types.DirectionHold, 0, "no alignment", meta.Required)
		spread := (ma5 - ma50) / ma50
		switch {
		case ma5 > ma20 && ma20 > ma50:
			sig.Direction = types.DirectionBuy
			sig.Strength = clamp(spread*10, 0, 1)
			sig.Reason = "bullish alignment SMA5>SMA20>SMA50"
		case ma5 < ma20 && ma20 < ma50:
			sig.Direction = types.DirectionSell
			sig.Strength = clamp(-spread*10, 0, 1)
			sig.Reason = "bearish alignment SMA5<SMA20<SMA50"
		}
		return sig, true
	}
	return &TechnicalRule{Meta: meta, Fn: fn}
}

// BreakoutParams configures the support/resistance breakout rule.
type BreakoutParams struct {
	Window int
}

// NewBreakout builds the rolling high/low breakout rule. The close is
// compared against the previous bar's rolling extremes so today's own range
// cannot mask the breakout.
func NewBreakout(p BreakoutParams) *TechnicalRule {
	if p.Window <= 0 {
		p.Window = 20
	}
	highKey := ta.Key("HIGH", p.Window)
	lowKey := ta.Key("LOW", p.Window)
	meta := Meta{
		Name:        "breakout",
		DisplayName: "支撑阻力突破",
		Category:    CategoryBreakout,
		Required:    []string{highKey, lowKey},
		Description: fmt.Sprintf("close beyond the rolling %d-bar high or low", p.Window),
	}
	fn := func(c *Context) (types.Signal, bool) {
		hi, ok1 := c.PrevInd(highKey)
		lo, ok2 := c.PrevInd(lowKey)
		if !ok1 || !ok2 || hi == 0 || lo == 0 {
			return types.Signal{}, false
		}
		sig := newSignal(c, meta, types.DirectionHold, 0, "inside range", meta.Required)
		switch {
		case c.Price > hi:
			sig.Direction = types.DirectionBuy
			// full strength at a 5% breakout
			sig.Strength = clamp((c.Price-hi)/hi/0.05, 0, 1)
			sig.Reason = fmt.Sprintf("close %.2f above %d-bar high %.2f", c.Price, p.Window, hi)
		case c.Price < lo:
			sig.Direction = types.DirectionSell
			sig.Strength = clamp((lo-c.Price)/lo/0.05, 0, 1)
			sig.Reason = fmt.Sprintf("close %.2f below %d-bar low %.2f", c.Price, p.Window, lo)
		}
		return sig, true
	}
	return &TechnicalRule{Meta: meta, Fn: fn}
}

func newSignal(c *Context, meta Meta, dir types.Direction, strength float64, reason string, used []string) types.Signal {
	return types.Signal{
		Symbol:         c.Symbol,
		Direction:      dir,
		Strength:       strength,
		Reason:         reason,
		Timestamp:      c.Timestamp,
		RuleName:       meta.Name,
		Category:       string(meta.Category),
		IndicatorsUsed: used,
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
