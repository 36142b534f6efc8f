package rules

import (
	"fmt"

	"quantsim/internal/ta"
	"quantsim/internal/types"
)

// Filter is a predicate over (signal, context). As a pre-filter it receives
// a nil signal and can veto rule evaluation entirely; as a post-filter it
// judges the produced signal. Keep=false drops the signal.
type Filter struct {
	Name string
	Keep func(sig *types.Signal, c *Context) bool
}

// VolumeConfirmation keeps bars whose volume exceeds k times the 20-day
// average volume. With no average volume available nothing is confirmed.
func VolumeConfirmation(k float64) Filter {
	return Filter{
		Name: fmt.Sprintf("volume_confirmation(%.2f)", k),
		Keep: func(_ *types.Signal, c *Context) bool {
			return c.Market.AvgVolume > 0 && c.Volume > k*c.Market.AvgVolume
		},
	}
}

// VolatilityBounds keeps bars whose market volatility lies in [min, max].
func VolatilityBounds(min, max float64) Filter {
	return Filter{
		Name: fmt.Sprintf("volatility_bounds(%.2f,%.2f)", min, max),
		Keep: func(_ *types.Signal, c *Context) bool {
			v := c.Market.Volatility
			return v >= min && v <= max
		},
	}
}

// TrendStrength keeps bars where ADX over the given period is at least the
// threshold. An undefined ADX (warm-up) is treated as unconfirmed.
func TrendStrength(period int, min float64) Filter {
	key := ta.Key("ADX", period)
	return Filter{
		Name: fmt.Sprintf("trend_strength(%s>=%.0f)", key, min),
		Keep: func(_ *types.Signal, c *Context) bool {
			adx, ok := c.Ind(key)
			return ok && adx >= min
		},
	}
}

// MinStrength drops actionable signals weaker than min. HOLD signals pass.
func MinStrength(min float64) Filter {
	return Filter{
		Name: fmt.Sprintf("min_strength(%.2f)", min),
		Keep: func(sig *types.Signal, _ *Context) bool {
			if sig == nil || sig.Direction == types.DirectionHold {
				return true
			}
			return sig.Strength >= min
		},
	}
}

// MomentumAlignment keeps actionable signals whose direction agrees with
// the price momentum over lookback bars.
func MomentumAlignment(lookback int) Filter {
	return Filter{
		Name: fmt.Sprintf("momentum_alignment(%d)", lookback),
		Keep: func(sig *types.Signal, c *Context) bool {
			if sig == nil || sig.Direction == types.DirectionHold {
				return true
			}
			m, ok := c.Momentum(lookback)
			if !ok {
				return false
			}
			if sig.Direction == types.DirectionBuy {
				return m > 0
			}
			return m < 0
		},
	}
}
