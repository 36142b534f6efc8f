package rules

import (
	"fmt"

	"quantsim/internal/config"
)

// Build assembles a registry from rule configuration. Unknown rule names
// fail with ErrUnknownRule; bad parameters fall back to each builder's
// defaults.
func Build(cfg config.RulesConfig) (*Registry, error) {
	reg := NewRegistry()

	for _, rc := range cfg.Technical {
		var rule *TechnicalRule
		switch rc.Name {
		case "ma_cross":
			p := MACrossParams{Short: rc.Short, Long: rc.Long, Threshold: rc.Threshold, Adaptive: rc.Adaptive}
			if p.Short == 0 {
				p.Short = 5
			}
			if p.Long == 0 {
				p.Long = 20
			}
			rule = NewMACross(p)
		case "rsi_reversal":
			p := RSIParams{Period: rc.Period, Oversold: rc.Oversold, Overbought: rc.Overbought, Adaptive: rc.Adaptive}
			if p.Period == 0 {
				p.Period = 14
			}
			if p.Oversold == 0 {
				p.Oversold = 30
			}
			if p.Overbought == 0 {
				p.Overbought = 70
			}
			rule = NewRSI(p)
		case "trend_strength":
			rule = NewTrendStrength()
		case "breakout":
			rule = NewBreakout(BreakoutParams{Window: rc.Window})
		default:
			return nil, fmt.Errorf("%w: technical rule %q", ErrUnknownRule, rc.Name)
		}
		attachFilters(rule, rc.Filters)
		reg.RegisterTechnical(rule)
	}

	for _, ec := range cfg.Event {
		switch ec.Name {
		case "news_sentiment":
			reg.RegisterEvent(NewSentiment(SentimentParams{MinAbsScore: ec.MinAbsScore}))
		case "earnings_anticipation":
			reg.RegisterEvent(NewEarningsAnticipation(EarningsAnticipationParams{
				MinDaysAhead: ec.MinDaysAhead,
				MaxDaysAhead: ec.MaxDaysAhead,
				Strength:     ec.Strength,
			}))
		case "keyword_trigger":
			reg.RegisterEvent(NewKeywordTrigger(KeywordTriggerParams{
				Positive: ec.Positive,
				Negative: ec.Negative,
			}))
		default:
			return nil, fmt.Errorf("%w: event rule %q", ErrUnknownRule, ec.Name)
		}
	}

	return reg, nil
}

func attachFilters(rule *TechnicalRule, fc config.FiltersConfig) {
	if fc.VolumeConfirmation > 0 {
		rule.WithPreFilter(VolumeConfirmation(fc.VolumeConfirmation))
	}
	if fc.VolatilityMax > 0 {
		rule.WithPreFilter(VolatilityBounds(fc.VolatilityMin, fc.VolatilityMax))
	}
	if fc.ADXMin > 0 {
		period := fc.ADXPeriod
		if period == 0 {
			period = 14
		}
		f := TrendStrength(period, fc.ADXMin)
		rule.WithPreFilter(f)
		rule.Meta.Optional = append(rule.Meta.Optional, fmt.Sprintf("ADX_%d", period))
	}
	if fc.MinStrength > 0 {
		rule.WithPostFilter(MinStrength(fc.MinStrength))
	}
	if fc.MomentumLookback > 0 {
		rule.WithPostFilter(MomentumAlignment(fc.MomentumLookback))
	}
}
