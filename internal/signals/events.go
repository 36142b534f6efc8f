package signals

import (
	"context"

	"quantsim/internal/logger"
	"quantsim/internal/rules"
	"quantsim/internal/types"
)

// EventGenerator evaluates every registered event rule against a stream of
// market events.
type EventGenerator struct {
	reg *rules.Registry
}

// NewEvent builds an event generator over a rule registry.
func NewEvent(reg *rules.Registry) *EventGenerator {
	return &EventGenerator{reg: reg}
}

// Generate runs all event rules over each event. Events without a symbol are
// skipped; a panicking rule is logged and does not stop the batch.
func (g *EventGenerator) Generate(ctx context.Context, events []types.MarketEvent) []types.Signal {
	var out []types.Signal
	for _, ev := range events {
		if ev.Symbol == "" {
			logger.Debug(ctx, "event without symbol, skipping", "event_id", ev.ID, "type", ev.Type)
			continue
		}
		for _, rule := range g.reg.EventRules() {
			sig, ok := evaluateEvent(ctx, rule, ev)
			if !ok || sig.Direction == types.DirectionHold {
				continue
			}
			logger.Signal(ctx, sig.Symbol, int(sig.Direction), sig.Strength, sig.RuleName, sig.Reason)
			out = append(out, sig)
		}
	}
	return out
}

func evaluateEvent(ctx context.Context, rule *rules.EventRule, ev types.MarketEvent) (sig types.Signal, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error(ctx, "event rule panicked",
				"rule", rule.Meta.Name, "event_id", ev.ID, "panic", r)
			ok = false
		}
	}()
	return rule.Evaluate(ev)
}
