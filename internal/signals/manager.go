package signals

import (
	"context"
	"sync"

	"quantsim/internal/logger"
	"quantsim/internal/rules"
	"quantsim/internal/ta"
	"quantsim/internal/types"
)

// Manager runs both generators and produces the merged signal stream the
// backtest engine consumes.
type Manager struct {
	technical *TechnicalGenerator
	event     *EventGenerator
	policy    MergePolicy
}

// NewManager wires a manager over one registry with a merge policy and
// indicator options.
func NewManager(reg *rules.Registry, policy MergePolicy, opts ta.Options) *Manager {
	if policy == "" {
		policy = PolicyWeighted
	}
	return &Manager{
		technical: NewTechnical(reg, opts),
		event:     NewEvent(reg),
		policy:    policy,
	}
}

// GenerateAll evaluates technical rules per symbol concurrently, event rules
// over the full stream, and merges the results. A symbol whose indicator
// computation fails is logged and excluded; the other symbols proceed.
func (m *Manager) GenerateAll(ctx context.Context, bars map[string][]types.Bar, events []types.MarketEvent) []types.Signal {
	ctx, span := logger.StartSpan(ctx, "generate-signals")
	defer span.End()

	var (
		mu        sync.Mutex
		wg        sync.WaitGroup
		technical []types.Signal
	)
	for symbol, series := range bars {
		wg.Add(1)
		go func(symbol string, series []types.Bar) {
			defer wg.Done()
			sigs, err := m.technical.Generate(ctx, symbol, series)
			if err != nil {
				logger.ErrorWithErr(ctx, "technical signal generation failed", err, "symbol", symbol)
				return
			}
			mu.Lock()
			technical = append(technical, sigs...)
			mu.Unlock()
		}(symbol, series)
	}
	wg.Wait()

	event := m.event.Generate(ctx, events)
	merged := Merge(technical, event, m.policy)
	logger.Info(ctx, "signals generated",
		"technical", len(technical), "event", len(event), "merged", len(merged))
	return merged
}
