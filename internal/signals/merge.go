package signals

import (
	"fmt"
	"sort"
	"time"

	"quantsim/internal/types"
)

// MergePolicy selects how technical and event signals for the same symbol
// and day are combined.
type MergePolicy string

const (
	// PolicyWeighted averages all signals by direction-weighted strength.
	PolicyWeighted MergePolicy = "weighted"
	// PolicyTechnicalFirst uses event signals only on days without any
	// technical signal.
	PolicyTechnicalFirst MergePolicy = "technical_first"
	// PolicyEventFirst uses technical signals only on days without any
	// event signal.
	PolicyEventFirst MergePolicy = "event_first"
)

type signalGroup struct {
	symbol    string
	day       time.Time
	technical []types.Signal
	event     []types.Signal
}

// Merge combines the technical and event signal streams into at most one
// signal per symbol and day. Conflicting signals that cancel out exactly are
// dropped. The output is ordered by day, then symbol.
func Merge(technical, event []types.Signal, policy MergePolicy) []types.Signal {
	groups := make(map[string]*signalGroup)
	key := func(sym string, day time.Time) string {
		return sym + "|" + day.Format("2006-01-02")
	}
	group := func(sig types.Signal) *signalGroup {
		day := types.Day(sig.Timestamp)
		k := key(sig.Symbol, day)
		g, ok := groups[k]
		if !ok {
			g = &signalGroup{symbol: sig.Symbol, day: day}
			groups[k] = g
		}
		return g
	}
	for _, sig := range technical {
		g := group(sig)
		g.technical = append(g.technical, sig)
	}
	for _, sig := range event {
		g := group(sig)
		g.event = append(g.event, sig)
	}

	var out []types.Signal
	for _, g := range groups {
		pool := g.pool(policy)
		if merged, ok := mergeGroup(g.symbol, g.day, pool); ok {
			out = append(out, merged)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.Before(out[j].Timestamp)
		}
		return out[i].Symbol < out[j].Symbol
	})
	return out
}

func (g *signalGroup) pool(policy MergePolicy) []types.Signal {
	switch policy {
	case PolicyTechnicalFirst:
		if len(g.technical) > 0 {
			return g.technical
		}
		return g.event
	case PolicyEventFirst:
		if len(g.event) > 0 {
			return g.event
		}
		return g.technical
	default:
		return append(append([]types.Signal(nil), g.technical...), g.event...)
	}
}

func mergeGroup(symbol string, day time.Time, pool []types.Signal) (types.Signal, bool) {
	if len(pool) == 0 {
		return types.Signal{}, false
	}
	if len(pool) == 1 {
		return pool[0], true
	}

	var score float64
	contributors := make([]types.Signal, len(pool))
	copy(contributors, pool)
	sort.SliceStable(contributors, func(i, j int) bool {
		return contributors[i].RuleName < contributors[j].RuleName
	})
	indicators := make(map[string]bool)
	ruleNames := make([]string, 0, len(contributors))
	reasons := make([]string, 0, len(contributors))
	for _, sig := range contributors {
		score += float64(sig.Direction) * sig.Strength
		ruleNames = append(ruleNames, sig.RuleName)
		reasons = append(reasons, sig.Reason)
		for _, ind := range sig.IndicatorsUsed {
			indicators[ind] = true
		}
	}
	if score == 0 {
		return types.Signal{}, false
	}
	direction := types.DirectionBuy
	if score < 0 {
		direction = types.DirectionSell
		score = -score
	}
	strength := score / float64(len(pool))
	if strength > 1 {
		strength = 1
	}
	indKeys := make([]string, 0, len(indicators))
	for k := range indicators {
		indKeys = append(indKeys, k)
	}
	sort.Strings(indKeys)

	return types.Signal{
		Symbol:         symbol,
		Direction:      direction,
		Strength:       strength,
		Reason:         fmt.Sprintf("merged %d signals", len(pool)),
		Timestamp:      day,
		RuleName:       "merged",
		Category:       "merged",
		IndicatorsUsed: indKeys,
		SourceRules:    ruleNames,
		SourceReasons:  reasons,
	}, true
}
