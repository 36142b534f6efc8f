// Package rules catalogs the signal rules: pure functions turning a per-bar
// technical context or a market event into a directional signal, together
// with metadata describing what each rule needs and composable pre/post
// filters.
package rules

import (
	"errors"
	"sort"
	"time"

	"quantsim/internal/ta"
	"quantsim/internal/types"
)

// ErrUnknownRule is returned when a configuration names a rule that is not
// registered.
var ErrUnknownRule = errors.New("rules: unknown rule")

// Category groups rules by the market behavior they exploit.
type Category string

const (
	CategoryTrendFollowing Category = "trend-following"
	CategoryMomentum       Category = "momentum"
	CategoryBreakout       Category = "breakout"
	CategoryMeanReversion  Category = "mean-reversion"
	CategoryVolume         Category = "volume"
	CategoryVolatility     Category = "volatility"
	CategoryNewsSentiment  Category = "news-sentiment"
	CategoryEarnings       Category = "earnings"
	CategoryKeywordTrigger Category = "keyword-trigger"
	CategoryMacroEvent     Category = "macro-event"
)

// Meta describes a registered rule: identity, category, and the indicator
// columns it may read. Required lists every column the rule can possibly
// request (adaptive rules expand the full volatility-stepped period range),
// so the context builder can guarantee their presence.
type Meta struct {
	Name        string
	DisplayName string
	Category    Category
	Required    []string
	Optional    []string
	Description string
}

// MarketContext carries the auxiliary per-bar numbers rules and filters
// consult alongside the indicator columns.
type MarketContext struct {
	Volatility float64 // annualized 20-day return volatility, clamped to [0,1]
	AvgVolume  float64 // 20-day mean volume
	High20     float64 // trailing 20-day high
	Low20      float64 // trailing 20-day low
}

// Context is the technical signal context for one symbol and bar. It is
// built fresh per bar and treated as immutable by rules.
type Context struct {
	Symbol    string
	Timestamp time.Time
	Price     float64
	Volume    float64
	Index     int
	Closes    []float64
	Frame     *ta.Frame
	Market    MarketContext
}

// Ind returns the indicator value for the current bar.
func (c *Context) Ind(key string) (float64, bool) {
	return c.Frame.At(key, c.Index)
}

// PrevInd returns the indicator value for the previous bar.
func (c *Context) PrevInd(key string) (float64, bool) {
	return c.Frame.At(key, c.Index-1)
}

// Momentum is the fractional price change over lookback bars.
func (c *Context) Momentum(lookback int) (float64, bool) {
	i := c.Index - lookback
	if i < 0 || i >= len(c.Closes) || c.Closes[i] == 0 {
		return 0, false
	}
	return (c.Price - c.Closes[i]) / c.Closes[i], true
}

// TechnicalFunc computes a signal from a bar context. The boolean is false
// when the rule cannot evaluate (missing indicators); a HOLD decision is a
// valid signal with Direction 0.
type TechnicalFunc func(c *Context) (types.Signal, bool)

// TechnicalRule is a technical rule plus its filter chain.
type TechnicalRule struct {
	Meta Meta
	Pre  []Filter
	Post []Filter
	Fn   TechnicalFunc
}

// WithPreFilter appends a filter evaluated before the rule runs; a rejected
// pre-filter short-circuits the rule entirely.
func (r *TechnicalRule) WithPreFilter(f Filter) *TechnicalRule {
	r.Pre = append(r.Pre, f)
	return r
}

// WithPostFilter appends a filter evaluated on the produced signal.
func (r *TechnicalRule) WithPostFilter(f Filter) *TechnicalRule {
	r.Post = append(r.Post, f)
	return r
}

// Evaluate runs the pre-filters, the rule function and the post-filters.
func (r *TechnicalRule) Evaluate(c *Context) (types.Signal, bool) {
	for _, f := range r.Pre {
		if !f.Keep(nil, c) {
			return types.Signal{}, false
		}
	}
	sig, ok := r.Fn(c)
	if !ok {
		return types.Signal{}, false
	}
	for _, f := range r.Post {
		if !f.Keep(&sig, c) {
			return types.Signal{}, false
		}
	}
	return sig, true
}

// EventFunc computes a signal from a market event, or nothing.
type EventFunc func(ev types.MarketEvent) (types.Signal, bool)

// EventRule is an event-driven rule.
type EventRule struct {
	Meta Meta
	Fn   EventFunc
}

// Evaluate runs the event rule.
func (r *EventRule) Evaluate(ev types.MarketEvent) (types.Signal, bool) {
	return r.Fn(ev)
}

// Registry holds the named rule catalog.
type Registry struct {
	technical map[string]*TechnicalRule
	event     map[string]*EventRule
}

// NewRegistry creates an empty rule Registry.
func NewRegistry() *Registry {
	return &Registry{
		technical: make(map[string]*TechnicalRule),
		event:     make(map[string]*EventRule),
	}
}

// RegisterTechnical adds a technical rule, keyed by its Meta.Name.
func (r *Registry) RegisterTechnical(rule *TechnicalRule) {
	r.technical[rule.Meta.Name] = rule
}

// RegisterEvent adds an event rule, keyed by its Meta.Name.
func (r *Registry) RegisterEvent(rule *EventRule) {
	r.event[rule.Meta.Name] = rule
}

// Technical retrieves a technical rule by name.
func (r *Registry) Technical(name string) (*TechnicalRule, bool) {
	rule, ok := r.technical[name]
	return rule, ok
}

// Event retrieves an event rule by name.
func (r *Registry) Event(name string) (*EventRule, bool) {
	rule, ok := r.event[name]
	return rule, ok
}

// TechnicalRules returns the registered technical rules in name order.
func (r *Registry) TechnicalRules() []*TechnicalRule {
	names := make([]string, 0, len(r.technical))
	for name := range r.technical {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]*TechnicalRule, len(names))
	for i, name := range names {
		out[i] = r.technical[name]
	}
	return out
}

// EventRules returns the registered event rules in name order.
func (r *Registry) EventRules() []*EventRule {
	names := make([]string, 0, len(r.event))
	for name := range r.event {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]*EventRule, len(names))
	for i, name := range names {
		out[i] = r.event[name]
	}
	return out
}

// RequiredColumns is the union of every indicator column the registered
// technical rules may request, plus extra keys the caller needs.
func (r *Registry) RequiredColumns(extra ...string) []string {
	seen := make(map[string]bool)
	var keys []string
	add := func(k string) {
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	for _, rule := range r.TechnicalRules() {
		for _, k := range rule.Meta.Required {
			add(k)
		}
		for _, k := range rule.Meta.Optional {
			add(k)
		}
	}
	for _, k := range extra {
		add(k)
	}
	sort.Strings(keys)
	return keys
}
