package rules

import (
	"fmt"
	"math"
	"strings"

	"quantsim/internal/types"
)

// SentimentParams configures the news-sentiment event rule.
type SentimentParams struct {
	MinAbsScore float64 // minimum |sentiment_score|, default 0.7
}

// NewSentiment builds the sentiment rule: it fires only on strongly scored
// events (|score| above the threshold) of high or critical severity.
func NewSentiment(p SentimentParams) *EventRule {
	if p.MinAbsScore == 0 {
		p.MinAbsScore = 0.7
	}
	meta := Meta{
		Name:        "news_sentiment",
		DisplayName: "新闻情绪",
		Category:    CategoryNewsSentiment,
		Description: fmt.Sprintf("strong sentiment (|score|>%.1f, severity high+) on news events", p.MinAbsScore),
	}
	fn := func(ev types.MarketEvent) (types.Signal, bool) {
		if math.Abs(ev.SentimentScore) <= p.MinAbsScore {
			return types.Signal{}, false
		}
		if ev.Severity != types.SeverityHigh && ev.Severity != types.SeverityCritical {
			return types.Signal{}, false
		}
		dir := types.DirectionBuy
		if ev.SentimentScore < 0 {
			dir = types.DirectionSell
		}
		return types.Signal{
			Symbol:    ev.Symbol,
			Direction: dir,
			Strength:  math.Min(math.Abs(ev.SentimentScore), 1),
			Reason:    fmt.Sprintf("%s sentiment %.2f (%s): %s", ev.Type, ev.SentimentScore, ev.Severity, ev.Title),
			Timestamp: ev.Timestamp,
			RuleName:  meta.Name,
			Category:  string(meta.Category),
		}, true
	}
	return &EventRule{Meta: meta, Fn: fn}
}

// EarningsAnticipationParams configures the pre-earnings rule.
type EarningsAnticipationParams struct {
	MinDaysAhead int     // default 1
	MaxDaysAhead int     // default 3
	Strength     float64 // default 0.5
}

// NewEarningsAnticipation builds the rule that buys into a scheduled
// disclosure 1-3 days ahead with a fixed moderate strength. The event's
// metadata carries "days_until_report".
func NewEarningsAnticipation(p EarningsAnticipationParams) *EventRule {
	if p.MinDaysAhead == 0 {
		p.MinDaysAhead = 1
	}
	if p.MaxDaysAhead == 0 {
		p.MaxDaysAhead = 3
	}
	if p.Strength == 0 {
		p.Strength = 0.5
	}
	meta := Meta{
		Name:        "earnings_anticipation",
		DisplayName: "财报预期",
		Category:    CategoryEarnings,
		Description: fmt.Sprintf("buys %d-%d days before a scheduled disclosure", p.MinDaysAhead, p.MaxDaysAhead),
	}
	fn := func(ev types.MarketEvent) (types.Signal, bool) {
		if ev.Type != types.EventEarnings && ev.Type != types.EventFinancialReport {
			return types.Signal{}, false
		}
		days, ok := metadataDays(ev, "days_until_report")
		if !ok || days < p.MinDaysAhead || days > p.MaxDaysAhead {
			return types.Signal{}, false
		}
		return types.Signal{
			Symbol:    ev.Symbol,
			Direction: types.DirectionBuy,
			Strength:  p.Strength,
			Reason:    fmt.Sprintf("scheduled disclosure in %d day(s): %s", days, ev.Title),
			Timestamp: ev.Timestamp,
			RuleName:  meta.Name,
			Category:  string(meta.Category),
		}, true
	}
	return &EventRule{Meta: meta, Fn: fn}
}

// KeywordTriggerParams configures the keyword-list event rule.
type KeywordTriggerParams struct {
	Positive []string
	Negative []string
}

// NewKeywordTrigger builds the rule that fires when listed keywords appear
// in the event title or extracted keywords. The strength grows with the
// net number of matches.
func NewKeywordTrigger(p KeywordTriggerParams) *EventRule {
	meta := Meta{
		Name:        "keyword_trigger",
		DisplayName: "关键词触发",
		Category:    CategoryKeywordTrigger,
		Description: "positive/negative keyword hits in titles and keywords",
	}
	fn := func(ev types.MarketEvent) (types.Signal, bool) {
		haystack := strings.ToLower(ev.Title)
		for _, kw := range ev.Keywords {
			haystack += " " + strings.ToLower(kw)
		}
		net := 0
		var hits []string
		for _, kw := range p.Positive {
			if strings.Contains(haystack, strings.ToLower(kw)) {
				net++
				hits = append(hits, kw)
			}
		}
		for _, kw := range p.Negative {
			if strings.Contains(haystack, strings.ToLower(kw)) {
				net--
				hits = append(hits, kw)
			}
		}
		if net == 0 {
			return types.Signal{}, false
		}
		dir := types.DirectionBuy
		if net < 0 {
			dir = types.DirectionSell
		}
		return types.Signal{
			Symbol:    ev.Symbol,
			Direction: dir,
			Strength:  math.Min(0.3+0.2*math.Abs(float64(net)), 1),
			Reason:    fmt.Sprintf("keyword hits %v in %q", hits, ev.Title),
			Timestamp: ev.Timestamp,
			RuleName:  meta.Name,
			Category:  string(meta.Category),
		}, true
	}
	return &EventRule{Meta: meta, Fn: fn}
}

func metadataDays(ev types.MarketEvent, key string) (int, bool) {
	raw, ok := ev.Metadata[key]
	if !ok {
		return 0, false
	}
	switch v := raw.(type) {
	case int:
		return v, true
	case float64:
		return int(v), true
	}
	return 0, false
}
