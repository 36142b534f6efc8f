package rules

import (
	"testing"
	"time"

	"quantsim/internal/types"
)

func newsEvent(score float64, severity types.Severity) types.MarketEvent {
	return types.MarketEvent{
		ID:             "ev-1",
		Type:           types.EventNews,
		Symbol:         "AAA",
		Timestamp:      time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC),
		Title:          "test headline",
		Severity:       severity,
		SentimentScore: score,
	}
}

func TestSentimentFiresOnStrongPositive(t *testing.T) {
	rule := NewSentiment(SentimentParams{})
	sig, ok := rule.Evaluate(newsEvent(0.85, types.SeverityHigh))
	if !ok {
		t.Fatal("strong positive event did not fire")
	}
	if sig.Direction != types.DirectionBuy || sig.Strength != 0.85 {
		t.Errorf("signal = %+v, want buy at 0.85", sig)
	}
}

func TestSentimentNegativeSells(t *testing.T) {
	rule := NewSentiment(SentimentParams{})
	sig, ok := rule.Evaluate(newsEvent(-0.9, types.SeverityCritical))
	if !ok {
		t.Fatal("strong negative event did not fire")
	}
	if sig.Direction != types.DirectionSell {
		t.Errorf("direction = %d, want sell", sig.Direction)
	}
}

func TestSentimentIgnoresWeakScore(t *testing.T) {
	rule := NewSentiment(SentimentParams{})
	if _, ok := rule.Evaluate(newsEvent(0.5, types.SeverityHigh)); ok {
		t.Error("weak score fired")
	}
}

func TestSentimentIgnoresLowSeverity(t *testing.T) {
	rule := NewSentiment(SentimentParams{})
	if _, ok := rule.Evaluate(newsEvent(0.9, types.SeverityMedium)); ok {
		t.Error("medium severity fired")
	}
}

func TestEarningsAnticipationWindow(t *testing.T) {
	rule := NewEarningsAnticipation(EarningsAnticipationParams{})
	ev := types.MarketEvent{
		Type:      types.EventEarnings,
		Symbol:    "AAA",
		Timestamp: time.Now(),
		Metadata:  map[string]any{"days_until_report": float64(2)},
	}
	sig, ok := rule.Evaluate(ev)
	if !ok {
		t.Fatal("in-window disclosure did not fire")
	}
	if sig.Direction != types.DirectionBuy || sig.Strength != 0.5 {
		t.Errorf("signal = %+v, want buy at default strength 0.5", sig)
	}

	ev.Metadata["days_until_report"] = 10
	if _, ok := rule.Evaluate(ev); ok {
		t.Error("out-of-window disclosure fired")
	}

	ev.Type = types.EventNews
	ev.Metadata["days_until_report"] = 2
	if _, ok := rule.Evaluate(ev); ok {
		t.Error("non-earnings event fired")
	}
}

func TestEarningsAnticipationMissingMetadata(t *testing.T) {
	rule := NewEarningsAnticipation(EarningsAnticipationParams{})
	ev := types.MarketEvent{Type: types.EventEarnings, Symbol: "AAA"}
	if _, ok := rule.Evaluate(ev); ok {
		t.Error("event without days_until_report fired")
	}
}

func TestKeywordTriggerNetDirection(t *testing.T) {
	rule := NewKeywordTrigger(KeywordTriggerParams{
		Positive: []string{"buyback", "upgrade"},
		Negative: []string{"fraud"},
	})
	ev := types.MarketEvent{
		Symbol:    "AAA",
		Timestamp: time.Now(),
		Title:     "Board approves Buyback after broker upgrade",
	}
	sig, ok := rule.Evaluate(ev)
	if !ok {
		t.Fatal("keyword matches did not fire")
	}
	if sig.Direction != types.DirectionBuy {
		t.Errorf("direction = %d, want buy for net +2", sig.Direction)
	}
	// 0.3 + 0.2*2
	if sig.Strength != 0.7 {
		t.Errorf("strength = %f, want 0.7", sig.Strength)
	}
}

func TestKeywordTriggerMatchesExtractedKeywords(t *testing.T) {
	rule := NewKeywordTrigger(KeywordTriggerParams{Negative: []string{"fraud"}})
	ev := types.MarketEvent{
		Symbol:   "AAA",
		Title:    "Regulatory action",
		Keywords: []string{"Fraud"},
	}
	sig, ok := rule.Evaluate(ev)
	if !ok {
		t.Fatal("keyword in extracted list did not fire")
	}
	if sig.Direction != types.DirectionSell {
		t.Errorf("direction = %d, want sell", sig.Direction)
	}
}

func TestKeywordTriggerBalancedIsSilent(t *testing.T) {
	rule := NewKeywordTrigger(KeywordTriggerParams{
		Positive: []string{"upgrade"},
		Negative: []string{"fraud"},
	})
	ev := types.MarketEvent{Symbol: "AAA", Title: "upgrade despite fraud probe"}
	if _, ok := rule.Evaluate(ev); ok {
		t.Error("balanced keyword hits fired")
	}
}
