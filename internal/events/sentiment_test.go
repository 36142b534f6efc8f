package events

import (
	"testing"
	"time"

	"quantsim/internal/types"
)

func TestScorePositive(t *testing.T) {
	s := NewScorer()
	score, hits := s.Score("Company beats estimates, announces record quarterly profit")
	if score <= 0 {
		t.Errorf("score = %f, want positive", score)
	}
	if len(hits) == 0 {
		t.Error("no keywords matched")
	}
}

func TestScoreNegativeClamped(t *testing.T) {
	s := NewScorer()
	score, _ := s.Score("fraud investigation, default looms after downgrade and lawsuit")
	if score != -1 {
		t.Errorf("score = %f, want clamped -1", score)
	}
}

func TestScoreNeutral(t *testing.T) {
	s := NewScorer()
	score, hits := s.Score("Company holds annual general meeting")
	if score != 0 || len(hits) != 0 {
		t.Errorf("neutral text scored %f with hits %v", score, hits)
	}
}

func TestScoreHitsOrderedByWeight(t *testing.T) {
	s := NewScorer()
	_, hits := s.Score("profit surge after fraud cleared")
	if len(hits) < 3 {
		t.Fatalf("hits = %v, want at least 3", hits)
	}
	if hits[0] != "fraud" {
		t.Errorf("strongest keyword first: got %v", hits)
	}
}

func TestEventWrapsArticle(t *testing.T) {
	s := NewScorer()
	a := Article{
		Title:     "Regulator opens investigation into accounts",
		Summary:   "The probe follows a restatement.",
		Source:    "MoneyControl",
		Symbol:    "AAA",
		FetchedAt: time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC),
	}
	ev := s.Event(a)
	if ev.ID == "" {
		t.Error("event has no id")
	}
	if ev.Type != types.EventNews {
		t.Errorf("type = %q, want news", ev.Type)
	}
	if ev.SentimentScore >= 0 {
		t.Errorf("score = %f, want negative", ev.SentimentScore)
	}
	if ev.Severity == types.SeverityLow {
		t.Errorf("severity = %q, want above low for a strong score", ev.Severity)
	}
	if ev.Symbol != "AAA" || ev.Source != "MoneyControl" {
		t.Errorf("article fields lost: %+v", ev)
	}
}

func TestSeverityBands(t *testing.T) {
	cases := []struct {
		score float64
		want  types.Severity
	}{
		{0.95, types.SeverityCritical},
		{-0.95, types.SeverityCritical},
		{0.7, types.SeverityHigh},
		{0.4, types.SeverityMedium},
		{0.1, types.SeverityLow},
	}
	for _, tc := range cases {
		if got := severityOf(tc.score); got != tc.want {
			t.Errorf("severityOf(%f) = %q, want %q", tc.score, got, tc.want)
		}
	}
}
