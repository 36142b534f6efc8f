package events

import (
	"sort"
	"strings"

	"github.com/google/uuid"

	"quantsim/internal/types"
)

// Scorer turns scraped articles into scored market events using a keyword
// lexicon. Scores are in [-1,1].
type Scorer struct {
	positive map[string]float64
	negative map[string]float64
}

// NewScorer builds a scorer with the built-in financial lexicon.
func NewScorer() *Scorer {
	return &Scorer{
		positive: map[string]float64{
			"beats":      0.8,
			"record":     0.7,
			"upgrade":    0.7,
			"surge":      0.6,
			"profit":     0.5,
			"growth":     0.5,
			"expansion":  0.5,
			"dividend":   0.4,
			"buyback":    0.6,
			"wins":       0.5,
			"approval":   0.5,
			"strong":     0.4,
			"raises":     0.4,
			"outperform": 0.6,
		},
		negative: map[string]float64{
			"fraud":         -1,
			"investigation": -0.8,
			"downgrade":     -0.7,
			"misses":        -0.7,
			"plunge":        -0.7,
			"loss":          -0.5,
			"lawsuit":       -0.6,
			"default":       -0.9,
			"recall":        -0.5,
			"layoffs":       -0.5,
			"weak":          -0.4,
			"probe":         -0.7,
			"resigns":       -0.5,
			"underperform":  -0.6,
		},
	}
}

// Score sums lexicon hits over the text and returns a clamped score plus
// the matched keywords, strongest first.
func (s *Scorer) Score(text string) (float64, []string) {
	lowered := strings.ToLower(text)
	var score float64
	weights := make(map[string]float64)
	for kw, w := range s.positive {
		if strings.Contains(lowered, kw) {
			score += w
			weights[kw] = w
		}
	}
	for kw, w := range s.negative {
		if strings.Contains(lowered, kw) {
			score += w
			weights[kw] = w
		}
	}
	if score > 1 {
		score = 1
	}
	if score < -1 {
		score = -1
	}
	hits := make([]string, 0, len(weights))
	for kw := range weights {
		hits = append(hits, kw)
	}
	sort.Slice(hits, func(i, j int) bool {
		wi, wj := abs(weights[hits[i]]), abs(weights[hits[j]])
		if wi != wj {
			return wi > wj
		}
		return hits[i] < hits[j]
	})
	return score, hits
}

// Event scores one article and wraps it as a market event.
func (s *Scorer) Event(a Article) types.MarketEvent {
	score, hits := s.Score(a.Title + " " + a.Summary)
	return types.MarketEvent{
		ID:             uuid.NewString(),
		Type:           types.EventNews,
		Symbol:         a.Symbol,
		Timestamp:      a.FetchedAt,
		Title:          a.Title,
		Content:        a.Summary,
		Severity:       severityOf(score),
		SentimentScore: score,
		Keywords:       hits,
		Source:         a.Source,
	}
}

func severityOf(score float64) types.Severity {
	switch v := abs(score); {
	case v >= 0.9:
		return types.SeverityCritical
	case v >= 0.6:
		return types.SeverityHigh
	case v >= 0.3:
		return types.SeverityMedium
	default:
		return types.SeverityLow
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
