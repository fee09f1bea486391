// Package sentiment scores free text with the VADER lexicon and rule set.
//
// The polarity of a text is VADER's normalised compound score, which already
// lies in [-1, 1]. Negation, boosters, capitalisation, "but" clauses and
// punctuation emphasis are handled by the underlying analyzer.
package sentiment

import (
	"math"
	"sync"

	"github.com/jonreiter/govader"

	"todo-sentiment/internal/domain"
)

// LexiconVersion identifies the scoring data, pinned to the govader module
// version in go.mod. Bump it together with that dependency.
const LexiconVersion = "govader-v0.0.0-20250429093935-f6505c8d03cc"

// Result is the outcome of classifying a piece of text.
type Result struct {
	Label      domain.Sentiment
	Polarity   float64
	Confidence float64
}

// loading the lexicon parses several thousand entries; the analyzer only
// reads its maps afterwards, so one instance is shared.
var sharedVader = sync.OnceValue(govader.NewSentimentIntensityAnalyzer)

// Analyzer classifies text. The zero value is not usable; use New.
type Analyzer struct {
	vader *govader.SentimentIntensityAnalyzer
}

// New returns an Analyzer backed by the VADER lexicon.
func New() *Analyzer {
	return &Analyzer{vader: sharedVader()}
}

// Classify scores text and derives its label. Confidence is |polarity|.
func (a *Analyzer) Classify(text string) Result {
	p := a.Polarity(text)
	return Result{
		Label:      Label(p),
		Polarity:   p,
		Confidence: math.Abs(p),
	}
}

// Polarity returns the text's compound score in [-1, 1]; 0 when no scored
// word occurs.
func (a *Analyzer) Polarity(text string) float64 {
	return round(clamp(a.vader.PolarityScores(text).Compound))
}

// Label maps a polarity to its sentiment label.
func Label(polarity float64) domain.Sentiment {
	switch {
	case polarity > 0:
		return domain.SentimentPositive
	case polarity < 0:
		return domain.SentimentNegative
	default:
		return domain.SentimentNeutral
	}
}

func clamp(v float64) float64 {
	return math.Max(-1, math.Min(1, v))
}

// round trims float noise so equal inputs always serialise identically.
func round(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}
