package sentiment

import (
	"fmt"
	"sort"
	"strings"
)

// Label buckets for the bounded score
const (
	LabelPositive = "positive"
	LabelNegative = "negative"
	LabelNeutral  = "neutral"
)

// Result sources
const (
	SourceRuleBased = "rule-based"
	SourceAI        = "ai"
)

const (
	labelThreshold = 0.2
	maxConfidence  = 0.95
)

// Result is a sentiment scoring outcome
type Result struct {
	Score       float64 `json:"score"`
	Label       string  `json:"label"`
	Confidence  float64 `json:"confidence"`
	Explanation string  `json:"explanation"`
	Source      string  `json:"source"`
}

// Analyzer performs keyword-based sentiment analysis over news text.
// Pure function of its input; safe for concurrent use.
type Analyzer struct {
	bullishWords map[string]float64
	bearishWords map[string]float64
}

// NewAnalyzer creates new sentiment analyzer
func NewAnalyzer() *Analyzer {
	return &Analyzer{
		bullishWords: buildBullishWords(),
		bearishWords: buildBearishWords(),
	}
}

// Analyze scores the concatenated title and summary.
// Score is bounded to [-1,1]; zero with confidence 0.5 when no keyword matched.
func (a *Analyzer) Analyze(title, summary string) Result {
	text := strings.ToLower(title + " " + summary)

	var posSum, negSum float64
	var posHits, negHits []string

	for word, weight := range a.bullishWords {
		if strings.Contains(text, word) {
			posSum += weight
			posHits = append(posHits, word)
		}
	}

	for word, weight := range a.bearishWords {
		if strings.Contains(text, word) {
			negSum += weight
			negHits = append(negHits, word)
		}
	}

	if posSum == 0 && negSum == 0 {
		return Result{
			Score:       0,
			Label:       LabelNeutral,
			Confidence:  0.5,
			Explanation: "no sentiment keywords matched",
			Source:      SourceRuleBased,
		}
	}

	denom := posSum + negSum
	if denom < 3 {
		denom = 3
	}

	score := (posSum - negSum) / denom
	score = clamp(score, -1, 1)

	confidence := (posSum + negSum) / 5
	if confidence > maxConfidence {
		confidence = maxConfidence
	}

	return Result{
		Score:       score,
		Label:       LabelFor(score),
		Confidence:  confidence,
		Explanation: explain(posHits, negHits),
		Source:      SourceRuleBased,
	}
}

// LabelFor maps a score to its label using the fixed thresholds
func LabelFor(score float64) string {
	switch {
	case score > labelThreshold:
		return LabelPositive
	case score < -labelThreshold:
		return LabelNegative
	default:
		return LabelNeutral
	}
}

func explain(posHits, negHits []string) string {
	sort.Strings(posHits)
	sort.Strings(negHits)

	switch {
	case len(posHits) > 0 && len(negHits) > 0:
		return fmt.Sprintf("mixed: +%s / -%s", top(posHits), top(negHits))
	case len(posHits) > 0:
		return fmt.Sprintf("bullish terms: %s", top(posHits))
	default:
		return fmt.Sprintf("bearish terms: %s", top(negHits))
	}
}

// top formats at most three hits for the explanation string
func top(hits []string) string {
	if len(hits) > 3 {
		hits = hits[:3]
	}
	return strings.Join(hits, ", ")
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
