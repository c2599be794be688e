package classifier

import (
	"sort"
	"strings"

	"github.com/selivandex/newswire/pkg/models"
)

// Result is a single classification outcome
type Result struct {
	AssetType       models.AssetType
	Confidence      float64
	MatchedKeywords []string
}

// Detector assigns asset-type categories to text using static keyword tables.
// Pure function of its input; safe for concurrent use.
type Detector struct {
	patterns map[models.AssetType][]keywordWeight
	// scoring order doubles as the tie-break order
	order []models.AssetType
}

// NewDetector creates new asset type detector
func NewDetector() *Detector {
	return &Detector{
		patterns: buildPatterns(),
		order:    models.AssetTypes(),
	}
}

// Detect returns the best-matching category for the text, with a confidence
// in [0,1] and the keywords that matched. When no keyword matches anywhere,
// the supplied fallback category is returned with confidence 0.
func (d *Detector) Detect(text string, fallback models.AssetType) Result {
	scores, matches := d.score(text)

	var total float64
	for _, s := range scores {
		total += s
	}

	if total == 0 {
		return Result{AssetType: fallback, Confidence: 0}
	}

	best := d.order[0]
	bestScore := scores[best]
	for _, at := range d.order[1:] {
		if scores[at] > bestScore {
			best = at
			bestScore = scores[at]
		}
	}

	return Result{
		AssetType:       best,
		Confidence:      bestScore / total,
		MatchedKeywords: matches[best],
	}
}

// DetectAll returns every category whose confidence exceeds threshold,
// sorted descending by confidence. Used for multi-label tagging.
func (d *Detector) DetectAll(text string, threshold float64) []Result {
	scores, matches := d.score(text)

	var total float64
	for _, s := range scores {
		total += s
	}
	if total == 0 {
		return nil
	}

	results := make([]Result, 0, len(d.order))
	for _, at := range d.order {
		conf := scores[at] / total
		if conf > threshold {
			results = append(results, Result{
				AssetType:       at,
				Confidence:      conf,
				MatchedKeywords: matches[at],
			})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Confidence > results[j].Confidence
	})

	return results
}

// score sums keyword weights per category over the lower-cased text
func (d *Detector) score(text string) (map[models.AssetType]float64, map[models.AssetType][]string) {
	lower := strings.ToLower(text)

	scores := make(map[models.AssetType]float64, len(d.order))
	matches := make(map[models.AssetType][]string, len(d.order))

	for _, at := range d.order {
		for _, kw := range d.patterns[at] {
			if strings.Contains(lower, kw.keyword) {
				scores[at] += kw.weight
				matches[at] = append(matches[at], strings.TrimSpace(kw.keyword))
			}
		}
	}

	return scores, matches
}
