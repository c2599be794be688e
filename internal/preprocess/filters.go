package preprocess

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Time range keywords accepted by the web layer
const DefaultTimeRange = "24h"

var timeRanges = map[string]time.Duration{
	"1h":  time.Hour,
	"6h":  6 * time.Hour,
	"24h": 24 * time.Hour,
	"3d":  72 * time.Hour,
	"7d":  7 * 24 * time.Hour,
	"30d": 30 * 24 * time.Hour,
}

// Sentiment bucket filters
const (
	SentimentBullish = "bullish"
	SentimentBearish = "bearish"
	SentimentNeutral = "neutral"
)

// Filters is the filter specification of a listing request
type Filters struct {
	TimeRange  string   `json:"time_range"`
	AssetTypes []string `json:"asset_types"`
	Sources    []string `json:"sources"`
	Tickers    []string `json:"tickers"`
	Search     string   `json:"search"`
	Sentiment  string   `json:"sentiment"`
}

// Normalize returns a canonical copy: arrays sorted and deduplicated,
// tickers upper-cased, defaults applied. Semantically equal filters
// normalize to the same value regardless of field order in the request.
func (f Filters) Normalize() Filters {
	normalized := Filters{
		TimeRange: strings.ToLower(strings.TrimSpace(f.TimeRange)),
		Search:    strings.TrimSpace(f.Search),
		Sentiment: strings.ToLower(strings.TrimSpace(f.Sentiment)),
	}

	if _, ok := timeRanges[normalized.TimeRange]; !ok {
		normalized.TimeRange = DefaultTimeRange
	}

	switch normalized.Sentiment {
	case SentimentBullish, SentimentBearish, SentimentNeutral:
	default:
		normalized.Sentiment = ""
	}

	normalized.AssetTypes = canonicalSet(f.AssetTypes, strings.ToUpper)
	normalized.Sources = canonicalSet(f.Sources, nil)
	normalized.Tickers = canonicalSet(f.Tickers, strings.ToUpper)

	return normalized
}

// CacheKey derives the deterministic cache key of the normalized filter set
func (f Filters) CacheKey() string {
	n := f.Normalize()

	canonical := strings.Join([]string{
		"range=" + n.TimeRange,
		"types=" + strings.Join(n.AssetTypes, ","),
		"sources=" + strings.Join(n.Sources, ","),
		"tickers=" + strings.Join(n.Tickers, ","),
		"search=" + strings.ToLower(n.Search),
		"sentiment=" + n.Sentiment,
	}, "|")

	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])
}

// Window resolves the time range keyword to an absolute interval ending now
func (f Filters) Window(now time.Time) (time.Time, time.Time) {
	keyword := strings.ToLower(strings.TrimSpace(f.TimeRange))

	duration, ok := timeRanges[keyword]
	if !ok {
		duration = timeRanges[DefaultTimeRange]
	}

	return now.Add(-duration), now
}

// canonicalSet trims, optionally maps, deduplicates and sorts values
func canonicalSet(values []string, mapper func(string) string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))

	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if mapper != nil {
			v = mapper(v)
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}

	sort.Strings(out)
	return out
}

// String implements fmt.Stringer for log lines
func (f Filters) String() string {
	n := f.Normalize()
	return fmt.Sprintf("range=%s types=%v sources=%v tickers=%v search=%q sentiment=%s",
		n.TimeRange, n.AssetTypes, n.Sources, n.Tickers, n.Search, n.Sentiment)
}
