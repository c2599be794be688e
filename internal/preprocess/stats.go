package preprocess

import (
	"sort"
	"time"

	"github.com/selivandex/newswire/pkg/models"
)

const (
	sentimentThreshold = 0.2
	topTickerCount     = 10
	trendBucketCount   = 24
)

// SentimentHistogram is the three-bucket sentiment breakdown.
// Items without a sentiment score fold into neutral.
type SentimentHistogram struct {
	Bullish int `json:"bullish"`
	Bearish int `json:"bearish"`
	Neutral int `json:"neutral"`
}

// TickerMentions counts how often a ticker appears in the result set
type TickerMentions struct {
	Symbol   string `json:"symbol"`
	Mentions int    `json:"mentions"`
}

// TrendBucket is one hourly bucket of the mention trend
type TrendBucket struct {
	Hour  time.Time `json:"hour"`
	Count int       `json:"count"`
}

// Stats aggregates a listing result set
type Stats struct {
	Total          int                `json:"total"`
	CountsByType   map[string]int     `json:"counts_by_type"`
	CountsBySource map[string]int     `json:"counts_by_source"`
	Sentiment      SentimentHistogram `json:"sentiment"`
	TopTickers     []TickerMentions   `json:"top_tickers"`
	HourlyTrend    []TrendBucket      `json:"hourly_trend"`
}

// ComputeStats derives aggregate statistics from a listing result set.
// The hourly trend covers the 24 most recent hourly buckets that actually
// appear in the set, oldest first.
func ComputeStats(news []models.NewsItem) Stats {
	stats := Stats{
		Total:          len(news),
		CountsByType:   make(map[string]int),
		CountsBySource: make(map[string]int),
	}

	tickerCounts := make(map[string]int)
	hourCounts := make(map[time.Time]int)

	for _, item := range news {
		stats.CountsByType[string(item.AssetType)]++
		stats.CountsBySource[item.SourceName]++

		switch {
		case item.Sentiment != nil && *item.Sentiment > sentimentThreshold:
			stats.Sentiment.Bullish++
		case item.Sentiment != nil && *item.Sentiment < -sentimentThreshold:
			stats.Sentiment.Bearish++
		default:
			stats.Sentiment.Neutral++
		}

		for _, symbol := range item.Tickers {
			tickerCounts[symbol]++
		}

		hour := item.PublishedAt.UTC().Truncate(time.Hour)
		hourCounts[hour]++
	}

	stats.TopTickers = topTickers(tickerCounts)
	stats.HourlyTrend = hourlyTrend(hourCounts)

	return stats
}

// topTickers returns the ten most mentioned tickers, ties broken by symbol
// so output stays deterministic.
func topTickers(counts map[string]int) []TickerMentions {
	ranked := make([]TickerMentions, 0, len(counts))
	for symbol, mentions := range counts {
		ranked = append(ranked, TickerMentions{Symbol: symbol, Mentions: mentions})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Mentions != ranked[j].Mentions {
			return ranked[i].Mentions > ranked[j].Mentions
		}
		return ranked[i].Symbol < ranked[j].Symbol
	})

	if len(ranked) > topTickerCount {
		ranked = ranked[:topTickerCount]
	}

	return ranked
}

// hourlyTrend keeps the most recent 24 hourly buckets present, oldest first
func hourlyTrend(counts map[time.Time]int) []TrendBucket {
	buckets := make([]TrendBucket, 0, len(counts))
	for hour, count := range counts {
		buckets = append(buckets, TrendBucket{Hour: hour, Count: count})
	}

	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].Hour.Before(buckets[j].Hour)
	})

	if len(buckets) > trendBucketCount {
		buckets = buckets[len(buckets)-trendBucketCount:]
	}

	return buckets
}
