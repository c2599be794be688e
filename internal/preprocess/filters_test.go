package preprocess

import (
	"reflect"
	"testing"
	"time"
)

func TestFilters_Normalize(t *testing.T) {
	filters := Filters{
		TimeRange:  " 24H ",
		AssetTypes: []string{"crypto", "STOCKS", "crypto", ""},
		Tickers:    []string{"btc", "AAPL", "BTC"},
		Sources:    []string{"Reuters", "CoinDesk"},
		Search:     "  fed  ",
		Sentiment:  "Bullish",
	}

	got := filters.Normalize()

	if got.TimeRange != "24h" {
		t.Errorf("Expected 24h, got %s", got.TimeRange)
	}
	if !reflect.DeepEqual(got.AssetTypes, []string{"CRYPTO", "STOCKS"}) {
		t.Errorf("Unexpected asset types: %v", got.AssetTypes)
	}
	if !reflect.DeepEqual(got.Tickers, []string{"AAPL", "BTC"}) {
		t.Errorf("Unexpected tickers: %v", got.Tickers)
	}
	if !reflect.DeepEqual(got.Sources, []string{"CoinDesk", "Reuters"}) {
		t.Errorf("Unexpected sources: %v", got.Sources)
	}
	if got.Search != "fed" {
		t.Errorf("Expected trimmed search, got %q", got.Search)
	}
	if got.Sentiment != SentimentBullish {
		t.Errorf("Expected bullish, got %q", got.Sentiment)
	}
}

func TestFilters_NormalizeDefaults(t *testing.T) {
	got := Filters{TimeRange: "yesterday", Sentiment: "angry"}.Normalize()

	if got.TimeRange != DefaultTimeRange {
		t.Errorf("Invalid range should fall back to default, got %s", got.TimeRange)
	}
	if got.Sentiment != "" {
		t.Errorf("Invalid sentiment should be cleared, got %q", got.Sentiment)
	}
}

func TestFilters_CacheKeyOrderInsensitive(t *testing.T) {
	a := Filters{
		TimeRange:  "1h",
		AssetTypes: []string{"CRYPTO", "STOCKS"},
		Tickers:    []string{"BTC", "ETH"},
	}
	b := Filters{
		TimeRange:  "1h",
		AssetTypes: []string{"stocks", "crypto"},
		Tickers:    []string{"eth", "btc"},
	}

	if a.CacheKey() != b.CacheKey() {
		t.Error("Semantically equal filters should share a cache key")
	}
}

func TestFilters_CacheKeyDiscriminates(t *testing.T) {
	base := Filters{TimeRange: "24h"}

	variants := []Filters{
		{TimeRange: "1h"},
		{TimeRange: "24h", AssetTypes: []string{"CRYPTO"}},
		{TimeRange: "24h", Search: "fed"},
		{TimeRange: "24h", Sentiment: SentimentBearish},
		{TimeRange: "24h", Tickers: []string{"BTC"}},
	}

	baseKey := base.CacheKey()
	for i, v := range variants {
		if v.CacheKey() == baseKey {
			t.Errorf("Variant %d should produce a distinct cache key", i)
		}
	}
}

func TestFilters_CacheKeyFormat(t *testing.T) {
	key := Filters{}.CacheKey()

	if len(key) != 64 {
		t.Errorf("Expected 64 hex chars, got %d", len(key))
	}
	if key != (Filters{}).CacheKey() {
		t.Error("Cache key should be stable")
	}
}

func TestFilters_Window(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		timeRange string
		expected  time.Duration
	}{
		{"1h", time.Hour},
		{"6h", 6 * time.Hour},
		{"24h", 24 * time.Hour},
		{"7d", 7 * 24 * time.Hour},
		{"bogus", 24 * time.Hour},
		{"", 24 * time.Hour},
	}

	for _, tt := range tests {
		from, to := Filters{TimeRange: tt.timeRange}.Window(now)

		if !to.Equal(now) {
			t.Errorf("%q: window should end at now", tt.timeRange)
		}
		if got := to.Sub(from); got != tt.expected {
			t.Errorf("%q: expected window %v, got %v", tt.timeRange, tt.expected, got)
		}
	}
}
