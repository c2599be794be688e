package feeds

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/selivandex/newswire/internal/adapters/config"
	"github.com/selivandex/newswire/internal/classifier"
	"github.com/selivandex/newswire/pkg/models"
)

const rssTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
<title>Test Feed</title>
<link>https://example.com</link>
%s
</channel>
</rss>`

func rssItem(title, link, pubDate string) string {
	return fmt.Sprintf(`<item>
<title>%s</title>
<link>%s</link>
<description>desc</description>
<pubDate>%s</pubDate>
</item>`, title, link, pubDate)
}

func testFetcher(t *testing.T, now time.Time) *Fetcher {
	t.Helper()
	fetcher := NewFetcher(&config.IngestConfig{
		FetchTimeout:  2 * time.Second,
		RecencyWindow: 7 * 24 * time.Hour,
		SummaryMaxLen: 500,
		UserAgent:     "test/1.0",
	}, classifier.NewDetector())
	fetcher.now = func() time.Time { return now }
	return fetcher
}

func TestFetcher_Fetch(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	recent := now.Add(-2 * time.Hour).Format(time.RFC1123Z)
	stale := now.Add(-30 * 24 * time.Hour).Format(time.RFC1123Z)

	body := fmt.Sprintf(rssTemplate,
		rssItem("Bitcoin surges to record high", "https://example.com/btc", recent)+
			rssItem("Old story about gold", "https://example.com/gold", stale)+
			`<item><title></title><link></link></item>`)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(body))
	}))
	defer server.Close()

	fetcher := testFetcher(t, now)
	source := models.FeedSource{Name: "TestFeed", URL: server.URL, AssetType: models.AssetStocks}

	items, err := fetcher.Fetch(context.Background(), source)
	if err != nil {
		t.Fatal(err)
	}

	// Stale entry and the title-less entry are dropped
	if len(items) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(items))
	}

	item := items[0]
	if item.Title != "Bitcoin surges to record high" {
		t.Errorf("Unexpected title: %s", item.Title)
	}
	if item.AssetType != models.AssetCrypto {
		t.Errorf("Expected CRYPTO classification, got %s", item.AssetType)
	}
	if item.SourceName != "TestFeed" {
		t.Errorf("Unexpected source name: %s", item.SourceName)
	}
	if len(item.Hash) != 64 {
		t.Errorf("Expected sha256 hash, got %q", item.Hash)
	}
	if item.URL != "https://example.com/btc" {
		t.Errorf("Unexpected URL: %s", item.URL)
	}
}

func TestFetcher_FetchUsesSourceCategoryAsFallback(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	body := fmt.Sprintf(rssTemplate,
		rssItem("Weekly roundup of reader questions", "https://example.com/roundup",
			now.Add(-time.Hour).Format(time.RFC1123Z)))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	defer server.Close()

	fetcher := testFetcher(t, now)
	source := models.FeedSource{Name: "Feed", URL: server.URL, AssetType: models.AssetCommodities}

	items, err := fetcher.Fetch(context.Background(), source)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(items))
	}
	if items[0].AssetType != models.AssetCommodities {
		t.Errorf("Expected fallback to source category, got %s", items[0].AssetType)
	}
}

func TestFetcher_FetchMissingDateUsesFetchTime(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	body := fmt.Sprintf(rssTemplate,
		`<item><title>Undated story</title><link>https://example.com/u</link></item>`)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	defer server.Close()

	fetcher := testFetcher(t, now)

	items, err := fetcher.Fetch(context.Background(),
		models.FeedSource{Name: "Feed", URL: server.URL, AssetType: models.AssetMacro})
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(items))
	}
	if !items[0].PublishedAt.Equal(now) {
		t.Errorf("Expected fetch time as published date, got %v", items[0].PublishedAt)
	}
}

func TestFetcher_FetchError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	fetcher := testFetcher(t, time.Now())

	if _, err := fetcher.Fetch(context.Background(),
		models.FeedSource{Name: "Feed", URL: server.URL}); err == nil {
		t.Error("Expected error for failing feed")
	}
}
