package preprocess

import (
	"context"
	"testing"
	"time"

	"github.com/selivandex/newswire/pkg/models"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type fakeStorage struct {
	news       []models.NewsItem
	entries    map[string]*CacheEntry
	queryCalls int
	lastLimit  int
}

func newFakeStorage(news ...models.NewsItem) *fakeStorage {
	return &fakeStorage{
		news:    news,
		entries: make(map[string]*CacheEntry),
	}
}

func (s *fakeStorage) QueryNews(ctx context.Context, filters Filters, from, to time.Time, limit int) ([]models.NewsItem, error) {
	s.queryCalls++
	s.lastLimit = limit
	if len(s.news) > limit {
		return s.news[:limit], nil
	}
	return s.news, nil
}

func (s *fakeStorage) GetCacheEntry(ctx context.Context, key string) (*CacheEntry, error) {
	return s.entries[key], nil
}

func (s *fakeStorage) UpsertCacheEntry(ctx context.Context, key string, payload []byte, generatedAt, expiresAt time.Time) error {
	s.entries[key] = &CacheEntry{
		FilterHash:  key,
		Payload:     payload,
		GeneratedAt: generatedAt,
		ExpiresAt:   expiresAt,
	}
	return nil
}

func (s *fakeStorage) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	var deleted int64
	for key, entry := range s.entries {
		if entry.ExpiresAt.Before(now) {
			delete(s.entries, key)
			deleted++
		}
	}
	return deleted, nil
}

func (s *fakeStorage) GetCacheStats(ctx context.Context) (*CacheStats, error) {
	return &CacheStats{TotalEntries: len(s.entries)}, nil
}

func TestPreprocessor_CacheMissThenHit(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)}
	storage := newFakeStorage(models.NewsItem{
		Title:       "Bitcoin rallies",
		AssetType:   models.AssetCrypto,
		SourceName:  "CoinDesk",
		PublishedAt: clock.now.Add(-time.Hour),
	})
	pre := NewPreprocessor(storage, clock, 5*time.Minute, 0)

	first, err := pre.Preprocess(context.Background(), Filters{TimeRange: "24h"}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if first.FromCache {
		t.Error("First call should miss the cache")
	}
	if len(first.News) != 1 || first.Stats.Total != 1 {
		t.Errorf("Unexpected first result: %+v", first)
	}

	clock.Advance(time.Minute)

	second, err := pre.Preprocess(context.Background(), Filters{TimeRange: "24h"}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !second.FromCache {
		t.Error("Second call within TTL should hit the cache")
	}
	if storage.queryCalls != 1 {
		t.Errorf("Expected one listing query, got %d", storage.queryCalls)
	}
	if !second.GeneratedAt.Equal(first.GeneratedAt) {
		t.Error("Cached result should carry the original generation time")
	}
}

func TestPreprocessor_ExpiresExactlyAtTTL(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)}
	storage := newFakeStorage()
	pre := NewPreprocessor(storage, clock, 5*time.Minute, 0)

	if _, err := pre.Preprocess(context.Background(), Filters{}, 0); err != nil {
		t.Fatal(err)
	}

	// The entry is stale once its expiry is no longer in the future
	clock.Advance(5 * time.Minute)

	result, err := pre.Preprocess(context.Background(), Filters{}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if result.FromCache {
		t.Error("Entry at exactly TTL should count as expired")
	}
	if storage.queryCalls != 2 {
		t.Errorf("Expected regeneration query, got %d calls", storage.queryCalls)
	}
}

func TestPreprocessor_DistinctFiltersDistinctEntries(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)}
	storage := newFakeStorage()
	pre := NewPreprocessor(storage, clock, 5*time.Minute, 0)

	ctx := context.Background()
	if _, err := pre.Preprocess(ctx, Filters{TimeRange: "1h"}, 0); err != nil {
		t.Fatal(err)
	}
	if _, err := pre.Preprocess(ctx, Filters{TimeRange: "7d"}, 0); err != nil {
		t.Fatal(err)
	}

	if len(storage.entries) != 2 {
		t.Errorf("Expected 2 cache entries, got %d", len(storage.entries))
	}
}

func TestPreprocessor_CorruptPayloadRegenerates(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)}
	storage := newFakeStorage()
	pre := NewPreprocessor(storage, clock, 5*time.Minute, 0)

	filters := Filters{TimeRange: "24h"}
	storage.entries[filters.CacheKey()] = &CacheEntry{
		FilterHash: filters.CacheKey(),
		Payload:    []byte("not json"),
		ExpiresAt:  clock.now.Add(time.Hour),
	}

	result, err := pre.Preprocess(context.Background(), filters, 0)
	if err != nil {
		t.Fatal(err)
	}
	if result.FromCache {
		t.Error("Corrupt payload should force regeneration")
	}
}

func TestPreprocessor_WarmCommonFilters(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)}
	storage := newFakeStorage()
	pre := NewPreprocessor(storage, clock, 5*time.Minute, 0)

	if err := pre.WarmCommonFilters(context.Background()); err != nil {
		t.Fatal(err)
	}

	// 3 time ranges x 4 asset type sets
	if len(storage.entries) != 12 {
		t.Errorf("Expected 12 warmed entries, got %d", len(storage.entries))
	}
}

func TestPreprocessor_PurgeExpired(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)}
	storage := newFakeStorage()
	pre := NewPreprocessor(storage, clock, 5*time.Minute, 0)

	ctx := context.Background()
	if _, err := pre.Preprocess(ctx, Filters{TimeRange: "1h"}, 0); err != nil {
		t.Fatal(err)
	}

	clock.Advance(10 * time.Minute)

	purged, err := pre.PurgeExpired(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if purged != 1 {
		t.Errorf("Expected 1 purged entry, got %d", purged)
	}
}

func TestPreprocessor_LimitApplied(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)}

	var news []models.NewsItem
	for i := 0; i < 5; i++ {
		news = append(news, models.NewsItem{
			Title:       "item",
			PublishedAt: clock.now.Add(-time.Minute),
		})
	}
	storage := newFakeStorage(news...)
	pre := NewPreprocessor(storage, clock, 5*time.Minute, 0)

	result, err := pre.Preprocess(context.Background(), Filters{}, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.News) != 3 {
		t.Errorf("Expected 3 items, got %d", len(result.News))
	}
}

func TestPreprocessor_ConfiguredDefaultLimit(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)}
	storage := newFakeStorage()
	pre := NewPreprocessor(storage, clock, 5*time.Minute, 25)

	ctx := context.Background()
	if _, err := pre.Preprocess(ctx, Filters{TimeRange: "24h"}, 0); err != nil {
		t.Fatal(err)
	}
	if storage.lastLimit != 25 {
		t.Errorf("Expected configured default limit 25, got %d", storage.lastLimit)
	}

	// Warming uses the same configured default
	if err := pre.WarmCommonFilters(ctx); err != nil {
		t.Fatal(err)
	}
	if storage.lastLimit != 25 {
		t.Errorf("Expected warm queries to use limit 25, got %d", storage.lastLimit)
	}

	// An explicit limit still wins over the configured default
	if _, err := pre.Preprocess(ctx, Filters{TimeRange: "1h", Search: "fed"}, 7); err != nil {
		t.Fatal(err)
	}
	if storage.lastLimit != 7 {
		t.Errorf("Expected explicit limit 7, got %d", storage.lastLimit)
	}
}
