package preprocess

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/selivandex/newswire/pkg/logger"
	"github.com/selivandex/newswire/pkg/models"
)

const (
	// DefaultLimit caps the news list when the caller passes 0
	DefaultLimit = 100

	maxLimit = 500
)

// Result is the cached preprocessing payload returned to consumers
type Result struct {
	News        []models.NewsItem `json:"news"`
	Stats       Stats             `json:"stats"`
	FromCache   bool              `json:"from_cache"`
	GeneratedAt time.Time         `json:"generated_at"`
}

// Storage is the persistence surface the preprocessor runs against
type Storage interface {
	QueryNews(ctx context.Context, filters Filters, from, to time.Time, limit int) ([]models.NewsItem, error)
	GetCacheEntry(ctx context.Context, key string) (*CacheEntry, error)
	UpsertCacheEntry(ctx context.Context, key string, payload []byte, generatedAt, expiresAt time.Time) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
	GetCacheStats(ctx context.Context) (*CacheStats, error)
}

// Preprocessor serves filtered news views through a TTL cache backed
// by the preprocessed_cache table
type Preprocessor struct {
	store        Storage
	clock        Clock
	ttl          time.Duration
	defaultLimit int
}

// NewPreprocessor creates new preprocessor. A defaultLimit of 0 or less
// falls back to DefaultLimit.
func NewPreprocessor(store Storage, clock Clock, ttl time.Duration, defaultLimit int) *Preprocessor {
	if clock == nil {
		clock = SystemClock()
	}
	if defaultLimit <= 0 {
		defaultLimit = DefaultLimit
	}
	if defaultLimit > maxLimit {
		defaultLimit = maxLimit
	}
	return &Preprocessor{
		store:        store,
		clock:        clock,
		ttl:          ttl,
		defaultLimit: defaultLimit,
	}
}

// Preprocess returns the view for the given filters, serving a cached
// payload when one is still fresh and regenerating otherwise.
func (p *Preprocessor) Preprocess(ctx context.Context, filters Filters, limit int) (*Result, error) {
	filters = filters.Normalize()

	if limit <= 0 {
		limit = p.defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	key := filters.CacheKey()
	now := p.clock.Now()

	entry, err := p.store.GetCacheEntry(ctx, key)
	if err != nil {
		logger.Warn("Cache lookup failed, regenerating",
			zap.String("filters", filters.String()),
			zap.Error(err))
	} else if entry != nil && entry.ExpiresAt.After(now) {
		var result Result
		if err := json.Unmarshal(entry.Payload, &result); err != nil {
			logger.Warn("Corrupt cache payload, regenerating",
				zap.String("filter_hash", key),
				zap.Error(err))
		} else {
			result.FromCache = true
			result.GeneratedAt = entry.GeneratedAt
			return &result, nil
		}
	}

	result, err := p.generate(ctx, filters, limit, now)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to encode cache payload: %w", err)
	}

	if err := p.store.UpsertCacheEntry(ctx, key, payload, now, now.Add(p.ttl)); err != nil {
		// Serve the fresh result even when the cache write fails
		logger.Warn("Cache write failed",
			zap.String("filter_hash", key),
			zap.Error(err))
	}

	return result, nil
}

func (p *Preprocessor) generate(ctx context.Context, filters Filters, limit int, now time.Time) (*Result, error) {
	from, to := filters.Window(now)

	news, err := p.store.QueryNews(ctx, filters, from, to, limit)
	if err != nil {
		return nil, err
	}

	return &Result{
		News:        news,
		Stats:       ComputeStats(news),
		FromCache:   false,
		GeneratedAt: now,
	}, nil
}

// WarmCommonFilters regenerates the cache for the filter combinations
// dashboards request most, so interactive reads stay on the fast path.
func (p *Preprocessor) WarmCommonFilters(ctx context.Context) error {
	ranges := []string{"1h", "24h", "7d"}
	typeSets := [][]string{
		nil,
		{string(models.AssetCrypto)},
		{string(models.AssetStocks)},
		{string(models.AssetMacro)},
	}

	var failed int
	for _, tr := range ranges {
		for _, types := range typeSets {
			filters := Filters{TimeRange: tr, AssetTypes: types}
			if _, err := p.refresh(ctx, filters, p.defaultLimit); err != nil {
				failed++
				logger.Warn("Cache warm failed",
					zap.String("filters", filters.String()),
					zap.Error(err))
			}
		}
	}

	if failed > 0 {
		return fmt.Errorf("cache warming failed for %d filter combinations", failed)
	}

	logger.Debug("Cache warmed",
		zap.Int("combinations", len(ranges)*len(typeSets)))
	return nil
}

// refresh regenerates and stores a payload unconditionally, ignoring
// any existing cache row
func (p *Preprocessor) refresh(ctx context.Context, filters Filters, limit int) (*Result, error) {
	filters = filters.Normalize()
	now := p.clock.Now()

	result, err := p.generate(ctx, filters, limit, now)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to encode cache payload: %w", err)
	}

	if err := p.store.UpsertCacheEntry(ctx, filters.CacheKey(), payload, now, now.Add(p.ttl)); err != nil {
		return nil, err
	}

	return result, nil
}

// PurgeExpired drops stale cache rows and returns how many were removed
func (p *Preprocessor) PurgeExpired(ctx context.Context) (int64, error) {
	return p.store.DeleteExpired(ctx, p.clock.Now())
}

// CacheState exposes cache table metrics for run logs
func (p *Preprocessor) CacheState(ctx context.Context) (*CacheStats, error) {
	return p.store.GetCacheStats(ctx)
}
