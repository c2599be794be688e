package workers

import (
	"context"

	"go.uber.org/zap"

	"github.com/selivandex/newswire/internal/preprocess"
	"github.com/selivandex/newswire/pkg/logger"
)

// CacheWarmWorker keeps the common filter views fresh
type CacheWarmWorker struct {
	preprocessor *preprocess.Preprocessor
}

// NewCacheWarmWorker creates new cache warm worker
func NewCacheWarmWorker(preprocessor *preprocess.Preprocessor) *CacheWarmWorker {
	return &CacheWarmWorker{preprocessor: preprocessor}
}

// Name returns worker name
func (w *CacheWarmWorker) Name() string {
	return "cache_warm"
}

// Run regenerates the common filter combinations
func (w *CacheWarmWorker) Run(ctx context.Context) error {
	return w.preprocessor.WarmCommonFilters(ctx)
}

// CachePurgeWorker removes expired preprocessed payloads
type CachePurgeWorker struct {
	preprocessor *preprocess.Preprocessor
}

// NewCachePurgeWorker creates new cache purge worker
func NewCachePurgeWorker(preprocessor *preprocess.Preprocessor) *CachePurgeWorker {
	return &CachePurgeWorker{preprocessor: preprocessor}
}

// Name returns worker name
func (w *CachePurgeWorker) Name() string {
	return "cache_purge"
}

// Run deletes expired cache rows
func (w *CachePurgeWorker) Run(ctx context.Context) error {
	purged, err := w.preprocessor.PurgeExpired(ctx)
	if err != nil {
		return err
	}

	state, err := w.preprocessor.CacheState(ctx)
	if err != nil {
		return err
	}

	logger.Debug("Cache purge pass finished",
		zap.Int64("purged", purged),
		zap.Int("entries", state.TotalEntries),
		zap.Int64("size_bytes", state.TotalSizeBytes))
	return nil
}
