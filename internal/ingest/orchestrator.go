package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/selivandex/newswire/pkg/logger"
	"github.com/selivandex/newswire/pkg/models"
)

const cleanupWindow = 24 * time.Hour

// Fetcher downloads one feed source into candidate items
type Fetcher interface {
	Fetch(ctx context.Context, source models.FeedSource) ([]models.CandidateItem, error)
}

// Locker guards a run against concurrent invocations. Optional.
type Locker interface {
	TryAcquire(ctx context.Context) (bool, error)
	Release(ctx context.Context)
}

// AlertSink receives articles saved by a completed run. Optional.
type AlertSink interface {
	NotifySaved(articles []SavedArticle)
}

// Orchestrator drives one ingestion run: every active source is fetched and
// saved sequentially with a politeness delay in between, then a duplicate-URL
// cleanup pass runs over the recent window.
type Orchestrator struct {
	repo        *Repository
	fetcher     Fetcher
	lock        Locker
	alerts      AlertSink
	sourceDelay time.Duration
	skipCleanup bool
}

// NewOrchestrator creates new ingestion orchestrator. lock and alerts may be
// nil, disabling the run lock and notifications respectively.
func NewOrchestrator(repo *Repository, fetcher Fetcher, lock Locker, alerts AlertSink, sourceDelay time.Duration) *Orchestrator {
	return &Orchestrator{
		repo:        repo,
		fetcher:     fetcher,
		lock:        lock,
		alerts:      alerts,
		sourceDelay: sourceDelay,
	}
}

// SetSkipCleanup disables the duplicate-URL pass (cmd/ingest flag)
func (o *Orchestrator) SetSkipCleanup(skip bool) {
	o.skipCleanup = skip
}

// Run executes one full ingestion pass. A single source failing is logged
// and counted, never fatal; only an error that prevents the source loop from
// running at all propagates. Returns a nil summary without error when
// another instance holds the run lock.
func (o *Orchestrator) Run(ctx context.Context) (*models.RunSummary, error) {
	if o.lock != nil {
		acquired, err := o.lock.TryAcquire(ctx)
		if err != nil {
			return nil, fmt.Errorf("run lock: %w", err)
		}
		if !acquired {
			logger.Info("another ingestion run is in progress, skipping")
			return nil, nil
		}
		defer o.lock.Release(ctx)
	}

	summary := &models.RunSummary{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
	}

	log := logger.With(zap.String("run_id", summary.RunID))

	if err := o.repo.StartRun(ctx, summary.RunID, summary.StartedAt); err != nil {
		return nil, err
	}

	sources, err := o.repo.GetActiveSources(ctx)
	if err != nil {
		return nil, err
	}

	log.Info("ingestion run started",
		zap.Int("sources", len(sources)),
	)

	var allSaved []SavedArticle

	for i, source := range sources {
		saved := o.processSource(ctx, log, source, summary)
		allSaved = append(allSaved, saved...)
		summary.SourcesProcessed++

		// Politeness delay between sources, cut short on shutdown
		if i < len(sources)-1 && o.sourceDelay > 0 {
			select {
			case <-time.After(o.sourceDelay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}

	if !o.skipCleanup {
		marked, err := o.repo.MarkDuplicateURLs(ctx, cleanupWindow)
		if err != nil {
			// Cleanup failure does not fail the run; the next run retries
			log.Error("duplicate-url cleanup failed", zap.Error(err))
		} else {
			summary.DuplicatesMarked = marked
			if marked > 0 {
				log.Info("duplicate urls marked", zap.Int64("count", marked))
			}
		}
	}

	summary.FinishedAt = time.Now()

	if err := o.repo.FinishRun(ctx, summary); err != nil {
		log.Warn("failed to finalize run record", zap.Error(err))
	}

	log.Info("ingestion run finished",
		zap.Int("sources_processed", summary.SourcesProcessed),
		zap.Int("sources_failed", summary.SourcesFailed),
		zap.Int("saved", summary.Saved),
		zap.Int("duplicates", summary.Duplicates),
		zap.Int("errors", summary.Errors),
		zap.Duration("duration", summary.FinishedAt.Sub(summary.StartedAt)),
	)

	if o.alerts != nil && len(allSaved) > 0 {
		o.alerts.NotifySaved(allSaved)
	}

	return summary, nil
}

// processSource fetches and saves one source, updating its bookkeeping
// regardless of outcome.
func (o *Orchestrator) processSource(ctx context.Context, log *zap.Logger, source models.FeedSource, summary *models.RunSummary) []SavedArticle {
	items, err := o.fetcher.Fetch(ctx, source)
	if err != nil {
		summary.SourcesFailed++
		log.Warn("feed fetch failed",
			zap.String("source", source.Name),
			zap.Error(err),
		)
	}

	var saved []SavedArticle
	if len(items) > 0 {
		outcome, err := o.repo.SaveBatch(ctx, items)
		if err != nil {
			summary.SourcesFailed++
			log.Error("batch save failed",
				zap.String("source", source.Name),
				zap.Error(err),
			)
		} else {
			summary.Saved += outcome.SaveResult.Saved
			summary.Duplicates += outcome.Duplicates
			summary.Errors += outcome.Errors
			saved = outcome.Articles

			log.Debug("source processed",
				zap.String("source", source.Name),
				zap.Int("fetched", len(items)),
				zap.Int("saved", outcome.SaveResult.Saved),
				zap.Int("duplicates", outcome.Duplicates),
			)
		}
	}

	if err := o.repo.TouchSource(ctx, source.ID); err != nil {
		log.Warn("failed to update source metadata",
			zap.String("source", source.Name),
			zap.Error(err),
		)
	}

	return saved
}
