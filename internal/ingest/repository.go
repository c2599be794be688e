package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/selivandex/newswire/internal/sentiment"
	"github.com/selivandex/newswire/pkg/logger"
	"github.com/selivandex/newswire/pkg/models"
)

// uniqueViolation is the Postgres error code for a unique constraint hit.
// The hash pre-filter is only an optimization; this is the real guarantee,
// so a violation on insert counts as a duplicate, not an error.
const uniqueViolation = "23505"

// SentimentAnalyzer scores a news item; never returns an error (fallback
// semantics live inside the escalator).
type SentimentAnalyzer interface {
	Analyze(ctx context.Context, title, summary, assetType string) sentiment.Result
}

// SavedArticle is the slice of a saved row the notifier cares about
type SavedArticle struct {
	Title     string
	URL       string
	Relevance float64
	Sentiment float64
	AssetType models.AssetType
}

// BatchOutcome reports a batch save plus the rows it actually created
type BatchOutcome struct {
	models.SaveResult
	Articles []SavedArticle
}

// Repository persists candidate items and feed source state
type Repository struct {
	db        *sqlx.DB
	sentiment SentimentAnalyzer
}

// NewRepository creates new ingest repository
func NewRepository(db *sqlx.DB, analyzer SentimentAnalyzer) *Repository {
	return &Repository{db: db, sentiment: analyzer}
}

// SaveBatch persists new candidate items and reports saved/duplicate/error
// counts. Per-item failures do not abort the batch. Running the same batch
// twice yields saved=0 and duplicates=len on the second run.
func (r *Repository) SaveBatch(ctx context.Context, items []models.CandidateItem) (*BatchOutcome, error) {
	outcome := &BatchOutcome{}
	if len(items) == 0 {
		return outcome, nil
	}

	fresh, duplicates, err := r.partitionByHash(ctx, items)
	if err != nil {
		return nil, err
	}
	outcome.Duplicates = duplicates

	tickerIDs, tagIDs, err := r.resolveRefs(ctx, fresh)
	if err != nil {
		return nil, err
	}

	for _, item := range fresh {
		saved, err := r.saveOne(ctx, item, tickerIDs, tagIDs)
		if err != nil {
			if isUniqueViolation(err) {
				// Lost a race with a concurrent ingestion run
				outcome.Duplicates++
				continue
			}
			outcome.Errors++
			logger.Warn("failed to save news item",
				zap.String("title", titlePrefix(item.Title)),
				zap.Error(err),
			)
			continue
		}
		outcome.SaveResult.Saved++
		outcome.Articles = append(outcome.Articles, saved)
	}

	return outcome, nil
}

// partitionByHash splits the batch into unseen items and known duplicates
// using one batched hash lookup.
func (r *Repository) partitionByHash(ctx context.Context, items []models.CandidateItem) ([]models.CandidateItem, int, error) {
	hashes := make([]string, 0, len(items))
	for _, item := range items {
		hashes = append(hashes, item.Hash)
	}

	var existing []string
	err := r.db.SelectContext(ctx, &existing,
		`SELECT hash FROM news_items WHERE hash = ANY($1)`, pq.Array(hashes))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to check existing hashes: %w", err)
	}

	known := make(map[string]struct{}, len(existing))
	for _, h := range existing {
		known[h] = struct{}{}
	}

	fresh, duplicates := partitionCandidates(items, known)
	return fresh, duplicates, nil
}

// partitionCandidates splits a batch into unseen items and duplicates given
// the set of hashes already stored. A hash repeated within the batch counts
// as a duplicate after its first occurrence, so a batch where every hash is
// known yields zero fresh items.
func partitionCandidates(items []models.CandidateItem, known map[string]struct{}) ([]models.CandidateItem, int) {
	fresh := make([]models.CandidateItem, 0, len(items))
	duplicates := 0
	seen := make(map[string]struct{}, len(items))

	for _, item := range items {
		if _, ok := known[item.Hash]; ok {
			duplicates++
			continue
		}
		if _, ok := seen[item.Hash]; ok {
			duplicates++
			continue
		}
		seen[item.Hash] = struct{}{}
		fresh = append(fresh, item)
	}

	return fresh, duplicates
}

// resolveRefs batch-creates missing tickers and tags and returns symbol->id
// and name->id maps. Creation is duplicate-tolerant; resolution always
// completes before any news insert that references it.
func (r *Repository) resolveRefs(ctx context.Context, items []models.CandidateItem) (map[string]int64, map[string]int64, error) {
	symbolSet := make(map[string]models.AssetType)
	tagSet := make(map[string]struct{})

	for _, item := range items {
		for _, symbol := range item.Tickers {
			if _, ok := symbolSet[symbol]; !ok {
				symbolSet[symbol] = item.AssetType
			}
		}
		for _, tag := range item.Tags {
			tagSet[tag] = struct{}{}
		}
	}

	tickerIDs, err := r.resolveTickers(ctx, symbolSet)
	if err != nil {
		return nil, nil, err
	}

	tagIDs, err := r.resolveTags(ctx, tagSet)
	if err != nil {
		return nil, nil, err
	}

	return tickerIDs, tagIDs, nil
}

func (r *Repository) resolveTickers(ctx context.Context, symbols map[string]models.AssetType) (map[string]int64, error) {
	ids := make(map[string]int64, len(symbols))
	if len(symbols) == 0 {
		return ids, nil
	}

	for symbol, assetType := range symbols {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO tickers (symbol, asset_type) VALUES ($1, $2) ON CONFLICT (symbol) DO NOTHING`,
			symbol, assetType)
		if err != nil {
			return nil, fmt.Errorf("failed to create ticker %s: %w", symbol, err)
		}
	}

	list := make([]string, 0, len(symbols))
	for symbol := range symbols {
		list = append(list, symbol)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, symbol FROM tickers WHERE symbol = ANY($1)`, pq.Array(list))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve tickers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var symbol string
		if err := rows.Scan(&id, &symbol); err != nil {
			return nil, fmt.Errorf("failed to scan ticker: %w", err)
		}
		ids[symbol] = id
	}

	return ids, rows.Err()
}

func (r *Repository) resolveTags(ctx context.Context, tags map[string]struct{}) (map[string]int64, error) {
	ids := make(map[string]int64, len(tags))
	if len(tags) == 0 {
		return ids, nil
	}

	for tag := range tags {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO tags (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`, tag)
		if err != nil {
			return nil, fmt.Errorf("failed to create tag %s: %w", tag, err)
		}
	}

	list := make([]string, 0, len(tags))
	for tag := range tags {
		list = append(list, tag)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name FROM tags WHERE name = ANY($1)`, pq.Array(list))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		ids[name] = id
	}

	return ids, rows.Err()
}

// saveOne scores and inserts a single item with its junction rows in one
// transaction.
func (r *Repository) saveOne(ctx context.Context, item models.CandidateItem, tickerIDs, tagIDs map[string]int64) (SavedArticle, error) {
	score := r.sentiment.Analyze(ctx, item.Title, item.Summary, string(item.AssetType))
	relevance := ComputeRelevance(score.Score, len(item.Tickers), hasBreakingTag(item.Tags))

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return SavedArticle{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var summary *string
	if item.Summary != "" {
		summary = &item.Summary
	}

	var newsID int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO news_items (
			hash, title, summary, url, source_name, source_url,
			published_at, fetched_at, asset_type, sentiment, sentiment_label, relevance
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id
	`,
		item.Hash, item.Title, summary, item.URL, item.SourceName, item.SourceURL,
		item.PublishedAt, time.Now(), item.AssetType, score.Score, score.Label, relevance,
	).Scan(&newsID)
	if err != nil {
		return SavedArticle{}, err
	}

	for _, symbol := range item.Tickers {
		id, ok := tickerIDs[symbol]
		if !ok {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO news_item_tickers (news_item_id, ticker_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			newsID, id); err != nil {
			return SavedArticle{}, fmt.Errorf("failed to link ticker %s: %w", symbol, err)
		}
	}

	for _, tag := range item.Tags {
		id, ok := tagIDs[tag]
		if !ok {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO news_item_tags (news_item_id, tag_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			newsID, id); err != nil {
			return SavedArticle{}, fmt.Errorf("failed to link tag %s: %w", tag, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return SavedArticle{}, fmt.Errorf("failed to commit: %w", err)
	}

	return SavedArticle{
		Title:     item.Title,
		URL:       item.URL,
		Relevance: relevance,
		Sentiment: score.Score,
		AssetType: item.AssetType,
	}, nil
}

// ComputeRelevance derives the relevance score from sentiment strength,
// ticker count and the breaking tag. Always within [0.5, 1.0].
func ComputeRelevance(sentimentScore float64, tickerCount int, breaking bool) float64 {
	relevance := 0.5

	abs := sentimentScore
	if abs < 0 {
		abs = -abs
	}
	relevance += abs * 0.2

	tickerBonus := 0.1 * float64(tickerCount)
	if tickerBonus > 0.2 {
		tickerBonus = 0.2
	}
	relevance += tickerBonus

	if breaking {
		relevance += 0.1
	}

	if relevance > 1.0 {
		relevance = 1.0
	}

	return relevance
}

func hasBreakingTag(tags []string) bool {
	for _, tag := range tags {
		if tag == "breaking" {
			return true
		}
	}
	return false
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

func titlePrefix(title string) string {
	if len(title) > 40 {
		return title[:40]
	}
	return title
}

// ============ FEED SOURCES ============

// GetActiveSources lists active feed sources in id order
func (r *Repository) GetActiveSources(ctx context.Context) ([]models.FeedSource, error) {
	var sources []models.FeedSource
	err := r.db.SelectContext(ctx, &sources,
		`SELECT id, name, url, asset_type, active, last_fetched, fetch_count
		 FROM feed_sources WHERE active = TRUE ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list active sources: %w", err)
	}
	return sources, nil
}

// TouchSource updates a source's fetch bookkeeping regardless of how many
// items the fetch produced.
func (r *Repository) TouchSource(ctx context.Context, sourceID int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE feed_sources SET last_fetched = NOW(), fetch_count = fetch_count + 1 WHERE id = $1`,
		sourceID)
	if err != nil {
		return fmt.Errorf("failed to touch source %d: %w", sourceID, err)
	}
	return nil
}

// ============ DUPLICATE URL CLEANUP ============

// storedURL is the projection the cleanup pass groups on
type storedURL struct {
	ID        int64     `db:"id"`
	URL       string    `db:"url"`
	FetchedAt time.Time `db:"fetched_at"`
}

// MarkDuplicateURLs groups the last `window` of non-duplicate items by
// normalized URL and flags all but the earliest-seen of each group.
// Rows are never deleted, only marked.
func (r *Repository) MarkDuplicateURLs(ctx context.Context, window time.Duration) (int64, error) {
	cutoff := time.Now().Add(-window)

	var rows []storedURL
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, url, fetched_at
		FROM news_items
		WHERE fetched_at > $1 AND is_duplicate = FALSE AND url <> ''
		ORDER BY fetched_at ASC, id ASC
	`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to load recent items: %w", err)
	}

	toMark := selectDuplicateIDs(rows)
	if len(toMark) == 0 {
		return 0, nil
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE news_items SET is_duplicate = TRUE WHERE id = ANY($1)`,
		pq.Array(toMark))
	if err != nil {
		return 0, fmt.Errorf("failed to mark duplicates: %w", err)
	}

	marked, _ := result.RowsAffected()
	return marked, nil
}

// selectDuplicateIDs keeps the earliest-seen row of every normalized URL
// group and returns the ids of the rest. Input must be ordered by
// (fetched_at, id) ascending.
func selectDuplicateIDs(rows []storedURL) []int64 {
	keeper := make(map[string]struct{}, len(rows))
	var duplicateIDs []int64

	for _, row := range rows {
		key := NormalizeURL(row.URL)
		if _, ok := keeper[key]; ok {
			duplicateIDs = append(duplicateIDs, row.ID)
			continue
		}
		keeper[key] = struct{}{}
	}

	return duplicateIDs
}

// ============ RUN AUDIT ============

// StartRun inserts an ingest_runs row
func (r *Repository) StartRun(ctx context.Context, runID string, startedAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO ingest_runs (id, started_at) VALUES ($1, $2)`, runID, startedAt)
	if err != nil {
		return fmt.Errorf("failed to record run start: %w", err)
	}
	return nil
}

// FinishRun completes the ingest_runs row with final counters
func (r *Repository) FinishRun(ctx context.Context, summary *models.RunSummary) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE ingest_runs
		SET finished_at = $2, sources_processed = $3, items_saved = $4,
		    items_duplicate = $5, items_failed = $6
		WHERE id = $1
	`, summary.RunID, summary.FinishedAt, summary.SourcesProcessed,
		summary.Saved, summary.Duplicates, summary.Errors)
	if err != nil {
		return fmt.Errorf("failed to record run finish: %w", err)
	}
	return nil
}
