package preprocess

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/selivandex/newswire/pkg/models"
)

// Store handles the news listing query and the preprocessed_cache table
type Store struct {
	db *sqlx.DB
}

// NewStore creates new preprocess store
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// QueryNews lists matching non-duplicate items, newest first, capped at limit
func (s *Store) QueryNews(ctx context.Context, filters Filters, from, to time.Time, limit int) ([]models.NewsItem, error) {
	conditions := []string{
		"n.is_duplicate = FALSE",
		"n.published_at >= $1",
		"n.published_at <= $2",
	}
	args := []interface{}{from, to}

	if len(filters.AssetTypes) > 0 {
		args = append(args, pq.Array(filters.AssetTypes))
		conditions = append(conditions, fmt.Sprintf("n.asset_type = ANY($%d)", len(args)))
	}

	if len(filters.Sources) > 0 {
		args = append(args, pq.Array(filters.Sources))
		conditions = append(conditions, fmt.Sprintf("n.source_name = ANY($%d)", len(args)))
	}

	if len(filters.Tickers) > 0 {
		args = append(args, pq.Array(filters.Tickers))
		conditions = append(conditions, fmt.Sprintf(`EXISTS (
			SELECT 1 FROM news_item_tickers nt
			JOIN tickers t ON t.id = nt.ticker_id
			WHERE nt.news_item_id = n.id AND t.symbol = ANY($%d)
		)`, len(args)))
	}

	if filters.Search != "" {
		args = append(args, "%"+filters.Search+"%")
		conditions = append(conditions, fmt.Sprintf(
			"(n.title ILIKE $%d OR n.summary ILIKE $%d)", len(args), len(args)))
	}

	switch filters.Sentiment {
	case SentimentBullish:
		conditions = append(conditions, "n.sentiment > 0.2")
	case SentimentBearish:
		conditions = append(conditions, "n.sentiment < -0.2")
	case SentimentNeutral:
		conditions = append(conditions, "(n.sentiment BETWEEN -0.2 AND 0.2 OR n.sentiment IS NULL)")
	}

	args = append(args, limit)

	query := fmt.Sprintf(`
		SELECT
			n.id, n.hash, n.title, n.summary, n.url, n.source_name, n.source_url,
			n.published_at, n.fetched_at, n.language, n.asset_type,
			n.sentiment, n.sentiment_label, n.relevance, n.is_duplicate,
			COALESCE(array_agg(DISTINCT t.symbol) FILTER (WHERE t.symbol IS NOT NULL), '{}') AS tickers,
			COALESCE(array_agg(DISTINCT g.name) FILTER (WHERE g.name IS NOT NULL), '{}') AS tags
		FROM news_items n
		LEFT JOIN news_item_tickers nt ON nt.news_item_id = n.id
		LEFT JOIN tickers t ON t.id = nt.ticker_id
		LEFT JOIN news_item_tags ng ON ng.news_item_id = n.id
		LEFT JOIN tags g ON g.id = ng.tag_id
		WHERE %s
		GROUP BY n.id
		ORDER BY n.published_at DESC, n.id DESC
		LIMIT $%d
	`, strings.Join(conditions, " AND "), len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query news: %w", err)
	}
	defer rows.Close()

	news := make([]models.NewsItem, 0)
	for rows.Next() {
		var item models.NewsItem
		var tickers, tags pq.StringArray

		err := rows.Scan(
			&item.ID, &item.Hash, &item.Title, &item.Summary, &item.URL,
			&item.SourceName, &item.SourceURL, &item.PublishedAt, &item.FetchedAt,
			&item.Language, &item.AssetType, &item.Sentiment, &item.SentimentLabel,
			&item.Relevance, &item.IsDuplicate, &tickers, &tags,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan news row: %w", err)
		}

		item.Tickers = tickers
		item.Tags = tags
		news = append(news, item)
	}

	return news, rows.Err()
}

// ============ CACHE TABLE ============

// CacheEntry mirrors a preprocessed_cache row
type CacheEntry struct {
	FilterHash  string    `db:"filter_hash"`
	Payload     []byte    `db:"payload"`
	GeneratedAt time.Time `db:"generated_at"`
	ExpiresAt   time.Time `db:"expires_at"`
}

// GetCacheEntry returns the cache row for the key, or nil when absent
func (s *Store) GetCacheEntry(ctx context.Context, key string) (*CacheEntry, error) {
	var row CacheEntry
	err := s.db.GetContext(ctx, &row,
		`SELECT filter_hash, payload, generated_at, expires_at
		 FROM preprocessed_cache WHERE filter_hash = $1`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache entry: %w", err)
	}
	return &row, nil
}

// UpsertCacheEntry writes the payload under the key, replacing any stale row
func (s *Store) UpsertCacheEntry(ctx context.Context, key string, payload []byte, generatedAt, expiresAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO preprocessed_cache (filter_hash, payload, generated_at, expires_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (filter_hash) DO UPDATE SET
			payload = EXCLUDED.payload,
			generated_at = EXCLUDED.generated_at,
			expires_at = EXCLUDED.expires_at
	`, key, payload, generatedAt, expiresAt)
	if err != nil {
		return fmt.Errorf("failed to upsert cache entry: %w", err)
	}
	return nil
}

// DeleteExpired removes all cache rows whose expiry has passed.
// Idempotent and safe to run concurrently with writers.
func (s *Store) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM preprocessed_cache WHERE expires_at < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to purge cache: %w", err)
	}

	deleted, _ := result.RowsAffected()
	return deleted, nil
}

// CacheStats summarizes the cache table contents
type CacheStats struct {
	TotalEntries   int        `json:"total_entries"`
	TotalSizeBytes int64      `json:"total_size_bytes"`
	OldestEntry    *time.Time `json:"oldest_entry"`
	NewestEntry    *time.Time `json:"newest_entry"`
}

// GetCacheStats reports entry count, payload volume and generation bounds
func (s *Store) GetCacheStats(ctx context.Context) (*CacheStats, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(pg_column_size(payload)), 0),
			MIN(generated_at),
			MAX(generated_at)
		FROM preprocessed_cache
	`)

	var stats CacheStats
	if err := row.Scan(&stats.TotalEntries, &stats.TotalSizeBytes, &stats.OldestEntry, &stats.NewestEntry); err != nil {
		return nil, fmt.Errorf("failed to read cache stats: %w", err)
	}

	return &stats, nil
}
