package models

import "time"

// AssetType categorizes what market a news item is about.
type AssetType string

const (
	AssetCrypto      AssetType = "CRYPTO"
	AssetStocks      AssetType = "STOCKS"
	AssetForex       AssetType = "FOREX"
	AssetCommodities AssetType = "COMMODITIES"
	AssetMacro       AssetType = "MACRO"
)

// AssetTypes lists all categories in their fixed priority order.
// Classifier ties resolve to the earlier entry.
func AssetTypes() []AssetType {
	return []AssetType{AssetCrypto, AssetStocks, AssetForex, AssetCommodities, AssetMacro}
}

// NewsItem represents a stored, deduplicated article.
// Rows are never mutated after insert except for IsDuplicate (set by the
// duplicate-URL cleanup pass) and sentiment backfill.
type NewsItem struct {
	ID             int64     `json:"id" db:"id"`
	Hash           string    `json:"hash" db:"hash"`
	Title          string    `json:"title" db:"title"`
	Summary        *string   `json:"summary,omitempty" db:"summary"`
	URL            string    `json:"url" db:"url"`
	SourceName     string    `json:"source_name" db:"source_name"`
	SourceURL      string    `json:"source_url" db:"source_url"`
	PublishedAt    time.Time `json:"published_at" db:"published_at"`
	FetchedAt      time.Time `json:"fetched_at" db:"fetched_at"`
	Language       string    `json:"language" db:"language"`
	AssetType      AssetType `json:"asset_type" db:"asset_type"`
	Sentiment      *float64  `json:"sentiment" db:"sentiment"`
	SentimentLabel *string   `json:"sentiment_label,omitempty" db:"sentiment_label"`
	Relevance      float64   `json:"relevance" db:"relevance"`
	IsDuplicate    bool      `json:"is_duplicate" db:"is_duplicate"`
	Tickers        []string  `json:"tickers"`
	Tags           []string  `json:"tags"`
}

// CandidateItem is a normalized article produced by the feed fetcher,
// before persistence and sentiment scoring.
type CandidateItem struct {
	Hash        string
	Title       string
	Summary     string
	URL         string
	SourceName  string
	SourceURL   string
	PublishedAt time.Time
	AssetType   AssetType
	Tickers     []string
	Tags        []string
}

// Ticker is a market symbol referenced by news items.
type Ticker struct {
	ID        int64     `db:"id"`
	Symbol    string    `db:"symbol"`
	Name      string    `db:"name"`
	AssetType AssetType `db:"asset_type"`
}

// Tag is a free-text topical label referenced by news items.
type Tag struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
}

// FeedSource is a subscribed RSS/Atom feed.
type FeedSource struct {
	ID          int64      `db:"id"`
	Name        string     `db:"name"`
	URL         string     `db:"url"`
	AssetType   AssetType  `db:"asset_type"`
	Active      bool       `db:"active"`
	LastFetched *time.Time `db:"last_fetched"`
	FetchCount  int        `db:"fetch_count"`
}

// SaveResult reports the outcome of a batch save.
type SaveResult struct {
	Saved      int
	Duplicates int
	Errors     int
}

// RunSummary reports the outcome of one full ingestion run.
type RunSummary struct {
	RunID            string
	StartedAt        time.Time
	FinishedAt       time.Time
	SourcesProcessed int
	SourcesFailed    int
	Saved            int
	Duplicates       int
	Errors           int
	DuplicatesMarked int64
}
