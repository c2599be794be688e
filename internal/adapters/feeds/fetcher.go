package feeds

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"

	"github.com/selivandex/newswire/internal/adapters/config"
	"github.com/selivandex/newswire/internal/classifier"
	"github.com/selivandex/newswire/pkg/logger"
	"github.com/selivandex/newswire/pkg/models"
)

// Fetcher downloads and normalizes RSS/Atom feeds into candidate items
type Fetcher struct {
	parser        *gofeed.Parser
	detector      *classifier.Detector
	recencyWindow time.Duration
	summaryMaxLen int
	now           func() time.Time
}

// NewFetcher creates new feed fetcher
func NewFetcher(cfg *config.IngestConfig, detector *classifier.Detector) *Fetcher {
	parser := gofeed.NewParser()
	parser.Client = &http.Client{Timeout: cfg.FetchTimeout}
	parser.UserAgent = cfg.UserAgent

	return &Fetcher{
		parser:        parser,
		detector:      detector,
		recencyWindow: cfg.RecencyWindow,
		summaryMaxLen: cfg.SummaryMaxLen,
		now:           time.Now,
	}
}

// Fetch downloads one feed and returns normalized candidate items.
// Items older than the recency window or missing both title and link are
// dropped. A network or parse failure is returned to the caller; the
// orchestrator logs it and moves on to the next source.
func (f *Fetcher) Fetch(ctx context.Context, source models.FeedSource) ([]models.CandidateItem, error) {
	feed, err := f.parser.ParseURLWithContext(source.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed %s: %w", source.URL, err)
	}

	fetchedAt := f.now()
	cutoff := fetchedAt.Add(-f.recencyWindow)

	items := make([]models.CandidateItem, 0, len(feed.Items))
	dropped := 0

	for _, entry := range feed.Items {
		title := strings.TrimSpace(entry.Title)
		link := strings.TrimSpace(entry.Link)

		if title == "" && link == "" {
			dropped++
			continue
		}

		publishedAt := fetchedAt
		if entry.PublishedParsed != nil {
			publishedAt = *entry.PublishedParsed
		} else if entry.UpdatedParsed != nil {
			publishedAt = *entry.UpdatedParsed
		}

		// Stale entries are dropped before classification
		if publishedAt.Before(cutoff) {
			dropped++
			continue
		}

		summary := truncateRunes(strings.TrimSpace(entry.Description), f.summaryMaxLen)
		combined := title + " " + summary

		detection := f.detector.Detect(combined, source.AssetType)

		items = append(items, models.CandidateItem{
			Hash:        GenerateHash(title, source.Name, publishedAt),
			Title:       title,
			Summary:     summary,
			URL:         link,
			SourceName:  source.Name,
			SourceURL:   source.URL,
			PublishedAt: publishedAt,
			AssetType:   detection.AssetType,
			Tickers:     ExtractTickers(combined),
			Tags:        ExtractTags(combined),
		})
	}

	logger.Debug("fetched feed",
		zap.String("source", source.Name),
		zap.Int("items", len(items)),
		zap.Int("dropped", dropped),
	)

	return items, nil
}
