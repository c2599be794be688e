package sources

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/selivandex/newswire/pkg/logger"
	"github.com/selivandex/newswire/pkg/models"
)

// SourceSeed is one feed entry in the seed file
type SourceSeed struct {
	Name      string `yaml:"name"`
	URL       string `yaml:"url"`
	AssetType string `yaml:"asset_type"`
	Active    *bool  `yaml:"active"`
}

// seedFile is the top-level seed document
type seedFile struct {
	Sources []SourceSeed `yaml:"sources"`
}

// Load parses the YAML seed file and upserts its feeds into feed_sources.
// Existing rows keep their fetch history, only name, asset_type and active
// are refreshed.
func Load(ctx context.Context, db *sqlx.DB, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read sources file: %w", err)
	}

	seeds, err := ParseSeeds(data)
	if err != nil {
		return 0, err
	}

	for _, seed := range seeds {
		active := true
		if seed.Active != nil {
			active = *seed.Active
		}

		// An existing row keeps its active flag unless the seed sets one
		_, err := db.ExecContext(ctx, `
			INSERT INTO feed_sources (name, url, asset_type, active)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (url) DO UPDATE SET
				name = EXCLUDED.name,
				asset_type = EXCLUDED.asset_type,
				active = CASE WHEN $5 THEN EXCLUDED.active ELSE feed_sources.active END
		`, seed.Name, seed.URL, seed.AssetType, active, seed.Active != nil)
		if err != nil {
			return 0, fmt.Errorf("failed to upsert source %s: %w", seed.Name, err)
		}
	}

	logger.Info("Feed sources loaded",
		zap.String("path", path),
		zap.Int("count", len(seeds)))

	return len(seeds), nil
}

// ParseSeeds parses the YAML seed document, normalizing asset types and
// rejecting incomplete entries.
func ParseSeeds(data []byte) ([]SourceSeed, error) {
	var doc seedFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse sources file: %w", err)
	}
	return validateSeeds(doc.Sources)
}

// validateSeeds normalizes asset types and rejects incomplete entries
func validateSeeds(seeds []SourceSeed) ([]SourceSeed, error) {
	valid := make(map[string]bool, 5)
	for _, at := range models.AssetTypes() {
		valid[string(at)] = true
	}

	out := make([]SourceSeed, 0, len(seeds))
	for i, seed := range seeds {
		seed.Name = strings.TrimSpace(seed.Name)
		seed.URL = strings.TrimSpace(seed.URL)
		seed.AssetType = strings.ToUpper(strings.TrimSpace(seed.AssetType))

		if seed.Name == "" || seed.URL == "" {
			return nil, fmt.Errorf("source entry %d is missing name or url", i)
		}
		if !valid[seed.AssetType] {
			return nil, fmt.Errorf("source %s has unknown asset type %q", seed.Name, seed.AssetType)
		}

		out = append(out, seed)
	}

	return out, nil
}
