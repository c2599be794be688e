package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/selivandex/newswire/internal/adapters/ai"
	"github.com/selivandex/newswire/internal/adapters/config"
	"github.com/selivandex/newswire/internal/adapters/database"
	"github.com/selivandex/newswire/internal/adapters/feeds"
	"github.com/selivandex/newswire/internal/adapters/redis"
	"github.com/selivandex/newswire/internal/classifier"
	"github.com/selivandex/newswire/internal/ingest"
	"github.com/selivandex/newswire/internal/notify"
	"github.com/selivandex/newswire/internal/sentiment"
	"github.com/selivandex/newswire/internal/sources"
	"github.com/selivandex/newswire/pkg/logger"
	_ "github.com/lib/pq"
)

func main() {
	sourcesFile := flag.String("sources", "", "YAML seed file to load into feed_sources before the run")
	skipCleanup := flag.Bool("skip-cleanup", false, "skip the duplicate-URL cleanup pass")
	flag.Parse()

	// Setup signal handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nReceived interrupt signal, shutting down...")
		cancel()
	}()

	if err := run(ctx, *sourcesFile, *skipCleanup); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, sourcesFile string, skipCleanup bool) error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.File); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	logger.Info("Newswire ingestion starting...")

	// Initialize database
	db, err := initDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if sourcesFile != "" {
		if _, err := sources.Load(ctx, db.DB(), sourcesFile); err != nil {
			return fmt.Errorf("failed to load sources: %w", err)
		}
	}

	orchestrator, err := buildOrchestrator(cfg, db)
	if err != nil {
		return err
	}
	orchestrator.SetSkipCleanup(skipCleanup)

	summary, err := orchestrator.Run(ctx)
	if err != nil {
		return fmt.Errorf("ingestion run failed: %w", err)
	}
	if summary == nil {
		// Another instance held the run lock
		return nil
	}

	logger.Info("Ingestion finished",
		zap.String("run_id", summary.RunID),
		zap.Int("sources_processed", summary.SourcesProcessed),
		zap.Int("sources_failed", summary.SourcesFailed),
		zap.Int("saved", summary.Saved),
		zap.Int("duplicates", summary.Duplicates),
		zap.Int("errors", summary.Errors),
	)

	return nil
}

// initDatabase initializes database connection with sqlx
func initDatabase(cfg *config.Config) (*database.DB, error) {
	db, err := database.New(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Run migrations
	migrationsPath := "./migrations"
	if err := database.RunMigrations(db.Conn(), migrationsPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info("database connection established (sqlx)",
		zap.String("host", cfg.Database.Host),
		zap.String("database", cfg.Database.Name),
	)

	return db, nil
}

// buildOrchestrator wires the ingestion pipeline from config
func buildOrchestrator(cfg *config.Config, db *database.DB) (*ingest.Orchestrator, error) {
	analyzer := sentiment.NewAnalyzer()

	var scorer sentiment.Scorer
	if cfg.AI.Enabled {
		scorer = ai.NewClient(&cfg.AI)
		logger.Info("AI sentiment escalation enabled",
			zap.String("model", cfg.AI.Model),
		)
	}
	escalator := sentiment.NewEscalator(analyzer, scorer, cfg.AI.MinConfidence)

	repo := ingest.NewRepository(db.DB(), escalator)
	fetcher := feeds.NewFetcher(&cfg.Ingest, classifier.NewDetector())

	var lock ingest.Locker
	if cfg.Redis.LockEnabled() {
		runLock, err := redis.NewRunLock(&cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("failed to connect run lock: %w", err)
		}
		lock = runLock
	}

	var alerts ingest.AlertSink
	if cfg.Telegram.AlertsEnabled() {
		notifier, err := notify.NewNotifier(&cfg.Telegram)
		if err != nil {
			logger.Error("failed to create telegram notifier", zap.Error(err))
		} else {
			alerts = notifier
		}
	}

	return ingest.NewOrchestrator(repo, fetcher, lock, alerts, cfg.Ingest.SourceDelay), nil
}
