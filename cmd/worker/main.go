package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/selivandex/newswire/internal/adapters/ai"
	"github.com/selivandex/newswire/internal/adapters/config"
	"github.com/selivandex/newswire/internal/adapters/database"
	"github.com/selivandex/newswire/internal/adapters/feeds"
	"github.com/selivandex/newswire/internal/adapters/redis"
	"github.com/selivandex/newswire/internal/classifier"
	"github.com/selivandex/newswire/internal/ingest"
	"github.com/selivandex/newswire/internal/notify"
	"github.com/selivandex/newswire/internal/preprocess"
	"github.com/selivandex/newswire/internal/sentiment"
	"github.com/selivandex/newswire/internal/workers"
	"github.com/selivandex/newswire/pkg/logger"
	"github.com/selivandex/newswire/pkg/worker"
	_ "github.com/lib/pq"
)

const shutdownTimeout = 30 * time.Second

func main() {
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

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
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

	logger.Info("Newswire worker starting...",
		zap.Duration("ingest_interval", cfg.Ingest.Interval),
		zap.Duration("cache_warm_interval", cfg.Cache.WarmInterval),
	)

	// Initialize database
	db, err := initDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	orchestrator, err := buildOrchestrator(cfg, db)
	if err != nil {
		return err
	}

	store := preprocess.NewStore(db.DB())
	preprocessor := preprocess.NewPreprocessor(store, preprocess.SystemClock(), cfg.Cache.TTL, cfg.Cache.DefaultLimit)

	group := worker.NewWorkerGroup(ctx)
	group.Add(workers.NewIngestWorker(orchestrator), cfg.Ingest.Interval)
	group.Add(workers.NewCacheWarmWorker(preprocessor), cfg.Cache.WarmInterval)
	group.Add(workers.NewCachePurgeWorker(preprocessor), cfg.Cache.PurgeInterval)
	group.Start()

	// Keep service running
	<-ctx.Done()
	logger.Info("shutting down gracefully...")

	group.Stop(shutdownTimeout)
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
