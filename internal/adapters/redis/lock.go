package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/amyangfei/redlock-go/v3/redlock"
	goredis "github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/selivandex/newswire/internal/adapters/config"
	"github.com/selivandex/newswire/pkg/logger"
)

const (
	runLockName = "newswire:ingest:run"
	runLockTTL  = 15 * time.Minute
)

// lockBackend is the subset of the redlock manager the run lock uses
type lockBackend interface {
	Lock(ctx context.Context, resource string, ttl time.Duration) (time.Duration, error)
	UnLock(ctx context.Context, resource string) error
}

// RunLock guards the ingestion run against overlapping cron invocations.
// Locking is best-effort coordination only: the database unique constraints
// remain the correctness backstop when the lock is unavailable.
type RunLock struct {
	lockManager lockBackend
	locked      bool
}

// NewRunLock connects to Redis and prepares the run lock
func NewRunLock(cfg *config.RedisConfig) (*RunLock, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Single instance; a cluster deployment would list every node here
	lockManager, err := redlock.NewRedLock(ctx, []string{"tcp://" + addr})
	if err != nil {
		return nil, fmt.Errorf("failed to create redlock manager: %w", err)
	}

	// Verify the instance is reachable before the first run needs it
	probe := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})
	defer probe.Close()

	if err := probe.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	logger.Info("redis run lock initialized",
		zap.String("address", addr),
	)

	return &RunLock{lockManager: lockManager}, nil
}

// TryAcquire attempts to take the run lock. False without error means
// another instance is currently ingesting and this run should be skipped.
func (l *RunLock) TryAcquire(ctx context.Context) (bool, error) {
	expiry, err := l.lockManager.Lock(ctx, runLockName, runLockTTL)
	if err != nil {
		// A contended lock and a Redis outage both land here; log loud
		// enough that a dead Redis does not silently stall ingestion
		logger.Warn("ingest run lock not acquired, skipping run", zap.Error(err))
		return false, nil
	}

	if expiry <= 0 {
		return false, fmt.Errorf("failed to acquire run lock: invalid expiry %v", expiry)
	}

	l.locked = true

	logger.Info("ingest run lock acquired",
		zap.Duration("ttl", runLockTTL),
	)

	return true, nil
}

// Release releases the run lock. Safe to call when the lock was never
// acquired or has already expired.
func (l *RunLock) Release(ctx context.Context) {
	if !l.locked {
		return
	}

	if err := l.lockManager.UnLock(ctx, runLockName); err != nil {
		logger.Warn("failed to release run lock (may have expired)", zap.Error(err))
	}

	l.locked = false
}
