package redis

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeLockBackend struct {
	lockExpiry  time.Duration
	lockErr     error
	unlockErr   error
	lockCalls   int
	unlockCalls int
}

func (b *fakeLockBackend) Lock(ctx context.Context, resource string, ttl time.Duration) (time.Duration, error) {
	b.lockCalls++
	return b.lockExpiry, b.lockErr
}

func (b *fakeLockBackend) UnLock(ctx context.Context, resource string) error {
	b.unlockCalls++
	return b.unlockErr
}

func TestRunLock_TryAcquire(t *testing.T) {
	tests := []struct {
		name       string
		backend    *fakeLockBackend
		wantOK     bool
		wantErr    bool
		wantLocked bool
	}{
		{
			name:       "acquired",
			backend:    &fakeLockBackend{lockExpiry: runLockTTL},
			wantOK:     true,
			wantLocked: true,
		},
		{
			name:    "held elsewhere skips run without error",
			backend: &fakeLockBackend{lockErr: errors.New("lock failed")},
			wantOK:  false,
		},
		{
			name:    "redis unreachable skips run without error",
			backend: &fakeLockBackend{lockErr: errors.New("dial tcp: connection refused")},
			wantOK:  false,
		},
		{
			name:    "invalid expiry is an error",
			backend: &fakeLockBackend{lockExpiry: 0},
			wantOK:  false,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lock := &RunLock{lockManager: tt.backend}

			ok, err := lock.TryAcquire(context.Background())

			if ok != tt.wantOK {
				t.Errorf("Expected acquired=%v, got %v", tt.wantOK, ok)
			}
			if (err != nil) != tt.wantErr {
				t.Errorf("Expected error=%v, got %v", tt.wantErr, err)
			}
			if lock.locked != tt.wantLocked {
				t.Errorf("Expected locked=%v, got %v", tt.wantLocked, lock.locked)
			}
		})
	}
}

func TestRunLock_Release(t *testing.T) {
	t.Run("releases held lock", func(t *testing.T) {
		backend := &fakeLockBackend{lockExpiry: runLockTTL}
		lock := &RunLock{lockManager: backend}

		if ok, err := lock.TryAcquire(context.Background()); !ok || err != nil {
			t.Fatalf("TryAcquire: ok=%v err=%v", ok, err)
		}

		lock.Release(context.Background())

		if backend.unlockCalls != 1 {
			t.Errorf("Expected one unlock call, got %d", backend.unlockCalls)
		}
		if lock.locked {
			t.Error("Lock should be marked released")
		}
	})

	t.Run("no-op when never acquired", func(t *testing.T) {
		backend := &fakeLockBackend{}
		lock := &RunLock{lockManager: backend}

		lock.Release(context.Background())

		if backend.unlockCalls != 0 {
			t.Errorf("Expected no unlock calls, got %d", backend.unlockCalls)
		}
	})

	t.Run("tolerates unlock failure", func(t *testing.T) {
		backend := &fakeLockBackend{lockExpiry: runLockTTL, unlockErr: errors.New("expired")}
		lock := &RunLock{lockManager: backend}

		if ok, err := lock.TryAcquire(context.Background()); !ok || err != nil {
			t.Fatalf("TryAcquire: ok=%v err=%v", ok, err)
		}

		lock.Release(context.Background())

		if lock.locked {
			t.Error("Lock should be marked released even when unlock fails")
		}
	})
}
