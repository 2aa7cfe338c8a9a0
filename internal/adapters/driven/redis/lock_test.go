package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/stride-sync/internal/core/domain"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func mustAcquire(t *testing.T, l *Lock, name string, ttl time.Duration) (string, bool) {
	t.Helper()
	token, ok, err := l.Acquire(context.Background(), name, ttl)
	if err != nil {
		t.Fatalf("acquire %s: %v", name, err)
	}
	return token, ok
}

func TestLock_AcquireIsExclusive(t *testing.T) {
	_, client := setupTestRedis(t)
	first := NewLock(client)
	second := NewLock(client)

	token, ok := mustAcquire(t, first, "import:user-1", 10*time.Second)
	if !ok || token == "" {
		t.Fatal("expected first acquire to succeed with a token")
	}
	if _, ok := mustAcquire(t, second, "import:user-1", 10*time.Second); ok {
		t.Error("expected second instance to be refused")
	}
	if _, ok := mustAcquire(t, first, "import:user-1", 10*time.Second); ok {
		t.Error("expected lock not to be reentrant")
	}
	if _, ok := mustAcquire(t, second, "import:user-2", 10*time.Second); !ok {
		t.Error("expected a different user to be independent")
	}
}

func TestLock_ReleaseAllowsReacquire(t *testing.T) {
	mr, client := setupTestRedis(t)
	lock := NewLock(client)
	ctx := context.Background()

	token, _ := mustAcquire(t, lock, "import:user-1", 10*time.Second)
	if !mr.Exists(KeyPrefix + "import:user-1") {
		t.Fatal("expected lock key to be namespaced")
	}

	if err := lock.Release(ctx, "import:user-1", token); err != nil {
		t.Fatalf("release: %v", err)
	}
	if mr.Exists(KeyPrefix + "import:user-1") {
		t.Error("expected key to be deleted")
	}
	if _, ok := mustAcquire(t, NewLock(client), "import:user-1", 10*time.Second); !ok {
		t.Error("expected acquire after release")
	}
}

func TestLock_ReleaseNotHeld(t *testing.T) {
	_, client := setupTestRedis(t)
	lock := NewLock(client)

	if err := lock.Release(context.Background(), "import:user-1", ""); err != nil {
		t.Errorf("unexpected error releasing with empty token: %v", err)
	}
	if err := lock.Release(context.Background(), "import:user-1", "never-issued"); err != nil {
		t.Errorf("unexpected error releasing unheld lock: %v", err)
	}
}

func TestLock_ReleaseNeverDropsForeignLock(t *testing.T) {
	mr, client := setupTestRedis(t)
	stale := NewLock(client)
	fresh := NewLock(client)
	ctx := context.Background()

	staleToken, _ := mustAcquire(t, stale, "import:user-1", time.Second)
	mr.FastForward(2 * time.Second)

	if _, ok := mustAcquire(t, fresh, "import:user-1", 10*time.Second); !ok {
		t.Fatal("expected takeover after expiry")
	}
	if err := stale.Release(ctx, "import:user-1", staleToken); err != nil {
		t.Fatalf("release: %v", err)
	}
	if !mr.Exists(KeyPrefix + "import:user-1") {
		t.Error("stale holder must not release the new owner's lock")
	}
}

// Both acquisitions go through the same Lock value, as two requests on one
// server instance would.
func TestLock_StaleAcquisitionOnSameInstance(t *testing.T) {
	mr, client := setupTestRedis(t)
	lock := NewLock(client)
	ctx := context.Background()

	first, _ := mustAcquire(t, lock, "import:user-1", 15*time.Minute)
	mr.FastForward(16 * time.Minute)

	second, ok := mustAcquire(t, lock, "import:user-1", 15*time.Minute)
	if !ok {
		t.Fatal("expected reacquire after expiry")
	}
	if first == second {
		t.Fatal("expected a fresh token per acquisition")
	}

	if err := lock.Extend(ctx, "import:user-1", first, 15*time.Minute); !errors.Is(err, domain.ErrLockNotHeld) {
		t.Errorf("expected ErrLockNotHeld for the expired acquisition, got %v", err)
	}
	if err := lock.Release(ctx, "import:user-1", first); err != nil {
		t.Fatalf("release: %v", err)
	}
	if got, _ := mr.Get(KeyPrefix + "import:user-1"); got != second {
		t.Errorf("expected the second holder to keep the lock, value is %q", got)
	}

	if _, ok := mustAcquire(t, lock, "import:user-1", 15*time.Minute); ok {
		t.Error("expected the lock to still be held by the second acquisition")
	}
}

func TestLock_Extend(t *testing.T) {
	mr, client := setupTestRedis(t)
	lock := NewLock(client)
	ctx := context.Background()

	token, _ := mustAcquire(t, lock, "import:user-1", time.Second)
	if err := lock.Extend(ctx, "import:user-1", token, time.Minute); err != nil {
		t.Fatalf("extend: %v", err)
	}
	if ttl := mr.TTL(KeyPrefix + "import:user-1"); ttl != time.Minute {
		t.Errorf("expected ttl 1m, got %v", ttl)
	}

	mr.FastForward(2 * time.Minute)
	if err := lock.Extend(ctx, "import:user-1", token, time.Minute); !errors.Is(err, domain.ErrLockNotHeld) {
		t.Errorf("expected ErrLockNotHeld after expiry, got %v", err)
	}
	if err := NewLock(client).Extend(ctx, "import:user-1", "", time.Minute); !errors.Is(err, domain.ErrLockNotHeld) {
		t.Errorf("expected ErrLockNotHeld for never-acquired lock, got %v", err)
	}
}

func TestLock_Ping(t *testing.T) {
	mr, client := setupTestRedis(t)
	lock := NewLock(client)

	if err := lock.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
	mr.Close()
	if err := lock.Ping(context.Background()); err == nil {
		t.Error("expected ping to fail once redis is gone")
	}
}
