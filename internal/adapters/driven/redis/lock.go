package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/stride-sync/internal/core/domain"
	"github.com/custodia-labs/stride-sync/internal/core/ports/driven"
)

var _ driven.DistributedLock = (*Lock)(nil)

// KeyPrefix namespaces lock keys in a shared Redis.
const KeyPrefix = "stride-sync:lock:"

// Lock implements DistributedLock using SET NX with a TTL.
// The key's value is the token handed out by Acquire. Release and Extend
// compare it in a script, so only the acquisition that set it can act on it.
type Lock struct {
	client redis.UniversalClient
}

// NewLock creates a Redis-backed distributed lock.
func NewLock(client redis.UniversalClient) *Lock {
	return &Lock{client: client}
}

// Acquire tries to take the named lock for ttl.
func (l *Lock) Acquire(ctx context.Context, name string, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, KeyPrefix+name, token, ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("acquire lock %s: %w", name, err)
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

// releaseScript deletes the key only while it still carries the caller's token.
var releaseScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	end
	return 0
`)

// Release drops the lock if token still owns it.
func (l *Lock) Release(ctx context.Context, name, token string) error {
	if token == "" {
		return nil
	}

	err := releaseScript.Run(ctx, l.client, []string{KeyPrefix + name}, token).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release lock %s: %w", name, err)
	}
	return nil
}

var extendScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("pexpire", KEYS[1], ARGV[2])
	end
	return 0
`)

// Extend resets the TTL of a lock token still owns.
func (l *Lock) Extend(ctx context.Context, name, token string, ttl time.Duration) error {
	if token == "" {
		return fmt.Errorf("extend lock %s: %w", name, domain.ErrLockNotHeld)
	}

	n, err := extendScript.Run(ctx, l.client, []string{KeyPrefix + name}, token, ttl.Milliseconds()).Int64()
	if err != nil {
		return fmt.Errorf("extend lock %s: %w", name, err)
	}
	if n == 0 {
		return fmt.Errorf("extend lock %s: %w", name, domain.ErrLockNotHeld)
	}
	return nil
}

// Ping checks the Redis backend.
func (l *Lock) Ping(ctx context.Context) error {
	return l.client.Ping(ctx).Err()
}
