package driven

import (
	"context"
	"time"
)

// DistributedLock serializes work that must not overlap across instances,
// such as two imports for the same user.
//
// Every successful Acquire returns a token unique to that acquisition.
// Release and Extend act only while the lock still carries that token, so a
// holder whose lock expired can never touch a newer holder's lock.
type DistributedLock interface {
	// Acquire tries to take the named lock for ttl.
	// Returns acquired=false without error when someone else holds it.
	Acquire(ctx context.Context, name string, ttl time.Duration) (token string, acquired bool, err error)

	// Release drops the named lock if token still owns it.
	// Releasing a lock that is not held, or held under another token, is not an error.
	Release(ctx context.Context, name, token string) error

	// Extend pushes out the expiry of a lock token still owns.
	// Returns domain.ErrLockNotHeld once the lock is lost.
	Extend(ctx context.Context, name, token string, ttl time.Duration) error

	// Ping checks the lock backend.
	Ping(ctx context.Context) error
}
