package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"hash/fnv"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/stride-sync/internal/core/domain"
	"github.com/custodia-labs/stride-sync/internal/core/ports/driven"
)

var _ driven.DistributedLock = (*AdvisoryLock)(nil)

// AdvisoryLock implements DistributedLock using PostgreSQL session advisory locks.
//
// Advisory locks belong to a session, so each held lock pins one pooled
// connection until Release. The ttl is ignored: the lock lasts until released
// or until the connection drops. Redis is the primary lock backend; this one
// serves deployments without it.
type AdvisoryLock struct {
	db     *DB
	logger *slog.Logger

	// mu guards held only. Database calls run outside it.
	mu   sync.Mutex
	held map[string]*advisoryLease
}

type advisoryLease struct {
	token string
	conn  *sql.Conn
}

// NewAdvisoryLock creates a PostgreSQL advisory lock adapter.
func NewAdvisoryLock(db *DB, logger *slog.Logger) *AdvisoryLock {
	if logger == nil {
		logger = slog.Default()
	}
	return &AdvisoryLock{db: db, logger: logger, held: make(map[string]*advisoryLease)}
}

// hashLockName maps a lock name onto the bigint key space with FNV-1a.
func hashLockName(name string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte("stride-sync:lock:" + name))
	return int64(h.Sum64())
}

func (l *AdvisoryLock) isHeld(name string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.held[name]
	return ok
}

// Acquire tries pg_try_advisory_lock on a dedicated connection.
func (l *AdvisoryLock) Acquire(ctx context.Context, name string, _ time.Duration) (string, bool, error) {
	if l.isHeld(name) {
		return "", false, nil
	}

	conn, err := l.db.Conn(ctx)
	if err != nil {
		return "", false, fmt.Errorf("reserve lock connection: %w", err)
	}

	// Two local callers can both get here; the server grants the key to one session.
	var acquired bool
	if err := conn.QueryRowContext(ctx, "SELECT pg_try_advisory_lock($1)", hashLockName(name)).Scan(&acquired); err != nil {
		_ = conn.Close()
		return "", false, fmt.Errorf("acquire advisory lock: %w", err)
	}
	if !acquired {
		_ = conn.Close()
		return "", false, nil
	}

	lease := &advisoryLease{token: uuid.NewString(), conn: conn}
	l.mu.Lock()
	l.held[name] = lease
	l.mu.Unlock()
	return lease.token, true, nil
}

// take removes and returns the lease for name if token owns it.
func (l *AdvisoryLock) take(name, token string) *advisoryLease {
	l.mu.Lock()
	defer l.mu.Unlock()
	lease, ok := l.held[name]
	if !ok || lease.token != token {
		return nil
	}
	delete(l.held, name)
	return lease
}

// Release unlocks on the connection that took the lock and returns it to the pool.
func (l *AdvisoryLock) Release(ctx context.Context, name, token string) error {
	lease := l.take(name, token)
	if lease == nil {
		return nil
	}
	defer lease.conn.Close()

	var released bool
	if err := lease.conn.QueryRowContext(ctx, "SELECT pg_advisory_unlock($1)", hashLockName(name)).Scan(&released); err != nil {
		// Drop the session so the server frees the lock with it.
		discard(lease.conn)
		return fmt.Errorf("release advisory lock: %w", err)
	}
	if !released {
		l.logger.Warn("advisory lock was not held by its session", "lock", name)
		discard(lease.conn)
	}
	return nil
}

// Extend checks that the session holding the lock is still alive.
// Advisory locks do not expire, so there is no deadline to push out.
func (l *AdvisoryLock) Extend(ctx context.Context, name, token string, _ time.Duration) error {
	l.mu.Lock()
	lease, ok := l.held[name]
	l.mu.Unlock()
	if !ok || lease.token != token {
		return fmt.Errorf("extend lock %s: %w", name, domain.ErrLockNotHeld)
	}

	if err := lease.conn.PingContext(ctx); err != nil {
		return fmt.Errorf("extend lock %s: session lost: %v: %w", name, err, domain.ErrLockNotHeld)
	}
	return nil
}

// Ping checks the PostgreSQL backend.
func (l *AdvisoryLock) Ping(ctx context.Context) error {
	return l.db.PingContext(ctx)
}

// discard closes the underlying session instead of returning it to the pool.
func discard(conn *sql.Conn) {
	_ = conn.Raw(func(any) error { return driver.ErrBadConn })
}
