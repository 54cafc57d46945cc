// Package distlock provides a cross-process mutex used to serialise one-off
// start-up work, such as schema migration, across several server replicas.
package distlock

import (
	"context"
	"database/sql"
	"errors"
	"hash/fnv"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNotAcquired is returned by Run when the lock could not be taken before
// the context ended.
var ErrNotAcquired = errors.New("lock not acquired")

// Lock is a named distributed lock. A Lock value belongs to one holder and is
// not meant to be shared between goroutines.
type Lock interface {
	// Acquire tries once to take the lock and reports whether it succeeded.
	Acquire(ctx context.Context) (bool, error)
	// Release gives the lock up if this holder still owns it.
	Release(ctx context.Context) error
}

// New picks a backend: Redis when a client is configured, otherwise a
// PostgreSQL advisory lock. With neither it returns a process-local lock.
func New(redisClient *redis.Client, db *sql.DB, key string, ttl time.Duration) Lock {
	switch {
	case redisClient != nil:
		return NewRedisLock(redisClient, key, ttl)
	case db != nil:
		return NewPGAdvisoryLock(db, key)
	default:
		return &localLock{}
	}
}

// Run waits for the lock, polling every interval, then calls fn and releases
// the lock. It returns ErrNotAcquired if ctx ends first.
func Run(ctx context.Context, l Lock, interval time.Duration, fn func(ctx context.Context) error) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		ok, err := l.Acquire(ctx)
		if err != nil {
			return err
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return errors.Join(ErrNotAcquired, ctx.Err())
		case <-ticker.C:
		}
	}
	defer l.Release(context.WithoutCancel(ctx))
	return fn(ctx)
}

// PGAdvisoryLock uses pg_try_advisory_lock. The lock is session scoped, so
// PostgreSQL drops it if the holding connection dies.
type PGAdvisoryLock struct {
	db     *sql.DB
	conn   *sql.Conn
	lockID int64
}

// NewPGAdvisoryLock derives a stable lock id from key.
func NewPGAdvisoryLock(db *sql.DB, key string) *PGAdvisoryLock {
	return &PGAdvisoryLock{db: db, lockID: KeyID(key)}
}

// KeyID hashes a lock name to the bigint id PostgreSQL advisory locks use.
func KeyID(key string) int64 {
	h := fnv.New64a()
	h.Write([]byte(key))
	return int64(h.Sum64())
}

// Acquire pins a connection from the pool, since advisory locks belong to the
// session that took them.
func (l *PGAdvisoryLock) Acquire(ctx context.Context) (bool, error) {
	if l.conn == nil {
		conn, err := l.db.Conn(ctx)
		if err != nil {
			return false, err
		}
		l.conn = conn
	}
	var acquired bool
	if err := l.conn.QueryRowContext(ctx, "SELECT pg_try_advisory_lock($1)", l.lockID).Scan(&acquired); err != nil {
		return false, err
	}
	return acquired, nil
}

// Release unlocks and returns the pinned connection to the pool.
func (l *PGAdvisoryLock) Release(ctx context.Context) error {
	if l.conn == nil {
		return nil
	}
	_, err := l.conn.ExecContext(ctx, "SELECT pg_advisory_unlock($1)", l.lockID)
	closeErr := l.conn.Close()
	l.conn = nil
	return errors.Join(err, closeErr)
}

type localLock struct{ held bool }

func (l *localLock) Acquire(context.Context) (bool, error) {
	if l.held {
		return false, nil
	}
	l.held = true
	return true, nil
}

func (l *localLock) Release(context.Context) error {
	l.held = false
	return nil
}
