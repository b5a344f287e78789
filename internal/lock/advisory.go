// Package lock provides MySQL advisory locks that stop two snbloader
// instances from loading the same slice of a graph into one database.
//
// MySQL named locks belong to a session, so a held lock pins one pooled
// connection until it is released.
package lock

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// ErrLockTimeout is returned when another instance holds the lock.
var ErrLockTimeout = errors.New("lock acquisition timed out")

// GET_LOCK wait times, in seconds. MySQL waits forever on a negative value.
const (
	TimeoutImmediate = 0
	TimeoutShort     = 1
	TimeoutLong      = 60
	TimeoutInfinite  = -1
)

// maxLockName is MySQL's limit on named lock length.
const maxLockName = 64

// AdvisoryLock is a named GET_LOCK() lock.
type AdvisoryLock struct {
	db   *sql.DB
	name string
	conn *sql.Conn // session owning the lock; nil when not held
}

// NewAdvisoryLock returns an unacquired lock.
func NewAdvisoryLock(db *sql.DB, lockName string) *AdvisoryLock {
	return &AdvisoryLock{db: db, name: lockName}
}

// AcquireLock waits up to timeoutSeconds for the lock. It returns false
// without error when the wait expired. Acquiring a held lock is a no-op.
func (a *AdvisoryLock) AcquireLock(ctx context.Context, timeoutSeconds int) (bool, error) {
	if a.conn != nil {
		return true, nil
	}

	conn, err := a.db.Conn(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to reserve connection for lock %q: %w", a.name, err)
	}

	got, err := lockResult(conn.QueryRowContext(ctx, "SELECT GET_LOCK(?, ?)", a.name, timeoutSeconds), "GET_LOCK", a.name)
	if err != nil || got != 1 {
		_ = conn.Close()
		return false, err
	}
	a.conn = conn
	return true, nil
}

// ReleaseLock releases a held lock and returns its connection to the pool.
// It reports false when the lock was not held.
func (a *AdvisoryLock) ReleaseLock(ctx context.Context) (bool, error) {
	if a.conn == nil {
		return false, nil
	}
	conn := a.conn
	a.conn = nil
	defer func() { _ = conn.Close() }()

	got, err := lockResult(conn.QueryRowContext(ctx, "SELECT RELEASE_LOCK(?)", a.name), "RELEASE_LOCK", a.name)
	if err != nil {
		return false, err
	}
	return got == 1, nil
}

// lockResult scans a GET_LOCK/RELEASE_LOCK result, which is 1, 0 or NULL.
func lockResult(row *sql.Row, fn, name string) (int64, error) {
	var result sql.NullInt64
	if err := row.Scan(&result); err != nil {
		return 0, fmt.Errorf("failed to execute %s: %w", fn, err)
	}
	if !result.Valid {
		return 0, fmt.Errorf("%s returned NULL for lock %q", fn, name)
	}
	if result.Int64 != 0 && result.Int64 != 1 {
		return 0, fmt.Errorf("unexpected %s return value: %d", fn, result.Int64)
	}
	return result.Int64, nil
}

// IsHeld reports whether this instance holds the lock.
func (a *AdvisoryLock) IsHeld() bool {
	return a.conn != nil
}

// LockName returns the MySQL lock name.
func (a *AdvisoryLock) LockName() string {
	return a.name
}

// TryAcquire attempts the lock without waiting.
func (a *AdvisoryLock) TryAcquire(ctx context.Context) (bool, error) {
	return a.AcquireLock(ctx, TimeoutImmediate)
}

// AcquireOrFail acquires with TimeoutShort and wraps ErrLockTimeout when
// another instance holds the lock.
func (a *AdvisoryLock) AcquireOrFail(ctx context.Context) error {
	acquired, err := a.AcquireLock(ctx, TimeoutShort)
	if err != nil {
		return err
	}
	if !acquired {
		return fmt.Errorf("%w: lock %q is held by another instance", ErrLockTimeout, a.name)
	}
	return nil
}

// LoaderLockName returns "snbloader:loader:<graph>:<idx>" with unsafe graph
// name characters replaced. Over-long names keep their tail so the loader
// index stays visible.
func LoaderLockName(graphName string, loaderIdx int) string {
	clean := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '_' || r == '-' || r == '.':
			return r
		}
		return '_'
	}, graphName)

	name := fmt.Sprintf("snbloader:loader:%s:%d", clean, loaderIdx)
	if len(name) > maxLockName {
		name = name[len(name)-maxLockName:]
	}
	return name
}

// NewLoaderLock returns the lock guarding one loader index of a graph.
func NewLoaderLock(db *sql.DB, graphName string, loaderIdx int) *AdvisoryLock {
	return NewAdvisoryLock(db, LoaderLockName(graphName, loaderIdx))
}

// IsLoaderRunning reports whether some session holds the lock of loaderIdx.
// The check briefly takes the lock itself when it is free.
func IsLoaderRunning(ctx context.Context, db *sql.DB, graphName string, loaderIdx int) (bool, error) {
	l := NewLoaderLock(db, graphName, loaderIdx)
	free, err := l.TryAcquire(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check loader %d of %q: %w", loaderIdx, graphName, err)
	}
	if !free {
		return true, nil
	}
	_, _ = l.ReleaseLock(ctx)
	return false, nil
}
