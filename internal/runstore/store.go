package runstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"auditionsync/internal/config"
)

// Store is the run ledger. It is safe for use by one process at a time; the
// runner's flock keeps concurrent syncs out, and busy retries cover a
// `runs` listing that overlaps a sync.
type Store struct {
	db   *sql.DB
	path string
}

const (
	busyAttempts = 5
	busyFloor    = 10 * time.Millisecond
	busyCeiling  = 200 * time.Millisecond
)

// Open creates the state directory if needed and opens cfg.RunLedgerPath().
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(cfg.RunLedgerPath())
}

// OpenPath opens a ledger file directly. Tests use it to inspect runs.db.
func OpenPath(path string) (*Store, error) {
	// WAL lets `auditionsync runs` read while a sync writes.
	dsn := "file:" + path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open run ledger %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db, path: path}
	if err := s.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Path returns the ledger file path.
func (s *Store) Path() string { return s.path }

// Close releases the database handle. Closing a nil store is a no-op.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// exec runs a write statement, retrying while another connection holds the
// write lock.
func (s *Store) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return withBusyRetry(ctx, func() (sql.Result, error) {
		return s.db.ExecContext(ctx, query, args...)
	})
}

func withBusyRetry[T any](ctx context.Context, op func() (T, error)) (T, error) {
	wait := busyFloor
	for attempt := 1; ; attempt++ {
		out, err := op()
		if err == nil || !busy(err) || attempt == busyAttempts {
			return out, err
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			var zero T
			return zero, ctx.Err()
		case <-timer.C:
		}
		wait = min(wait*2, busyCeiling)
	}
}

// busy reports SQLITE_BUSY (code 5) from the driver or its message text.
func busy(err error) bool {
	var coded interface{ Code() int }
	if errors.As(err, &coded) && coded.Code()&0xff == 5 {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}
