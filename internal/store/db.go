package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// openDB opens or creates the SQLite database file at path and applies the
// schema. The parent directory is created if it does not exist.
//
// The connection pool is capped at a single connection: SQLite supports only
// one writer, and serializing all access through one connection behind the
// collection's mutex gives each concurrent caller a consistent view without
// sharing a live handle across operations.
func openDB(path, schema string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create storage directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?mode=rwc")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if _, err := db.ExecContext(context.Background(), schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return db, nil
}

// notifier wakes blocked consumers when items arrive.
//
// A buffered channel of size one coalesces signals: a queue that receives
// many puts while no consumer is waiting holds a single pending wakeup.
// Consumers additionally poll on a timer because a signal sent before the
// consumer started waiting may already have been consumed.
type notifier struct {
	ch chan struct{}
}

func newNotifier() *notifier {
	return &notifier{ch: make(chan struct{}, 1)}
}

// signal records that an item arrived. Never blocks.
func (n *notifier) signal() {
	select {
	case n.ch <- struct{}{}:
	default:
	}
}

// wait blocks until an item may be available or the context is cancelled.
// A spurious wakeup is possible; callers must re-check storage.
func (n *notifier) wait(ctx context.Context, poll time.Duration) error {
	timer := time.NewTimer(poll)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-n.ch:
		return nil
	case <-timer.C:
		return nil
	}
}
