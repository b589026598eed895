package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"
)

// pageQueueSchema stores queued page identifiers. The rowid provides the
// insertion order used for FIFO dequeue and as the removal key; it is never
// exposed to callers. The UNIQUE constraint suppresses duplicate pages at
// the storage layer.
const pageQueueSchema = `
CREATE TABLE IF NOT EXISTS queue (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	page TEXT NOT NULL UNIQUE
);
`

// pollInterval bounds how long a blocked Get waits before re-checking
// storage when no put signal arrives.
const pollInterval = 100 * time.Millisecond

// PageQueue is a persisted, thread-safe FIFO queue of page identifiers.
// An item present in the queue has not yet been processed; dequeue removes
// the item atomically with its return, so no two consumers observe the
// same item.
type PageQueue struct {
	db     *sql.DB
	path   string
	mu     sync.Mutex
	length int
	ready  *notifier
}

// OpenPageQueue opens or creates a page queue backed by the database file
// at path. The cached length is seeded from the authoritative row count.
func OpenPageQueue(path string) (*PageQueue, error) {
	db, err := openDB(path, pageQueueSchema)
	if err != nil {
		return nil, err
	}

	q := &PageQueue{db: db, path: path, ready: newNotifier()}

	n, err := q.Count(context.Background())
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	q.length = n

	return q, nil
}

// Put inserts one page, suppressing duplicates at the storage layer.
// The insert is committed before Put returns. The cached length is
// incremented unconditionally, even for a suppressed duplicate.
func (q *PageQueue) Put(ctx context.Context, page string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, err := q.db.ExecContext(ctx, "INSERT OR IGNORE INTO queue (page) VALUES (?)", page); err != nil {
		return fmt.Errorf("failed to enqueue page: %w", err)
	}
	q.length++
	q.ready.signal()
	return nil
}

// Extend inserts all pages as one transaction, suppressing duplicates at
// the storage layer. The cached length grows by len(pages) unconditionally.
// Extend is a no-op for empty input.
func (q *PageQueue) Extend(ctx context.Context, pages []string) error {
	if len(pages) == 0 {
		return nil
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	tx, err := q.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT OR IGNORE INTO queue (page) VALUES (?)")
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, page := range pages {
		if _, err := stmt.ExecContext(ctx, page); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to enqueue page: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	q.length += len(pages)
	q.ready.signal()
	return nil
}

// TryGet atomically removes and returns the oldest page by insertion order.
// The second return value is false when the queue is empty.
func (q *PageQueue) TryGet(ctx context.Context) (string, bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	tx, err := q.db.BeginTx(ctx, nil)
	if err != nil {
		return "", false, fmt.Errorf("failed to begin transaction: %w", err)
	}

	var id int64
	var page string
	err = tx.QueryRowContext(ctx, "SELECT id, page FROM queue ORDER BY id LIMIT 1").Scan(&id, &page)
	if err == sql.ErrNoRows {
		_ = tx.Rollback()
		return "", false, nil
	}
	if err != nil {
		_ = tx.Rollback()
		return "", false, fmt.Errorf("failed to select page: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM queue WHERE id = ?", id); err != nil {
		_ = tx.Rollback()
		return "", false, fmt.Errorf("failed to delete page: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", false, fmt.Errorf("failed to commit: %w", err)
	}
	q.length--
	return page, true, nil
}

// Get blocks until a page is available or the context is cancelled.
// It returns the oldest page by insertion order, removed atomically with
// the return. Callers should only block when further work is forthcoming;
// cancellation is the way out of an empty queue.
func (q *PageQueue) Get(ctx context.Context) (string, error) {
	for {
		page, ok, err := q.TryGet(ctx)
		if err != nil {
			return "", err
		}
		if ok {
			return page, nil
		}
		if err := q.ready.wait(ctx, pollInterval); err != nil {
			return "", err
		}
	}
}

// GetBatch atomically removes and returns up to n pages. Duplicate rows
// sharing a page identifier collapse to one returned page, and the cached
// length shrinks by the distinct count removed. A queue holding fewer than
// n pages is drained completely.
func (q *PageQueue) GetBatch(ctx context.Context, n int) ([]string, error) {
	if n <= 0 {
		return nil, nil
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	tx, err := q.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	rows, err := tx.QueryContext(ctx, "SELECT page FROM queue LIMIT ?", n)
	if err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("failed to select batch: %w", err)
	}

	seen := make(map[string]bool)
	var pages []string
	for rows.Next() {
		var page string
		if err := rows.Scan(&page); err != nil {
			rows.Close()
			_ = tx.Rollback()
			return nil, fmt.Errorf("failed to scan page: %w", err)
		}
		if !seen[page] {
			seen[page] = true
			pages = append(pages, page)
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		_ = tx.Rollback()
		return nil, fmt.Errorf("failed to read batch: %w", err)
	}
	rows.Close()

	if len(pages) == 0 {
		_ = tx.Rollback()
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(pages)), ", ")
	args := make([]any, len(pages))
	for i, page := range pages {
		args[i] = page
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM queue WHERE page IN ("+placeholders+")", args...); err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("failed to delete batch: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}
	q.length -= len(pages)
	return pages, nil
}

// Contains reports whether page is currently queued.
func (q *PageQueue) Contains(ctx context.Context, page string) (bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var one int
	err := q.db.QueryRowContext(ctx, "SELECT 1 FROM queue WHERE page = ?", page).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check page: %w", err)
	}
	return true, nil
}

// Pages returns a snapshot of all queued pages in insertion order without
// removing them.
func (q *PageQueue) Pages(ctx context.Context) ([]string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	rows, err := q.db.QueryContext(ctx, "SELECT page FROM queue ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query pages: %w", err)
	}
	defer rows.Close()

	var pages []string
	for rows.Next() {
		var page string
		if err := rows.Scan(&page); err != nil {
			return nil, fmt.Errorf("failed to scan page: %w", err)
		}
		pages = append(pages, page)
	}
	return pages, rows.Err()
}

// Len returns the cached length. See the package documentation for how this
// can diverge from the stored row count.
func (q *PageQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.length
}

// Count returns the authoritative number of queued rows.
func (q *PageQueue) Count(ctx context.Context) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var n int
	if err := q.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM queue").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count queue: %w", err)
	}
	return n, nil
}

// Close closes the underlying database.
func (q *PageQueue) Close() error {
	return q.db.Close()
}
