package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	"spotcrawler/internal/model"
)

// entityQueueSchema stores queued entity references. Categories are stored
// by their integer code (model.Category.Code); the code never changes once
// written. Duplicate (slug, hash) pairs are suppressed at insert time.
const entityQueueSchema = `
CREATE TABLE IF NOT EXISTS queue (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	slug INTEGER NOT NULL,
	hash TEXT NOT NULL,
	UNIQUE(slug, hash)
);
`

// EntityQueue is a persisted, thread-safe FIFO queue of (category,
// identifier) entity references. Categories are translated to their
// integer codes at the storage boundary and back on the way out.
type EntityQueue struct {
	db     *sql.DB
	path   string
	mu     sync.Mutex
	length int
	ready  *notifier
}

// OpenEntityQueue opens or creates an entity queue backed by the database
// file at path. The cached length is seeded from the authoritative row count.
func OpenEntityQueue(path string) (*EntityQueue, error) {
	db, err := openDB(path, entityQueueSchema)
	if err != nil {
		return nil, err
	}

	q := &EntityQueue{db: db, path: path, ready: newNotifier()}

	n, err := q.Count(context.Background())
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	q.length = n

	return q, nil
}

// Put inserts one entity, suppressing duplicate (category, identifier)
// pairs at the storage layer. The insert is committed before Put returns.
// The cached length is incremented unconditionally.
func (q *EntityQueue) Put(ctx context.Context, e model.Entity) error {
	if !e.Category.Valid() {
		return fmt.Errorf("unknown category %q", e.Category)
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if _, err := q.db.ExecContext(ctx, "INSERT OR IGNORE INTO queue (slug, hash) VALUES (?, ?)", e.Category.Code(), e.ID); err != nil {
		return fmt.Errorf("failed to enqueue entity: %w", err)
	}
	q.length++
	q.ready.signal()
	return nil
}

// Extend inserts all entities as one transaction, suppressing duplicate
// pairs at the storage layer. The cached length grows by len(entities)
// unconditionally. Extend is a no-op for empty input.
func (q *EntityQueue) Extend(ctx context.Context, entities []model.Entity) error {
	if len(entities) == 0 {
		return nil
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	tx, err := q.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT OR IGNORE INTO queue (slug, hash) VALUES (?, ?)")
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entities {
		if !e.Category.Valid() {
			_ = tx.Rollback()
			return fmt.Errorf("unknown category %q", e.Category)
		}
		if _, err := stmt.ExecContext(ctx, e.Category.Code(), e.ID); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to enqueue entity: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	q.length += len(entities)
	q.ready.signal()
	return nil
}

// TryGet atomically removes and returns the oldest entity by insertion
// order. The second return value is false when the queue is empty.
func (q *EntityQueue) TryGet(ctx context.Context) (model.Entity, bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	tx, err := q.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Entity{}, false, fmt.Errorf("failed to begin transaction: %w", err)
	}

	var id int64
	var code int
	var hash string
	err = tx.QueryRowContext(ctx, "SELECT id, slug, hash FROM queue ORDER BY id LIMIT 1").Scan(&id, &code, &hash)
	if err == sql.ErrNoRows {
		_ = tx.Rollback()
		return model.Entity{}, false, nil
	}
	if err != nil {
		_ = tx.Rollback()
		return model.Entity{}, false, fmt.Errorf("failed to select entity: %w", err)
	}

	category, err := model.CategoryFromCode(code)
	if err != nil {
		_ = tx.Rollback()
		return model.Entity{}, false, err
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM queue WHERE id = ?", id); err != nil {
		_ = tx.Rollback()
		return model.Entity{}, false, fmt.Errorf("failed to delete entity: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return model.Entity{}, false, fmt.Errorf("failed to commit: %w", err)
	}
	q.length--
	return model.Entity{Category: category, ID: hash}, true, nil
}

// Get blocks until an entity is available or the context is cancelled.
// The entity is removed atomically with the return.
func (q *EntityQueue) Get(ctx context.Context) (model.Entity, error) {
	for {
		e, ok, err := q.TryGet(ctx)
		if err != nil {
			return model.Entity{}, err
		}
		if ok {
			return e, nil
		}
		if err := q.ready.wait(ctx, pollInterval); err != nil {
			return model.Entity{}, err
		}
	}
}

// GetBatch atomically removes and returns up to n entities. Removal is
// keyed by row identifier, so the cached length shrinks by the number of
// rows scanned. A queue holding fewer than n entities is drained completely.
func (q *EntityQueue) GetBatch(ctx context.Context, n int) ([]model.Entity, error) {
	if n <= 0 {
		return nil, nil
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	tx, err := q.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	rows, err := tx.QueryContext(ctx, "SELECT id, slug, hash FROM queue LIMIT ?", n)
	if err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("failed to select batch: %w", err)
	}

	var ids []int64
	var entities []model.Entity
	for rows.Next() {
		var id int64
		var code int
		var hash string
		if err := rows.Scan(&id, &code, &hash); err != nil {
			rows.Close()
			_ = tx.Rollback()
			return nil, fmt.Errorf("failed to scan entity: %w", err)
		}
		category, err := model.CategoryFromCode(code)
		if err != nil {
			rows.Close()
			_ = tx.Rollback()
			return nil, err
		}
		ids = append(ids, id)
		entities = append(entities, model.Entity{Category: category, ID: hash})
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		_ = tx.Rollback()
		return nil, fmt.Errorf("failed to read batch: %w", err)
	}
	rows.Close()

	if len(ids) == 0 {
		_ = tx.Rollback()
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM queue WHERE id IN ("+placeholders+")", args...); err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("failed to delete batch: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}
	q.length -= len(ids)
	return entities, nil
}

// Contains reports whether the exact (category, identifier) pair is
// currently queued.
func (q *EntityQueue) Contains(ctx context.Context, e model.Entity) (bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var one int
	err := q.db.QueryRowContext(ctx, "SELECT 1 FROM queue WHERE slug = ? AND hash = ?", e.Category.Code(), e.ID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check entity: %w", err)
	}
	return true, nil
}

// Entities returns a snapshot of all queued entities in insertion order
// without removing them.
func (q *EntityQueue) Entities(ctx context.Context) ([]model.Entity, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	rows, err := q.db.QueryContext(ctx, "SELECT slug, hash FROM queue ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query entities: %w", err)
	}
	defer rows.Close()

	var entities []model.Entity
	for rows.Next() {
		var code int
		var hash string
		if err := rows.Scan(&code, &hash); err != nil {
			return nil, fmt.Errorf("failed to scan entity: %w", err)
		}
		category, err := model.CategoryFromCode(code)
		if err != nil {
			return nil, err
		}
		entities = append(entities, model.Entity{Category: category, ID: hash})
	}
	return entities, rows.Err()
}

// Len returns the cached length. See the package documentation for how this
// can diverge from the stored row count.
func (q *EntityQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.length
}

// Count returns the authoritative number of queued rows.
func (q *EntityQueue) Count(ctx context.Context) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var n int
	if err := q.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM queue").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count queue: %w", err)
	}
	return n, nil
}

// Close closes the underlying database.
func (q *EntityQueue) Close() error {
	return q.db.Close()
}
