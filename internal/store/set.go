package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
)

// setSchema holds the unique elements of a durable set.
const setSchema = `
CREATE TABLE IF NOT EXISTS elements (
	element TEXT PRIMARY KEY
);
`

// Set is a persisted, thread-safe set of unique strings.
// It survives process restarts: reopening the same file reproduces the
// identical set of elements.
type Set struct {
	db     *sql.DB
	path   string
	mu     sync.Mutex
	length int
}

// OpenSet opens or creates a durable set backed by the database file at path.
// The cached length is seeded from the authoritative row count.
func OpenSet(path string) (*Set, error) {
	db, err := openDB(path, setSchema)
	if err != nil {
		return nil, err
	}

	s := &Set{db: db, path: path}

	n, err := s.Count(context.Background())
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	s.length = n

	return s, nil
}

// Contains reports whether element is present. No side effects.
func (s *Set) Contains(ctx context.Context, element string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var one int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM elements WHERE element = ?", element).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check element: %w", err)
	}
	return true, nil
}

// Add inserts element, ignoring duplicates at the storage layer.
// The cached length is incremented unconditionally, so it drifts above the
// true row count when element was already present. The insert is committed
// before Add returns.
func (s *Set) Add(ctx context.Context, element string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, "INSERT OR IGNORE INTO elements (element) VALUES (?)", element); err != nil {
		return fmt.Errorf("failed to add element: %w", err)
	}
	s.length++
	return nil
}

// Extend inserts all elements as one transaction, ignoring duplicates at
// the storage layer. The cached length is incremented by len(elements)
// unconditionally. Extend is a no-op for empty input.
func (s *Set) Extend(ctx context.Context, elements []string) error {
	if len(elements) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT OR IGNORE INTO elements (element) VALUES (?)")
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, element := range elements {
		if _, err := stmt.ExecContext(ctx, element); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to add element: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	s.length += len(elements)
	return nil
}

// Len returns the cached length. See the package documentation for how this
// can diverge from the stored row count.
func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.length
}

// Count returns the authoritative number of stored elements.
func (s *Set) Count(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM elements").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count elements: %w", err)
	}
	return n, nil
}

// Elements returns a snapshot of all stored elements in unspecified order.
func (s *Set) Elements(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, "SELECT element FROM elements")
	if err != nil {
		return nil, fmt.Errorf("failed to query elements: %w", err)
	}
	defer rows.Close()

	var elements []string
	for rows.Next() {
		var element string
		if err := rows.Scan(&element); err != nil {
			return nil, fmt.Errorf("failed to scan element: %w", err)
		}
		elements = append(elements, element)
	}
	return elements, rows.Err()
}

// Close closes the underlying database.
func (s *Set) Close() error {
	return s.db.Close()
}
