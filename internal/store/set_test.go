package store

import (
	"context"
	"path/filepath"
	"sort"
	"sync"
	"testing"
)

// setupTestSet creates a temporary durable set for testing.
func setupTestSet(t *testing.T) *Set {
	t.Helper()

	s, err := OpenSet(filepath.Join(t.TempDir(), "set.db"))
	if err != nil {
		t.Fatalf("failed to open set: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// TestSetAddContains tests basic membership semantics.
func TestSetAddContains(t *testing.T) {
	t.Parallel()

	s := setupTestSet(t)
	ctx := context.Background()

	ok, err := s.Contains(ctx, "a")
	if err != nil {
		t.Fatalf("Contains failed: %v", err)
	}
	if ok {
		t.Error("empty set should not contain element")
	}

	if err := s.Add(ctx, "a"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	ok, err = s.Contains(ctx, "a")
	if err != nil {
		t.Fatalf("Contains failed: %v", err)
	}
	if !ok {
		t.Error("set should contain added element")
	}
}

// TestSetExtendLengthDrift verifies the documented divergence between the
// cached length and the stored row count under duplicate-laden Extend: an
// empty set extended with ["a", "a", "b"] stores two elements while the
// cached length reports three.
func TestSetExtendLengthDrift(t *testing.T) {
	t.Parallel()

	s := setupTestSet(t)
	ctx := context.Background()

	if err := s.Extend(ctx, []string{"a", "a", "b"}); err != nil {
		t.Fatalf("Extend failed: %v", err)
	}

	count, err := s.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 2 {
		t.Errorf("stored count = %d, want 2", count)
	}
	if got := s.Len(); got != 3 {
		t.Errorf("cached length = %d, want 3", got)
	}
}

// TestSetExtendEmpty tests that an empty Extend is a no-op.
func TestSetExtendEmpty(t *testing.T) {
	t.Parallel()

	s := setupTestSet(t)

	if err := s.Extend(context.Background(), nil); err != nil {
		t.Fatalf("Extend of empty input failed: %v", err)
	}
	if got := s.Len(); got != 0 {
		t.Errorf("length after empty Extend = %d, want 0", got)
	}
}

// TestSetReopen tests that closing and reopening against the same file
// reproduces the identical elements and reseeds the cached length from
// the authoritative count.
func TestSetReopen(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "set.db")
	ctx := context.Background()

	s1, err := OpenSet(path)
	if err != nil {
		t.Fatalf("failed to open set: %v", err)
	}
	if err := s1.Extend(ctx, []string{"a", "a", "b", "c"}); err != nil {
		t.Fatalf("Extend failed: %v", err)
	}
	if err := s1.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	s2, err := OpenSet(path)
	if err != nil {
		t.Fatalf("failed to reopen set: %v", err)
	}
	defer s2.Close()

	elements, err := s2.Elements(ctx)
	if err != nil {
		t.Fatalf("Elements failed: %v", err)
	}
	sort.Strings(elements)
	want := []string{"a", "b", "c"}
	if len(elements) != len(want) {
		t.Fatalf("elements = %v, want %v", elements, want)
	}
	for i := range want {
		if elements[i] != want[i] {
			t.Errorf("elements[%d] = %q, want %q", i, elements[i], want[i])
		}
	}

	// Reopen reconciles the cached length with the true row count.
	if got := s2.Len(); got != 3 {
		t.Errorf("cached length after reopen = %d, want 3", got)
	}
}

// TestSetConcurrentAdd verifies that concurrent adds of the same element
// never produce more than one stored row.
func TestSetConcurrentAdd(t *testing.T) {
	t.Parallel()

	s := setupTestSet(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.Add(ctx, "same"); err != nil {
				t.Errorf("Add failed: %v", err)
			}
		}()
	}
	wg.Wait()

	count, err := s.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("stored count = %d, want 1", count)
	}
}
