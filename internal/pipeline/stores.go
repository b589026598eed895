package pipeline

import (
	"fmt"
	"path/filepath"

	"spotcrawler/internal/model"
	"spotcrawler/internal/store"
)

// Stores bundles every durable collection the pipeline owns. Each
// collection exclusively owns one database file under the root directory;
// no file is shared between two instances.
type Stores struct {
	// Frontier holds pages awaiting fetch.
	Frontier *store.PageQueue

	// Discovered holds raw, not-yet-deduplicated links found during
	// fetches.
	Discovered *store.PageQueue

	// Entities holds raw (category, identifier) references awaiting dedup
	// into the result sets.
	Entities *store.EntityQueue

	// Visited holds every page identifier ever confirmed fetched-or-queued.
	Visited *store.Set

	// Results holds the deduplicated output entities, one set per category.
	Results map[model.Category]*store.Set
}

// OpenStores opens or creates every durable collection under root.
// The layout is fixed:
//
//	root/queues/pages/input.db   frontier queue
//	root/queues/pages/output.db  discovered queue
//	root/queues/results.db       entity queue
//	root/pages.db                visited set
//	root/<category>.db           one result set per category
//
// On error, collections opened so far are closed.
func OpenStores(root string) (*Stores, error) {
	s := &Stores{Results: make(map[model.Category]*store.Set)}

	var err error
	s.Frontier, err = store.OpenPageQueue(filepath.Join(root, "queues", "pages", "input.db"))
	if err != nil {
		return nil, fmt.Errorf("failed to open frontier queue: %w", err)
	}

	s.Discovered, err = store.OpenPageQueue(filepath.Join(root, "queues", "pages", "output.db"))
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to open discovered queue: %w", err)
	}

	s.Entities, err = store.OpenEntityQueue(filepath.Join(root, "queues", "results.db"))
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to open entity queue: %w", err)
	}

	s.Visited, err = store.OpenSet(filepath.Join(root, "pages.db"))
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to open visited set: %w", err)
	}

	for _, category := range model.Categories() {
		rs, err := store.OpenSet(filepath.Join(root, category.String()+".db"))
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("failed to open %s result set: %w", category, err)
		}
		s.Results[category] = rs
	}

	return s, nil
}

// Close closes every open collection, returning the first error seen.
func (s *Stores) Close() error {
	var first error
	closeOne := func(err error) {
		if err != nil && first == nil {
			first = err
		}
	}

	if s.Frontier != nil {
		closeOne(s.Frontier.Close())
	}
	if s.Discovered != nil {
		closeOne(s.Discovered.Close())
	}
	if s.Entities != nil {
		closeOne(s.Entities.Close())
	}
	if s.Visited != nil {
		closeOne(s.Visited.Close())
	}
	for _, rs := range s.Results {
		closeOne(rs.Close())
	}
	return first
}
