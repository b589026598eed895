package report

import (
	"context"
	"time"

	"spotcrawler/internal/model"
	"spotcrawler/internal/pipeline"
)

// Summary is a point-in-time snapshot of a crawl's persisted state.
type Summary struct {
	// RootDir is the storage root the summary was taken from.
	RootDir string

	// TakenAt is when the snapshot was taken.
	TakenAt time.Time

	// ResultCounts holds the authoritative stored count per category.
	ResultCounts map[model.Category]int

	// VisitedCount is the number of pages ever confirmed fetched-or-queued.
	VisitedCount int

	// FrontierLen, DiscoveredLen and EntityLen are the pending queue
	// depths.
	FrontierLen   int
	DiscoveredLen int
	EntityLen     int
}

// TotalEntities returns the sum of all category result counts.
func (s *Summary) TotalEntities() int {
	var total int
	for _, n := range s.ResultCounts {
		total += n
	}
	return total
}

// Snapshot reads a Summary from the given stores. Counts come from
// storage, not the cached lengths, so the summary is exact.
func Snapshot(ctx context.Context, root string, stores *pipeline.Stores) (*Summary, error) {
	s := &Summary{
		RootDir:      root,
		TakenAt:      time.Now(),
		ResultCounts: make(map[model.Category]int),
	}

	var err error
	for _, category := range model.Categories() {
		s.ResultCounts[category], err = stores.Results[category].Count(ctx)
		if err != nil {
			return nil, err
		}
	}

	s.VisitedCount, err = stores.Visited.Count(ctx)
	if err != nil {
		return nil, err
	}
	s.FrontierLen, err = stores.Frontier.Count(ctx)
	if err != nil {
		return nil, err
	}
	s.DiscoveredLen, err = stores.Discovered.Count(ctx)
	if err != nil {
		return nil, err
	}
	s.EntityLen, err = stores.Entities.Count(ctx)
	if err != nil {
		return nil, err
	}

	return s, nil
}
