package pipeline

import (
	"context"
	"log/slog"
	"time"

	"spotcrawler/internal/fetch"
	"spotcrawler/internal/model"
)

// RoundStats summarizes one FETCH, DEDUP, AGGREGATE round.
type RoundStats struct {
	// Round is the zero-based round number.
	Round int

	// PagesFetched counts pages whose fetch results were aggregated.
	PagesFetched int

	// LinksDiscovered counts raw links routed to the discovered queue.
	LinksDiscovered int

	// NewPages counts pages that survived dedup into the frontier.
	NewPages int

	// ResultCounts holds each category's result set length after the round.
	ResultCounts map[model.Category]int

	// FrontierLen, DiscoveredLen and EntityLen are the queue lengths after
	// the round.
	FrontierLen   int
	DiscoveredLen int
	EntityLen     int
}

// Idle reports whether the round did no work.
func (s RoundStats) Idle() bool {
	return s.PagesFetched == 0 && s.LinksDiscovered == 0 && s.NewPages == 0
}

// Crawler runs the round-based crawl loop. It owns references to all
// queues and sets for its lifetime; no other component mutates them.
type Crawler struct {
	stores *Stores
	engine *fetch.Engine

	// batchSize caps items per queue drain step.
	batchSize int

	// seedPage bootstraps an empty frontier at startup.
	seedPage string

	// idlePause is the sleep between rounds that found no work.
	idlePause time.Duration

	// onRound, when set, receives each round's stats.
	onRound func(RoundStats)

	logger *slog.Logger
}

// CrawlerOption configures a Crawler.
type CrawlerOption func(*Crawler)

// WithBatchSize caps items per queue drain step. Default is 4096.
func WithBatchSize(n int) CrawlerOption {
	return func(c *Crawler) {
		if n > 0 {
			c.batchSize = n
		}
	}
}

// WithSeedPage sets the page used to bootstrap an empty frontier.
func WithSeedPage(page string) CrawlerOption {
	return func(c *Crawler) {
		c.seedPage = page
	}
}

// WithIdlePause sets the sleep between rounds that found no work.
func WithIdlePause(d time.Duration) CrawlerOption {
	return func(c *Crawler) {
		c.idlePause = d
	}
}

// WithRoundCallback registers a callback invoked after every round with
// that round's stats. The callback runs on the crawl goroutine.
func WithRoundCallback(fn func(RoundStats)) CrawlerOption {
	return func(c *Crawler) {
		c.onRound = fn
	}
}

// WithCrawlerLogger sets a custom logger for the crawler.
func WithCrawlerLogger(logger *slog.Logger) CrawlerOption {
	return func(c *Crawler) {
		c.logger = logger
	}
}

// NewCrawler creates a Crawler over the given stores and fetch engine.
func NewCrawler(stores *Stores, engine *fetch.Engine, opts ...CrawlerOption) *Crawler {
	c := &Crawler{
		stores:    stores,
		engine:    engine,
		batchSize: 4096,
		idlePause: time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// Run executes rounds until the context is cancelled. There is no built-in
// termination: as link novelty decreases the queues drain toward empty and
// rounds become idle, but the loop keeps going so that externally injected
// work is picked up. Idle rounds sleep briefly instead of spinning.
//
// An empty frontier is seeded with the configured seed page before the
// first round.
func (c *Crawler) Run(ctx context.Context) error {
	if err := c.seed(ctx); err != nil {
		return err
	}

	for round := 0; ; round++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		stats, err := c.RunRound(ctx)
		if err != nil {
			return err
		}
		stats.Round = round

		c.logger.Info("round complete",
			"round", round,
			"fetched", stats.PagesFetched,
			"discovered", stats.LinksDiscovered,
			"new_pages", stats.NewPages,
			"frontier", stats.FrontierLen,
		)
		if c.onRound != nil {
			c.onRound(stats)
		}

		if stats.Idle() {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.idlePause):
			}
		}
	}
}

// seed bootstraps an empty frontier with the seed page. A frontier with
// surviving items from a previous run is left untouched.
func (c *Crawler) seed(ctx context.Context) error {
	if c.seedPage == "" || c.stores.Frontier.Len() > 0 {
		return nil
	}
	c.logger.Info("seeding empty frontier", "page", c.seedPage)
	return c.stores.Frontier.Put(ctx, c.seedPage)
}

// RunRound executes one full FETCH, DEDUP, AGGREGATE sequence and returns
// its stats. Storage errors and context cancellation abort the round and
// propagate; per-page fetch failures never do.
func (c *Crawler) RunRound(ctx context.Context) (RoundStats, error) {
	var stats RoundStats

	if err := c.fetchPhase(ctx, &stats); err != nil {
		return stats, err
	}
	if err := c.dedupPhase(ctx, &stats); err != nil {
		return stats, err
	}
	if err := c.aggregatePhase(ctx, &stats); err != nil {
		return stats, err
	}

	stats.ResultCounts = make(map[model.Category]int)
	for category, rs := range c.stores.Results {
		stats.ResultCounts[category] = rs.Len()
	}
	stats.FrontierLen = c.stores.Frontier.Len()
	stats.DiscoveredLen = c.stores.Discovered.Len()
	stats.EntityLen = c.stores.Entities.Len()
	return stats, nil
}

// fetchPhase drains the frontier in batches through the fetch engine,
// routing raw links to the discovered queue and raw entities to the entity
// queue.
func (c *Crawler) fetchPhase(ctx context.Context, stats *RoundStats) error {
	for {
		pages, err := c.stores.Frontier.GetBatch(ctx, c.batchSize)
		if err != nil {
			return err
		}
		if len(pages) == 0 {
			return nil
		}

		result, err := c.engine.FetchBatch(ctx, pages)
		if err != nil {
			return err
		}

		if err := c.stores.Discovered.Extend(ctx, result.Pages); err != nil {
			return err
		}
		if err := c.stores.Entities.Extend(ctx, result.Entities); err != nil {
			return err
		}

		stats.PagesFetched += result.Fetched
		stats.LinksDiscovered += len(result.Pages)
	}
}

// dedupPhase drains the discovered queue, filters out pages already in the
// visited set, and routes survivors into both the visited set and the
// frontier.
func (c *Crawler) dedupPhase(ctx context.Context, stats *RoundStats) error {
	for {
		pages, err := c.stores.Discovered.GetBatch(ctx, c.batchSize)
		if err != nil {
			return err
		}
		if len(pages) == 0 {
			return nil
		}

		var fresh []string
		for _, page := range pages {
			visited, err := c.stores.Visited.Contains(ctx, page)
			if err != nil {
				return err
			}
			if !visited {
				fresh = append(fresh, page)
			}
		}

		if err := c.stores.Visited.Extend(ctx, fresh); err != nil {
			return err
		}
		if err := c.stores.Frontier.Extend(ctx, fresh); err != nil {
			return err
		}
		stats.NewPages += len(fresh)
	}
}

// aggregatePhase drains the entity queue, groups by category, filters out
// identifiers already recorded, and extends each category's result set
// with the survivors.
func (c *Crawler) aggregatePhase(ctx context.Context, stats *RoundStats) error {
	for {
		entities, err := c.stores.Entities.GetBatch(ctx, c.batchSize)
		if err != nil {
			return err
		}
		if len(entities) == 0 {
			return nil
		}

		fresh := make(map[model.Category][]string)
		for _, e := range entities {
			rs := c.stores.Results[e.Category]
			known, err := rs.Contains(ctx, e.ID)
			if err != nil {
				return err
			}
			if !known {
				fresh[e.Category] = append(fresh[e.Category], e.ID)
			}
		}

		for category, ids := range fresh {
			if err := c.stores.Results[category].Extend(ctx, ids); err != nil {
				return err
			}
		}
	}
}
