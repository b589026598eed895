package fetch

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"spotcrawler/internal/extract"
	"spotcrawler/internal/model"
)

// transientStatus maps HTTP status codes treated as transient failures to
// their log messages. A transient failure is logged and briefly paused on;
// the page's result is dropped for this pass and is not resubmitted.
var transientStatus = map[int]string{
	429: "too many requests",
	500: "internal server error",
	503: "service unavailable",
	504: "gateway timeout",
}

// Engine fetches batches of page identifiers under a bounded concurrency
// limit and hands successful responses to the extractor.
type Engine struct {
	// fetch is the transport capability used for each page.
	fetch Func

	// origin is the site base URL page identifiers are resolved against.
	origin string

	// extractor produces links and entities from fetched content.
	extractor extract.Extractor

	// concurrency caps the number of in-flight fetches per batch.
	concurrency int

	// transientPause is how long to pause after a transient failure.
	transientPause time.Duration

	// logger for structured logging.
	logger *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithConcurrency caps the number of in-flight fetches per batch.
// Default is 64.
func WithConcurrency(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// WithTransientPause sets the pause after a transient failure.
func WithTransientPause(d time.Duration) Option {
	return func(e *Engine) {
		e.transientPause = d
	}
}

// WithLogger sets a custom logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// NewEngine creates an Engine that resolves page identifiers against
// origin, fetches them via fn, and extracts results with extractor.
func NewEngine(fn Func, origin string, extractor extract.Extractor, opts ...Option) *Engine {
	e := &Engine{
		fetch:          fn,
		origin:         origin,
		extractor:      extractor,
		concurrency:    64,
		transientPause: 100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e
}

// BatchResult aggregates the output of one batch: the union of discovered
// links and entities across all successfully processed pages.
type BatchResult struct {
	// Pages holds all raw discovered page identifiers, duplicates included.
	Pages []string

	// Entities holds all raw discovered entity references.
	Entities []model.Entity

	// Fetched counts the pages whose results were aggregated.
	Fetched int
}

// FetchBatch fetches all pages concurrently and aggregates the extracted
// links and entities of the successful ones. Per-page failures are logged
// and dropped; only context cancellation aborts the batch and propagates.
// Results are aggregated as fetches complete, in no particular order.
func (e *Engine) FetchBatch(ctx context.Context, pages []string) (*BatchResult, error) {
	result := &BatchResult{}
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	for _, page := range pages {
		page := page
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			links, entities, ok := e.fetchOne(ctx, page)
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if !ok {
				return nil
			}

			mu.Lock()
			result.Pages = append(result.Pages, links...)
			result.Entities = append(result.Entities, entities...)
			result.Fetched++
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

// fetchOne fetches a single page and classifies the outcome. The returned
// ok is false when the page's result should be dropped.
func (e *Engine) fetchOne(ctx context.Context, page string) ([]string, []model.Entity, bool) {
	url := e.pageURL(page)

	status, body, err := e.fetch(ctx, url)
	if err != nil {
		if ctx.Err() != nil {
			return nil, nil, false
		}
		e.logger.Warn("fetch failed", "url", url, "error", err)
		return nil, nil, false
	}

	switch {
	case status == 200:
		links, entities := e.extractor.Extract(body)
		return links, entities, true

	case transientStatus[status] != "":
		e.logger.Warn(transientStatus[status],
			"url", url,
			"status", status,
			"pause", e.transientPause,
		)
		select {
		case <-ctx.Done():
		case <-time.After(e.transientPause):
		}
		return nil, nil, false

	default:
		e.logger.Warn("fetch returned non-200 status", "url", url, "status", status)
		return nil, nil, false
	}
}

// pageURL builds the absolute URL for a page identifier.
func (e *Engine) pageURL(page string) string {
	return strings.TrimSuffix(e.origin, "/") + "/" + strings.TrimPrefix(page, "/")
}
