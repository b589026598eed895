package pipeline

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"strings"
	"testing"
	"time"

	"spotcrawler/internal/extract"
	"spotcrawler/internal/fetch"
	"spotcrawler/internal/model"
)

// Fixed-shape identifiers matching the extractor's patterns.
var (
	idA = strings.Repeat("a", 22)
	idB = strings.Repeat("b", 22)
	idC = strings.Repeat("c", 22)
	idD = strings.Repeat("d", 22)
)

const testOrigin = "https://example.com"

// setupTestStores opens a full store layout under a temp directory.
func setupTestStores(t *testing.T) *Stores {
	t.Helper()

	stores, err := OpenStores(t.TempDir())
	if err != nil {
		t.Fatalf("failed to open stores: %v", err)
	}
	t.Cleanup(func() { _ = stores.Close() })
	return stores
}

// graphFetch builds a fetch.Func serving a fixed link graph: each known
// page returns a body whose links the extractor will find; unknown pages
// return an empty body.
func graphFetch(graph map[string]string) fetch.Func {
	return func(_ context.Context, url string) (int, []byte, error) {
		page := strings.TrimPrefix(url, testOrigin+"/")
		return 200, []byte(graph[page]), nil
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestCrawler wires a crawler over the given fetch function.
func newTestCrawler(t *testing.T, stores *Stores, fn fetch.Func, opts ...CrawlerOption) *Crawler {
	t.Helper()

	engine := fetch.NewEngine(fn, testOrigin, extract.NewLinkExtractor(),
		fetch.WithLogger(discardLogger()),
		fetch.WithTransientPause(time.Millisecond),
		fetch.WithConcurrency(4),
	)
	opts = append([]CrawlerOption{
		WithBatchSize(8),
		WithCrawlerLogger(discardLogger()),
	}, opts...)
	return NewCrawler(stores, engine, opts...)
}

// drain runs rounds until the queues are empty, failing the test if the
// crawl does not settle.
func drain(t *testing.T, c *Crawler) {
	t.Helper()

	ctx := context.Background()
	for i := 0; i < 20; i++ {
		stats, err := c.RunRound(ctx)
		if err != nil {
			t.Fatalf("RunRound failed: %v", err)
		}
		if stats.FrontierLen == 0 && stats.DiscoveredLen == 0 && stats.EntityLen == 0 {
			return
		}
	}
	t.Fatal("crawl did not settle within 20 rounds")
}

// TestCrawlReachableGraph tests that crawling a fixed link graph from a
// seed produces a visited set equal to the reachable node set and result
// sets equal to the reachable entities, with no duplicates.
func TestCrawlReachableGraph(t *testing.T) {
	t.Parallel()

	graph := map[string]string{
		"track/" + idA:  "/album/" + idB + " /artist/" + idC,
		"album/" + idB:  "/track/" + idA + " /track/" + idD,
		"artist/" + idC: "",
		"track/" + idD:  "/artist/" + idC,
	}

	stores := setupTestStores(t)
	ctx := context.Background()
	if err := stores.Frontier.Put(ctx, "track/"+idA); err != nil {
		t.Fatalf("failed to seed frontier: %v", err)
	}

	c := newTestCrawler(t, stores, graphFetch(graph))
	drain(t, c)

	visited, err := stores.Visited.Elements(ctx)
	if err != nil {
		t.Fatalf("failed to read visited set: %v", err)
	}
	sort.Strings(visited)
	wantVisited := []string{
		"album/" + idB,
		"artist/" + idC,
		"track/" + idA,
		"track/" + idD,
	}
	if len(visited) != len(wantVisited) {
		t.Fatalf("visited = %v, want %v", visited, wantVisited)
	}
	for i := range wantVisited {
		if visited[i] != wantVisited[i] {
			t.Errorf("visited[%d] = %q, want %q", i, visited[i], wantVisited[i])
		}
	}

	wantResults := map[model.Category][]string{
		model.CategoryTrack:  {idA, idD},
		model.CategoryAlbum:  {idB},
		model.CategoryArtist: {idC},
	}
	for _, category := range model.Categories() {
		got, err := stores.Results[category].Elements(ctx)
		if err != nil {
			t.Fatalf("failed to read %s result set: %v", category, err)
		}
		sort.Strings(got)
		want := wantResults[category]
		if len(got) != len(want) {
			t.Errorf("%s results = %v, want %v", category, got, want)
			continue
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("%s results[%d] = %q, want %q", category, i, got[i], want[i])
			}
		}
	}
}

// TestCrawlTransientFailureNotRetried tests that a page failing with a
// transient status is simply dropped for the pass: it ends up absent from
// the visited set while pages discovered from successful fetches are
// present.
func TestCrawlTransientFailureNotRetried(t *testing.T) {
	t.Parallel()

	flaky := "track/" + idA
	healthy := "album/" + idB

	fn := func(_ context.Context, url string) (int, []byte, error) {
		page := strings.TrimPrefix(url, testOrigin+"/")
		if page == flaky {
			return 503, nil, nil
		}
		if page == healthy {
			return 200, []byte("/artist/" + idC), nil
		}
		return 200, nil, nil
	}

	stores := setupTestStores(t)
	ctx := context.Background()
	if err := stores.Frontier.Extend(ctx, []string{flaky, healthy}); err != nil {
		t.Fatalf("failed to seed frontier: %v", err)
	}

	c := newTestCrawler(t, stores, fn)
	if _, err := c.RunRound(ctx); err != nil {
		t.Fatalf("RunRound failed: %v", err)
	}

	present, err := stores.Visited.Contains(ctx, flaky)
	if err != nil {
		t.Fatalf("Contains failed: %v", err)
	}
	if present {
		t.Error("transiently failed page should be absent from the visited set")
	}

	present, err = stores.Visited.Contains(ctx, "artist/"+idC)
	if err != nil {
		t.Fatalf("Contains failed: %v", err)
	}
	if !present {
		t.Error("page discovered from a successful fetch should be in the visited set")
	}
}

// TestRunSeedsEmptyFrontier tests that Run seeds an empty frontier and
// stops on cancellation.
func TestRunSeedsEmptyFrontier(t *testing.T) {
	t.Parallel()

	seed := "track/" + idA
	graph := map[string]string{seed: ""}

	stores := setupTestStores(t)
	c := newTestCrawler(t, stores, graphFetch(graph),
		WithSeedPage(seed),
		WithIdlePause(time.Millisecond),
	)

	ctx, cancel := context.WithCancel(context.Background())
	fetched := make(chan struct{}, 1)
	c.onRound = func(stats RoundStats) {
		if stats.PagesFetched > 0 {
			select {
			case fetched <- struct{}{}:
			default:
			}
			cancel()
		}
	}

	err := c.Run(ctx)
	if err == nil {
		t.Fatal("Run should return the cancellation error")
	}

	select {
	case <-fetched:
	default:
		t.Error("Run never fetched the seeded page")
	}
}

// TestRunRoundIdle tests that a round over empty queues reports idle and
// unchanged counts.
func TestRunRoundIdle(t *testing.T) {
	t.Parallel()

	stores := setupTestStores(t)
	c := newTestCrawler(t, stores, graphFetch(nil))

	stats, err := c.RunRound(context.Background())
	if err != nil {
		t.Fatalf("RunRound failed: %v", err)
	}
	if !stats.Idle() {
		t.Errorf("round over empty queues should be idle, got %+v", stats)
	}
	for category, n := range stats.ResultCounts {
		if n != 0 {
			t.Errorf("%s result count = %d, want 0", category, n)
		}
	}
}
