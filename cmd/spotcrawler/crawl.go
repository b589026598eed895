package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"spotcrawler/internal/config"
	"spotcrawler/internal/extract"
	"spotcrawler/internal/fetch"
	"spotcrawler/internal/model"
	"spotcrawler/internal/pipeline"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Run the crawl loop until interrupted",
		Long: `Crawl runs the round-based crawl loop indefinitely.

Each round fetches the pending frontier under a bounded concurrency
limit, routes newly discovered links back into the frontier after
deduplication, and folds extracted entity references into per-category
result sets. All state is persisted under the root directory; interrupt
the process at any time and rerun with the same root to resume.

Examples:
  # Crawl with state under ./run (the default)
  spotcrawler crawl

  # Crawl with state under a custom directory
  spotcrawler crawl --root /var/lib/spotcrawler

  # Smaller batches and fewer concurrent fetches
  spotcrawler crawl --batch 256 --concurrency 16`,
		Args: cobra.NoArgs,
		RunE: runCrawlCmd,
	}

	cmd.Flags().StringP("root", "r", config.DefaultRootDir,
		"Root directory to store crawl state")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .spotcrawler in current or XDG config directory)")
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Maximum items per queue drain step")
	cmd.Flags().IntP("concurrency", "n", config.DefaultConcurrency,
		"Maximum concurrent fetches per batch")
	cmd.Flags().String("origin", config.DefaultOrigin,
		"Site origin page identifiers are resolved against")
	cmd.Flags().String("seed", config.DefaultSeedPage,
		"Page used to bootstrap an empty frontier")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Per-request HTTP timeout")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runCrawl(ctx, cfg, logger)
}

// buildConfig creates a Config from defaults, the configuration file, and
// command flags, in that order of precedence.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	explicitPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	if path := config.FindConfigFile(explicitPath); path != "" {
		if err := config.LoadFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	} else if explicitPath != "" {
		return nil, fmt.Errorf("configuration file not found: %s", explicitPath)
	}

	// Flags the user set override the file.
	if cmd.Flags().Changed("root") || cfg.RootDir == "" {
		if cfg.RootDir, err = cmd.Flags().GetString("root"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("batch") {
		if cfg.BatchSize, err = cmd.Flags().GetInt("batch"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("concurrency") {
		if cfg.Concurrency, err = cmd.Flags().GetInt("concurrency"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("origin") {
		if cfg.Origin, err = cmd.Flags().GetString("origin"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("seed") {
		if cfg.SeedPage, err = cmd.Flags().GetString("seed"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("timeout") {
		if cfg.Timeout, err = cmd.Flags().GetDuration("timeout"); err != nil {
			return nil, err
		}
	}

	cfg.Verbose = getVerboseFlag(cmd)
	return cfg, nil
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// setupLogger creates a structured logger based on verbosity setting.
func setupLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// runCrawl wires the stores, fetch engine and crawler, then runs the loop
// until the context is cancelled.
func runCrawl(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	stores, err := pipeline.OpenStores(cfg.RootDir)
	if err != nil {
		return fmt.Errorf("failed to open crawl state: %w", err)
	}
	defer stores.Close()
	logger.Info("crawl state opened", "root", cfg.RootDir)

	client := &http.Client{Timeout: cfg.Timeout}
	engine := fetch.NewEngine(
		fetch.NewHTTPFunc(client, cfg.UserAgent, cfg.MaxBodySize),
		cfg.Origin,
		extract.NewLinkExtractor(),
		fetch.WithConcurrency(cfg.Concurrency),
		fetch.WithTransientPause(cfg.TransientPause),
		fetch.WithLogger(logger),
	)

	spin := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	spin.Suffix = " crawling..."
	spin.Start()
	defer spin.Stop()

	crawler := pipeline.NewCrawler(stores, engine,
		pipeline.WithBatchSize(cfg.BatchSize),
		pipeline.WithSeedPage(cfg.SeedPage),
		pipeline.WithIdlePause(cfg.IdlePause),
		pipeline.WithCrawlerLogger(logger),
		pipeline.WithRoundCallback(func(stats pipeline.RoundStats) {
			spin.Suffix = " " + roundMessage(stats)
		}),
	)

	if err := crawler.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("crawl failed: %w", err)
	}
	logger.Info("crawl stopped")
	return nil
}

// roundMessage formats one round's per-category counts for display, e.g.
// "(round #3) track: 120, album: 14, ...".
func roundMessage(stats pipeline.RoundStats) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "(round #%d) ", stats.Round)
	for i, category := range model.Categories() {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%s: %d", category, stats.ResultCounts[category])
	}
	fmt.Fprintf(&sb, " | frontier: %d", stats.FrontierLen)
	return sb.String()
}
