package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"spotcrawler/internal/config"
	"spotcrawler/internal/pipeline"
	"spotcrawler/internal/report"
)

// NewReportCmd creates the report command.
func NewReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarize the persisted crawl state",
		Long: `Report prints a snapshot of the crawl state under the root directory:
per-category entity counts, visited pages, and pending queue depths.

Examples:
  # Human-readable summary of the default root
  spotcrawler report

  # Markdown report written to a file
  spotcrawler report --markdown --output report.md`,
		Args: cobra.NoArgs,
		RunE: runReportCmd,
	}

	cmd.Flags().StringP("root", "r", config.DefaultRootDir,
		"Root directory the crawl state is stored under")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output GitHub Flavored Markdown instead of plain text")
	cmd.Flags().StringP("output", "o", "",
		"Write the report to the specified file path (creates directories if needed)")

	return cmd
}

// runReportCmd executes the report command.
func runReportCmd(cmd *cobra.Command, _ []string) error {
	root, err := cmd.Flags().GetString("root")
	if err != nil {
		return err
	}
	useMarkdown, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	stores, err := pipeline.OpenStores(root)
	if err != nil {
		return fmt.Errorf("failed to open crawl state: %w", err)
	}
	defer stores.Close()

	summary, err := report.Snapshot(cmd.Context(), root, stores)
	if err != nil {
		return fmt.Errorf("failed to snapshot crawl state: %w", err)
	}

	out, closeOut, err := openOutput(cmd, outputPath)
	if err != nil {
		return err
	}
	defer closeOut()

	var w report.Writer
	if useMarkdown {
		w = report.NewMarkdownWriter(out)
	} else {
		w = report.NewSimpleWriter(out)
	}
	if _, err := w.Write(summary); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// openOutput resolves the report destination: the given file path, or the
// command's stdout when empty.
func openOutput(cmd *cobra.Command, path string) (io.Writer, func(), error) {
	if path == "" {
		return cmd.OutOrStdout(), func() {}, nil
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	f, err := os.Create(path) //nolint:gosec // User-provided output path is intentional
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}
