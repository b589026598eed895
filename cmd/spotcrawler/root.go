package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for spotcrawler.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "spotcrawler",
		Short: "Resumable crawler that catalogs entities on a content site",
		Long: `spotcrawler crawls outward from a seed page, extracting entity references
(tracks, albums, artists, playlists and more) and the links between pages.

All crawl state lives in SQLite files under the root directory: stopping
the process and restarting it with the same root resumes from exactly
where it left off, without re-fetching visited pages or re-recording
known entities.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewReportCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
