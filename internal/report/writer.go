package report

import (
	"fmt"
	"io"

	"spotcrawler/internal/model"
)

// Writer renders a Summary to some destination.
type Writer interface {
	// Write outputs the summary. Returns the number of bytes written and
	// any error encountered.
	Write(summary *Summary) (int, error)
}

// SimpleWriter outputs human-readable text summaries for terminal display.
type SimpleWriter struct {
	output io.Writer
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer) *SimpleWriter {
	return &SimpleWriter{output: output}
}

// Write outputs the summary as plain text.
func (w *SimpleWriter) Write(summary *Summary) (int, error) {
	var total int

	write := func(format string, args ...any) error {
		n, err := fmt.Fprintf(w.output, format, args...)
		total += n
		return err
	}

	if err := write("Crawl state under %s (as of %s)\n\n", summary.RootDir, summary.TakenAt.Format("2006-01-02 15:04:05")); err != nil {
		return total, err
	}
	for _, category := range model.Categories() {
		if err := write("  %-10s %d\n", category, summary.ResultCounts[category]); err != nil {
			return total, err
		}
	}
	if err := write("\n  total entities: %d\n  visited pages:  %d\n", summary.TotalEntities(), summary.VisitedCount); err != nil {
		return total, err
	}
	err := write("  pending: frontier=%d discovered=%d entities=%d\n",
		summary.FrontierLen, summary.DiscoveredLen, summary.EntityLen)
	return total, err
}
