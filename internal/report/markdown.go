package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"

	"spotcrawler/internal/model"
)

// MarkdownWriter outputs summaries as GitHub Flavored Markdown.
// This format is designed for documentation and sharing.
type MarkdownWriter struct {
	output io.Writer
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given
// writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{output: output}
}

// Write outputs the summary as Markdown.
func (w *MarkdownWriter) Write(summary *Summary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Crawl Report")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Storage Root", "`" + summary.RootDir + "`"},
			{"Snapshot Taken", summary.TakenAt.Format("2006-01-02 15:04:05 MST")},
			{"Visited Pages", strconv.Itoa(summary.VisitedCount)},
		},
	})
	md.PlainText("")

	md.H2("Entities by Category")
	md.PlainText("")
	rows := make([][]string, 0, len(model.Categories())+1)
	for _, category := range model.Categories() {
		rows = append(rows, []string{category.String(), strconv.Itoa(summary.ResultCounts[category])})
	}
	rows = append(rows, []string{"**total**", "**" + strconv.Itoa(summary.TotalEntities()) + "**"})
	md.Table(markdown.TableSet{
		Header: []string{"Category", "Count"},
		Rows:   rows,
	})
	md.PlainText("")

	md.H2("Pending Work")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Queue", "Depth"},
		Rows: [][]string{
			{"Frontier", strconv.Itoa(summary.FrontierLen)},
			{"Discovered", strconv.Itoa(summary.DiscoveredLen)},
			{"Entities", strconv.Itoa(summary.EntityLen)},
		},
	})

	return len(md.String()), md.Build()
}
