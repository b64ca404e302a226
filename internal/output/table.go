package output

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/threadlens/threadlens/internal/core"
)

// TableFormatter renders a report as an ASCII table.
type TableFormatter struct{}

// FormatReport renders a scout report as a table.
func (f *TableFormatter) FormatReport(report *core.Report) (string, error) {
	if report == nil {
		return "", nil
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"#", "Community", "Title", "Score", "Replies", "Link"})

	for i, item := range report.Items {
		if item == nil {
			continue
		}
		t.AppendRow(table.Row{
			i + 1,
			"r/" + item.Community,
			truncate(item.Title, 60),
			item.Score,
			item.NumReplies,
			item.Permalink,
		})
	}

	rendered := t.Render()

	if summary := summaryLine(report.Metadata); summary != "" {
		rendered += "\n" + summary
	}
	if report.Metadata != nil {
		for _, warning := range report.Metadata.Warnings {
			rendered += fmt.Sprintf("\nwarning: %s", warning)
		}
	}

	return strings.TrimRight(rendered, "\n"), nil
}
