// Package output renders scout reports in table, JSON, and markdown form.
package output

import (
	"fmt"
	"strings"

	"github.com/threadlens/threadlens/internal/core"
)

// Format represents an output format.
type Format string

const (
	FormatTable    Format = "table"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

// Formatter renders a scout report.
type Formatter interface {
	FormatReport(report *core.Report) (string, error)
}

// ParseFormat validates and normalizes a format string.
func ParseFormat(value string) (Format, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	switch normalized {
	case "", string(FormatTable):
		return FormatTable, nil
	case string(FormatJSON):
		return FormatJSON, nil
	case string(FormatMarkdown):
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", value)
	}
}

// NewFormatter returns a formatter for the requested format.
func NewFormatter(format Format) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Indent: true}
	case FormatMarkdown:
		return &MarkdownFormatter{}
	default:
		return &TableFormatter{}
	}
}

func truncate(value string, max int) string {
	value = strings.Join(strings.Fields(value), " ")
	if max <= 0 || len(value) <= max {
		return value
	}
	if max <= 3 {
		return value[:max]
	}
	return value[:max-3] + "..."
}

func summaryLine(meta *core.SearchMetadata) string {
	if meta == nil {
		return ""
	}
	line := fmt.Sprintf("%d items from %d/%d communities (plan: %s, %d queries, %.1fs)",
		meta.ItemsCollected, meta.CommunitiesYielded, meta.CommunitiesSearched,
		meta.PlanSource, meta.QueriesExecuted, meta.ElapsedSeconds)
	if meta.GlobalFallbackTriggered {
		line += ", global fallback used"
	}
	return line
}
