package output

import (
	"fmt"
	"strings"

	"github.com/threadlens/threadlens/internal/core"
)

// MarkdownFormatter renders a report as a markdown document with one
// section per result item, replies included.
type MarkdownFormatter struct{}

// FormatReport renders a scout report as Markdown.
func (f *MarkdownFormatter) FormatReport(report *core.Report) (string, error) {
	if report == nil {
		return "", nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# Scout report: %s\n\n", escapeMarkdownCell(report.Topic)))
	sb.WriteString(fmt.Sprintf("Mode: %s\n\n", report.Mode))

	for i, item := range report.Items {
		if item == nil {
			continue
		}
		sb.WriteString(fmt.Sprintf("## %d. %s\n\n", i+1, escapeMarkdownCell(item.Title)))
		sb.WriteString(fmt.Sprintf("r/%s · score %d · %d replies", item.Community, item.Score, item.NumReplies))
		if item.CreatedAt != nil {
			sb.WriteString(" · " + item.CreatedAt.Format("2006-01-02"))
		}
		sb.WriteString("\n\n")
		if excerpt := truncate(item.BodyExcerpt, 400); excerpt != "" {
			sb.WriteString(excerpt + "\n\n")
		}
		sb.WriteString(fmt.Sprintf("[thread](%s)\n", item.Permalink))
		if item.ExternalURL != "" {
			sb.WriteString(fmt.Sprintf("[link](%s)\n", item.ExternalURL))
		}
		sb.WriteString("\n")

		if len(item.TopReplies) > 0 {
			sb.WriteString("Top replies:\n\n")
			for _, reply := range item.TopReplies {
				sb.WriteString(fmt.Sprintf("- **%s** (%d): %s\n",
					escapeMarkdownCell(reply.Author), reply.Score, truncate(reply.Body, 200)))
			}
			sb.WriteString("\n")
		}
	}

	if summary := summaryLine(report.Metadata); summary != "" {
		sb.WriteString(fmt.Sprintf("---\n\n%s\n", summary))
	}
	if report.Metadata != nil && len(report.Metadata.Warnings) > 0 {
		sb.WriteString("\nWarnings:\n\n")
		for _, warning := range report.Metadata.Warnings {
			sb.WriteString("- " + escapeMarkdownCell(warning) + "\n")
		}
	}

	return sb.String(), nil
}

func escapeMarkdownCell(value string) string {
	return strings.ReplaceAll(value, "|", "\\|")
}
