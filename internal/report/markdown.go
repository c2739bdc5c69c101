package report

import (
	"strings"

	"github.com/dori/tlogg/internal/model"
)

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"|", `\|`,
	"\r\n", "<br>",
	"\n", "<br>",
	"\r", "<br>",
)

// ToMarkdown renders entries as a markdown table followed by the total
func ToMarkdown(entries []model.LogEntry) string {
	var b strings.Builder

	b.WriteString("| Date | Project | Description | Hours |\n")
	b.WriteString("|------|---------|-------------|------:|\n")

	for _, e := range entries {
		b.WriteString("| ")
		b.WriteString(formatDate(e.CreatedAt))
		b.WriteString(" | ")
		b.WriteString(escapeMarkdown(e.Project))
		b.WriteString(" | ")
		b.WriteString(escapeMarkdown(e.Description))
		b.WriteString(" | ")
		b.WriteString(FormatHours(e.Duration))
		b.WriteString(" |\n")
	}

	b.WriteString("\n**Total:** ")
	b.WriteString(FormatHours(model.TotalHours(entries)))
	b.WriteString(" h\n")

	return b.String()
}

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
