package cli

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/dori/tlogg/internal/model"
	"github.com/dori/tlogg/internal/report"
	"github.com/dori/tlogg/internal/ui/theme"
)

// maxCellDescription keeps `ls` rows on one line
const maxCellDescription = 50

func newTable(th theme.Theme, headers ...string) *table.Table {
	styles := theme.NewStyles(th)

	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(styles.TableBorder).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styles.TableHeader
			}
			return styles.TableCell
		})
}

func entriesTable(th theme.Theme, entries []model.LogEntry) string {
	t := newTable(th, "ID", "Date", "Project", "Description", "Hours")

	for _, e := range entries {
		t.Row(
			strconv.FormatInt(e.ID, 10),
			e.CreatedAt.Local().Format(report.DateLayout),
			e.Project,
			truncate(e.Description, maxCellDescription),
			report.FormatHours(e.Duration),
		)
	}
	t.Row("", "", "", "Total", report.FormatHours(model.TotalHours(entries)))

	return t.String()
}

func projectsTable(th theme.Theme, projects []model.Project) string {
	styles := theme.NewStyles(th)
	t := newTable(th, "Name", "Description", "Entries", "Hours")

	for _, p := range projects {
		t.Row(
			p.Name,
			p.Description,
			strconv.Itoa(p.EntryCount),
			report.FormatHours(p.TotalHours),
		)
	}

	// unused projects are the ones rm-project accepts
	t.StyleFunc(func(row, col int) lipgloss.Style {
		switch {
		case row == table.HeaderRow:
			return styles.TableHeader
		case row < len(projects) && projects[row].IsUnused():
			return styles.TableMuted
		default:
			return styles.TableCell
		}
	})

	return t.String()
}

// truncate shortens s to at most n runes, marking the cut with an ellipsis
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
