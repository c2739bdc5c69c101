package theme

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// Theme defines the color scheme used by tables and the browse view
type Theme struct {
	Name string

	// Base colors
	Foreground lipgloss.Color
	Subtle     lipgloss.Color
	Highlight  lipgloss.Color
	Border     lipgloss.Color

	// Semantic colors
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Success   lipgloss.Color
	Warning   lipgloss.Color
	Error     lipgloss.Color
}

// Styles holds pre-computed lipgloss styles based on theme
type Styles struct {
	Title     lipgloss.Style
	Footer    lipgloss.Style
	StatusBar lipgloss.Style
	Success   lipgloss.Style
	Error     lipgloss.Style
	Confirm   lipgloss.Style

	// Table styles, shared by the browse view and `tlogg ls`
	TableHeader   lipgloss.Style
	TableCell     lipgloss.Style
	TableSelected lipgloss.Style
	TableBorder   lipgloss.Style
	TableMuted    lipgloss.Style
}

// NewStyles creates styles from a theme
func NewStyles(t Theme) Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Foreground(t.Primary).
			Bold(true).
			Padding(0, 1),

		Footer: lipgloss.NewStyle().
			Foreground(t.Subtle).
			Padding(0, 1),

		StatusBar: lipgloss.NewStyle().
			Background(t.Highlight).
			Foreground(t.Foreground).
			Padding(0, 1),

		Success: lipgloss.NewStyle().
			Foreground(t.Success),

		Error: lipgloss.NewStyle().
			Foreground(t.Error).
			Bold(true),

		Confirm: lipgloss.NewStyle().
			Foreground(t.Warning).
			Bold(true),

		TableHeader: lipgloss.NewStyle().
			Foreground(t.Primary).
			Bold(true).
			Padding(0, 1),

		TableCell: lipgloss.NewStyle().
			Foreground(t.Foreground).
			Padding(0, 1),

		TableSelected: lipgloss.NewStyle().
			Foreground(t.Foreground).
			Background(t.Highlight).
			Bold(true),

		TableBorder: lipgloss.NewStyle().
			Foreground(t.Border),

		TableMuted: lipgloss.NewStyle().
			Foreground(t.Subtle).
			Padding(0, 1),
	}
}

// Table returns bubbles table styles for the theme
func (s Styles) Table() table.Styles {
	ts := table.DefaultStyles()
	ts.Header = s.TableHeader.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(s.TableBorder.GetForeground()).
		BorderBottom(true)
	ts.Cell = s.TableCell
	ts.Selected = s.TableSelected
	return ts
}

// Available returns all available themes
func Available() []Theme {
	return []Theme{
		Nord,
		Dracula,
		Gruvbox,
		Catppuccin,
	}
}

// ByName returns a theme by its name
func ByName(name string) (Theme, bool) {
	for _, t := range Available() {
		if t.Name == name {
			return t, true
		}
	}
	return Theme{}, false
}

// Names returns the names of all available themes
func Names() []string {
	names := make([]string, 0, len(Available()))
	for _, t := range Available() {
		names = append(names, t.Name)
	}
	return names
}
