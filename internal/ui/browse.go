// Package ui implements the interactive entry browser.
package ui

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dori/tlogg/internal/model"
	"github.com/dori/tlogg/internal/report"
	"github.com/dori/tlogg/internal/ui/theme"
)

// EntryStore is the storage the browser reads from and removes through
type EntryStore interface {
	ListEntries(ctx context.Context, since time.Time) ([]model.LogEntry, error)
	RemoveEntry(ctx context.Context, id int64) error
}

const (
	defaultTableHeight = 15
	// header, footer and help lines around the table
	chromeHeight = 6
)

// BrowseModel lists log entries and removes them on confirmation
type BrowseModel struct {
	ctx    context.Context
	store  EntryStore
	since  time.Time
	keys   KeyMap
	help   help.Model
	styles theme.Styles
	table  table.Model

	entries []model.LogEntry

	// Removal awaiting confirmation, 0 when none
	pendingID int64

	statusMsg string
	errorMsg  string
	loaded    bool
	width     int
	height    int
}

// NewBrowseModel creates a browser over entries created on or after since
func NewBrowseModel(ctx context.Context, store EntryStore, since time.Time, th theme.Theme) BrowseModel {
	styles := theme.NewStyles(th)

	t := table.New(
		table.WithColumns(columns(80)),
		table.WithFocused(true),
		table.WithHeight(defaultTableHeight),
		table.WithStyles(styles.Table()),
	)

	return BrowseModel{
		ctx:    ctx,
		store:  store,
		since:  since,
		keys:   DefaultKeyMap(),
		help:   help.New(),
		styles: styles,
		table:  t,
	}
}

// columns sizes the description column to whatever width is left
func columns(width int) []table.Column {
	fixed := []table.Column{
		{Title: "ID", Width: 5},
		{Title: "Date", Width: 10},
		{Title: "Project", Width: 14},
		{Title: "Hours", Width: 7},
	}

	used := 0
	for _, c := range fixed {
		used += c.Width + 2
	}
	desc := width - used - 2
	if desc < 20 {
		desc = 20
	}

	return []table.Column{
		fixed[0],
		fixed[1],
		fixed[2],
		{Title: "Description", Width: desc},
		fixed[3],
	}
}

func rows(entries []model.LogEntry) []table.Row {
	out := make([]table.Row, 0, len(entries))
	for _, e := range entries {
		out = append(out, table.Row{
			strconv.FormatInt(e.ID, 10),
			e.CreatedAt.Local().Format(report.DateLayout),
			e.Project,
			e.Description,
			report.FormatHours(e.Duration),
		})
	}
	return out
}

// Init loads the entries
func (m BrowseModel) Init() tea.Cmd {
	return m.loadEntries()
}

func (m BrowseModel) loadEntries() tea.Cmd {
	return func() tea.Msg {
		entries, err := m.store.ListEntries(m.ctx, m.since)
		return EntriesLoadedMsg{Entries: entries, Err: err}
	}
}

func (m BrowseModel) removeEntry(id int64) tea.Cmd {
	return func() tea.Msg {
		return EntryRemovedMsg{ID: id, Err: m.store.RemoveEntry(m.ctx, id)}
	}
}

// Update handles messages
func (m BrowseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.table.SetColumns(columns(msg.Width))
		if h := msg.Height - chromeHeight; h > 3 {
			m.table.SetHeight(h)
		}
		return m, nil

	case EntriesLoadedMsg:
		m.loaded = true
		if msg.Err != nil {
			m.errorMsg = msg.Err.Error()
			return m, nil
		}
		m.entries = msg.Entries
		m.table.SetRows(rows(m.entries))
		if c := m.table.Cursor(); c >= len(m.entries) && len(m.entries) > 0 {
			m.table.SetCursor(len(m.entries) - 1)
		}
		return m, nil

	case EntryRemovedMsg:
		if msg.Err != nil {
			m.errorMsg = msg.Err.Error()
			m.statusMsg = ""
			return m, nil
		}
		m.errorMsg = ""
		m.statusMsg = fmt.Sprintf("removed entry %d", msg.ID)
		return m, m.loadEntries()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m BrowseModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.pendingID != 0 {
		switch {
		case key.Matches(msg, m.keys.Confirm):
			id := m.pendingID
			m.pendingID = 0
			return m, m.removeEntry(id)
		case key.Matches(msg, m.keys.Cancel):
			m.pendingID = 0
			m.statusMsg = "cancelled"
		case msg.Type == tea.KeyCtrlC:
			return m, tea.Quit
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		m.statusMsg = ""
		m.errorMsg = ""
		return m, m.loadEntries()

	case key.Matches(msg, m.keys.Delete):
		if e := m.Selected(); e != nil {
			m.pendingID = e.ID
			m.errorMsg = ""
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// Selected returns the entry under the cursor
func (m BrowseModel) Selected() *model.LogEntry {
	c := m.table.Cursor()
	if c < 0 || c >= len(m.entries) {
		return nil
	}
	e := m.entries[c]
	return &e
}

// Entries returns the entries currently shown
func (m BrowseModel) Entries() []model.LogEntry {
	return m.entries
}

// View renders the browser
func (m BrowseModel) View() string {
	var b strings.Builder

	b.WriteString(m.styles.Title.Render("tlogg entries"))
	b.WriteString("\n")

	if !m.loaded {
		b.WriteString(m.styles.Footer.Render("Loading..."))
		return b.String()
	}

	if len(m.entries) == 0 {
		b.WriteString(m.styles.Footer.Render("No log entries."))
	} else {
		b.WriteString(m.table.View())
	}
	b.WriteString("\n")

	b.WriteString(m.footer())
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))

	return b.String()
}

func (m BrowseModel) footer() string {
	total := m.styles.StatusBar.Render(fmt.Sprintf("%d entries, %s h", len(m.entries), report.FormatHours(model.TotalHours(m.entries))))

	var status string
	switch {
	case m.pendingID != 0:
		status = m.styles.Confirm.Render(fmt.Sprintf("Remove entry %d? (y/n)", m.pendingID))
	case m.errorMsg != "":
		status = m.styles.Error.Render(m.errorMsg)
	case m.statusMsg != "":
		status = m.styles.Success.Render(m.statusMsg)
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, total, " ", status)
}

// RunBrowse runs the browser until the user quits or ctx is cancelled
func RunBrowse(ctx context.Context, store EntryStore, since time.Time, th theme.Theme, in io.Reader, out io.Writer) error {
	p := tea.NewProgram(
		NewBrowseModel(ctx, store, since, th),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
	)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("browse: %w", err)
	}
	return nil
}
