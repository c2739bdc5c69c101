// Package report renders log entries for export.
//
// All functions are pure and keep the order of the entries they are given.
package report

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dori/tlogg/internal/model"
)

// Format is an export format accepted by `tlogg print`
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatCSV      Format = "csv"
)

// Formats lists the supported formats in help order
var Formats = []Format{FormatMarkdown, FormatCSV}

// ParseFormat converts a format name, case-insensitively
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatMarkdown, "md":
		return FormatMarkdown, nil
	case FormatCSV:
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("unknown format %q (expected markdown or csv)", s)
	}
}

// Render dispatches to the renderer for f
func Render(f Format, entries []model.LogEntry) (string, error) {
	switch f {
	case FormatMarkdown:
		return ToMarkdown(entries), nil
	case FormatCSV:
		return ToCSV(entries)
	default:
		return "", fmt.Errorf("unknown format %q", f)
	}
}

// DateLayout is how entry dates appear in reports
const DateLayout = "2006-01-02"

func formatDate(t time.Time) string {
	return t.Local().Format(DateLayout)
}

// FormatHours renders hours with the fewest digits that parse back exactly
func FormatHours(h float64) string {
	return strconv.FormatFloat(h, 'f', -1, 64)
}
