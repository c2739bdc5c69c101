package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dori/tlogg/internal/report"
)

var errEmptyDate = errors.New("date must not be empty")

// parseDate accepts a calendar day, taken as midnight in loc, or an
// RFC 3339 timestamp
func parseDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errEmptyDate
	}

	if t, err := time.ParseInLocation(report.DateLayout, s, loc); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}

	return time.Time{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD or RFC 3339", s)
}

// startOfDay returns local midnight of t's day
func startOfDay(t time.Time) time.Time {
	t = t.Local()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local)
}

func joinNames(names []string) string {
	return strings.Join(names, ", ")
}

func formatNames() []string {
	names := make([]string, 0, len(report.Formats))
	for _, f := range report.Formats {
		names = append(names, string(f))
	}
	return names
}
