package model

import (
	"time"
)

// RecommendedDescriptionLength is the message length the CLI suggests.
// Longer descriptions are stored unchanged.
const RecommendedDescriptionLength = 70

// LogEntry is a number of hours booked against a project
type LogEntry struct {
	ID          int64     `json:"id"`
	Duration    float64   `json:"duration"` // Hours
	Description string    `json:"description"`
	ProjectID   int64     `json:"project_id"`
	Project     string    `json:"project"` // Resolved project name
	CreatedAt   time.Time `json:"created_at"`
}

// DurationValue returns the booked time as a time.Duration
func (e *LogEntry) DurationValue() time.Duration {
	return time.Duration(e.Duration * float64(time.Hour))
}

// IsLongDescription reports whether the message exceeds the recommended length
func (e *LogEntry) IsLongDescription() bool {
	return len([]rune(e.Description)) > RecommendedDescriptionLength
}

// TotalHours sums the durations of entries
func TotalHours(entries []LogEntry) float64 {
	var total float64
	for _, e := range entries {
		total += e.Duration
	}
	return total
}
