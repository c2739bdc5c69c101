package model

import (
	"time"
)

// Project is a named bucket that log entries are booked against
type Project struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`

	// Computed fields (not stored)
	EntryCount int     `json:"entry_count,omitempty"`
	TotalHours float64 `json:"total_hours,omitempty"`
}

// IsUnused returns true if no log entry references the project
func (p *Project) IsUnused() bool {
	return p.EntryCount == 0
}
