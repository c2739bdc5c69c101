package ui

import (
	"github.com/dori/tlogg/internal/model"
)

// Messages for inter-component communication

// EntriesLoadedMsg contains loaded log entries
type EntriesLoadedMsg struct {
	Entries []model.LogEntry
	Err     error
}

// EntryRemovedMsg is sent when a log entry is removed
type EntryRemovedMsg struct {
	ID  int64
	Err error
}
