package model

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLogEntryDurationValue(t *testing.T) {
	e := LogEntry{Duration: 1.5}
	assert.Equal(t, 90*time.Minute, e.DurationValue())
}

func TestLogEntryIsLongDescription(t *testing.T) {
	short := LogEntry{Description: "bugfix"}
	assert.False(t, short.IsLongDescription())

	long := LogEntry{Description: strings.Repeat("x", RecommendedDescriptionLength+1)}
	assert.True(t, long.IsLongDescription())

	// multibyte characters count once
	exact := LogEntry{Description: strings.Repeat("ü", RecommendedDescriptionLength)}
	assert.False(t, exact.IsLongDescription())
}

func TestTotalHours(t *testing.T) {
	assert.Equal(t, 0.0, TotalHours(nil))
	assert.InDelta(t, 3.75, TotalHours([]LogEntry{{Duration: 2.5}, {Duration: 1.25}}), 1e-9)
}

func TestProjectIsUnused(t *testing.T) {
	p := Project{Name: "work"}
	assert.True(t, p.IsUnused())
	p.EntryCount = 2
	assert.False(t, p.IsUnused())
}
