package report

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dori/tlogg/internal/model"
)

func sampleEntries() []model.LogEntry {
	day := time.Date(2024, 3, 4, 12, 0, 0, 0, time.Local)
	return []model.LogEntry{
		{ID: 3, Duration: 2.5, Description: "bugfix", Project: "work", CreatedAt: day},
		{ID: 1, Duration: 0.1, Description: `say "hi", then leave`, Project: "home", CreatedAt: day.AddDate(0, 0, 1)},
		{ID: 7, Duration: 1, Description: "pipes | and\nnewlines", Project: "a,b", CreatedAt: day.AddDate(0, 0, 2)},
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{
		"markdown": FormatMarkdown,
		"MD":       FormatMarkdown,
		" csv ":    FormatCSV,
	} {
		got, err := ParseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseFormat("xml")
	assert.Error(t, err)
}

func TestToMarkdown(t *testing.T) {
	got := ToMarkdown(sampleEntries()[:1])

	want := "| Date | Project | Description | Hours |\n" +
		"|------|---------|-------------|------:|\n" +
		"| 2024-03-04 | work | bugfix | 2.5 |\n" +
		"\n**Total:** 2.5 h\n"
	assert.Equal(t, want, got)
}

func TestToMarkdownEscapesCells(t *testing.T) {
	got := ToMarkdown(sampleEntries())

	assert.Contains(t, got, `| pipes \| and<br>newlines |`)
	assert.Contains(t, got, "**Total:** 3.6 h")

	// one header, one separator, one row per entry
	lines := strings.Split(strings.TrimSpace(got), "\n")
	var rows int
	for _, l := range lines {
		if strings.HasPrefix(l, "| ") {
			rows++
		}
	}
	assert.Equal(t, 1+len(sampleEntries()), rows)
}

func TestToMarkdownKeepsOrder(t *testing.T) {
	got := ToMarkdown(sampleEntries())

	work := strings.Index(got, "bugfix")
	home := strings.Index(got, "say")
	pipes := strings.Index(got, "pipes")
	assert.True(t, work < home && home < pipes, "rows must follow input order")
}

func TestToMarkdownEmpty(t *testing.T) {
	got := ToMarkdown(nil)
	assert.True(t, strings.HasPrefix(got, "| Date |"))
	assert.Contains(t, got, "**Total:** 0 h")
}

func TestToCSV(t *testing.T) {
	got, err := ToCSV(sampleEntries())
	require.NoError(t, err)

	want := "id,date,project,description,hours\n" +
		"3,2024-03-04,work,bugfix,2.5\n" +
		"1,2024-03-05,home,\"say \"\"hi\"\", then leave\",0.1\n" +
		"7,2024-03-06,\"a,b\",\"pipes | and\nnewlines\",1\n"
	assert.Equal(t, want, got)
}

func TestCSVRoundTrip(t *testing.T) {
	in := sampleEntries()

	out, err := ToCSV(in)
	require.NoError(t, err)

	parsed, err := ParseCSV(strings.NewReader(out))
	require.NoError(t, err)
	require.Len(t, parsed, len(in))

	for i := range in {
		assert.Equal(t, in[i].ID, parsed[i].ID)
		assert.Equal(t, in[i].Duration, parsed[i].Duration)
		assert.Equal(t, in[i].Description, parsed[i].Description)
		assert.Equal(t, in[i].Project, parsed[i].Project)
		assert.Equal(t, formatDate(in[i].CreatedAt), formatDate(parsed[i].CreatedAt))
	}
}

func TestCSVRoundTripEmpty(t *testing.T) {
	out, err := ToCSV(nil)
	require.NoError(t, err)
	assert.Equal(t, "id,date,project,description,hours\n", out)

	parsed, err := ParseCSV(strings.NewReader(out))
	require.NoError(t, err)
	assert.Empty(t, parsed)
}

func TestParseCSVRejectsBadInput(t *testing.T) {
	_, err := ParseCSV(strings.NewReader(""))
	assert.Error(t, err)

	_, err = ParseCSV(strings.NewReader("a,b,c,d,e\n"))
	assert.Error(t, err)

	_, err = ParseCSV(strings.NewReader("id,date,project,description,hours\nx,2024-01-01,p,d,1\n"))
	assert.Error(t, err)

	_, err = ParseCSV(strings.NewReader("id,date,project,description,hours\n1,2024-01-01,p,d,lots\n"))
	assert.Error(t, err)
}

func TestRender(t *testing.T) {
	entries := sampleEntries()

	md, err := Render(FormatMarkdown, entries)
	require.NoError(t, err)
	assert.Equal(t, ToMarkdown(entries), md)

	csvOut, err := Render(FormatCSV, entries)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(csvOut, "id,date"))

	_, err = Render(Format("pdf"), entries)
	assert.Error(t, err)
}

func TestFormatHours(t *testing.T) {
	assert.Equal(t, "2.5", FormatHours(2.5))
	assert.Equal(t, "1", FormatHours(1))
	assert.Equal(t, "0.1", FormatHours(0.1))
	assert.Equal(t, "0.3333333333333333", FormatHours(1.0/3))
}
