package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dori/tlogg/internal/model"
)

var csvHeader = []string{"id", "date", "project", "description", "hours"}

// ToCSV renders entries as comma-separated records with a header row
func ToCSV(entries []model.LogEntry) (string, error) {
	var b strings.Builder
	w := csv.NewWriter(&b)

	if err := w.Write(csvHeader); err != nil {
		return "", err
	}

	for _, e := range entries {
		record := []string{
			strconv.FormatInt(e.ID, 10),
			formatDate(e.CreatedAt),
			e.Project,
			e.Description,
			FormatHours(e.Duration),
		}
		if err := w.Write(record); err != nil {
			return "", fmt.Errorf("failed to write entry %d: %w", e.ID, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return b.String(), nil
}

// ParseCSV reads entries written by ToCSV. Dates are parsed as local midnight.
func ParseCSV(r io.Reader) ([]model.LogEntry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(csvHeader)

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("missing csv header")
	}
	if err != nil {
		return nil, err
	}
	for i, name := range csvHeader {
		if header[i] != name {
			return nil, fmt.Errorf("unexpected csv column %d: %q (want %q)", i+1, header[i], name)
		}
	}

	var entries []model.LogEntry
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		id, err := strconv.ParseInt(record[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q: %w", record[0], err)
		}
		date, err := time.ParseInLocation(DateLayout, record[1], time.Local)
		if err != nil {
			return nil, fmt.Errorf("invalid date %q: %w", record[1], err)
		}
		hours, err := strconv.ParseFloat(record[4], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid hours %q: %w", record[4], err)
		}

		entries = append(entries, model.LogEntry{
			ID:          id,
			CreatedAt:   date,
			Project:     record[2],
			Description: record[3],
			Duration:    hours,
		})
	}

	return entries, nil
}
