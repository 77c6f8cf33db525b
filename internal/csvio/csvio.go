// Package csvio reads and writes the human-editable CSV view of the
// conference database. The CSV is the interchange format for manual
// entries: export, edit in a spreadsheet, import back.
package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"conftrack/internal/record"
)

// Header is the canonical column order.
var Header = []string{
	"conference_name",
	"year",
	"paper_deadline",
	"url",
	"submission_type",
	"conference_date",
	"abstract_deadline",
	"location",
}

// Row is one CSV line, pre-normalization.
type Row struct {
	Conference       string
	Year             int
	PaperDeadline    string
	URL              string
	SubmissionType   string
	ConferenceDate   string
	AbstractDeadline string
	Location         string
}

// Key returns the store key for this row.
func (r Row) Key() string {
	return record.Key(r.Conference, r.Year)
}

// Record converts the row into a manual database record. A missing
// deadline becomes the "TBD" placeholder; a CSV row is a statement of
// intent to track the venue, not proof a deadline exists yet.
func (r Row) Record(now time.Time) record.Record {
	deadline := strings.TrimSpace(r.PaperDeadline)
	if deadline == "" {
		deadline = record.TBD
	}
	rec := record.Record{
		Name:             fmt.Sprintf("%s %d", r.Conference, r.Year),
		URL:              r.URL,
		PaperDeadline:    record.NewDeadline(deadline),
		AbstractDeadline: r.AbstractDeadline,
		ConferenceDate:   r.ConferenceDate,
		Location:         r.Location,
		SubmissionType:   record.ParseSubmissionType(r.SubmissionType),
		AIModel:          record.ManualModel,
	}
	rec.Touch(now)
	return rec
}

// Read parses CSV rows from r. The first line must be a header; its
// column order is honored, so reordered or partial CSVs still load.
// Rows with an empty conference name and rows whose name starts with
// '#' are skipped.
func Read(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	col := map[string]int{}
	for i, name := range header {
		col[strings.TrimSpace(strings.ToLower(name))] = i
	}
	if _, ok := col["conference_name"]; !ok {
		return nil, fmt.Errorf("CSV header is missing conference_name")
	}

	field := func(line []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(line) {
			return ""
		}
		return strings.TrimSpace(line[i])
	}

	var rows []Row
	lineNo := 1
	for {
		line, err := cr.Read()
		if err == io.EOF {
			break
		}
		lineNo++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}

		name := field(line, "conference_name")
		if name == "" || strings.HasPrefix(name, "#") {
			continue
		}
		year, err := strconv.Atoi(field(line, "year"))
		if err != nil {
			return nil, fmt.Errorf("line %d: bad year %q", lineNo, field(line, "year"))
		}

		rows = append(rows, Row{
			Conference:       name,
			Year:             year,
			PaperDeadline:    field(line, "paper_deadline"),
			URL:              field(line, "url"),
			SubmissionType:   field(line, "submission_type"),
			ConferenceDate:   field(line, "conference_date"),
			AbstractDeadline: field(line, "abstract_deadline"),
			Location:         field(line, "location"),
		})
	}
	return rows, nil
}

// ReadFile reads rows from a CSV file.
func ReadFile(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}

// Records converts rows to manual database records keyed for the
// store.
func Records(rows []Row, now time.Time) map[string]record.Record {
	out := make(map[string]record.Record, len(rows))
	for _, row := range rows {
		out[row.Key()] = row.Record(now)
	}
	return out
}

// Write renders the database as CSV, sorted by key so exports diff
// cleanly.
func Write(w io.Writer, db map[string]record.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	keys := make([]string, 0, len(db))
	for key := range db {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		rec := db[key]
		name, year, err := record.SplitKey(key)
		if err != nil {
			// Key does not follow ACRONYM_YEAR; fall back to the
			// record's own name.
			name = rec.Name
			year = 0
		}
		line := []string{
			name,
			strconv.Itoa(year),
			rec.PaperDeadline.String(),
			rec.URL,
			string(rec.SubmissionType),
			rec.ConferenceDate,
			rec.AbstractDeadline,
			rec.Location,
		}
		if err := cw.Write(line); err != nil {
			return fmt.Errorf("failed to write CSV row %s: %w", key, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile writes the database as CSV to path.
func WriteFile(path string, db map[string]record.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()
	return Write(f, db)
}
