// Package report renders the tracked conference database as a static
// HTML deadline table, suitable for publishing on a personal site.
package report

import (
	"fmt"
	"html/template"
	"io"
	"os"
	"sort"
	"time"

	"conftrack/internal/record"
)

var pageTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
    <title>Conference Deadlines Tracker</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 20px; }
        h1 { color: #333; }
        table { border-collapse: collapse; width: 100%; margin-top: 20px; }
        th, td { border: 1px solid #ddd; padding: 12px; text-align: left; }
        th { background-color: #4CAF50; color: white; }
        tr:nth-child(even) { background-color: #f2f2f2; }
        tr:hover { background-color: #ddd; }
        a { color: #1a73e8; text-decoration: none; }
        a:hover { text-decoration: underline; }
        .deadline-past { color: #999; }
        .last-updated { color: #666; font-size: 0.9em; margin-top: 20px; }
    </style>
</head>
<body>
    <h1>Conference Deadlines Tracker</h1>
    <p>Automatically updated daily</p>

    <table>
        <tr>
            <th>Conference</th>
            <th>Home Page</th>
            <th>Paper Deadline</th>
            <th>Conference Date</th>
            <th>Last Checked</th>
        </tr>
{{- range .Rows}}
        <tr>
            <td>{{.Name}}</td>
            <td><a href="{{.URL}}" target="_blank">{{.URLLabel}}</a></td>
            <td>{{.Deadline}}</td>
            <td>{{.ConferenceDate}}</td>
            <td>{{.LastChecked}}</td>
        </tr>
{{- end}}
    </table>

    <p class="last-updated">Last updated: {{.Generated}}</p>
    <p class="last-updated">Total conferences tracked: {{.Total}}</p>
</body>
</html>
`))

type row struct {
	Name           string
	URL            string
	URLLabel       string
	Deadline       string
	ConferenceDate string
	LastChecked    string
}

type page struct {
	Rows      []row
	Generated string
	Total     int
}

// Render writes the deadline table for db to w. Rows sort lexically
// by deadline text, with deadline-less records last; within a month
// that groups days correctly, which is what a quick glance needs.
func Render(w io.Writer, db map[string]record.Record, now time.Time) error {
	keys := make([]string, 0, len(db))
	for key := range db {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := db[keys[i]].PaperDeadline.SortValue(), db[keys[j]].PaperDeadline.SortValue()
		if a != b {
			return a < b
		}
		return keys[i] < keys[j]
	})

	p := page{
		Generated: now.UTC().Format("2006-01-02 15:04:05 UTC"),
		Total:     len(db),
	}
	for _, key := range keys {
		rec := db[key]
		name := rec.Name
		if name == "" {
			name = key
		}
		p.Rows = append(p.Rows, row{
			Name:           name,
			URL:            rec.URL,
			URLLabel:       shortURL(rec.URL),
			Deadline:       orTBD(rec.PaperDeadline.String()),
			ConferenceDate: orTBD(rec.ConferenceDate),
			LastChecked:    checkedDate(rec.LastChecked),
		})
	}

	return pageTemplate.Execute(w, p)
}

// WriteFile renders the table to a file.
func WriteFile(path string, db map[string]record.Record, now time.Time) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()
	return Render(f, db, now)
}

func shortURL(url string) string {
	if len(url) > 50 {
		return url[:50] + "..."
	}
	return url
}

func orTBD(s string) string {
	if s == "" {
		return record.TBD
	}
	return s
}

// checkedDate keeps just the date part of an RFC 3339 timestamp.
func checkedDate(lastChecked string) string {
	if len(lastChecked) >= 10 {
		return lastChecked[:10]
	}
	return lastChecked
}
