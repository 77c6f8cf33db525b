// Package dates canonicalizes the loosely formatted date strings found
// on conference pages into one textual form, "Month Day, Year".
package dates

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"conftrack/internal/record"
)

// Canonical is the layout every normalized date is rendered in,
// e.g. "November 10, 2025".
const Canonical = "January 2, 2006"

// layouts are tried in order; first match wins.
var layouts = []string{
	"January 2, 2006",
	"Jan 2, 2006",
	"2006-01-02",
	"2 January 2006",
	"2 Jan 2006",
	"1/2/2006",
	"January 2 2006",
	"Jan 2 2006",
	"2 January, 2006",
	"2 Jan, 2006",
}

var (
	timeSuffixRE    = regexp.MustCompile(`(?i)\s+at\s+\d+:\d+.*$`)
	parentheticalRE = regexp.MustCompile(`\s*\([^)]*\)`)
	semicolonRE     = regexp.MustCompile(`\s*;.*$`)
	weekdayRE       = regexp.MustCompile(`(?i)^(Mon|Tue|Wed|Thu|Fri|Sat|Sun|Monday|Tuesday|Wednesday|Thursday|Friday|Saturday|Sunday)\s+`)
	looseDateRE     = regexp.MustCompile(`(\w+)\s+(\d+),?\s+(\d{4})`)
	yearRE          = regexp.MustCompile(`\d{4}`)
)

var monthNames = map[string]string{
	"jan": "January", "feb": "February", "mar": "March", "apr": "April",
	"may": "May", "jun": "June", "jul": "July", "aug": "August",
	"sep": "September", "oct": "October", "nov": "November", "dec": "December",
	"january": "January", "february": "February", "march": "March",
	"april": "April", "june": "June", "july": "July", "august": "August",
	"september": "September", "october": "October", "november": "November",
	"december": "December",
}

// Normalize canonicalizes a date expression to "Month Day, Year".
// Annotations like trailing times, timezones, parentheticals, and
// leading weekday names are stripped first. The input is returned
// unchanged when no recognizable date can be extracted; "TBD" and the
// empty string pass through.
func Normalize(raw string) string {
	if raw == "" || raw == record.TBD {
		return raw
	}

	cleaned := timeSuffixRE.ReplaceAllString(raw, "")
	cleaned = parentheticalRE.ReplaceAllString(cleaned, "")
	cleaned = semicolonRE.ReplaceAllString(cleaned, "")
	cleaned = strings.TrimSpace(cleaned)

	dateOnly := strings.TrimSpace(weekdayRE.ReplaceAllString(cleaned, ""))
	for _, layout := range layouts {
		if t, err := time.Parse(layout, dateOnly); err == nil {
			return t.Format(Canonical)
		}
	}

	// Loose fallback: "<word> <digits> [,] <year>" with a month lookup.
	if m := looseDateRE.FindStringSubmatch(cleaned); m != nil {
		if month, ok := monthNames[strings.ToLower(m[1])]; ok {
			return fmt.Sprintf("%s %s, %s", month, m[2], m[3])
		}
	}

	return raw
}

// NormalizeDeadline normalizes a deadline in place, preserving the
// tracked-vs-single shape.
func NormalizeDeadline(d record.Deadline) record.Deadline {
	if d.IsTracked() {
		tracks := make(map[string]string, len(d.Tracks))
		for track, date := range d.Tracks {
			tracks[track] = Normalize(date)
		}
		return record.NewTrackedDeadline(tracks)
	}
	if d.Date == "" || d.Date == record.TBD {
		return d
	}
	return record.NewDeadline(Normalize(d.Date))
}

// NormalizeRecord canonicalizes every date-bearing field of a record.
func NormalizeRecord(r *record.Record) {
	r.PaperDeadline = NormalizeDeadline(r.PaperDeadline)
	for _, field := range []*string{&r.AbstractDeadline, &r.NotificationDate, &r.CameraReady} {
		if *field != "" && *field != record.TBD {
			*field = Normalize(*field)
		}
	}
}

// ParseCanonical parses a date in the canonical "Month Day, Year" form.
func ParseCanonical(s string) (time.Time, error) {
	return time.Parse(Canonical, strings.TrimSpace(s))
}

// ParseFlexible parses a date under the common formats used by
// validation: canonical, abbreviated month, and ISO.
func ParseFlexible(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"January 2, 2006", "Jan 2, 2006", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ExtractYear pulls the first 4-digit year out of a date string.
func ExtractYear(s string) (int, bool) {
	m := yearRE.FindString(s)
	if m == "" {
		return 0, false
	}
	year := 0
	for _, c := range m {
		year = year*10 + int(c-'0')
	}
	return year, true
}
