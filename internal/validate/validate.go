// Package validate guards the extraction pipeline against the common
// failure modes of deadline scraping: picking up a notification or
// camera-ready date instead of the submission deadline, and records
// whose date fields are chronologically impossible.
package validate

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"conftrack/internal/dates"
	"conftrack/internal/record"
)

// ExcludeKeywords mark dates that are not submission deadlines. A
// candidate deadline found near one of these is rejected.
var ExcludeKeywords = []string{
	"notification",
	"acceptance",
	"camera ready",
	"camera-ready",
	"final version",
	"final manuscript",
	"author notification",
	"decision notification",
	"registration deadline",
	"early bird",
	"hotel reservation",
}

// IncludeKeywords mark dates that are submission deadlines.
var IncludeKeywords = []string{
	"paper deadline",
	"submission deadline",
	"abstract deadline",
	"full paper",
	"paper submission",
	"abstract submission",
	"manuscript submission",
	"call for papers",
}

// keywordWindow is how far (in characters) an exclude keyword may sit
// from the deadline text and still disqualify it.
const keywordWindow = 100

// minDaysBeforeConference is the smallest plausible gap between a
// submission deadline and the conference itself.
const minDaysBeforeConference = 30

var (
	looseDateRE     = regexp.MustCompile(`(\w+)\s+(\d+),?\s+(\d{4})`)
	canonicalDateRE = regexp.MustCompile(`\w+ \d+, \d{4}`)
)

// Deadline checks whether an extracted deadline looks like an actual
// submission deadline. context is the surrounding page text;
// conferenceDate, when known, lets the chronology sanity check run.
func Deadline(deadline, context, conferenceDate string) (bool, string) {
	if deadline == "" || deadline == record.TBD {
		return true, "no deadline to validate"
	}

	if context != "" {
		contextLower := strings.ToLower(context)
		deadlineLower := strings.ToLower(deadline)
		for _, keyword := range ExcludeKeywords {
			if !strings.Contains(contextLower, keyword) {
				continue
			}
			if keywordNearDeadline(contextLower, deadlineLower, keyword) {
				return false, fmt.Sprintf("deadline appears near %q, likely not a submission deadline", keyword)
			}
		}
	}

	if conferenceDate != "" {
		if days, ok := daysBetween(deadline, conferenceDate); ok && days < minDaysBeforeConference {
			return false, fmt.Sprintf("deadline is only %d days before the conference", days)
		}
	}

	return true, "appears to be a valid submission deadline"
}

// keywordNearDeadline reports whether keyword occurs within
// keywordWindow characters of any occurrence of deadline in text.
func keywordNearDeadline(text, deadline, keyword string) bool {
	from := 0
	for {
		idx := strings.Index(text[from:], deadline)
		if idx < 0 {
			return false
		}
		idx += from
		start := idx - keywordWindow
		if start < 0 {
			start = 0
		}
		end := idx + len(deadline) + keywordWindow
		if end > len(text) {
			end = len(text)
		}
		if strings.Contains(text[start:end], keyword) {
			return true
		}
		from = idx + len(deadline)
		if from >= len(text) {
			return false
		}
	}
}

// daysBetween parses both dates through the loose "Month Day, Year"
// pattern and returns conference minus deadline in days. Unparseable
// dates skip the check rather than failing it.
func daysBetween(deadline, conferenceDate string) (int, bool) {
	dm := looseDateRE.FindString(deadline)
	cm := looseDateRE.FindString(conferenceDate)
	if dm == "" || cm == "" {
		return 0, false
	}
	dt, err1 := dates.ParseCanonical(dm)
	ct, err2 := dates.ParseCanonical(cm)
	if err1 != nil || err2 != nil {
		return 0, false
	}
	return int(ct.Sub(dt) / (24 * time.Hour)), true
}

// Record validates an extracted record as a whole. It returns whether
// the record is usable as-is, a reason, and a corrected copy for the
// one recoverable case, a notification listed ahead of the paper
// deadline with the values exchanged. A paper deadline falling after
// the notification date is rejected outright: the extractor picked up
// the wrong date and no correction can be trusted.
func Record(rec record.Record) (bool, string, *record.Record) {
	paper := ""
	if !rec.PaperDeadline.IsTracked() {
		paper = strings.TrimSpace(rec.PaperDeadline.Date)
	}

	// Field confusion: identical paper/notification or paper/camera-ready
	// means the wrong field was extracted. Unrecoverable.
	if paper != "" && rec.NotificationDate != "" && paper == strings.TrimSpace(rec.NotificationDate) {
		return false, "paper_deadline equals notification_date, wrong field extracted", nil
	}
	if paper != "" && rec.CameraReady != "" && paper == strings.TrimSpace(rec.CameraReady) {
		return false, "paper_deadline equals camera_ready, wrong field extracted", nil
	}

	// Expected chronology: abstract < paper < notification < camera_ready < conference.
	type dated struct {
		name string
		t    time.Time
		raw  string
	}
	var sequence []dated
	appendParsed := func(name, raw string) {
		if raw == "" || raw == record.TBD {
			return
		}
		if t, ok := dates.ParseFlexible(raw); ok {
			sequence = append(sequence, dated{name: name, t: t, raw: strings.TrimSpace(raw)})
		}
	}
	appendParsed("abstract", rec.AbstractDeadline)
	appendParsed("paper", paper)
	appendParsed("notification", rec.NotificationDate)
	appendParsed("camera_ready", rec.CameraReady)
	if rec.ConferenceDate != "" {
		// A conference date may be a range; order against its first date.
		if first := canonicalDateRE.FindString(rec.ConferenceDate); first != "" {
			appendParsed("conference", first)
		}
	}

	for i := 0; i+1 < len(sequence); i++ {
		a, b := sequence[i], sequence[i+1]
		if !a.t.After(b.t) {
			continue
		}
		if a.name == "paper" && b.name == "notification" {
			// The extractor put a notification date into the deadline
			// field; there is no telling what the real deadline is.
			return false, fmt.Sprintf("paper deadline (%s) is after notification (%s), dates swapped", a.raw, b.raw), nil
		}
		if a.name == "notification" && b.name == "paper" {
			// The one recoverable case: both values are present but
			// assigned to each other's fields.
			corrected := rec
			corrected.PaperDeadline = record.NewDeadline(a.raw)
			corrected.NotificationDate = b.raw
			return false, "notification before paper deadline, dates appear swapped", &corrected
		}
		return false, fmt.Sprintf("%s (%s) is after %s (%s)", a.name, a.raw, b.name, b.raw), nil
	}

	return true, "extracted record appears valid", nil
}

// DeadlineContext finds the text surrounding a deadline in page text,
// 200 characters on each side, for keyword validation. Returns the
// empty string when the deadline does not occur in the text.
func DeadlineContext(pageText, deadline string) string {
	if pageText == "" || deadline == "" {
		return ""
	}
	idx := strings.Index(strings.ToLower(pageText), strings.ToLower(deadline))
	if idx < 0 {
		return ""
	}
	start := idx - 200
	if start < 0 {
		start = 0
	}
	end := idx + len(deadline) + 200
	if end > len(pageText) {
		end = len(pageText)
	}
	return pageText[start:end]
}
