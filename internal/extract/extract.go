// Package extract turns conference web pages into structured deadline
// records. Two interchangeable strategies are provided: LLM-backed
// extraction (Ollama or Gemini) and a keyword heuristic. Both promise
// the same thing: every extracted fact is textually present in the
// page, and anything the page does not state comes back as "TBD".
package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"conftrack/internal/dates"
	"conftrack/internal/record"
	"conftrack/internal/validate"
)

// Page is the input to an extraction: one conference edition plus the
// cleaned text of its website.
type Page struct {
	Conference string // acronym, e.g. "ISCA"
	Year       int    // edition year, e.g. 2026
	URL        string
	Text       string
}

// Title returns the human form used in prompts, e.g. "ISCA 2026".
func (p Page) Title() string {
	return fmt.Sprintf("%s %d", p.Conference, p.Year)
}

// Extractor produces a deadline record from a conference page. An
// extractor never invents facts: a missing deadline surfaces as a
// record whose fields are "TBD", and callers decide whether that is
// a failure (the tracker) or a placeholder worth keeping (CSV
// suggestions).
type Extractor interface {
	Extract(ctx context.Context, page Page) (*record.Record, error)
	Name() string
}

var (
	// ErrExtractionFailed covers LLM transport errors, malformed model
	// output, and heuristic scans that found nothing usable.
	ErrExtractionFailed = errors.New("extraction failed")

	// ErrValidationRejected marks an extraction that produced a record
	// the validator could not accept and could not correct.
	ErrValidationRejected = errors.New("extracted record rejected")
)

// staleAfter is how long a deadline may sit in the past before the
// page is considered a leftover from an earlier edition.
const staleAfter = 18 * 30 * 24 * time.Hour

// finalize runs the shared post-extraction pipeline: date
// normalization, keyword and chronology validation, the year window,
// and the staleness check. It mutates rec in place and returns an
// error when the record must be discarded.
func finalize(page Page, rec *record.Record, now time.Time, logger *zap.Logger) error {
	dates.NormalizeRecord(rec)

	if rec.HasDeadline() && !rec.PaperDeadline.IsTracked() {
		// Validate against the quoted provenance text when we have it;
		// the full-page window is too wide for tabular date lists where
		// the notification row sits right next to the deadline row.
		context := rec.SourceText
		if context == "" {
			context = validate.DeadlineContext(page.Text, rec.PaperDeadline.Date)
		}
		if ok, reason := validate.Deadline(rec.PaperDeadline.Date, context, rec.ConferenceDate); !ok {
			return fmt.Errorf("%w: %s", ErrValidationRejected, reason)
		}
	}

	ok, reason, corrected := validate.Record(*rec)
	if !ok {
		if corrected == nil {
			return fmt.Errorf("%w: %s", ErrValidationRejected, reason)
		}
		logger.Warn("correcting extracted record",
			zap.String("conference", page.Title()),
			zap.String("reason", reason))
		*rec = *corrected
	}

	if rec.HasDeadline() {
		if !deadlineYearInWindow(rec.PaperDeadline, page.Year) {
			return fmt.Errorf("%w: deadline year outside %d-%d window",
				ErrValidationRejected, page.Year-1, page.Year+1)
		}
		if t, parsed := earliestDeadline(rec.PaperDeadline); parsed && t.Before(now) {
			if now.Sub(t) > staleAfter {
				return fmt.Errorf("%w: deadline %s is stale, page is likely a past edition",
					ErrValidationRejected, t.Format(dates.Canonical))
			}
			logger.Warn("deadline already passed",
				zap.String("conference", page.Title()),
				zap.String("deadline", t.Format(dates.Canonical)))
		}
	}

	return nil
}

// deadlineYearInWindow reports whether any date in the deadline falls
// within one year of the expected edition year. Deadlines routinely
// land the year before the conference, so the window is [year-1,
// year+1]; anything further off means the wrong edition's site.
func deadlineYearInWindow(d record.Deadline, expected int) bool {
	check := func(s string) bool {
		y, ok := dates.ExtractYear(s)
		if !ok {
			// No year in the text at all; let it through rather than
			// discard on a formatting quirk.
			return true
		}
		return y >= expected-1 && y <= expected+1
	}
	if !d.IsTracked() {
		return check(d.Date)
	}
	for _, date := range d.Tracks {
		if check(date) {
			return true
		}
	}
	return false
}

// earliestDeadline returns the earliest parseable date in the
// deadline, for staleness checks.
func earliestDeadline(d record.Deadline) (time.Time, bool) {
	var best time.Time
	found := false
	consider := func(s string) {
		if t, ok := dates.ParseFlexible(s); ok {
			if !found || t.Before(best) {
				best = t
				found = true
			}
		}
	}
	if d.IsTracked() {
		for _, date := range d.Tracks {
			consider(date)
		}
	} else {
		consider(d.Date)
	}
	return best, found
}

// cleanField normalizes the null-ish strings models emit for missing
// values down to the empty string.
func cleanField(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "null", "none", "n/a", "unknown", "":
		return ""
	}
	return strings.TrimSpace(s)
}
