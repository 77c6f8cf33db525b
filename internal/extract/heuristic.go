package extract

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"conftrack/internal/record"
)

// Indicator keywords that mark a submission deadline, checked in
// order. The validator's exclude list handles the notification and
// camera-ready lookalikes.
var paperIndicators = []string{
	"paper deadline",
	"submission deadline",
	"paper submission",
	"full paper",
	"papers due",
	"submission due",
	"submissions close",
	"deadline:",
}

var abstractIndicators = []string{
	"abstract deadline",
	"abstract submission",
	"abstract due",
	"abstracts due",
}

const monthPattern = `(?:Jan(?:uary)?|Feb(?:ruary)?|Mar(?:ch)?|Apr(?:il)?|May|Jun(?:e)?|Jul(?:y)?|Aug(?:ust)?|Sep(?:tember)?|Sept|Oct(?:ober)?|Nov(?:ember)?|Dec(?:ember)?)`

// dateRE matches the date spellings conference sites actually use:
// "March 15, 2026", "15 March 2026", and ISO "2026-03-15".
var dateRE = regexp.MustCompile(`(?i)` + monthPattern + `\s+\d{1,2}(?:st|nd|rd|th)?,?\s+\d{4}` +
	`|\d{1,2}(?:st|nd|rd|th)?\s+` + monthPattern + `,?\s+\d{4}` +
	`|\d{4}-\d{2}-\d{2}`)

var locationLabelRE = regexp.MustCompile(`(?i)(?:location|venue|where)\s*[:：]\s*(.{2,80})`)

// HeuristicExtractor finds deadlines by keyword proximity instead of
// a model. Less accurate than LLM extraction on messy pages, but it
// needs no server and never hallucinates: a date either sits next to
// a deadline keyword in the text or the field stays "TBD".
type HeuristicExtractor struct {
	logger *zap.Logger
	now    func() time.Time
}

// NewHeuristicExtractor returns a keyword-based extractor.
func NewHeuristicExtractor(logger *zap.Logger) *HeuristicExtractor {
	return &HeuristicExtractor{
		logger: logger,
		now:    time.Now,
	}
}

// Name implements Extractor.
func (e *HeuristicExtractor) Name() string {
	return "heuristic"
}

// Extract implements Extractor. The scan runs three passes of
// decreasing precision: keyword and date on the same line, keyword
// with the date on one of the next two lines (tabular "Important
// Dates" layouts), then a windowed scan of the raw text. The first
// hit wins.
func (e *HeuristicExtractor) Extract(ctx context.Context, page Page) (*record.Record, error) {
	if page.Text == "" {
		return nil, fmt.Errorf("%w: no page text for %s", ErrExtractionFailed, page.Title())
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}

	lines := strings.Split(page.Text, "\n")

	paperDate, paperContext := findDateNear(lines, page.Text, paperIndicators)
	abstractDate, _ := findDateNear(lines, page.Text, abstractIndicators)

	if paperDate == "" && abstractDate != "" {
		// Some CFPs only publish an abstract deadline at first.
		paperDate = abstractDate
		abstractDate = ""
	}
	if paperDate == "" {
		paperDate = record.TBD
	}

	rec := record.Record{
		Name:             page.Title(),
		URL:              page.URL,
		PaperDeadline:    record.NewDeadline(paperDate),
		AbstractDeadline: abstractDate,
		ConferenceDate:   findConferenceDate(lines, page.Year),
		Location:         findLocation(lines),
		SubmissionType:   inferSubmissionType(paperContext),
		SourceText:       strings.TrimSpace(paperContext),
		ExtractedWithAI:  true,
		AIModel:          "heuristic",
	}
	rec.Touch(e.now())

	if err := finalize(page, &rec, e.now(), e.logger); err != nil {
		return nil, err
	}

	e.logger.Debug("heuristic extraction",
		zap.String("conference", page.Title()),
		zap.String("deadline", rec.PaperDeadline.String()))
	return &rec, nil
}

// findDateNear runs the three scan passes for one indicator set and
// returns the first date found plus the text it was found in.
func findDateNear(lines []string, fullText string, indicators []string) (date, context string) {
	// Pass 1: keyword and date on the same line.
	for _, line := range lines {
		lower := strings.ToLower(line)
		for _, ind := range indicators {
			if strings.Contains(lower, ind) {
				if m := dateRE.FindString(line); m != "" {
					return m, line
				}
			}
		}
	}

	// Pass 2: keyword line, date within the next two lines.
	for i, line := range lines {
		lower := strings.ToLower(line)
		for _, ind := range indicators {
			if !strings.Contains(lower, ind) {
				continue
			}
			for j := i + 1; j < len(lines) && j <= i+2; j++ {
				if m := dateRE.FindString(lines[j]); m != "" {
					return m, line + " " + lines[j]
				}
			}
		}
	}

	// Pass 3: windowed scan over the raw text.
	lowerText := strings.ToLower(fullText)
	for _, ind := range indicators {
		idx := strings.Index(lowerText, ind)
		if idx < 0 {
			continue
		}
		end := idx + len(ind) + 150
		if end > len(fullText) {
			end = len(fullText)
		}
		window := fullText[idx:end]
		if m := dateRE.FindString(window); m != "" {
			return m, window
		}
	}

	return "", ""
}

// findConferenceDate looks for the event date itself, which lives in
// the conference year rather than the deadline year.
func findConferenceDate(lines []string, year int) string {
	yearStr := fmt.Sprint(year)
	labels := []string{"conference date", "will be held", "will take place", "takes place"}
	for _, line := range lines {
		lower := strings.ToLower(line)
		for _, label := range labels {
			if strings.Contains(lower, label) && strings.Contains(line, yearStr) {
				if m := dateRE.FindString(line); m != "" {
					return m
				}
			}
		}
	}
	return record.TBD
}

// findLocation picks up "Location:" / "Venue:" style labels.
func findLocation(lines []string) string {
	for _, line := range lines {
		if m := locationLabelRE.FindStringSubmatch(line); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return record.TBD
}

// inferSubmissionType guesses the track from the text around the
// deadline. Regular paper unless the context says otherwise.
func inferSubmissionType(context string) record.SubmissionType {
	lower := strings.ToLower(context)
	switch {
	case strings.Contains(lower, "late breaking"), strings.Contains(lower, "late-breaking"):
		return record.LateBreakingResults
	case strings.Contains(lower, "work-in-progress"), strings.Contains(lower, "work in progress"), strings.Contains(lower, "workshop"):
		return record.WorkshopWIP
	case strings.Contains(lower, "poster"):
		return record.Poster
	case strings.Contains(lower, "short paper"):
		return record.ShortPaper
	case strings.Contains(lower, "abstract"):
		return record.AbstractSubmission
	default:
		return record.RegularPaper
	}
}
