package extract

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"conftrack/internal/record"
)

// llmResponse mirrors the JSON object the prompt asks for. The paper
// deadline reuses record.Deadline so a model answering with a
// track-to-date object instead of a single string still parses.
type llmResponse struct {
	PaperDeadline    record.Deadline `json:"paper_deadline"`
	AbstractDeadline string          `json:"abstract_deadline"`
	ConferenceDate   string          `json:"conference_date"`
	Location         string          `json:"location"`
	SubmissionType   string          `json:"submission_type"`
	SourceText       string          `json:"source_text"`
}

// parseResponse decodes a model reply into an llmResponse. Markdown
// code fences around the object are tolerated; anything else that is
// not a single valid JSON object is an extraction failure. There is
// deliberately no brace-hunting repair of broken output.
func parseResponse(raw string) (*llmResponse, error) {
	cleaned := stripFences(strings.TrimSpace(raw))
	if cleaned == "" {
		return nil, fmt.Errorf("%w: empty model response", ErrExtractionFailed)
	}

	var resp llmResponse
	if err := json.Unmarshal([]byte(cleaned), &resp); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON from model: %v", ErrExtractionFailed, err)
	}
	return &resp, nil
}

// stripFences removes a ```json ... ``` (or plain ```) wrapper.
func stripFences(s string) string {
	if idx := strings.Index(s, "```json"); idx >= 0 {
		s = s[idx+len("```json"):]
	} else if idx := strings.Index(s, "```"); idx >= 0 {
		s = s[idx+len("```"):]
	} else {
		return s
	}
	if end := strings.Index(s, "```"); end >= 0 {
		s = s[:end]
	}
	return strings.TrimSpace(s)
}

// toRecord builds the deadline record for a parsed response, filling
// in provenance metadata.
func (r *llmResponse) toRecord(page Page, model string, now time.Time) record.Record {
	deadline := r.PaperDeadline
	if !deadline.IsTracked() {
		date := cleanField(deadline.Date)
		if date == "" {
			date = record.TBD
		}
		deadline = record.NewDeadline(date)
	}

	rec := record.Record{
		Name:             page.Title(),
		URL:              page.URL,
		PaperDeadline:    deadline,
		AbstractDeadline: cleanField(r.AbstractDeadline),
		ConferenceDate:   cleanField(r.ConferenceDate),
		Location:         cleanField(r.Location),
		SubmissionType:   record.ParseSubmissionType(r.SubmissionType),
		SourceText:       strings.TrimSpace(r.SourceText),
		ExtractedWithAI:  true,
		AIModel:          model,
	}
	rec.Touch(now)
	return rec
}
