// Package record defines the conference record model shared by the
// tracker, store, and publishers. A record captures the extracted fact
// set for one conference-year and round-trips unknown JSON keys so
// audit fields added by other tools survive a rewrite.
package record

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// SubmissionType classifies what kind of submission a deadline refers to.
type SubmissionType string

const (
	RegularPaper        SubmissionType = "Regular Paper"
	AbstractSubmission  SubmissionType = "Abstract"
	LateBreakingResults SubmissionType = "Late Breaking Results"
	Poster              SubmissionType = "Poster"
	ShortPaper          SubmissionType = "Short Paper"
	WorkshopWIP         SubmissionType = "Workshop/WIP"
)

// TBD is the sentinel for a field deliberately left unresolved. It is
// distinct from a parse failure: extraction emits TBD when the source
// page does not state the fact.
const TBD = "TBD"

// ManualModel is the ai_model value for human-entered records.
const ManualModel = "manual"

// Deadline is either a single date string or, for multi-track
// conferences, a mapping from track name to date string. Exactly one
// of the two representations is populated.
type Deadline struct {
	Date   string
	Tracks map[string]string
}

// NewDeadline wraps a single date string.
func NewDeadline(date string) Deadline {
	return Deadline{Date: date}
}

// NewTrackedDeadline wraps a per-track date mapping.
func NewTrackedDeadline(tracks map[string]string) Deadline {
	return Deadline{Tracks: tracks}
}

// IsTracked reports whether the deadline carries per-track dates.
func (d Deadline) IsTracked() bool {
	return d.Tracks != nil
}

// IsZero reports whether the deadline is entirely absent.
func (d Deadline) IsZero() bool {
	return d.Date == "" && d.Tracks == nil
}

// IsTBD reports whether the deadline is the TBD sentinel.
func (d Deadline) IsTBD() bool {
	return !d.IsTracked() && d.Date == TBD
}

// Equal compares two deadlines structurally, including track mappings.
func (d Deadline) Equal(other Deadline) bool {
	if d.IsTracked() != other.IsTracked() {
		return false
	}
	if !d.IsTracked() {
		return d.Date == other.Date
	}
	if len(d.Tracks) != len(other.Tracks) {
		return false
	}
	for track, date := range d.Tracks {
		if other.Tracks[track] != date {
			return false
		}
	}
	return true
}

// String renders the deadline for display. Tracked deadlines list
// every track in sorted order.
func (d Deadline) String() string {
	if !d.IsTracked() {
		return d.Date
	}
	tracks := make([]string, 0, len(d.Tracks))
	for track := range d.Tracks {
		tracks = append(tracks, track)
	}
	sort.Strings(tracks)
	parts := make([]string, 0, len(tracks))
	for _, track := range tracks {
		parts = append(parts, fmt.Sprintf("%s: %s", track, d.Tracks[track]))
	}
	return strings.Join(parts, "; ")
}

// SortValue returns the string used for ordering records in reports.
// Tracked deadlines sort by their first track date.
func (d Deadline) SortValue() string {
	if !d.IsTracked() {
		if d.Date == "" {
			return "ZZZ"
		}
		return d.Date
	}
	tracks := make([]string, 0, len(d.Tracks))
	for track := range d.Tracks {
		tracks = append(tracks, track)
	}
	if len(tracks) == 0 {
		return "ZZZ"
	}
	sort.Strings(tracks)
	return d.Tracks[tracks[0]]
}

// MarshalJSON emits a bare string or a JSON object depending on the tag.
func (d Deadline) MarshalJSON() ([]byte, error) {
	if d.IsTracked() {
		return json.Marshal(d.Tracks)
	}
	return json.Marshal(d.Date)
}

// UnmarshalJSON accepts a string, an object, or null.
func (d *Deadline) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*d = Deadline{}
		return nil
	}
	if strings.HasPrefix(trimmed, "{") {
		var tracks map[string]string
		if err := json.Unmarshal(data, &tracks); err != nil {
			return fmt.Errorf("tracked deadline: %w", err)
		}
		*d = Deadline{Tracks: tracks}
		return nil
	}
	var date string
	if err := json.Unmarshal(data, &date); err != nil {
		return fmt.Errorf("deadline: %w", err)
	}
	*d = Deadline{Date: date}
	return nil
}

// Record is the structured fact set for one conference-year.
type Record struct {
	Name             string
	URL              string
	PaperDeadline    Deadline
	AbstractDeadline string
	NotificationDate string
	CameraReady      string
	ConferenceDate   string
	Location         string
	SubmissionType   SubmissionType
	LastChecked      string
	ExtractedWithAI  bool
	AIModel          string
	SourceText       string

	// Extra holds unknown keys from the stored JSON so they survive a
	// rewrite.
	Extra map[string]json.RawMessage
}

// knownFields are the JSON keys owned by Record itself.
var knownFields = map[string]struct{}{
	"name": {}, "url": {}, "paper_deadline": {}, "abstract_deadline": {},
	"notification_date": {}, "camera_ready": {}, "conference_date": {},
	"location": {}, "submission_type": {}, "last_checked": {},
	"extracted_with_ai": {}, "ai_model": {}, "source_text": {},
}

type recordAlias struct {
	Name             string          `json:"name"`
	URL              string          `json:"url"`
	PaperDeadline    Deadline        `json:"paper_deadline"`
	AbstractDeadline string          `json:"abstract_deadline,omitempty"`
	NotificationDate string          `json:"notification_date,omitempty"`
	CameraReady      string          `json:"camera_ready,omitempty"`
	ConferenceDate   string          `json:"conference_date,omitempty"`
	Location         string          `json:"location,omitempty"`
	SubmissionType   SubmissionType  `json:"submission_type,omitempty"`
	LastChecked      string          `json:"last_checked,omitempty"`
	ExtractedWithAI  bool            `json:"extracted_with_ai"`
	AIModel          string          `json:"ai_model,omitempty"`
	SourceText       string          `json:"source_text,omitempty"`
}

// MarshalJSON writes the known fields plus any preserved extras.
func (r Record) MarshalJSON() ([]byte, error) {
	alias := recordAlias{
		Name:             r.Name,
		URL:              r.URL,
		PaperDeadline:    r.PaperDeadline,
		AbstractDeadline: r.AbstractDeadline,
		NotificationDate: r.NotificationDate,
		CameraReady:      r.CameraReady,
		ConferenceDate:   r.ConferenceDate,
		Location:         r.Location,
		SubmissionType:   r.SubmissionType,
		LastChecked:      r.LastChecked,
		ExtractedWithAI:  r.ExtractedWithAI,
		AIModel:          r.AIModel,
		SourceText:       r.SourceText,
	}
	if len(r.Extra) == 0 {
		return json.Marshal(alias)
	}
	base, err := json.Marshal(alias)
	if err != nil {
		return nil, err
	}
	var merged map[string]json.RawMessage
	if err := json.Unmarshal(base, &merged); err != nil {
		return nil, err
	}
	for key, raw := range r.Extra {
		if _, known := knownFields[key]; known {
			continue
		}
		merged[key] = raw
	}
	return json.Marshal(merged)
}

// UnmarshalJSON reads the known fields and stashes unknown keys.
func (r *Record) UnmarshalJSON(data []byte) error {
	var alias recordAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var extra map[string]json.RawMessage
	for key, value := range raw {
		if _, known := knownFields[key]; known {
			continue
		}
		if extra == nil {
			extra = make(map[string]json.RawMessage)
		}
		extra[key] = value
	}
	*r = Record{
		Name:             alias.Name,
		URL:              alias.URL,
		PaperDeadline:    alias.PaperDeadline,
		AbstractDeadline: alias.AbstractDeadline,
		NotificationDate: alias.NotificationDate,
		CameraReady:      alias.CameraReady,
		ConferenceDate:   alias.ConferenceDate,
		Location:         alias.Location,
		SubmissionType:   alias.SubmissionType,
		LastChecked:      alias.LastChecked,
		ExtractedWithAI:  alias.ExtractedWithAI,
		AIModel:          alias.AIModel,
		SourceText:       alias.SourceText,
		Extra:            extra,
	}
	return nil
}

// IsManual reports whether the record is a human-entered override.
// Manual records are never silently replaced by automatic extraction.
func (r Record) IsManual() bool {
	return r.AIModel == ManualModel || !r.ExtractedWithAI
}

// HasDeadline reports whether the record carries a usable paper
// deadline. TBD counts as absent here; callers that treat TBD as a
// valid placeholder check the deadline directly.
func (r Record) HasDeadline() bool {
	if r.PaperDeadline.IsZero() || r.PaperDeadline.IsTBD() {
		return false
	}
	return true
}

// Touch stamps last_checked with the current time.
func (r *Record) Touch(now time.Time) {
	r.LastChecked = now.Format(time.RFC3339)
}

// Key builds the store key for a conference acronym and year.
// Acronyms are uppercased; the key form is "{ACRONYM}_{YEAR}".
func Key(acronym string, year int) string {
	return fmt.Sprintf("%s_%d", strings.ToUpper(strings.TrimSpace(acronym)), year)
}

// SplitKey splits a store key back into acronym and year. The split is
// on the last underscore so acronyms containing underscores survive.
func SplitKey(key string) (string, int, error) {
	idx := strings.LastIndex(key, "_")
	if idx <= 0 || idx == len(key)-1 {
		return "", 0, fmt.Errorf("malformed record key %q", key)
	}
	year, err := strconv.Atoi(key[idx+1:])
	if err != nil {
		return "", 0, fmt.Errorf("malformed record key %q: %w", key, err)
	}
	return key[:idx], year, nil
}

// ParseSubmissionType maps free text onto the closed submission-type
// set, defaulting to Regular Paper.
func ParseSubmissionType(s string) SubmissionType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "abstract":
		return AbstractSubmission
	case "late breaking results", "late-breaking results", "lbr":
		return LateBreakingResults
	case "poster":
		return Poster
	case "short paper":
		return ShortPaper
	case "workshop", "wip", "workshop/wip", "work in progress", "work-in-progress":
		return WorkshopWIP
	default:
		return RegularPaper
	}
}

