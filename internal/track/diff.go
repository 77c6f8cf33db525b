package track

import (
	"fmt"
	"os"
	"time"

	"conftrack/internal/record"
)

// ChangeSet describes what a merge changed about one conference.
type ChangeSet struct {
	IsNew           bool
	DeadlineChanged bool
	OldDeadline     record.Deadline
	NewDeadline     record.Deadline
	URLChanged      bool
	OldURL          string
	NewURL          string
}

// Diff compares the stored record (nil when the conference is new)
// against freshly extracted data. Tracked deadlines compare
// structurally, so adding or moving one track counts as a change.
func Diff(old *record.Record, fresh record.Record) ChangeSet {
	if old == nil {
		return ChangeSet{IsNew: true}
	}

	var c ChangeSet
	if !old.PaperDeadline.Equal(fresh.PaperDeadline) {
		c.DeadlineChanged = true
		c.OldDeadline = old.PaperDeadline
		c.NewDeadline = fresh.PaperDeadline
	}
	if old.URL != fresh.URL {
		c.URLChanged = true
		c.OldURL = old.URL
		c.NewURL = fresh.URL
	}
	return c
}

// ChangeLog is an append-only text log of deadline movements, one
// line per event, meant for humans and diffs rather than parsing.
type ChangeLog struct {
	path string
}

// NewChangeLog returns a change log writing to path.
func NewChangeLog(path string) *ChangeLog {
	return &ChangeLog{path: path}
}

// Append records the changes for one conference.
func (l *ChangeLog) Append(conference string, c ChangeSet, now time.Time) error {
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open change log: %w", err)
	}
	defer f.Close()

	stamp := now.Format("2006-01-02 15:04:05")
	if c.IsNew {
		fmt.Fprintf(f, "[%s] NEW: %s discovered\n", stamp, conference)
	}
	if c.DeadlineChanged {
		fmt.Fprintf(f, "[%s] DEADLINE CHANGE: %s: %s -> %s\n",
			stamp, conference, deadlineOrNone(c.OldDeadline), deadlineOrNone(c.NewDeadline))
	}
	if c.URLChanged {
		fmt.Fprintf(f, "[%s] URL CHANGE: %s: %s -> %s\n",
			stamp, conference, c.OldURL, c.NewURL)
	}
	return nil
}

func deadlineOrNone(d record.Deadline) string {
	if d.IsZero() {
		return "None"
	}
	return d.String()
}
