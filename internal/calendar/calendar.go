// Package calendar renders tracked deadlines as an iCalendar feed of
// all-day events, one per deadline, suitable for subscribing from any
// calendar client.
package calendar

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"conftrack/internal/dates"
	"conftrack/internal/record"
)

type event struct {
	title string
	date  time.Time
}

// Build assembles the feed from the database. Records without a
// parseable deadline contribute nothing; duplicate title/date pairs
// collapse into a single event.
func Build(db map[string]record.Record, now time.Time) *ics.Calendar {
	var events []event
	seen := make(map[string]bool)

	add := func(title, deadline string) {
		when, ok := dates.ParseFlexible(deadline)
		if !ok {
			return
		}
		key := title + "|" + when.Format("2006-01-02")
		if seen[key] {
			return
		}
		seen[key] = true
		events = append(events, event{title: title, date: when})
	}

	for _, rec := range db {
		name := rec.Name
		if name == "" {
			continue
		}
		if rec.PaperDeadline.IsTracked() {
			tracks := make([]string, 0, len(rec.PaperDeadline.Tracks))
			for track := range rec.PaperDeadline.Tracks {
				tracks = append(tracks, track)
			}
			sort.Strings(tracks)
			for _, track := range tracks {
				add(fmt.Sprintf("%s - Paper Deadline (%s)", name, track), rec.PaperDeadline.Tracks[track])
			}
		} else {
			add(name+" - Paper Deadline", rec.PaperDeadline.Date)
		}
		add(name+" - Abstract Deadline", rec.AbstractDeadline)
	}

	sort.Slice(events, func(i, j int) bool {
		if !events[i].date.Equal(events[j].date) {
			return events[i].date.Before(events[j].date)
		}
		return events[i].title < events[j].title
	})

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//conftrack//conference deadlines//EN")
	for _, ev := range events {
		e := cal.AddEvent(eventUID(ev))
		e.SetDtStampTime(now)
		e.SetAllDayStartAt(ev.date)
		e.SetAllDayEndAt(ev.date.AddDate(0, 0, 1))
		e.SetSummary(ev.title)
		e.SetDescription("Conference deadline added automatically by conftrack")
	}
	return cal
}

// eventUID derives a stable identifier so re-exported feeds update
// events in place instead of duplicating them.
func eventUID(ev event) string {
	slug := strings.ToLower(ev.title)
	slug = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		default:
			return '-'
		}
	}, slug)
	slug = strings.Trim(strings.ReplaceAll(slug, "--", "-"), "-")
	return fmt.Sprintf("%s-%s@conftrack", slug, ev.date.Format("20060102"))
}

// WriteFile renders the feed to an .ics file.
func WriteFile(path string, db map[string]record.Record, now time.Time) error {
	cal := Build(db, now)
	if err := os.WriteFile(path, []byte(cal.Serialize()), 0644); err != nil {
		return fmt.Errorf("failed to write calendar: %w", err)
	}
	return nil
}
