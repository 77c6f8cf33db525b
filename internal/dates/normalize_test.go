package dates

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"conftrack/internal/record"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"November 10, 2025", "November 10, 2025"},
		{"Nov 10, 2025", "November 10, 2025"},
		{"2025-11-10", "November 10, 2025"},
		{"10 November 2025", "November 10, 2025"},
		{"11/10/2025", "November 10, 2025"},
		{"Fri 7 Nov 2025", "November 7, 2025"},
		{"April 11, 2025 at 11:59 PM EDT", "April 11, 2025"},
		{"October 28, 2024 (FIRM)", "October 28, 2024"},
		{"January 17, 2026 (No Extensions)", "January 17, 2026"},
		{"April 17, 2025; 23:59 PT", "April 17, 2025"},
		{"Thursday, December 11, 2025", "December 11, 2025"},
		{"14 April 2025", "April 14, 2025"},
		{"November 10 2025", "November 10, 2025"},
		{"10 Nov, 2025", "November 10, 2025"},
		// pass-throughs
		{"TBD", "TBD"},
		{"", ""},
		{"sometime next spring", "sometime next spring"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"November 10, 2025",
		"Nov 10, 2025",
		"2025-11-10",
		"10 November 2025",
		"11/10/2025",
		"Fri 7 Nov 2025",
		"April 11, 2025 at 11:59 PM EDT",
		"not a date at all",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "Normalize not idempotent for %q", in)
	}
}

func TestNormalizeDeadlineTracked(t *testing.T) {
	d := record.NewTrackedDeadline(map[string]string{
		"Main Track":     "2025-11-10",
		"Industry Track": "Dec 5, 2025",
	})
	got := NormalizeDeadline(d)
	assert.True(t, got.IsTracked())
	assert.Equal(t, "November 10, 2025", got.Tracks["Main Track"])
	assert.Equal(t, "December 5, 2025", got.Tracks["Industry Track"])
}

func TestNormalizeRecord(t *testing.T) {
	rec := record.Record{
		PaperDeadline:    record.NewDeadline("2025-11-17"),
		AbstractDeadline: "Nov 10, 2025",
		NotificationDate: record.TBD,
		CameraReady:      "",
	}
	NormalizeRecord(&rec)
	assert.Equal(t, "November 17, 2025", rec.PaperDeadline.Date)
	assert.Equal(t, "November 10, 2025", rec.AbstractDeadline)
	assert.Equal(t, record.TBD, rec.NotificationDate)
	assert.Empty(t, rec.CameraReady)
}

func TestExtractYear(t *testing.T) {
	year, ok := ExtractYear("March 17, 2025")
	assert.True(t, ok)
	assert.Equal(t, 2025, year)

	_, ok = ExtractYear("no year here")
	assert.False(t, ok)
}

func TestParseFlexible(t *testing.T) {
	for _, s := range []string{"November 10, 2025", "Nov 10, 2025", "2025-11-10"} {
		got, ok := ParseFlexible(s)
		assert.True(t, ok, s)
		assert.Equal(t, 2025, got.Year())
	}
	_, ok := ParseFlexible("10.11.2025")
	assert.False(t, ok)
}
