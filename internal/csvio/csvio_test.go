package csvio

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conftrack/internal/record"
)

var testNow = time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC)

func TestReadSkipsCommentsAndBlanks(t *testing.T) {
	csv := `conference_name,year,paper_deadline,url,submission_type,conference_date,abstract_deadline,location
ISCA,2026,"March 15, 2026",https://iscaconf.org/isca2026,Regular Paper,"June 13, 2026","March 8, 2026","Tokyo, Japan"
# templates below
,2026,,,,,,
#DAC,2026,,,,,,
DAC,2026,"November 17, 2025",https://dac.com,,,,
`
	rows, err := Read(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "ISCA", rows[0].Conference)
	assert.Equal(t, 2026, rows[0].Year)
	assert.Equal(t, "March 15, 2026", rows[0].PaperDeadline)
	assert.Equal(t, "Tokyo, Japan", rows[0].Location)
	assert.Equal(t, "DAC", rows[1].Conference)
}

func TestReadHonorsColumnOrder(t *testing.T) {
	csv := `year,conference_name,paper_deadline
2026,HPCA,"February 1, 2026"
`
	rows, err := Read(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "HPCA", rows[0].Conference)
	assert.Equal(t, "February 1, 2026", rows[0].PaperDeadline)
	assert.Empty(t, rows[0].URL)
}

func TestReadRejectsBadHeader(t *testing.T) {
	_, err := Read(strings.NewReader("foo,bar\n1,2\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "conference_name")
}

func TestReadRejectsBadYear(t *testing.T) {
	csv := "conference_name,year,paper_deadline\nISCA,soon,TBD\n"
	_, err := Read(strings.NewReader(csv))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad year")
}

func TestRowRecordIsManualWithTBDPlaceholder(t *testing.T) {
	row := Row{Conference: "ISCA", Year: 2026, URL: "https://iscaconf.org"}
	rec := row.Record(testNow)

	assert.True(t, rec.IsManual())
	assert.Equal(t, record.ManualModel, rec.AIModel)
	// An empty deadline column is a tracked-but-unknown venue, kept as
	// a TBD placeholder rather than dropped.
	assert.Equal(t, record.TBD, rec.PaperDeadline.Date)
	assert.False(t, rec.HasDeadline())
	assert.Equal(t, "ISCA 2026", rec.Name)
	assert.Equal(t, record.RegularPaper, rec.SubmissionType)
}

func TestRecordsKeying(t *testing.T) {
	rows := []Row{
		{Conference: "isca", Year: 2026, PaperDeadline: "March 15, 2026"},
		{Conference: "CODES+ISSS", Year: 2026},
	}
	recs := Records(rows, testNow)
	assert.Contains(t, recs, "ISCA_2026")
	assert.Contains(t, recs, "CODES+ISSS_2026")
}

func TestWriteRoundTrip(t *testing.T) {
	db := map[string]record.Record{
		"ISCA_2026": {
			Name:           "ISCA 2026",
			URL:            "https://iscaconf.org/isca2026",
			PaperDeadline:  record.NewDeadline("March 15, 2026"),
			SubmissionType: record.RegularPaper,
			Location:       "Tokyo, Japan",
		},
		"DAC_2026": {
			Name:           "DAC 2026",
			URL:            "https://dac.com",
			PaperDeadline:  record.NewDeadline("November 17, 2025"),
			SubmissionType: record.RegularPaper,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, db))

	out := buf.String()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, strings.Join(Header, ","), lines[0])
	// Sorted by key: DAC before ISCA.
	assert.True(t, strings.HasPrefix(lines[1], "DAC,2026,"))
	assert.True(t, strings.HasPrefix(lines[2], "ISCA,2026,"))

	rows, err := Read(&buf)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "March 15, 2026", rows[1].PaperDeadline)
}
