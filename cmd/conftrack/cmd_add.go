package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"conftrack/internal/dates"
	"conftrack/internal/discover"
	"conftrack/internal/record"
	"conftrack/internal/track"
)

var (
	addURL         string
	addInteractive bool
	addSync        bool
)

// addCmd adds one conference, extracted or entered by hand
var addCmd = &cobra.Command{
	Use:   "add [ACRONYM] [YEAR]",
	Short: "Add a single conference to the database",
	Long: `Runs the pipeline once for the given conference edition and stores
the result. With --url the discovery step is skipped. With
--interactive a form collects the fields by hand instead; manual
entries are protected from automatic overwrites.

Example:
  conftrack add ISCA 2026
  conftrack add DATE 2026 --url https://www.date-conference.com/
  conftrack add --interactive`,
	RunE: runAdd,
}

func init() {
	addCmd.Flags().StringVar(&addURL, "url", "", "Conference website (skips discovery)")
	addCmd.Flags().BoolVarP(&addInteractive, "interactive", "i", false, "Enter fields by hand")
	addCmd.Flags().BoolVar(&addSync, "sync", false, "Push the database to the website repo afterwards")
}

// fixedDiscoverer short-circuits discovery with a known URL.
type fixedDiscoverer struct{ url string }

func (d fixedDiscoverer) Discover(context.Context, string, int) (string, error) {
	return d.url, nil
}

func runAdd(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	if addInteractive {
		if err := addManual(); err != nil {
			return err
		}
	} else {
		if len(args) != 2 {
			return fmt.Errorf("expected ACRONYM and YEAR (or use --interactive)")
		}
		year, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid year %q: %w", args[1], err)
		}
		if err := addExtracted(ctx, args[0], year); err != nil {
			return err
		}
	}

	if addSync {
		return runSync(cmd, nil)
	}
	return nil
}

func addExtracted(ctx context.Context, acronym string, year int) error {
	extractor, err := newExtractor(ctx)
	if err != nil {
		return err
	}

	var discoverer track.Discoverer = discover.New(cfg.GetFetchTimeout(), logger)
	if addURL != "" {
		discoverer = fixedDiscoverer{url: addURL}
	}

	tracker := track.New(discoverer, newFetcher(), extractor, newStore(),
		track.NewChangeLog(cfg.Store.ChangeLogPath), logger)
	tracker.Force = true

	target := track.Target{Conference: acronym, Year: year}
	changes, err := tracker.Track(ctx, target)
	if err != nil {
		return err
	}

	rec, _, err := newStore().Get(target.Key())
	if err != nil {
		return err
	}
	if changes != nil && changes.IsNew {
		fmt.Printf("Added %s: paper deadline %s\n", target, rec.PaperDeadline)
	} else {
		fmt.Printf("Updated %s: paper deadline %s\n", target, rec.PaperDeadline)
	}
	return nil
}

// addManual collects fields through a terminal form and stores a
// manual record.
func addManual() error {
	var acronym, yearStr, url, deadline, confDate, location string
	submissionType := string(record.RegularPaper)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Conference acronym").
				Placeholder("ISCA").
				Validate(required("acronym")).
				Value(&acronym),
			huh.NewInput().
				Title("Year").
				Placeholder("2026").
				Validate(validYear).
				Value(&yearStr),
			huh.NewInput().
				Title("Website URL").
				Placeholder("https://iscaconf.org/isca2026/").
				Value(&url),
			huh.NewInput().
				Title("Paper deadline").
				Placeholder("March 15, 2026 (empty for TBD)").
				Value(&deadline),
			huh.NewInput().
				Title("Conference date").
				Placeholder("June 13-17, 2026").
				Value(&confDate),
			huh.NewInput().
				Title("Location").
				Placeholder("Tokyo, Japan").
				Value(&location),
			huh.NewSelect[string]().
				Title("Submission type").
				Options(huh.NewOptions(
					string(record.RegularPaper),
					string(record.AbstractSubmission),
					string(record.Poster),
					string(record.ShortPaper),
					string(record.WorkshopWIP),
					string(record.LateBreakingResults),
				)...).
				Value(&submissionType),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}

	year, _ := strconv.Atoi(strings.TrimSpace(yearStr))
	acronym = strings.TrimSpace(acronym)

	if deadline == "" {
		deadline = record.TBD
	}
	rec := record.Record{
		Name:           fmt.Sprintf("%s %d", strings.ToUpper(acronym), year),
		URL:            strings.TrimSpace(url),
		PaperDeadline:  record.NewDeadline(deadline),
		ConferenceDate: confDate,
		Location:       location,
		SubmissionType: record.ParseSubmissionType(submissionType),
		AIModel:        record.ManualModel,
	}
	dates.NormalizeRecord(&rec)
	rec.Touch(time.Now())

	key := record.Key(acronym, year)
	if err := newStore().Upsert(key, rec); err != nil {
		return err
	}
	fmt.Printf("Added %s (manual entry, protected from automatic overwrites)\n", key)
	return nil
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

func validYear(s string) error {
	year, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || year < 1900 || year > 2200 {
		return fmt.Errorf("enter a four-digit year")
	}
	return nil
}
