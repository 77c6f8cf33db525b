package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"conftrack/internal/discover"
	"conftrack/internal/extract"
	"conftrack/internal/record"
	"conftrack/internal/store"
	"conftrack/internal/track"
)

var (
	suggestYear    int
	suggestAdd     bool
	suggestExtract bool
)

// suggestCmd lists catalogued venues not yet in the database
var suggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Suggest known conferences that are not tracked yet",
	Long: `Compares the built-in venue catalogue against the database and lists
editions that are not tracked for the given year. --add stores TBD
placeholders for them; --extract runs the full pipeline on each
instead.`,
	RunE: runSuggest,
}

func init() {
	suggestCmd.Flags().IntVar(&suggestYear, "year", 0, "Edition year (default: next year)")
	suggestCmd.Flags().BoolVar(&suggestAdd, "add", false, "Store TBD placeholders for the suggestions")
	suggestCmd.Flags().BoolVar(&suggestExtract, "extract", false, "Run the extraction pipeline on the suggestions")
}

func runSuggest(cmd *cobra.Command, args []string) error {
	year := suggestYear
	if year == 0 {
		year = time.Now().Year() + 1
	}

	db, err := newStore().Load()
	if err != nil {
		return err
	}
	missing := discover.Untracked(db, year)
	if len(missing) == 0 {
		fmt.Printf("All catalogued conferences are tracked for %d.\n", year)
		return nil
	}

	byCategory := make(map[string][]discover.Venue)
	for _, venue := range missing {
		byCategory[venue.Category] = append(byCategory[venue.Category], venue)
	}
	for _, category := range discover.Categories() {
		venues := byCategory[category]
		if len(venues) == 0 {
			continue
		}
		fmt.Println(headerStyle.Render(category))
		for _, venue := range venues {
			fmt.Printf("  %-12s %s\n", record.Key(venue.Acronym, year), dimStyle.Render(venue.Name))
		}
	}
	fmt.Printf("%d untracked conference(s) for %d\n", len(missing), year)

	switch {
	case suggestExtract:
		return runSuggestExtract(cmd.Context(), missing, year)
	case suggestAdd:
		return addPlaceholders(missing, year)
	}
	return nil
}

// addPlaceholders stores TBD manual rows so the report and list show
// the venues before their sites go live.
func addPlaceholders(venues []discover.Venue, year int) error {
	st := newStore()
	now := time.Now()
	return st.Update(func(db map[string]record.Record) error {
		for _, venue := range venues {
			rec := record.Record{
				Name:          fmt.Sprintf("%s %d", venue.Acronym, year),
				PaperDeadline: record.NewDeadline(record.TBD),
				AIModel:       record.ManualModel,
			}
			rec.Touch(now)
			db[record.Key(venue.Acronym, year)] = rec
		}
		fmt.Printf("Added %d TBD placeholder(s)\n", len(venues))
		return nil
	})
}

func runSuggestExtract(ctx context.Context, venues []discover.Venue, year int) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	extractor, err := newExtractor(ctx)
	if err != nil {
		return err
	}
	extracted, placeholders, err := extractSuggestions(ctx,
		discover.New(cfg.GetFetchTimeout(), logger), newFetcher(), extractor,
		newStore(), venues, year, time.Now)
	if err != nil {
		return err
	}
	fmt.Printf("Stored %d extracted and %d TBD placeholder suggestion(s)\n", extracted, placeholders)
	return nil
}

// extractSuggestions runs the pipeline once per venue and persists
// every result. Unlike a tracking run, a missing deadline is not a
// failure here: the venue is worth listing before its call for papers
// goes up, so it is stored with a TBD placeholder instead.
func extractSuggestions(ctx context.Context, d track.Discoverer, f track.Fetcher, e extract.Extractor, st *store.Store, venues []discover.Venue, year int, now func() time.Time) (extracted, placeholders int, err error) {
	results := make(map[string]record.Record, len(venues))
	for _, venue := range venues {
		if err := ctx.Err(); err != nil {
			return extracted, placeholders, err
		}
		rec, ok := extractVenue(ctx, d, f, e, venue, year)
		if ok {
			extracted++
		} else {
			placeholders++
		}
		rec.Touch(now())
		results[record.Key(venue.Acronym, year)] = rec
	}

	err = st.Update(func(db map[string]record.Record) error {
		for key, rec := range results {
			db[key] = rec
		}
		return nil
	})
	return extracted, placeholders, err
}

// extractVenue attempts the full pipeline for one venue. Any failure
// along the way degrades to a manual TBD placeholder carrying whatever
// was learned before the failure (usually the URL).
func extractVenue(ctx context.Context, d track.Discoverer, f track.Fetcher, e extract.Extractor, venue discover.Venue, year int) (record.Record, bool) {
	placeholder := record.Record{
		Name:          fmt.Sprintf("%s %d", venue.Acronym, year),
		PaperDeadline: record.NewDeadline(record.TBD),
		AIModel:       record.ManualModel,
	}

	url, err := d.Discover(ctx, venue.Acronym, year)
	if err != nil {
		logger.Debug("no website found for suggestion",
			zap.String("conference", venue.Acronym))
		return placeholder, false
	}
	placeholder.URL = url

	text, err := f.FetchText(ctx, url)
	if err != nil {
		logger.Debug("suggestion fetch failed",
			zap.String("conference", venue.Acronym),
			zap.String("url", url))
		return placeholder, false
	}

	rec, err := e.Extract(ctx, extract.Page{
		Conference: venue.Acronym,
		Year:       year,
		URL:        url,
		Text:       text,
	})
	if err != nil {
		logger.Debug("suggestion extraction failed",
			zap.String("conference", venue.Acronym),
			zap.String("reason", err.Error()))
		return placeholder, false
	}
	return *rec, true
}
