package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"conftrack/internal/config"
	"conftrack/internal/extract"
	"conftrack/internal/fetch"
	"conftrack/internal/store"
)

var (
	// Global flags
	verbose    bool
	configPath string
	timeout    time.Duration

	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "conftrack",
	Short: "conftrack - academic conference deadline tracker",
	Long: `conftrack tracks paper submission deadlines for academic conferences.

It finds each conference's official website, extracts deadline facts
from the page text (via a local Ollama model, Gemini, or plain
heuristics), validates them against sanity rules, and merges them into
a JSON database with change detection. The database feeds an HTML
report, an iCalendar feed, email digests, and a website git repo.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zapConfig := zap.NewProductionConfig()
		if verbose {
			zapConfig.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zapConfig.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		return cfg.Validate()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "conftrack.yaml", "Config file path")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Minute, "Operation timeout")

	rootCmd.AddCommand(trackCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(suggestCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(calendarCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(notifyCmd)
}

// newStore opens the configured conference database.
func newStore() *store.Store {
	return store.New(cfg.Store.DatabasePath, logger)
}

// siteFetcher fetches the main page plus CFP subpages, falling back to
// a headless browser when enabled and the static fetch comes up empty.
type siteFetcher struct {
	client   *fetch.Client
	rendered *fetch.RenderedClient
}

func newFetcher() *siteFetcher {
	f := &siteFetcher{client: fetch.New(cfg.GetFetchTimeout(), logger)}
	if cfg.Fetch.SubpageLimit > 0 {
		f.client.SubpageLimit = cfg.Fetch.SubpageLimit
	}
	if cfg.Fetch.Rendered {
		f.rendered = fetch.NewRendered(cfg.GetRenderTimeout(), logger)
	}
	return f
}

func (f *siteFetcher) FetchText(ctx context.Context, url string) (string, error) {
	text, err := f.client.FetchAllText(ctx, url)
	if err == nil && text != "" {
		return text, nil
	}
	if f.rendered != nil {
		if rendered, rerr := f.rendered.FetchText(ctx, url); rerr == nil && rendered != "" {
			return rendered, nil
		}
	}
	return text, err
}

// newExtractor builds the configured extraction backend. An
// unreachable Ollama degrades to heuristics rather than failing the
// run.
func newExtractor(ctx context.Context) (extract.Extractor, error) {
	switch cfg.LLM.Provider {
	case "ollama":
		client := extract.NewOllamaClient(cfg.LLM.Endpoint, cfg.LLM.Model, cfg.GetLLMTimeout())
		if !client.Available(ctx) {
			logger.Warn("ollama not reachable, falling back to heuristic extraction",
				zap.String("endpoint", cfg.LLM.Endpoint))
			return extract.NewHeuristicExtractor(logger), nil
		}
		return extract.NewLLMExtractor(client, logger), nil
	case "gemini":
		client, err := extract.NewGeminiClient(ctx, cfg.LLM.APIKey, cfg.LLM.Model)
		if err != nil {
			return nil, err
		}
		return extract.NewLLMExtractor(client, logger), nil
	default:
		return extract.NewHeuristicExtractor(logger), nil
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
