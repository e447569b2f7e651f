package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/formlens/formlens/internal/analysis"
	cfgpkg "github.com/formlens/formlens/internal/config"
	"github.com/formlens/formlens/internal/session"
	"github.com/formlens/formlens/internal/summarize"
)

var (
	// Global flags (wired to config at load time)
	cfgFile string
	debug   bool
	// Retry/HTTP flags (override config if set)
	flagHTTPTimeoutSec   int
	flagRetryMaxAttempts int
	flagRetryBaseDelayMs int
	flagRetryMaxDelayMs  int

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "formlens",
	Short: "Formlens: turn survey CSV exports into summarized, shareable sessions",
	Long:  `Formlens ingests spreadsheet-exported survey data, classifies its columns, computes distributions and cross-tabulations, generates short AI descriptions per column, and manages the resulting sessions and their visibility.`,
}

// Execute is the entry point called by main.main()
func Execute() {
	cobra.OnInitialize(loadConfig)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.formlens/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().IntVar(&flagHTTPTimeoutSec, "http-timeout", 0, "HTTP client timeout in seconds (overrides config)")
	rootCmd.PersistentFlags().IntVar(&flagRetryMaxAttempts, "retry-max", 0, "max retry attempts on 429/5xx (overrides config)")
	rootCmd.PersistentFlags().IntVar(&flagRetryBaseDelayMs, "retry-base-ms", 0, "base retry backoff in ms (overrides config)")
	rootCmd.PersistentFlags().IntVar(&flagRetryMaxDelayMs, "retry-max-ms", 0, "max retry backoff cap in ms (overrides config)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: allow running commands that don't need config
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		return
	}
	cfg = c

	// Apply CLI overrides if provided
	f := rootCmd.PersistentFlags()
	if f.Changed("http-timeout") && flagHTTPTimeoutSec > 0 {
		cfg.HTTPTimeoutSec = flagHTTPTimeoutSec
	}
	if f.Changed("retry-max") && flagRetryMaxAttempts > 0 {
		cfg.RetryMaxAttempts = flagRetryMaxAttempts
	}
	if f.Changed("retry-base-ms") && flagRetryBaseDelayMs > 0 {
		cfg.RetryBaseDelayMs = flagRetryBaseDelayMs
	}
	if f.Changed("retry-max-ms") && flagRetryMaxDelayMs > 0 {
		cfg.RetryMaxDelayMs = flagRetryMaxDelayMs
	}
}

func requireConfig() error {
	if cfg == nil {
		return fmt.Errorf("configuration not loaded; check --config or ~/.formlens/config.yaml")
	}
	return nil
}

// openRegistry builds the registry from the configured store directory
// and optional seed file.
func openRegistry() (*session.Registry, error) {
	if err := requireConfig(); err != nil {
		return nil, err
	}
	store, err := session.NewFileStore(cfg.StoreDir)
	if err != nil {
		return nil, err
	}
	seed, err := session.LoadSeed(cfg.SeedFile)
	if err != nil {
		return nil, err
	}
	return session.NewRegistry(store, seed)
}

func newSummarizer() *summarize.Summarizer {
	client := summarize.NewClient(
		cfg.APIKey,
		cfg.SummaryBaseURL,
		time.Duration(cfg.HTTPTimeoutSec)*time.Second,
		cfg.RetryMaxAttempts,
		time.Duration(cfg.RetryBaseDelayMs)*time.Millisecond,
		time.Duration(cfg.RetryMaxDelayMs)*time.Millisecond,
	)
	return summarize.NewSummarizer(client, summarize.Options{
		Model:       cfg.SummaryModel,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
		CallTimeout: time.Duration(cfg.SummaryTimeout) * time.Second,
	})
}

func classifierThresholds() analysis.Thresholds {
	t := analysis.DefaultThresholds()
	if cfg.MaxUniqueRatio > 0 {
		t.MaxUniqueRatio = cfg.MaxUniqueRatio
	}
	if cfg.RatioMinValid > 0 {
		t.RatioMinValid = cfg.RatioMinValid
	}
	if cfg.MaxAverageLength > 0 {
		t.MaxAverageLength = cfg.MaxAverageLength
	}
	if cfg.MaxCategories > 0 {
		t.MaxCategories = cfg.MaxCategories
	}
	return t
}
