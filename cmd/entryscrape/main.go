// Package main provides the entryscrape CLI entry point.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/matsen/entryscrape/internal/config"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	// humanOutput controls whether to use human-readable output
	humanOutput  bool
	outputFormat string
	logLevel     string
	concurrency  int

	// cfg is loaded before every command runs.
	cfg *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		// Print the error since we have SilenceErrors: true
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "entryscrape",
	Short: "Turn PDFs, BibTeX, exports and web pages into paper entries",
	Long: `entryscrape turns references to scholarly documents into paper entity drafts.

Every input is offered to every scraper concurrently:
  - local PDFs (metadata recognition service)
  - BibTeX text and .bib files
  - Zotero CSV and Paperpile JSON exports
  - arXiv, Google Scholar, IEEE Xplore and publisher pages

Configuration is read from $XDG_CONFIG_HOME/entryscrape/config.yml, .env and
ENTRYSCRAPE_* environment variables. All commands output JSON by default.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", formatJSON, "Output format: json or bibtex")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (overrides config): debug, info, warn, error")
	rootCmd.PersistentFlags().IntVar(&concurrency, "concurrency", -1, "Maximum concurrent scraper calls, 0 for unbounded (overrides config)")
	rootCmd.Version = Version
}

// setup loads configuration and configures logging on stderr.
func setup(cmd *cobra.Command, args []string) error {
	if outputFormat != formatJSON && outputFormat != formatBibTeX {
		exitWithError(ExitError, "invalid --format %q (valid: %s, %s)", outputFormat, formatJSON, formatBibTeX)
	}

	loaded, err := config.Load()
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	if logLevel != "" {
		if _, err := zerolog.ParseLevel(logLevel); err != nil {
			exitWithError(ExitConfigError, "invalid --log-level: %v", err)
		}
		loaded.LogLevel = logLevel
	}
	if concurrency >= 0 {
		loaded.Concurrency = concurrency
	}
	cfg = loaded

	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(cfg.Level()).
		With().Timestamp().Logger()
	return nil
}
