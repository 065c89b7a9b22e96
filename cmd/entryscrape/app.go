package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/matsen/entryscrape/internal/config"
	"github.com/matsen/entryscrape/internal/extension"
	"github.com/matsen/entryscrape/internal/hook"
	"github.com/matsen/entryscrape/internal/network"
	"github.com/matsen/entryscrape/internal/paper"
	"github.com/matsen/entryscrape/internal/payload"
	"github.com/matsen/entryscrape/internal/pdf"
	"github.com/matsen/entryscrape/internal/recognizer"
	"github.com/matsen/entryscrape/internal/scrape"
	"github.com/matsen/entryscrape/internal/scrapers"
)

// app is the host side: it emits scrapeEntry events answered by the extension.
type app struct {
	hooks     *hook.Registry
	extension *extension.EntryScrape
	registry  *scrape.Registry
}

// newApp wires the collaborators described by c.
func newApp(c *config.Config) (*app, error) {
	logger := log.Logger

	net := network.New(
		network.WithTimeout(c.HTTPTimeout),
		network.WithRetries(c.HTTPRetries),
		network.WithUserAgent(c.UserAgent),
		network.WithLogger(logger),
	)
	rec := recognizer.NewClient(net,
		recognizer.WithURL(c.RecognizerURL),
		recognizer.WithTimeout(c.RecognizerTimeout),
	)

	reg, err := scrapers.NewDefaultRegistry(scrapers.Options{
		Network:    net,
		Recognizer: rec,
		Loader:     pdf.Loader{Root: c.LibraryRoot},
		TempDir:    c.TempDir,
		Disabled:   c.DisabledScrapers,
		Logger:     &logger,
	})
	if err != nil {
		return nil, err
	}

	svc := scrape.NewService(reg, scrape.WithLogger(logger), scrape.WithConcurrency(c.Concurrency))
	hooks := hook.NewRegistry()
	return &app{
		hooks:     hooks,
		extension: extension.New(hooks, svc, extension.WithLogger(logger)),
		registry:  reg,
	}, nil
}

// scrape emits the batch and collects the drafts of every handler.
func (a *app) scrape(ctx context.Context, payloads []payload.Payload) ([]*paper.Entity, error) {
	results, err := a.hooks.Emit(ctx, extension.EventScrapeEntry, payloads)
	if err != nil {
		return nil, err
	}

	drafts := []*paper.Entity{}
	for _, res := range results {
		batch, ok := res.([]*paper.Entity)
		if !ok {
			return nil, fmt.Errorf("%s returned %T", extension.EventScrapeEntry, res)
		}
		drafts = append(drafts, batch...)
	}
	return drafts, nil
}

func (a *app) close() {
	a.extension.Dispose()
}

// mustNewApp builds the app from the loaded config, exits on error.
func mustNewApp() *app {
	a, err := newApp(cfg)
	if err != nil {
		exitWithError(ExitConfigError, "building scrapers: %v", err)
	}
	return a
}

// runPayloads scrapes payloads and writes the drafts. An empty result exits
// with ExitNoEntries.
func runPayloads(ctx context.Context, payloads []payload.Payload) error {
	a := mustNewApp()
	defer a.close()

	drafts, err := a.scrape(ctx, payloads)
	if err != nil {
		exitWithError(ExitError, "scraping: %v", err)
	}
	if len(drafts) == 0 && len(payloads) > 0 {
		exitWithError(ExitNoEntries, "no entries found in %d input(s)", len(payloads))
	}
	return writeDrafts(rootCmd.OutOrStdout(), drafts)
}
