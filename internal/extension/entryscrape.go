// Package extension exposes the scrape service to a host through hooks.
package extension

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/matsen/entryscrape/internal/hook"
	"github.com/matsen/entryscrape/internal/paper"
	"github.com/matsen/entryscrape/internal/payload"
	"github.com/matsen/entryscrape/internal/scrape"
)

const (
	// EventScrapeEntry is the host event answered with entity drafts.
	EventScrapeEntry = "scrapeEntry"

	// Name identifies this extension as a hook owner and log source.
	Name = "entryscrape"
)

// EntryScrape answers scrapeEntry events with the drafts of the dispatcher.
type EntryScrape struct {
	service  *scrape.Service
	logger   *zerolog.Logger
	disposes []func()
}

// Option configures an EntryScrape.
type Option func(*EntryScrape)

// WithLogger sets the logger. The global logger is used otherwise.
func WithLogger(l zerolog.Logger) Option {
	return func(e *EntryScrape) {
		e.logger = &l
	}
}

// New creates the extension and hooks it on hooks.
func New(hooks *hook.Registry, service *scrape.Service, opts ...Option) *EntryScrape {
	e := &EntryScrape{service: service, logger: &log.Logger}
	for _, opt := range opts {
		opt(e)
	}
	e.disposes = append(e.disposes, hooks.Hook(EventScrapeEntry, Name, e.handle))
	return e
}

func (e *EntryScrape) handle(ctx context.Context, arg any) (any, error) {
	payloads, err := toPayloads(arg)
	if err != nil {
		return nil, err
	}
	return e.Scrape(ctx, payloads), nil
}

// Scrape runs the batch through every registered scraper. An empty batch
// returns an empty result without touching the scrapers.
func (e *EntryScrape) Scrape(ctx context.Context, payloads []payload.Payload) []*paper.Entity {
	if len(payloads) == 0 {
		return []*paper.Entity{}
	}

	start := time.Now()
	drafts := e.service.Scrape(ctx, payloads)
	e.logger.Debug().Str("source", Name).
		Int("payloads", len(payloads)).
		Int("drafts", len(drafts)).
		Dur("elapsed", time.Since(start)).
		Msg("scraped entries")
	return drafts
}

// Dispose removes every hook this extension registered.
func (e *EntryScrape) Dispose() {
	for _, dispose := range e.disposes {
		dispose()
	}
	e.disposes = nil
}

// toPayloads accepts decoded payloads or a raw JSON batch.
func toPayloads(arg any) ([]payload.Payload, error) {
	switch v := arg.(type) {
	case nil:
		return nil, nil
	case []payload.Payload:
		return v, nil
	case payload.Payload:
		return []payload.Payload{v}, nil
	case json.RawMessage:
		return payload.DecodeBatch(v)
	case []byte:
		return payload.DecodeBatch(v)
	case string:
		return payload.DecodeBatch([]byte(v))
	}
	return nil, fmt.Errorf("%s: unsupported payload batch %T", EventScrapeEntry, arg)
}
