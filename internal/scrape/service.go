package scrape

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/matsen/entryscrape/internal/paper"
	"github.com/matsen/entryscrape/internal/payload"
)

// ErrPanicked wraps a panic raised inside a scraper.
var ErrPanicked = errors.New("scraper panicked")

// Outcome is the result of one (payload, scraper) unit.
type Outcome struct {
	Payload int // index into the input batch
	Scraper string
	Drafts  []*paper.Entity
	Err     error
	Elapsed time.Duration
}

// Service fans payload batches out across a registry of scrapers.
// It keeps no state between calls.
type Service struct {
	registry    *Registry
	logger      *zerolog.Logger
	concurrency int
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger used for unit failures.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) {
		s.logger = &l
	}
}

// WithConcurrency caps the number of units running at once. Zero or less
// means no cap.
func WithConcurrency(n int) Option {
	return func(s *Service) {
		s.concurrency = n
	}
}

// NewService creates a dispatcher over reg.
func NewService(reg *Registry, opts ...Option) *Service {
	s := &Service{registry: reg}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Registry returns the scrapers this service dispatches to.
func (s *Service) Registry() *Registry {
	return s.registry
}

func (s *Service) log() *zerolog.Logger {
	if s.logger != nil {
		return s.logger
	}
	return &log.Logger
}

// Scrape runs every payload through every scraper and returns all drafts,
// ordered by payload and then by scraper registration. A unit that fails
// contributes nothing; the failure is logged with the scraper as source.
func (s *Service) Scrape(ctx context.Context, payloads []payload.Payload) []*paper.Entity {
	if len(payloads) == 0 {
		return []*paper.Entity{}
	}
	return Flatten(s.Run(ctx, payloads))
}

// Run executes every (payload, scraper) unit concurrently and waits for all
// of them. Outcomes are returned in payload-major, registration-minor order.
func (s *Service) Run(ctx context.Context, payloads []payload.Payload) []Outcome {
	names := s.registry.Names()
	outcomes := make([]Outcome, len(payloads)*len(names))
	if len(outcomes) == 0 {
		return outcomes
	}

	var g errgroup.Group
	if s.concurrency > 0 {
		g.SetLimit(s.concurrency)
	}

	for i, p := range payloads {
		for j, name := range names {
			scraper, _ := s.registry.Get(name)
			slot := &outcomes[i*len(names)+j]
			slot.Payload = i
			slot.Scraper = name

			g.Go(func() error {
				start := time.Now()
				drafts, err := runUnit(ctx, scraper, p)
				slot.Elapsed = time.Since(start)
				if err != nil {
					slot.Err = err
					s.log().Error().Err(err).
						Str("source", name).
						Str("payload", payload.Describe(p)).
						Msg("scraper failed")
					return nil
				}
				slot.Drafts = drafts
				return nil
			})
		}
	}

	// Units never return errors: failures are kept on their own outcome.
	_ = g.Wait()
	return outcomes
}

// runUnit calls the scraper, turning a panic into ErrPanicked.
func runUnit(ctx context.Context, scraper Scraper, p payload.Payload) (drafts []*paper.Entity, err error) {
	defer func() {
		if r := recover(); r != nil {
			drafts, err = nil, fmt.Errorf("%w: %v", ErrPanicked, r)
		}
	}()
	return scraper.Scrape(ctx, p)
}

// Flatten concatenates the drafts of every successful outcome in order.
func Flatten(outcomes []Outcome) []*paper.Entity {
	drafts := []*paper.Entity{}
	for _, o := range outcomes {
		if o.Err != nil {
			continue
		}
		for _, d := range o.Drafts {
			if d != nil {
				drafts = append(drafts, d)
			}
		}
	}
	return drafts
}

// Failures returns the outcomes that ended in an error.
func Failures(outcomes []Outcome) []Outcome {
	var failed []Outcome
	for _, o := range outcomes {
		if o.Err != nil {
			failed = append(failed, o)
		}
	}
	return failed
}
