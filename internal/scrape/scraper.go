// Package scrape routes payload batches through every registered entry scraper.
package scrape

import (
	"context"

	"github.com/matsen/entryscrape/internal/paper"
	"github.com/matsen/entryscrape/internal/payload"
)

// Scraper turns one kind of payload into paper entity drafts.
//
// Accepts must be total and free of side effects: unknown or malformed
// payloads yield false. Scrape is called for every payload regardless of
// fit, so it must check Accepts itself and return no drafts for payloads it
// rejects. Errors are reserved for failures of an accepted payload (an
// unreadable file, a failed remote call).
type Scraper interface {
	Accepts(p payload.Payload) bool
	Scrape(ctx context.Context, p payload.Payload) ([]*paper.Entity, error)
}

// Func adapts a pair of functions to the Scraper interface.
type Func struct {
	AcceptsFunc func(p payload.Payload) bool
	ScrapeFunc  func(ctx context.Context, p payload.Payload) ([]*paper.Entity, error)
}

// Accepts implements Scraper.
func (f Func) Accepts(p payload.Payload) bool {
	if f.AcceptsFunc == nil {
		return false
	}
	return f.AcceptsFunc(p)
}

// Scrape implements Scraper.
func (f Func) Scrape(ctx context.Context, p payload.Payload) ([]*paper.Entity, error) {
	if !f.Accepts(p) || f.ScrapeFunc == nil {
		return nil, nil
	}
	return f.ScrapeFunc(ctx, p)
}
