package scrapers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/matsen/entryscrape/internal/paper"
	"github.com/matsen/entryscrape/internal/payload"
)

// PaperEntity copies an already-shaped entity into a fresh draft.
type PaperEntity struct{}

// Accepts entity payloads that carry every schema field.
func (PaperEntity) Accepts(p payload.Payload) bool {
	e, ok := p.(payload.Entity)
	if !ok {
		return false
	}
	for _, f := range paper.SchemaFields() {
		if !e.Has(f) {
			return false
		}
	}
	return true
}

// Scrape copies every field verbatim, identity included, without normalization.
func (s PaperEntity) Scrape(_ context.Context, p payload.Payload) ([]*paper.Entity, error) {
	if !s.Accepts(p) {
		return nil, nil
	}

	raw, err := json.Marshal(p.(payload.Entity).Fields)
	if err != nil {
		return nil, fmt.Errorf("encoding entity payload: %w", err)
	}
	var src paper.Entity
	if err := json.Unmarshal(raw, &src); err != nil {
		return nil, fmt.Errorf("decoding entity payload: %w", err)
	}

	return []*paper.Entity{paper.New(false).Initialize(&src)}, nil
}
