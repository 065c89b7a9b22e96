package scrapers

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/matsen/entryscrape/internal/paper"
	"github.com/matsen/entryscrape/internal/payload"
)

func entityPayload(t *testing.T, e *paper.Entity) payload.Entity {
	t.Helper()
	raw, err := json.Marshal(e)
	if err != nil {
		t.Fatal(err)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		t.Fatal(err)
	}
	return payload.Entity{Fields: fields}
}

func TestPaperEntity_Accepts(t *testing.T) {
	full := entityPayload(t, paper.New(true))
	partial := entityPayload(t, paper.New(true))
	delete(partial.Fields, "codes")

	tests := []struct {
		name string
		p    payload.Payload
		want bool
	}{
		{"all fields", full, true},
		{"missing field", partial, false},
		{"empty", payload.Entity{}, false},
		{"other payload", payload.BibTeX{Text: "@misc{x}"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := (PaperEntity{}).Accepts(tt.p); got != tt.want {
				t.Errorf("Accepts() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPaperEntity_Scrape_CopiesVerbatim(t *testing.T) {
	src := paper.New(true)
	src.AddTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	src.Partition = "p1"
	// MathML is left alone: this scraper does not normalize.
	src.Title = "<math><mi>x</mi></math> trees"
	src.Authors = "Jane Doe"
	src.PubType = paper.PubTypeBook
	src.Rating = 4
	src.Flag = true
	src.Note = "read later"
	src.SupURLs = []string{"a.pdf"}
	src.Tags = []paper.Tag{paper.NewTag("trees", 2)}
	src.Folders = []paper.Folder{paper.NewFolder("thesis", 1)}

	drafts, err := PaperEntity{}.Scrape(context.Background(), entityPayload(t, src))
	if err != nil {
		t.Fatalf("Scrape() error = %v", err)
	}
	if len(drafts) != 1 {
		t.Fatalf("len(drafts) = %d, want 1", len(drafts))
	}
	if diff := cmp.Diff(src, drafts[0]); diff != "" {
		t.Errorf("Scrape() mismatch (-want +got):\n%s", diff)
	}
	if drafts[0] == src {
		t.Error("Scrape() returned the source entity")
	}
}

func TestPaperEntity_Scrape_Rejected(t *testing.T) {
	drafts, err := PaperEntity{}.Scrape(context.Background(), payload.Entity{})
	if err != nil || drafts != nil {
		t.Errorf("Scrape() = %v, %v, want nil, nil", drafts, err)
	}
}
