package scrape

import (
	"context"
	"errors"
	"testing"

	"github.com/matsen/entryscrape/internal/paper"
	"github.com/matsen/entryscrape/internal/payload"
)

func TestRegistry_Register(t *testing.T) {
	reg := NewRegistry()
	s := fileScraper("a", "", nil)

	if err := reg.Register("a", s); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := reg.Register("b", s); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if err := reg.Register("a", s); !errors.Is(err, ErrDuplicateScraper) {
		t.Errorf("Register(duplicate) error = %v, want ErrDuplicateScraper", err)
	}
	if err := reg.Register("", s); !errors.Is(err, ErrInvalidScraper) {
		t.Errorf("Register(empty name) error = %v, want ErrInvalidScraper", err)
	}
	if err := reg.Register("c", nil); !errors.Is(err, ErrInvalidScraper) {
		t.Errorf("Register(nil) error = %v, want ErrInvalidScraper", err)
	}

	names := reg.Names()
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Errorf("Names() = %v, want [a b]", names)
	}
	names[0] = "mutated"
	if reg.Names()[0] != "a" {
		t.Error("Names() exposed internal slice")
	}
	if _, ok := reg.Get("b"); !ok {
		t.Error("Get(b) not found")
	}
	if reg.Len() != 2 {
		t.Errorf("Len() = %d, want 2", reg.Len())
	}
}

func TestRegistry_MustRegisterPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustRegister() did not panic on duplicate")
		}
	}()
	reg := NewRegistry()
	reg.MustRegister("a", fileScraper("a", "", nil))
	reg.MustRegister("a", fileScraper("a", "", nil))
}

func TestFunc_ScrapeRechecksAccepts(t *testing.T) {
	called := false
	f := Func{
		AcceptsFunc: func(p payload.Payload) bool { _, ok := p.(payload.BibTeX); return ok },
		ScrapeFunc: func(context.Context, payload.Payload) ([]*paper.Entity, error) {
			called = true
			return nil, nil
		},
	}

	drafts, err := f.Scrape(context.Background(), payload.File{URL: "a.pdf"})
	if err != nil || len(drafts) != 0 || called {
		t.Errorf("Scrape(rejected) = %v, %v, called=%v", drafts, err, called)
	}
	if (Func{}).Accepts(payload.File{}) {
		t.Error("zero Func accepted a payload")
	}
}
