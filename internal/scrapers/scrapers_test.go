package scrapers

import (
	"context"
	"errors"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"

	"github.com/matsen/entryscrape/internal/network"
	"github.com/matsen/entryscrape/internal/paper"
	"github.com/matsen/entryscrape/internal/pdf"
	"github.com/matsen/entryscrape/internal/recognizer"
	"github.com/matsen/entryscrape/internal/scrape"
)

func nopLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// fakeRecognizer returns a fixed result and records the document it saw.
type fakeRecognizer struct {
	mu   sync.Mutex
	meta *recognizer.Metadata
	err  error
	got  *pdf.Document
}

func (f *fakeRecognizer) Recognize(_ context.Context, doc *pdf.Document) (*recognizer.Metadata, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.got = doc
	return f.meta, f.err
}

// fakeFetcher serves canned pages by exact URL.
type fakeFetcher struct {
	mu      sync.Mutex
	pages   map[string]string
	files   map[string][]byte
	gets    []string
	cookies []string
}

func (f *fakeFetcher) Get(_ context.Context, url string, req network.Request) (*network.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets = append(f.gets, url)
	f.cookies = append(f.cookies, req.Headers["Cookie"])
	body, ok := f.pages[url]
	if !ok {
		return nil, &network.StatusError{StatusCode: http.StatusNotFound, Method: http.MethodGet, URL: url}
	}
	return &network.Response{StatusCode: http.StatusOK, Body: []byte(body), URL: url}, nil
}

func (f *fakeFetcher) Download(_ context.Context, url, dest string, _ network.Request) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.files[url]
	if !ok {
		return &network.StatusError{StatusCode: http.StatusNotFound, Method: http.MethodGet, URL: url}
	}
	return os.WriteFile(dest, data, 0o644)
}

func TestNewDefaultRegistry(t *testing.T) {
	reg, err := NewDefaultRegistry(Options{
		Network:    &fakeFetcher{},
		Recognizer: &fakeRecognizer{},
		Logger:     nopLogger(),
	})
	if err != nil {
		t.Fatalf("NewDefaultRegistry() error = %v", err)
	}
	if diff := cmp.Diff(Names(), reg.Names()); diff != "" {
		t.Errorf("Names() mismatch (-want +got):\n%s", diff)
	}
}

func TestNewDefaultRegistry_Disabled(t *testing.T) {
	reg, err := NewDefaultRegistry(Options{
		Network:    &fakeFetcher{},
		Recognizer: &fakeRecognizer{},
		Disabled:   []string{NamePDFURL, NameGoogleScholar},
	})
	if err != nil {
		t.Fatalf("NewDefaultRegistry() error = %v", err)
	}
	if reg.Len() != len(Names())-2 {
		t.Errorf("Len() = %d, want %d", reg.Len(), len(Names())-2)
	}
	for _, name := range []string{NamePDFURL, NameGoogleScholar} {
		if _, ok := reg.Get(name); ok {
			t.Errorf("Get(%q) found a disabled scraper", name)
		}
	}
	if _, ok := reg.Get(NamePDF); !ok {
		t.Error("Get(pdf) missing")
	}
}

func TestNewDefaultRegistry_UnknownDisabled(t *testing.T) {
	_, err := NewDefaultRegistry(Options{Disabled: []string{"cnki"}})
	if !errors.Is(err, scrape.ErrInvalidScraper) {
		t.Errorf("NewDefaultRegistry() error = %v, want ErrInvalidScraper", err)
	}
}

func TestIsKnown(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{NamePDF, true},
		{NameEmbed, true},
		{"webcontent-cnki", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsKnown(tt.name); got != tt.want {
			t.Errorf("IsKnown(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestSetter_KeepsFirstError(t *testing.T) {
	d := paper.New(false)
	set := newSetter(d)
	set.set("title", "Kept")
	set.set("nope", "x")
	set.set("doi", "10.1/after")

	if !errors.Is(set.err, paper.ErrUnknownField) {
		t.Errorf("err = %v, want ErrUnknownField", set.err)
	}
	if d.Title != "Kept" || d.DOI != "" {
		t.Errorf("draft = %q %q, want only the title set", d.Title, d.DOI)
	}
}
