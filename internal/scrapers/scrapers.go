// Package scrapers holds the entry scrapers and the default registry.
package scrapers

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/matsen/entryscrape/internal/network"
	"github.com/matsen/entryscrape/internal/paper"
	"github.com/matsen/entryscrape/internal/pdf"
	"github.com/matsen/entryscrape/internal/recognizer"
	"github.com/matsen/entryscrape/internal/scrape"
)

// Scraper names in registration order.
const (
	NamePDF           = "pdf"
	NameBibTeX        = "bibtex"
	NamePaperEntity   = "paperentity"
	NameZoteroCSV     = "zoterocsv"
	NamePaperpile     = "paperpile"
	NameArxiv         = "webcontent-arxiv"
	NameGoogleScholar = "webcontent-googlescholar"
	NameIEEE          = "webcontent-ieee"
	NamePDFURL        = "webcontent-pdfurl"
	NameEmbed         = "webcontent-embed"
)

// Names returns every built-in scraper name in registration order.
func Names() []string {
	return []string{
		NamePDF, NameBibTeX, NamePaperEntity, NameZoteroCSV, NamePaperpile,
		NameArxiv, NameGoogleScholar, NameIEEE, NamePDFURL, NameEmbed,
	}
}

// IsKnown reports whether name is a built-in scraper.
func IsKnown(name string) bool {
	for _, n := range Names() {
		if n == name {
			return true
		}
	}
	return false
}

// Recognizer turns a PDF layout into metadata.
type Recognizer interface {
	Recognize(ctx context.Context, doc *pdf.Document) (*recognizer.Metadata, error)
}

// Fetcher is the network access web scrapers need.
type Fetcher interface {
	Get(ctx context.Context, url string, req network.Request) (*network.Response, error)
	Download(ctx context.Context, url, dest string, req network.Request) error
}

// Options wires the collaborators of the default scrapers.
type Options struct {
	Network    Fetcher
	Recognizer Recognizer
	Loader     pdf.Loader
	// TempDir receives downloaded PDFs. Empty uses os.TempDir().
	TempDir string
	// Disabled names scrapers to leave out of the registry.
	Disabled []string
	Logger   *zerolog.Logger
}

func (o Options) logger() *zerolog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return &log.Logger
}

// NewDefaultRegistry registers every built-in scraper not disabled in opts.
func NewDefaultRegistry(opts Options) (*scrape.Registry, error) {
	disabled := make(map[string]bool, len(opts.Disabled))
	for _, name := range opts.Disabled {
		if !IsKnown(name) {
			return nil, fmt.Errorf("%w: unknown scraper %q", scrape.ErrInvalidScraper, name)
		}
		disabled[name] = true
	}
	if opts.Network == nil {
		opts.Network = network.New()
	}
	if opts.Recognizer == nil {
		opts.Recognizer = recognizer.NewClient(network.New())
	}
	if opts.TempDir == "" {
		opts.TempDir = os.TempDir()
	}

	l := opts.logger()
	pdfScraper := NewPDF(opts.Loader, opts.Recognizer, l)
	all := []struct {
		name string
		s    scrape.Scraper
	}{
		{NamePDF, pdfScraper},
		{NameBibTeX, NewBibTeX(opts.Loader, l)},
		{NamePaperEntity, PaperEntity{}},
		{NameZoteroCSV, NewZoteroCSV(opts.Loader, l)},
		{NamePaperpile, NewPaperpile(opts.Loader, l)},
		{NameArxiv, NewArxiv(opts.Network)},
		{NameGoogleScholar, NewGoogleScholar(opts.Network, l)},
		{NameIEEE, NewIEEE(opts.Network)},
		{NamePDFURL, NewPDFURL(opts.Network, pdfScraper, opts.TempDir)},
		{NameEmbed, NewEmbed(opts.Network)},
	}

	reg := scrape.NewRegistry()
	for _, entry := range all {
		if disabled[entry.name] {
			continue
		}
		if err := reg.Register(entry.name, entry.s); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// setter applies SetValue calls to a draft and keeps the first error.
type setter struct {
	e      *paper.Entity
	format bool
	err    error
}

func newSetter(e *paper.Entity) *setter {
	return &setter{e: e, format: true}
}

func (s *setter) set(key string, value any) {
	if s.err != nil {
		return
	}
	if err := s.e.SetValue(key, value, false, s.format); err != nil {
		s.err = err
	}
}
