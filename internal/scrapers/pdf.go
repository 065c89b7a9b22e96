package scrapers

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/matsen/entryscrape/internal/paper"
	"github.com/matsen/entryscrape/internal/payload"
	"github.com/matsen/entryscrape/internal/pdf"
	"github.com/matsen/entryscrape/internal/recognizer"
)

// recognizedPages is how much of the document is sent for recognition.
const recognizedPages = 1

// PDF recognizes metadata of local PDF files.
type PDF struct {
	loader     pdf.Loader
	recognizer Recognizer
	logger     *zerolog.Logger
}

// NewPDF creates the file-based PDF scraper.
func NewPDF(loader pdf.Loader, r Recognizer, logger *zerolog.Logger) *PDF {
	return &PDF{loader: loader, recognizer: r, logger: logger}
}

// Accepts local file locators with a .pdf extension.
func (s *PDF) Accepts(p payload.Payload) bool {
	f, ok := p.(payload.File)
	return ok && payload.IsLocal(f.URL) && payload.FileType(f.URL) == "pdf"
}

// Scrape recognizes the first page and returns one draft.
func (s *PDF) Scrape(ctx context.Context, p payload.Payload) ([]*paper.Entity, error) {
	if !s.Accepts(p) {
		return nil, nil
	}
	loc := p.(payload.File).URL

	data, err := s.loader.Read(payload.EraseProtocol(loc))
	if err != nil {
		return nil, err
	}
	doc, err := pdf.Recognize(data, recognizedPages)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", payload.FileName(loc), err)
	}
	doc.FileName = payload.FileName(loc)

	meta, err := s.recognizer.Recognize(ctx, doc)
	if recognizer.IsNotRecognized(err) {
		s.logger.Warn().Str("source", NamePDF).Str("file", doc.FileName).Msg("recognizer returned no metadata")
		meta, err = &recognizer.Metadata{}, nil
	}
	if err != nil {
		return nil, err
	}

	draft := paper.New(true)
	set := newSetter(draft)
	set.set("title", meta.Title)
	set.set("authors", paper.JoinAuthors(meta.AuthorNames()))
	set.set("arxiv", meta.Arxiv)
	set.set("doi", meta.DOI)
	set.set("pubTime", string(meta.Year))
	if draft.DOI == "" {
		set.set("doi", doc.FindDOI())
	}
	if draft.Title == "" {
		set.set("title", doc.Metadata["Title"])
	}
	set.set("mainURL", loc)
	if set.err != nil {
		return nil, set.err
	}
	return []*paper.Entity{draft}, nil
}
