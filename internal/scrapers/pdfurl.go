package scrapers

import (
	"context"
	"fmt"
	"os"

	"github.com/matsen/entryscrape/internal/paper"
	"github.com/matsen/entryscrape/internal/payload"
)

// PDFURL downloads linked PDFs and recognizes them like local files.
type PDFURL struct {
	net     Fetcher
	pdf     *PDF
	tempDir string
}

// NewPDFURL creates the PDF link scraper. Downloads are written to tempDir.
func NewPDFURL(net Fetcher, pdf *PDF, tempDir string) *PDFURL {
	return &PDFURL{net: net, pdf: pdf, tempDir: tempDir}
}

// Accepts http(s) URLs ending in .pdf.
func (s *PDFURL) Accepts(p payload.Payload) bool {
	wc, _, ok := webPayload(p)
	return ok && payload.FileType(wc.URL) == "pdf"
}

// Scrape downloads the PDF and delegates to the file scraper. The
// downloaded file is kept and becomes the draft's mainURL.
func (s *PDFURL) Scrape(ctx context.Context, p payload.Payload) ([]*paper.Entity, error) {
	if !s.Accepts(p) {
		return nil, nil
	}
	wc := p.(payload.WebContent)

	f, err := os.CreateTemp(s.tempDir, "entryscrape-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("creating download file: %w", err)
	}
	path := f.Name()
	f.Close()

	if err := s.net.Download(ctx, wc.URL, path, webRequest(wc)); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("downloading %s: %w", wc.URL, err)
	}

	drafts, err := s.pdf.Scrape(ctx, payload.File{URL: path})
	if err != nil {
		os.Remove(path)
		return nil, err
	}
	return drafts, nil
}
