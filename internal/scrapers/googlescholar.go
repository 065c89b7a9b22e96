package scrapers

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"github.com/matsen/entryscrape/internal/bibtex"
	"github.com/matsen/entryscrape/internal/paper"
	"github.com/matsen/entryscrape/internal/payload"
)

// ErrNoCitation is returned when the cite dialog has no BibTeX link.
var ErrNoCitation = errors.New("no BibTeX citation link")

// GoogleScholar reads the first result of a Google Scholar result page
// through its BibTeX citation.
type GoogleScholar struct {
	net    Fetcher
	logger *zerolog.Logger
}

// NewGoogleScholar creates the Google Scholar scraper.
func NewGoogleScholar(net Fetcher, logger *zerolog.Logger) *GoogleScholar {
	return &GoogleScholar{net: net, logger: logger}
}

// Accepts pages on scholar.google.<tld>.
func (s *GoogleScholar) Accepts(p payload.Payload) bool {
	_, u, ok := webPayload(p)
	return ok && strings.HasPrefix(strings.ToLower(u.Host), "scholar.google.")
}

// Scrape follows the first result to its BibTeX export. A page without
// results yields no drafts.
func (s *GoogleScholar) Scrape(ctx context.Context, p payload.Payload) ([]*paper.Entity, error) {
	if !s.Accepts(p) {
		return nil, nil
	}
	wc, u, _ := webPayload(p)

	doc, err := document(ctx, s.net, wc)
	if err != nil {
		return nil, err
	}
	cid, ok := doc.Find("[data-cid]").First().Attr("data-cid")
	if !ok || cid == "" {
		s.logger.Debug().Str("source", NameGoogleScholar).Str("url", wc.URL).Msg("no results on page")
		return nil, nil
	}

	base := &url.URL{Scheme: u.Scheme, Host: u.Host}
	cite := base.ResolveReference(&url.URL{
		Path:     "/scholar",
		RawQuery: "q=info:" + url.QueryEscape(cid) + ":scholar.google.com/&output=cite&scirp=0&hl=en",
	})
	res, err := s.net.Get(ctx, cite.String(), webRequest(wc))
	if err != nil {
		return nil, fmt.Errorf("fetching cite dialog: %w", err)
	}
	dialog, err := goquery.NewDocumentFromReader(strings.NewReader(string(res.Body)))
	if err != nil {
		return nil, fmt.Errorf("parsing cite dialog: %w", err)
	}

	href := ""
	dialog.Find("a.gs_citi").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		if strings.EqualFold(strings.TrimSpace(a.Text()), "bibtex") {
			href = a.AttrOr("href", "")
			return false
		}
		return true
	})
	if href == "" {
		return nil, fmt.Errorf("%w for %s", ErrNoCitation, cid)
	}
	ref, err := url.Parse(href)
	if err != nil {
		return nil, fmt.Errorf("citation link %q: %w", href, err)
	}

	res, err = s.net.Get(ctx, base.ResolveReference(ref).String(), webRequest(wc))
	if err != nil {
		return nil, fmt.Errorf("fetching BibTeX: %w", err)
	}
	entries, err := bibtex.Parse(string(res.Body))
	if len(entries) == 0 {
		if err == nil {
			err = fmt.Errorf("%w: empty BibTeX response", bibtex.ErrSyntax)
		}
		return nil, err
	}

	draft, err := entryToDraft(entries[0])
	if err != nil {
		return nil, err
	}
	return []*paper.Entity{draft}, nil
}
