package scrapers

import (
	"context"
	"regexp"
	"strings"

	"github.com/matsen/entryscrape/internal/paper"
	"github.com/matsen/entryscrape/internal/payload"
)

// arxivPathPattern matches new-style (2101.00001v2) and old-style
// (hep-th/9901001) identifiers after /abs/ or /pdf/.
var arxivPathPattern = regexp.MustCompile(`^/(abs|pdf)/(\d{4}\.\d{4,5}(?:v\d+)?|[a-z\-]+(?:\.[A-Z]{2})?/\d{7}(?:v\d+)?)(?:\.pdf)?/?$`)

// Arxiv reads arXiv abstract and PDF pages.
type Arxiv struct {
	net Fetcher
}

// NewArxiv creates the arXiv scraper.
func NewArxiv(net Fetcher) *Arxiv {
	return &Arxiv{net: net}
}

// Accepts arxiv.org /abs/ and /pdf/ pages.
func (s *Arxiv) Accepts(p payload.Payload) bool {
	_, _, ok := s.match(p)
	return ok
}

func (s *Arxiv) match(p payload.Payload) (payload.WebContent, []string, bool) {
	wc, u, ok := webPayload(p)
	if !ok || !hostIs(u.Host, "arxiv.org") {
		return wc, nil, false
	}
	m := arxivPathPattern.FindStringSubmatch(u.Path)
	if m == nil {
		return wc, nil, false
	}
	return wc, m, true
}

// Scrape reads the abstract page meta tags. For PDF links the abstract page
// is fetched instead of the given document.
func (s *Arxiv) Scrape(ctx context.Context, p payload.Payload) ([]*paper.Entity, error) {
	wc, m, ok := s.match(p)
	if !ok {
		return nil, nil
	}
	id := m[2]

	page := wc
	if m[1] == "pdf" {
		u, _, _ := strings.Cut(wc.URL, "/pdf/")
		page = payload.WebContent{URL: u + "/abs/" + id, Cookies: wc.Cookies}
	}
	doc, err := document(ctx, s.net, page)
	if err != nil {
		return nil, err
	}
	tags := metaTags(doc)

	draft := paper.New(true)
	set := newSetter(draft)
	set.set("title", first(tags, "citation_title"))
	set.set("authors", paper.JoinAuthors(metaAuthors(tags, "citation_author")))
	set.set("pubTime", bibYearPattern.FindString(first(tags, "citation_date", "citation_online_date")))
	set.set("publication", "arXiv")
	set.set("arxiv", id)
	set.set("doi", first(tags, "citation_doi"))
	set.set("mainURL", wc.URL)
	if set.err != nil {
		return nil, set.err
	}
	return []*paper.Entity{draft}, nil
}
