package scrapers

import (
	"context"

	"github.com/matsen/entryscrape/internal/paper"
	"github.com/matsen/entryscrape/internal/payload"
)

// Embed reads the citation meta tags that publisher pages embed, Highwire
// (citation_*) first, then Dublin Core (dc.*).
type Embed struct {
	net Fetcher
}

// NewEmbed creates the embedded metadata scraper.
func NewEmbed(net Fetcher) *Embed {
	return &Embed{net: net}
}

// Accepts http(s) pages not handled by a more specific web scraper.
func (s *Embed) Accepts(p payload.Payload) bool {
	if _, _, ok := webPayload(p); !ok {
		return false
	}
	for _, specific := range []interface{ Accepts(payload.Payload) bool }{
		&Arxiv{}, &GoogleScholar{}, &IEEE{}, &PDFURL{},
	} {
		if specific.Accepts(p) {
			return false
		}
	}
	return true
}

// Scrape returns no drafts for pages without a title tag.
func (s *Embed) Scrape(ctx context.Context, p payload.Payload) ([]*paper.Entity, error) {
	if !s.Accepts(p) {
		return nil, nil
	}
	wc := p.(payload.WebContent)

	doc, err := document(ctx, s.net, wc)
	if err != nil {
		return nil, err
	}
	tags := metaTags(doc)

	title := first(tags, "citation_title", "dc.title")
	if title == "" {
		return nil, nil
	}

	authors := metaAuthors(tags, "citation_author", "dc.creator")
	date := first(tags, "citation_publication_date", "citation_date", "citation_online_date", "dc.date", "dc.date.issued")
	publication := first(tags, "citation_journal_title", "citation_conference_title", "citation_book_title", "dc.source", "dc.relation.ispartof")

	pubType := paper.PubTypeOthers
	switch {
	case first(tags, "citation_journal_title") != "":
		pubType = paper.PubTypeJournal
	case first(tags, "citation_conference_title") != "":
		pubType = paper.PubTypeConference
	case first(tags, "citation_book_title", "citation_isbn") != "":
		pubType = paper.PubTypeBook
	}

	pages := first(tags, "citation_firstpage")
	if last := first(tags, "citation_lastpage"); pages != "" && last != "" && last != pages {
		pages += "-" + last
	}

	draft := paper.New(true)
	set := newSetter(draft)
	set.set("title", title)
	set.set("authors", paper.JoinAuthors(authors))
	set.set("publication", publication)
	set.set("pubTime", bibYearPattern.FindString(date))
	set.set("pubType", pubType)
	set.set("doi", doiURLPattern.ReplaceAllString(first(tags, "citation_doi", "dc.identifier.doi"), ""))
	set.set("arxiv", first(tags, "citation_arxiv_id"))
	set.set("pages", pages)
	set.set("volume", first(tags, "citation_volume"))
	set.set("number", first(tags, "citation_issue"))
	set.set("publisher", first(tags, "citation_publisher", "dc.publisher"))
	set.set("mainURL", first(tags, "citation_pdf_url"))
	if draft.MainURL == "" {
		set.set("mainURL", wc.URL)
	}
	if set.err != nil {
		return nil, set.err
	}
	return []*paper.Entity{draft}, nil
}
