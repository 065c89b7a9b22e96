package scrapers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/matsen/entryscrape/internal/paper"
	"github.com/matsen/entryscrape/internal/payload"
)

// ErrNoIEEEMetadata is returned when a document page has no embedded metadata.
var ErrNoIEEEMetadata = errors.New("no IEEE document metadata")

var (
	ieeePathPattern     = regexp.MustCompile(`^/(?:abstract/)?document/(\d+)/?`)
	ieeeMetadataPattern = regexp.MustCompile(`(?m)xplGlobal\.document\.metadata\s*=\s*(\{.*\})\s*;\s*$`)
)

// ieeeMetadata is the subset of the embedded document metadata we use.
type ieeeMetadata struct {
	Title            string `json:"title"`
	DisplayDocTitle  string `json:"displayDocTitle"`
	PublicationTitle string `json:"publicationTitle"`
	PublicationYear  string `json:"publicationYear"`
	DOI              string `json:"doi"`
	StartPage        string `json:"startPage"`
	EndPage          string `json:"endPage"`
	Volume           string `json:"volume"`
	Issue            string `json:"issue"`
	Publisher        string `json:"publisher"`
	ContentType      string `json:"contentType"`
	Authors          []struct {
		Name      string `json:"name"`
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
	} `json:"authors"`
}

// IEEE reads IEEE Xplore document pages.
type IEEE struct {
	net Fetcher
}

// NewIEEE creates the IEEE Xplore scraper.
func NewIEEE(net Fetcher) *IEEE {
	return &IEEE{net: net}
}

// Accepts ieeexplore.ieee.org/document/<n> pages.
func (s *IEEE) Accepts(p payload.Payload) bool {
	_, u, ok := webPayload(p)
	return ok && strings.EqualFold(u.Host, "ieeexplore.ieee.org") && ieeePathPattern.MatchString(u.Path)
}

// Scrape decodes the metadata object the page embeds in its scripts.
func (s *IEEE) Scrape(ctx context.Context, p payload.Payload) ([]*paper.Entity, error) {
	if !s.Accepts(p) {
		return nil, nil
	}
	wc := p.(payload.WebContent)

	html, err := pageHTML(ctx, s.net, wc)
	if err != nil {
		return nil, err
	}
	m := ieeeMetadataPattern.FindStringSubmatch(html)
	if m == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoIEEEMetadata, wc.URL)
	}
	var meta ieeeMetadata
	if err := json.Unmarshal([]byte(m[1]), &meta); err != nil {
		return nil, fmt.Errorf("decoding IEEE metadata: %w", err)
	}

	title := meta.Title
	if title == "" {
		title = meta.DisplayDocTitle
	}
	authors := make([]string, 0, len(meta.Authors))
	for _, a := range meta.Authors {
		name := strings.TrimSpace(a.FirstName + " " + a.LastName)
		if name == "" {
			name = strings.TrimSpace(a.Name)
		}
		if name != "" {
			authors = append(authors, name)
		}
	}
	pages := meta.StartPage
	if meta.EndPage != "" && meta.EndPage != meta.StartPage {
		pages += "-" + meta.EndPage
	}

	draft := paper.New(true)
	set := newSetter(draft)
	set.set("title", title)
	set.set("authors", paper.JoinAuthors(authors))
	set.set("publication", meta.PublicationTitle)
	set.set("pubTime", bibYearPattern.FindString(meta.PublicationYear))
	set.set("pubType", ieeePubType(meta.ContentType))
	set.set("doi", meta.DOI)
	set.set("pages", pages)
	set.set("volume", meta.Volume)
	set.set("number", meta.Issue)
	set.set("publisher", meta.Publisher)
	set.set("mainURL", wc.URL)
	if set.err != nil {
		return nil, set.err
	}
	return []*paper.Entity{draft}, nil
}

func ieeePubType(contentType string) int {
	ct := strings.ToLower(contentType)
	switch {
	case strings.Contains(ct, "conference"):
		return paper.PubTypeConference
	case strings.Contains(ct, "journal"), strings.Contains(ct, "periodical"), strings.Contains(ct, "magazine"):
		return paper.PubTypeJournal
	case strings.Contains(ct, "book"):
		return paper.PubTypeBook
	}
	return paper.PubTypeOthers
}
