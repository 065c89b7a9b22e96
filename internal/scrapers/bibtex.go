package scrapers

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/matsen/entryscrape/internal/bibtex"
	"github.com/matsen/entryscrape/internal/paper"
	"github.com/matsen/entryscrape/internal/payload"
	"github.com/matsen/entryscrape/internal/pdf"
)

var (
	bibYearPattern = regexp.MustCompile(`\d{4}`)
	doiURLPattern  = regexp.MustCompile(`(?i)^https?://(dx\.)?doi\.org/`)
)

// BibTeX turns BibTeX text, inline or in a .bib file, into one draft per entry.
type BibTeX struct {
	loader pdf.Loader
	logger *zerolog.Logger
}

// NewBibTeX creates the BibTeX scraper.
func NewBibTeX(loader pdf.Loader, logger *zerolog.Logger) *BibTeX {
	return &BibTeX{loader: loader, logger: logger}
}

// Accepts non-blank BibTeX payloads and local .bib/.bibtex files.
func (s *BibTeX) Accepts(p payload.Payload) bool {
	switch v := p.(type) {
	case payload.BibTeX:
		return strings.TrimSpace(v.Text) != ""
	case payload.File:
		ext := payload.FileType(v.URL)
		return payload.IsLocal(v.URL) && (ext == "bib" || ext == "bibtex")
	}
	return false
}

// Scrape parses every entry. Malformed entries are skipped with a warning;
// the call fails only when nothing could be parsed.
func (s *BibTeX) Scrape(ctx context.Context, p payload.Payload) ([]*paper.Entity, error) {
	if !s.Accepts(p) {
		return nil, nil
	}

	var text string
	switch v := p.(type) {
	case payload.BibTeX:
		text = v.Text
	case payload.File:
		data, err := s.loader.Read(payload.EraseProtocol(v.URL))
		if err != nil {
			return nil, err
		}
		text = string(data)
	}

	entries, err := bibtex.Parse(text)
	if err != nil {
		if len(entries) == 0 {
			return nil, err
		}
		s.logger.Warn().Err(err).Str("source", NameBibTeX).Msg("skipped malformed entries")
	}

	drafts := make([]*paper.Entity, 0, len(entries))
	for _, entry := range entries {
		draft, err := entryToDraft(entry)
		if err != nil {
			return nil, fmt.Errorf("entry %s: %w", entry.Key, err)
		}
		drafts = append(drafts, draft)
	}
	return drafts, nil
}

// entryToDraft maps a parsed BibTeX entry onto a new draft.
func entryToDraft(entry bibtex.Entry) (*paper.Entity, error) {
	draft := paper.New(true)
	set := newSetter(draft)

	field := func(name string) string {
		return bibtex.Decode(entry.Field(name))
	}

	set.set("title", field("title"))
	set.set("authors", paper.JoinAuthors(bibtex.DisplayNames(entry.Field("author"))))

	publication := field("journal")
	if publication == "" {
		publication = field("booktitle")
	}
	set.set("publication", publication)

	year := bibYearPattern.FindString(entry.Field("year"))
	if year == "" {
		year = bibYearPattern.FindString(entry.Field("date"))
	}
	set.set("pubTime", year)
	set.set("pubType", bibtex.PubType(entry.Type))

	set.set("doi", strings.TrimSpace(doiURLPattern.ReplaceAllString(entry.Field("doi"), "")))
	set.set("arxiv", arxivID(entry))
	set.set("pages", field("pages"))
	set.set("volume", field("volume"))
	set.set("number", field("number"))
	set.set("publisher", field("publisher"))

	if url := strings.TrimSpace(entry.Field("url")); url != "" {
		if doiURLPattern.MatchString(url) {
			if draft.DOI == "" {
				set.set("doi", doiURLPattern.ReplaceAllString(url, ""))
			}
		} else {
			set.set("mainURL", url)
		}
	}

	return draft, set.err
}

func arxivID(entry bibtex.Entry) string {
	if id := strings.TrimSpace(entry.Field("arxiv")); id != "" {
		return id
	}
	prefix := strings.ToLower(entry.Field("archiveprefix") + entry.Field("eprinttype"))
	if strings.Contains(prefix, "arxiv") {
		return strings.TrimSpace(entry.Field("eprint"))
	}
	return ""
}
