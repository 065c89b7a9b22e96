package scrapers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/matsen/entryscrape/internal/paper"
	"github.com/matsen/entryscrape/internal/payload"
	"github.com/matsen/entryscrape/internal/pdf"
)

// FlexibleString can unmarshal from either string or number JSON values.
type FlexibleString string

func (f *FlexibleString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = ""
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexibleString(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*f = FlexibleString(n.String())
		return nil
	}

	return fmt.Errorf("cannot unmarshal %s into FlexibleString", string(data))
}

func (f FlexibleString) String() string {
	return string(f)
}

// paperpileEntry is a single entry from a Paperpile JSON export.
type paperpileEntry struct {
	ID        string         `json:"_id"`
	Citekey   string         `json:"citekey"`
	DOI       string         `json:"doi"`
	Title     string         `json:"title"`
	Journal   string         `json:"journal"`
	Pubtype   string         `json:"pubtype"`
	Volume    FlexibleString `json:"volume"`
	Issue     FlexibleString `json:"issue"`
	Pages     FlexibleString `json:"pages"`
	Publisher string         `json:"publisher"`
	ArxivID   string         `json:"arxiv_id"`
	Published struct {
		Year  FlexibleString `json:"year"`
		Month FlexibleString `json:"month"`
	} `json:"published"`
	Author []struct {
		First string `json:"first"`
		Last  string `json:"last"`
	} `json:"author"`
	Labels      []string `json:"labelsNamed"`
	Folders     []string `json:"foldersNamed"`
	Attachments []struct {
		ArticlePDF int    `json:"article_pdf"` // 1 = main PDF, 0 = supplement
		Filename   string `json:"filename"`
	} `json:"attachments"`
}

// paperpilePubTypes maps Paperpile publication types onto entity pub types.
var paperpilePubTypes = map[string]int{
	"JOUR": paper.PubTypeJournal,
	"CONF": paper.PubTypeConference,
	"BOOK": paper.PubTypeBook,
	"CHAP": paper.PubTypeBook,
}

// Paperpile reads Paperpile JSON exports, one draft per titled entry.
type Paperpile struct {
	loader pdf.Loader
	logger *zerolog.Logger
}

// NewPaperpile creates the Paperpile scraper.
func NewPaperpile(loader pdf.Loader, logger *zerolog.Logger) *Paperpile {
	return &Paperpile{loader: loader, logger: logger}
}

// Accepts local .json files.
func (s *Paperpile) Accepts(p payload.Payload) bool {
	f, ok := p.(payload.File)
	return ok && payload.IsLocal(f.URL) && payload.FileType(f.URL) == "json"
}

// Scrape parses the export. A JSON file that is not an array of entries is
// reported as an error.
func (s *Paperpile) Scrape(ctx context.Context, p payload.Payload) ([]*paper.Entity, error) {
	if !s.Accepts(p) {
		return nil, nil
	}
	loc := p.(payload.File).URL

	data, err := s.loader.Read(payload.EraseProtocol(loc))
	if err != nil {
		return nil, err
	}
	if trimmed := bytes.TrimSpace(data); len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("parsing Paperpile JSON %s: not an array", payload.FileName(loc))
	}

	var entries []paperpileEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing Paperpile JSON: %w", err)
	}

	var drafts []*paper.Entity
	for i, entry := range entries {
		if strings.TrimSpace(entry.Title) == "" {
			s.logger.Warn().Str("source", NamePaperpile).
				Int("entry", i+1).Str("citekey", entry.Citekey).
				Msg("skipped entry without title")
			continue
		}
		draft, err := paperpileEntryToDraft(entry)
		if err != nil {
			return nil, fmt.Errorf("entry %d (%s): %w", i+1, entry.Citekey, err)
		}
		drafts = append(drafts, draft)
	}
	return drafts, nil
}

func paperpileEntryToDraft(entry paperpileEntry) (*paper.Entity, error) {
	draft := paper.New(true)
	set := newSetter(draft)

	authors := make([]string, 0, len(entry.Author))
	for _, a := range entry.Author {
		authors = append(authors, strings.TrimSpace(a.First+" "+a.Last))
	}

	set.set("title", entry.Title)
	set.set("authors", paper.JoinAuthors(authors))
	set.set("publication", entry.Journal)
	if year := entry.Published.Year.String(); year != "" {
		if _, err := strconv.Atoi(year); err != nil {
			return nil, fmt.Errorf("invalid year: %s", year)
		}
		set.set("pubTime", year)
	}
	if pt, ok := paperpilePubTypes[strings.ToUpper(entry.Pubtype)]; ok {
		set.set("pubType", pt)
	} else if entry.Pubtype != "" {
		set.set("pubType", paper.PubTypeOthers)
	}
	set.set("doi", entry.DOI)
	set.set("arxiv", entry.ArxivID)
	set.set("volume", entry.Volume.String())
	set.set("number", entry.Issue.String())
	set.set("pages", entry.Pages.String())
	set.set("publisher", entry.Publisher)

	var tags []paper.Tag
	for _, l := range entry.Labels {
		tags = append(tags, paper.NewTag(l, 1))
	}
	set.set("tags", tags)

	var folders []paper.Folder
	for _, f := range entry.Folders {
		folders = append(folders, paper.NewFolder(f, 1))
	}
	set.set("folders", folders)

	var supplements []string
	for _, att := range entry.Attachments {
		if att.ArticlePDF == 1 && draft.MainURL == "" {
			set.set("mainURL", att.Filename)
		} else {
			supplements = append(supplements, att.Filename)
		}
	}
	set.set("supURLs", supplements)

	return draft, set.err
}
