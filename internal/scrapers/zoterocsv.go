package scrapers

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/matsen/entryscrape/internal/bibtex"
	"github.com/matsen/entryscrape/internal/paper"
	"github.com/matsen/entryscrape/internal/payload"
	"github.com/matsen/entryscrape/internal/pdf"
)

// ErrNotZoteroExport is returned for CSV files without the Zotero header.
var ErrNotZoteroExport = errors.New("not a Zotero CSV export")

var extraArxivPattern = regexp.MustCompile(`(?im)^\s*arxiv:\s*(\S+)`)

// zoteroPubTypes maps Zotero item types onto entity pub types.
var zoteroPubTypes = map[string]int{
	"journalArticle":  paper.PubTypeJournal,
	"magazineArticle": paper.PubTypeJournal,
	"conferencePaper": paper.PubTypeConference,
	"book":            paper.PubTypeBook,
	"bookSection":     paper.PubTypeBook,
}

// ZoteroCSV reads Zotero CSV exports, one draft per row.
type ZoteroCSV struct {
	loader pdf.Loader
	logger *zerolog.Logger
}

// NewZoteroCSV creates the Zotero CSV scraper.
func NewZoteroCSV(loader pdf.Loader, logger *zerolog.Logger) *ZoteroCSV {
	return &ZoteroCSV{loader: loader, logger: logger}
}

// Accepts local .csv files.
func (s *ZoteroCSV) Accepts(p payload.Payload) bool {
	f, ok := p.(payload.File)
	return ok && payload.IsLocal(f.URL) && payload.FileType(f.URL) == "csv"
}

// Scrape returns a draft for every row with a title.
func (s *ZoteroCSV) Scrape(ctx context.Context, p payload.Payload) ([]*paper.Entity, error) {
	if !s.Accepts(p) {
		return nil, nil
	}
	loc := p.(payload.File).URL

	data, err := s.loader.Read(payload.EraseProtocol(loc))
	if err != nil {
		return nil, err
	}
	// Zotero writes a UTF-8 byte order mark.
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", payload.FileName(loc), err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(h)] = i
	}
	if _, ok := cols["Title"]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotZoteroExport, payload.FileName(loc))
	}
	if _, ok := cols["Item Type"]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotZoteroExport, payload.FileName(loc))
	}

	var drafts []*paper.Entity
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			line := 0
			if errors.As(err, &perr) {
				line = perr.StartLine
			}
			s.logger.Warn().Err(err).Str("source", NameZoteroCSV).Int("line", line).Msg("skipped unreadable row")
			continue
		}
		// Quoted cells may span lines, so ask the reader where the row began.
		line, _ := r.FieldPos(0)

		row := zoteroRow{cols: cols, record: record}
		if row.get("Title") == "" {
			s.logger.Warn().Str("source", NameZoteroCSV).Int("line", line).Msg("skipped row without title")
			continue
		}
		draft, err := row.draft()
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		drafts = append(drafts, draft)
	}
	return drafts, nil
}

type zoteroRow struct {
	cols   map[string]int
	record []string
}

func (r zoteroRow) get(col string) string {
	i, ok := r.cols[col]
	if !ok || i >= len(r.record) {
		return ""
	}
	return strings.TrimSpace(r.record[i])
}

// list splits a "; "-separated cell.
func (r zoteroRow) list(col string) []string {
	var out []string
	for _, part := range strings.Split(r.get(col), ";") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (r zoteroRow) draft() (*paper.Entity, error) {
	draft := paper.New(true)
	set := newSetter(draft)

	set.set("title", r.get("Title"))

	// Authors are "Last, First" separated by semicolons.
	var authors []string
	for _, a := range r.list("Author") {
		authors = append(authors, bibtex.ParseName(a).Display())
	}
	set.set("authors", paper.JoinAuthors(authors))

	set.set("publication", r.get("Publication Title"))
	set.set("pubTime", r.get("Publication Year"))
	if pt, ok := zoteroPubTypes[r.get("Item Type")]; ok {
		set.set("pubType", pt)
	} else {
		set.set("pubType", paper.PubTypeOthers)
	}
	set.set("doi", r.get("DOI"))
	set.set("pages", r.get("Pages"))
	set.set("volume", r.get("Volume"))
	set.set("number", r.get("Issue"))
	set.set("publisher", r.get("Publisher"))
	if m := extraArxivPattern.FindStringSubmatch(r.get("Extra")); m != nil {
		set.set("arxiv", m[1])
	}

	var tags []paper.Tag
	for _, name := range r.list("Manual Tags") {
		tags = append(tags, paper.NewTag(name, 1))
	}
	set.set("tags", tags)

	if files := r.list("File Attachments"); len(files) > 0 {
		set.set("mainURL", files[0])
		set.set("supURLs", files[1:])
	} else {
		set.set("mainURL", r.get("Url"))
	}

	return draft, set.err
}
