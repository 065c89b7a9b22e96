package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matsen/entryscrape/internal/config"
	"github.com/matsen/entryscrape/internal/paper"
	"github.com/matsen/entryscrape/internal/payload"
	"github.com/matsen/entryscrape/internal/scrapers"
)

const testBib = `@article{doe2021,
  author  = {Doe, Jane and Mustermann, Max and Smith, John and Lee, Kim},
  title   = {Phylogenetic Trees for Everyone},
  journal = {Journal of Trees},
  year    = {2021},
  doi     = {10.1234/trees.5678},
}`

func TestApp_Scrape(t *testing.T) {
	dir := t.TempDir()
	bibPath := filepath.Join(dir, "refs.bib")
	if err := os.WriteFile(bibPath, []byte(testBib), 0644); err != nil {
		t.Fatal(err)
	}

	c := config.Default()
	c.TempDir = dir
	c.DisabledScrapers = []string{scrapers.NamePDFURL}
	a, err := newApp(c)
	if err != nil {
		t.Fatalf("newApp() error = %v", err)
	}
	defer a.close()

	if _, ok := a.registry.Get(scrapers.NamePDFURL); ok {
		t.Error("disabled scraper registered")
	}

	drafts, err := a.scrape(context.Background(), []payload.Payload{
		payload.BibTeX{Text: testBib},
		payload.Unknown{Type: "nope"},
		payload.File{URL: bibPath},
	})
	if err != nil {
		t.Fatalf("scrape() error = %v", err)
	}
	if len(drafts) != 2 {
		t.Fatalf("len(drafts) = %d, want 2", len(drafts))
	}
	for _, d := range drafts {
		if d.Title != "Phylogenetic Trees for Everyone" || d.DOI != "10.1234/trees.5678" {
			t.Errorf("draft = %q %q", d.Title, d.DOI)
		}
	}
}

func TestApp_ScrapeEmpty(t *testing.T) {
	a, err := newApp(config.Default())
	if err != nil {
		t.Fatalf("newApp() error = %v", err)
	}
	defer a.close()

	drafts, err := a.scrape(context.Background(), nil)
	if err != nil || drafts == nil || len(drafts) != 0 {
		t.Errorf("scrape(nil) = %v, %v, want empty", drafts, err)
	}
}

func TestNewApp_UnknownDisabled(t *testing.T) {
	c := config.Default()
	c.DisabledScrapers = []string{"webcontent-cnki"}
	if _, err := newApp(c); err == nil {
		t.Error("newApp() error = nil, want unknown scraper error")
	}
}

func TestFilePayloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "paper.pdf")
	if err := os.WriteFile(path, []byte("%PDF"), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := filePayloads([]string{path})
	if err != nil {
		t.Fatalf("filePayloads() error = %v", err)
	}
	if len(got) != 1 || got[0].(payload.File).URL != path {
		t.Errorf("filePayloads() = %v", got)
	}

	for _, bad := range []string{filepath.Join(dir, "missing.pdf"), dir} {
		if _, err := filePayloads([]string{bad}); err == nil {
			t.Errorf("filePayloads(%q) error = nil", bad)
		}
	}
}

func TestURLPayloads(t *testing.T) {
	got, err := urlPayloads([]string{"https://arxiv.org/abs/2106.15928"}, "a=b")
	if err != nil {
		t.Fatalf("urlPayloads() error = %v", err)
	}
	want := payload.WebContent{URL: "https://arxiv.org/abs/2106.15928", Cookies: "a=b"}
	if len(got) != 1 || got[0] != want {
		t.Errorf("urlPayloads() = %v, want [%v]", got, want)
	}

	if _, err := urlPayloads([]string{"ftp://example.org/x"}, ""); err == nil {
		t.Error("urlPayloads(ftp) error = nil")
	}
}

func TestReadBatch(t *testing.T) {
	stdin := strings.NewReader(`[{"type":"bibtex","value":"x"}]`)
	for _, args := range [][]string{nil, {"-"}} {
		stdin.Seek(0, 0)
		data, err := readBatch(stdin, args)
		if err != nil || !strings.HasPrefix(string(data), "[") {
			t.Errorf("readBatch(%v) = %q, %v", args, data, err)
		}
	}
	if _, err := readBatch(stdin, []string{filepath.Join(t.TempDir(), "missing.json")}); err == nil {
		t.Error("readBatch(missing) error = nil")
	}
}

func TestWriteDrafts(t *testing.T) {
	d := paper.New(false)
	d.Title = "Phylogenetic Trees for Everyone"
	d.Authors = "Jane Doe, Max Mustermann, John Smith, Kim Lee"
	d.Publication = "Journal of Trees"
	d.PubTime = "2021"
	d.DOI = "10.1234/trees.5678"
	drafts := []*paper.Entity{d}

	defer func() {
		outputFormat, humanOutput = formatJSON, false
	}()

	t.Run("json", func(t *testing.T) {
		outputFormat, humanOutput = formatJSON, false
		var buf bytes.Buffer
		if err := writeDrafts(&buf, drafts); err != nil {
			t.Fatal(err)
		}
		var got []map[string]any
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("output is not JSON: %v", err)
		}
		if len(got) != 1 || got[0]["title"] != d.Title {
			t.Errorf("output = %s", buf.String())
		}
	})

	t.Run("human", func(t *testing.T) {
		outputFormat, humanOutput = formatJSON, true
		var buf bytes.Buffer
		if err := writeDrafts(&buf, drafts); err != nil {
			t.Fatal(err)
		}
		out := buf.String()
		for _, want := range []string{
			"Found 1 entry",
			"1. Phylogenetic Trees for Everyone",
			"Jane Doe, Max Mustermann, John Smith, et al.",
			"Journal of Trees, 2021",
			"doi: 10.1234/trees.5678",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("bibtex", func(t *testing.T) {
		outputFormat, humanOutput = formatBibTeX, true
		var buf bytes.Buffer
		if err := writeDrafts(&buf, drafts); err != nil {
			t.Fatal(err)
		}
		if !strings.HasPrefix(buf.String(), "@article{Doe2021-") {
			t.Errorf("output = %s", buf.String())
		}
	})
}

func TestScraperInfos(t *testing.T) {
	infos := scraperInfos([]string{scrapers.NameEmbed})
	if len(infos) != len(scrapers.Names()) {
		t.Fatalf("len(infos) = %d", len(infos))
	}
	for _, info := range infos {
		if info.Enabled == (info.Name == scrapers.NameEmbed) {
			t.Errorf("%s enabled = %v", info.Name, info.Enabled)
		}
	}
}

func TestTruncateString(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly ten", 11, "exactly ten"},
		{"a longer title here", 10, "a longe..."},
		{"Müller über alles", 8, "Mülle..."},
	}
	for _, tt := range tests {
		if got := truncateString(tt.in, tt.max); got != tt.want {
			t.Errorf("truncateString(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}
