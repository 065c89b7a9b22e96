package pdf

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matsen/entryscrape/internal/pdf/pdftest"
)

func samplePaper() pdftest.Paper {
	return pdftest.Paper{
		Title:  "Phylogenetic Trees for Everyone",
		Author: "Jane Doe",
		Lines: []pdftest.Line{
			{Text: "Phylogenetic Trees for Everyone", Size: 20},
			{Text: "Jane Doe and Max Mustermann", Size: 12},
			{Text: "doi:10.1234/trees.5678.", Size: 9},
		},
		Pages: 3,
	}
}

func TestRecognize_FirstPageLayout(t *testing.T) {
	doc, err := Recognize(pdftest.Build(t, samplePaper()), 1)
	if err != nil {
		t.Fatalf("Recognize() error = %v", err)
	}

	if doc.TotalPages != 3 {
		t.Errorf("TotalPages = %d, want 3", doc.TotalPages)
	}
	if len(doc.Pages) != 1 {
		t.Fatalf("len(Pages) = %d, want 1", len(doc.Pages))
	}
	if doc.Metadata["Title"] != "Phylogenetic Trees for Everyone" {
		t.Errorf("Metadata[Title] = %q", doc.Metadata["Title"])
	}
	if doc.Metadata["Author"] != "Jane Doe" {
		t.Errorf("Metadata[Author] = %q", doc.Metadata["Author"])
	}

	page := doc.Pages[0]
	if page.Width < 611 || page.Width > 613 || page.Height < 791 || page.Height > 793 {
		t.Errorf("page size = %.1fx%.1f, want letter", page.Width, page.Height)
	}
	if len(page.Lines) != 3 {
		t.Fatalf("len(Lines) = %d, want 3: %q", len(page.Lines), doc.Text())
	}
	if got := page.Lines[0].Text(); got != "Phylogenetic Trees for Everyone" {
		t.Errorf("Lines[0].Text() = %q", got)
	}
	if page.Lines[0].FontSize() <= page.Lines[1].FontSize() {
		t.Errorf("title font %.1f not larger than author font %.1f",
			page.Lines[0].FontSize(), page.Lines[1].FontSize())
	}
	if len(page.Lines[1].Words) != 5 {
		t.Errorf("Lines[1] words = %d, want 5", len(page.Lines[1].Words))
	}
	if page.Lines[0].Words[0].YMin >= page.Lines[2].Words[0].YMin {
		t.Error("lines not ordered top to bottom")
	}
}

func TestRecognize_AllPages(t *testing.T) {
	doc, err := Recognize(pdftest.Build(t, samplePaper()), 0)
	if err != nil {
		t.Fatalf("Recognize() error = %v", err)
	}
	if len(doc.Pages) != 3 {
		t.Errorf("len(Pages) = %d, want 3", len(doc.Pages))
	}
}

func TestRecognize_NotAPDF(t *testing.T) {
	if _, err := Recognize([]byte("hello, not a pdf"), 1); err == nil {
		t.Error("Recognize() expected error for non-PDF data")
	}
}

func TestDocument_FindDOI(t *testing.T) {
	doc, err := Recognize(pdftest.Build(t, samplePaper()), 1)
	if err != nil {
		t.Fatalf("Recognize() error = %v", err)
	}
	if got := doc.FindDOI(); got != "10.1234/trees.5678" {
		t.Errorf("FindDOI() = %q, want 10.1234/trees.5678", got)
	}
}

func TestDocument_MarshalJSON(t *testing.T) {
	doc, err := Recognize(pdftest.Build(t, samplePaper()), 1)
	if err != nil {
		t.Fatalf("Recognize() error = %v", err)
	}
	doc.FileName = "trees.pdf"

	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var wire struct {
		TotalPages int               `json:"totalPages"`
		Metadata   map[string]string `json:"metadata"`
		FileName   string            `json:"fileName"`
		Pages      [][]json.RawMessage
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if wire.TotalPages != 3 || wire.FileName != "trees.pdf" {
		t.Errorf("wire header = %d, %q", wire.TotalPages, wire.FileName)
	}
	if len(wire.Pages) != 1 || len(wire.Pages[0]) != 3 {
		t.Fatalf("wire pages = %s", data)
	}

	var blocks [][][]json.RawMessage
	if err := json.Unmarshal(wire.Pages[0][2], &blocks); err != nil {
		t.Fatalf("blocks: %v", err)
	}
	word := blocks[0][0][0]
	var tuple []any
	if err := json.Unmarshal(word, &tuple); err != nil {
		t.Fatalf("word: %v", err)
	}
	if len(tuple) != 14 || tuple[13] != "Phylogenetic" {
		t.Errorf("first word tuple = %v", tuple)
	}
}

func TestFindDOI(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"See https://doi.org/10.1038/nature12373.", "10.1038/nature12373"},
		{"DOI: 10.1093/molbev/msu300;", "10.1093/molbev/msu300"},
		{"(10.1101/2020.01.01.123456)", "10.1101/2020.01.01.123456"},
		{"no identifier here", ""},
		{"10.12/short", ""},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := FindDOI(tt.text); got != tt.want {
				t.Errorf("FindDOI(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestLoader_Read(t *testing.T) {
	dir := t.TempDir()
	path := pdftest.Write(t, dir, "a.pdf", samplePaper())

	data, err := Loader{}.Read(path)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if !strings.HasPrefix(string(data), "%PDF") {
		t.Errorf("Read() returned %q...", data[:8])
	}

	if _, err := (Loader{Root: dir}).Read("a.pdf"); err != nil {
		t.Errorf("Read(relative) error = %v", err)
	}

	if _, err := (Loader{}).Read(filepath.Join(dir, "missing.pdf")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Read(missing) error = %v, want not exist", err)
	}
	if _, err := (Loader{}).Read(dir); err == nil {
		t.Error("Read(dir) expected error")
	}
	if _, err := (Loader{MaxSize: 16}).Read(path); !errors.Is(err, ErrTooLarge) {
		t.Errorf("Read(large) error = %v, want ErrTooLarge", err)
	}
}
