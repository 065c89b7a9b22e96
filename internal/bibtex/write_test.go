package bibtex

import (
	"strings"
	"testing"

	"github.com/matsen/entryscrape/internal/paper"
)

func TestToBibTeX_Article(t *testing.T) {
	e := paper.New(false)
	e.Title = "Trees & Forests"
	e.Authors = "John Smith, Jane van Doe"
	e.Publication = "Nature"
	e.PubTime = "2026"
	e.PubType = paper.PubTypeJournal
	e.DOI = "10.1234/test"
	e.Volume = "12"
	e.Pages = "1--10"
	e.MainURL = "/home/me/papers/trees.pdf"

	got := ToBibTeX(e)

	wants := []string{
		"@article{Smith2026-tf,",
		"author = {Smith, John and van Doe, Jane}",
		`title = {Trees \& Forests}`,
		"journal = {Nature}",
		"year = {2026}",
		"volume = {12}",
		"pages = {1--10}",
		"doi = {10.1234/test}",
	}
	for _, want := range wants {
		if !strings.Contains(got, want) {
			t.Errorf("ToBibTeX() missing %q, got:\n%s", want, got)
		}
	}
	if strings.Contains(got, "url =") {
		t.Errorf("ToBibTeX() wrote a local path as url:\n%s", got)
	}
	if !strings.HasSuffix(strings.TrimSpace(got), "}") {
		t.Errorf("ToBibTeX() should end with }, got:\n%s", got)
	}
}

func TestToBibTeX_ConferenceAndArxiv(t *testing.T) {
	e := paper.New(false)
	e.Title = "Attention"
	e.Authors = "Ada Lovelace"
	e.Publication = "Proc. NeurIPS"
	e.PubType = paper.PubTypeConference
	e.Arxiv = "1706.03762"
	e.MainURL = "https://arxiv.org/abs/1706.03762"

	got := ToBibTeX(e)
	for _, want := range []string{
		"@inproceedings{Lovelace9999-ax,",
		"booktitle = {Proc. NeurIPS}",
		"eprint = {1706.03762}",
		"url = {https://arxiv.org/abs/1706.03762}",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("ToBibTeX() missing %q, got:\n%s", want, got)
		}
	}
}

func TestToBibTeX_RoundTrip(t *testing.T) {
	e := paper.New(false)
	e.Title = "The $O(n)$ bound"
	e.Authors = "Jörg Müller, Ann Lee"
	e.PubTime = "2019"

	entries, err := Parse(ToBibTeX(e))
	if err != nil || len(entries) != 1 {
		t.Fatalf("Parse(ToBibTeX()) = %v, %v", entries, err)
	}
	if got := Decode(entries[0].Field("title")); got != e.Title {
		t.Errorf("title = %q, want %q", got, e.Title)
	}
	if got := strings.Join(DisplayNames(entries[0].Field("author")), ", "); got != e.Authors {
		t.Errorf("authors = %q, want %q", got, e.Authors)
	}
}

func TestPubTypeMapping(t *testing.T) {
	tests := []struct {
		entryType string
		want      int
	}{
		{"article", paper.PubTypeJournal},
		{"InProceedings", paper.PubTypeConference},
		{"book", paper.PubTypeBook},
		{"misc", paper.PubTypeOthers},
		{"phdthesis", paper.PubTypeOthers},
	}

	for _, tt := range tests {
		t.Run(tt.entryType, func(t *testing.T) {
			if got := PubType(tt.entryType); got != tt.want {
				t.Errorf("PubType(%q) = %d, want %d", tt.entryType, got, tt.want)
			}
		})
	}
	if EntryType(paper.PubTypeBook) != "book" || EntryType(99) != "article" {
		t.Error("EntryType() mapping mismatch")
	}
}

func TestCiteKey_Fallbacks(t *testing.T) {
	e := paper.New(false)
	if got := CiteKey(e); got != "Unknown9999-xx" {
		t.Errorf("CiteKey(empty) = %q", got)
	}
}
