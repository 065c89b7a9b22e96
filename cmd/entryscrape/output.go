package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/matsen/entryscrape/internal/bibtex"
	"github.com/matsen/entryscrape/internal/paper"
)

// Output formats accepted by --format.
const (
	formatJSON   = "json"
	formatBibTeX = "bibtex"
)

// Title truncation length in human summaries.
const TitleMaxLen = 70

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	return writeJSON(os.Stdout, v)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	os.Exit(code)
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ScraperInfo describes one scraper in the scrapers listing.
type ScraperInfo struct {
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
}

// writeDrafts writes drafts as BibTeX, a human summary, or JSON.
func writeDrafts(w io.Writer, drafts []*paper.Entity) error {
	switch {
	case outputFormat == formatBibTeX:
		// BibTeX is always text output, never JSON
		_, err := io.WriteString(w, bibtex.ToBibTeXList(drafts))
		return err
	case humanOutput:
		_, err := io.WriteString(w, formatDraftsHuman(drafts))
		return err
	}
	return writeJSON(w, drafts)
}

// formatDraftsHuman summarizes drafts, one numbered block each.
func formatDraftsHuman(drafts []*paper.Entity) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d entr%s\n", len(drafts), plural(len(drafts), "y", "ies"))
	for i, d := range drafts {
		title := d.Title
		if title == "" {
			title = "(untitled)"
		}
		fmt.Fprintf(&sb, "\n%d. %s\n", i+1, truncateString(title, TitleMaxLen))
		if d.Authors != "" {
			fmt.Fprintf(&sb, "   %s\n", formatAuthorsShort(paper.SplitAuthors(d.Authors), 3))
		}
		var meta []string
		if d.Publication != "" {
			meta = append(meta, d.Publication)
		}
		if d.PubTime != "" {
			meta = append(meta, d.PubTime)
		}
		if len(meta) > 0 {
			fmt.Fprintf(&sb, "   %s\n", strings.Join(meta, ", "))
		}
		if d.DOI != "" {
			fmt.Fprintf(&sb, "   doi: %s\n", d.DOI)
		}
		if d.Arxiv != "" {
			fmt.Fprintf(&sb, "   arXiv: %s\n", d.Arxiv)
		}
		if d.MainURL != "" {
			fmt.Fprintf(&sb, "   file: %s\n", d.MainURL)
		}
	}
	return sb.String()
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// truncateString truncates a string to maxLen, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}

// formatAuthorsShort formats authors with "et al." for more than maxCount.
func formatAuthorsShort(authors []string, maxCount int) string {
	if len(authors) == 0 {
		return ""
	}

	var names []string
	for i, a := range authors {
		if i >= maxCount {
			names = append(names, "et al.")
			break
		}
		names = append(names, a)
	}
	return strings.Join(names, ", ")
}
