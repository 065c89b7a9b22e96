package bibtex

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/matsen/entryscrape/internal/paper"
)

var yearPattern = regexp.MustCompile(`\d{4}`)

// ToBibTeX renders a draft as a BibTeX entry.
func ToBibTeX(e *paper.Entity) string {
	entryType := EntryType(e.PubType)
	var b strings.Builder

	fmt.Fprintf(&b, "@%s{%s,\n", entryType, CiteKey(e))

	if authors := e.AuthorList(); len(authors) > 0 {
		fmt.Fprintf(&b, "  author = {%s},\n", formatAuthors(authors))
	}
	fmt.Fprintf(&b, "  title = {%s},\n", escapeLatex(e.Title))

	if e.Publication != "" {
		field := "journal"
		switch entryType {
		case "inproceedings":
			field = "booktitle"
		case "misc", "book":
			field = "howpublished"
		}
		fmt.Fprintf(&b, "  %s = {%s},\n", field, escapeLatex(e.Publication))
	}
	if year := yearPattern.FindString(e.PubTime); year != "" {
		fmt.Fprintf(&b, "  year = {%s},\n", year)
	}

	optional := []struct{ name, value string }{
		{"volume", e.Volume},
		{"number", e.Number},
		{"pages", e.Pages},
		{"publisher", e.Publisher},
	}
	for _, f := range optional {
		if f.value != "" {
			fmt.Fprintf(&b, "  %s = {%s},\n", f.name, escapeLatex(f.value))
		}
	}
	if e.DOI != "" {
		fmt.Fprintf(&b, "  doi = {%s},\n", e.DOI)
	}
	if e.Arxiv != "" {
		fmt.Fprintf(&b, "  eprint = {%s},\n  archiveprefix = {arXiv},\n", e.Arxiv)
	}
	if e.MainURL != "" && strings.HasPrefix(e.MainURL, "http") {
		fmt.Fprintf(&b, "  url = {%s},\n", e.MainURL)
	}

	b.WriteString("}\n")
	return b.String()
}

// ToBibTeXList renders drafts separated by blank lines.
func ToBibTeXList(entities []*paper.Entity) string {
	entries := make([]string, 0, len(entities))
	for _, e := range entities {
		entries = append(entries, ToBibTeX(e))
	}
	return strings.Join(entries, "\n")
}

// EntryType maps an entity pubType onto a BibTeX entry type.
func EntryType(pubType int) string {
	switch pubType {
	case paper.PubTypeConference:
		return "inproceedings"
	case paper.PubTypeBook:
		return "book"
	case paper.PubTypeOthers:
		return "misc"
	}
	return "article"
}

// PubType maps a BibTeX entry type onto an entity pubType.
func PubType(entryType string) int {
	switch strings.ToLower(entryType) {
	case "article":
		return paper.PubTypeJournal
	case "inproceedings", "conference", "proceedings":
		return paper.PubTypeConference
	case "book", "inbook", "incollection":
		return paper.PubTypeBook
	}
	return paper.PubTypeOthers
}

// CiteKey builds a key from the first author's last name, the year and the
// first two significant title words (e.g. "Zhang2018-vi").
func CiteKey(e *paper.Entity) string {
	lastName := "Unknown"
	if authors := e.AuthorList(); len(authors) > 0 {
		if last := sanitizeForCiteKey(FromDisplay(authors[0]).Last); last != "" {
			lastName = last
		}
	}

	year := yearPattern.FindString(e.PubTime)
	if year == "" {
		year = "9999"
	}

	return fmt.Sprintf("%s%s-%s", lastName, year, titleSuffix(e.Title))
}

func sanitizeForCiteKey(s string) string {
	var result strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			result.WriteRune(r)
		}
	}
	return result.String()
}

func titleSuffix(title string) string {
	stopWords := map[string]bool{"a": true, "an": true, "the": true, "of": true, "and": true, "in": true, "on": true, "for": true, "to": true, "with": true}

	var suffix strings.Builder
	for _, word := range strings.Fields(strings.ToLower(title)) {
		if stopWords[word] {
			continue
		}
		for _, r := range word {
			if unicode.IsLetter(r) && r < unicode.MaxASCII {
				suffix.WriteRune(r)
				break
			}
		}
		if suffix.Len() >= 2 {
			break
		}
	}
	for suffix.Len() < 2 {
		suffix.WriteByte('x')
	}
	return suffix.String()
}

// formatAuthors renders "First Last" names as "Last, First and Last, First".
func formatAuthors(authors []string) string {
	formatted := make([]string, 0, len(authors))
	for _, a := range authors {
		n := FromDisplay(a)
		if n.Last == "" {
			continue
		}
		formatted = append(formatted, escapeLatex(n.Sortable()))
	}
	return strings.Join(formatted, " and ")
}

// escapeLatex escapes special LaTeX characters outside $...$ math.
func escapeLatex(s string) string {
	replacer := strings.NewReplacer(
		"&", `\&`,
		"%", `\%`,
		"#", `\#`,
		"_", `\_`,
		"{", `\{`,
		"}", `\}`,
		"~", `\textasciitilde{}`,
		"^", `\textasciicircum{}`,
	)

	parts := strings.Split(s, "$")
	if len(parts)%2 == 0 {
		// unbalanced: escape everything
		return strings.ReplaceAll(replacer.Replace(s), "$", `\$`)
	}
	for i := 0; i < len(parts); i += 2 {
		parts[i] = replacer.Replace(parts[i])
	}
	return strings.Join(parts, "$")
}
