package bibtex

import (
	"strings"
	"unicode"
)

// Common name suffixes to keep with the last name.
var nameSuffixes = map[string]bool{
	"jr":   true,
	"jr.":  true,
	"sr":   true,
	"sr.":  true,
	"ii":   true,
	"iii":  true,
	"iv":   true,
	"phd":  true,
	"ph.d": true,
	"md":   true,
	"m.d":  true,
}

// Name is a person name split into its BibTeX parts.
type Name struct {
	First string
	Von   string // lower-case particles such as "van der"
	Last  string
	Jr    string
}

// Display returns the name as "First von Last Jr".
func (n Name) Display() string {
	parts := make([]string, 0, 4)
	for _, p := range []string{n.First, n.Von, n.Last, n.Jr} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// Sortable returns the name as "von Last, Jr, First".
func (n Name) Sortable() string {
	last := n.Last
	if n.Von != "" {
		last = n.Von + " " + last
	}
	var b strings.Builder
	b.WriteString(last)
	if n.Jr != "" {
		b.WriteString(", " + n.Jr)
	}
	if n.First != "" {
		b.WriteString(", " + n.First)
	}
	return b.String()
}

// SplitNames splits an author or editor field on top-level "and".
func SplitNames(field string) []string {
	var names []string
	depth := 0
	start := 0
	for i := 0; i < len(field); i++ {
		switch field[i] {
		case '{':
			depth++
		case '}':
			depth--
		default:
			if depth == 0 && isAndAt(field, i) {
				names = appendName(names, field[start:i])
				i += 4
				start = i
			}
		}
	}
	return appendName(names, field[start:])
}

// isAndAt reports whether field[i:] starts with " and " (any case and spacing).
func isAndAt(field string, i int) bool {
	if !unicode.IsSpace(rune(field[i])) || i+5 > len(field) {
		return false
	}
	return strings.EqualFold(field[i+1:i+4], "and") && unicode.IsSpace(rune(field[i+4]))
}

func appendName(names []string, s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return names
	}
	return append(names, s)
}

// ParseName splits one BibTeX name. It understands "Last, First",
// "Last, Jr, First" and "First von Last". A fully braced name such as
// "{World Health Organization}" is kept whole as the last name.
func ParseName(raw string) Name {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Name{}
	}

	parts := splitTopLevel(raw, ',')
	switch len(parts) {
	case 1:
		return parseFirstLast(raw)
	case 2:
		von, last := splitVon(strings.Fields(parts[0]))
		return Name{First: Decode(parts[1]), Von: von, Last: last}
	default:
		von, last := splitVon(strings.Fields(parts[0]))
		return Name{First: Decode(parts[2]), Von: von, Last: last, Jr: Decode(parts[1])}
	}
}

// parseFirstLast handles the "First von Last" form.
func parseFirstLast(raw string) Name {
	words := fieldsTopLevel(raw)
	if len(words) == 0 {
		return Name{}
	}
	if len(words) == 1 {
		return Name{Last: Decode(words[0])}
	}

	var jr string
	if len(words) > 2 && nameSuffixes[strings.ToLower(words[len(words)-1])] {
		jr = words[len(words)-1]
		words = words[:len(words)-1]
	}

	// First lower-case word starts the von part; the last word is always Last.
	vonStart := -1
	for i := 0; i < len(words)-1; i++ {
		if isParticle(words[i]) {
			vonStart = i
			break
		}
	}

	if vonStart < 0 {
		return Name{
			First: Decode(strings.Join(words[:len(words)-1], " ")),
			Last:  Decode(words[len(words)-1]),
			Jr:    jr,
		}
	}
	von, last := splitVon(words[vonStart:])
	return Name{
		First: Decode(strings.Join(words[:vonStart], " ")),
		Von:   von,
		Last:  last,
		Jr:    jr,
	}
}

// splitVon separates leading lower-case particles from the last name.
func splitVon(words []string) (von, last string) {
	i := 0
	for i < len(words)-1 && isParticle(words[i]) {
		i++
	}
	return Decode(strings.Join(words[:i], " ")), Decode(strings.Join(words[i:], " "))
}

func isParticle(word string) bool {
	if strings.HasPrefix(word, "{") {
		return false
	}
	for _, r := range word {
		if unicode.IsLetter(r) {
			return unicode.IsLower(r)
		}
	}
	return false
}

func splitTopLevel(s string, sep byte) []string {
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
		case sep:
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	return append(parts, strings.TrimSpace(s[start:]))
}

func fieldsTopLevel(s string) []string {
	var words []string
	depth, start := 0, -1
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '{':
			depth++
		case c == '}':
			depth--
		case depth == 0 && unicode.IsSpace(rune(c)):
			if start >= 0 {
				words = append(words, s[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		words = append(words, s[start:])
	}
	return words
}

// DisplayNames parses an author field into "First Last" names.
func DisplayNames(field string) []string {
	raw := SplitNames(field)
	names := make([]string, 0, len(raw))
	for _, r := range raw {
		if strings.EqualFold(r, "others") {
			continue
		}
		if n := ParseName(r).Display(); n != "" {
			names = append(names, n)
		}
	}
	return names
}

// FromDisplay splits a plain "First Middle Last" name, keeping common
// suffixes with the last name.
//
// Known limitations:
// - Multi-part surnames without lower-case particles split incorrectly
// - Non-Western name formats may not be handled correctly
func FromDisplay(name string) Name {
	return parseFirstLast(strings.TrimSpace(name))
}
