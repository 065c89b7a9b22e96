// Package bibtex parses BibTeX text into entries and renders entity drafts
// back to BibTeX.
package bibtex

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrSyntax wraps every parse failure.
var ErrSyntax = errors.New("bibtex syntax error")

// Entry is one parsed @type{key, ...} record. Field names are lower-cased;
// values have macros expanded but LaTeX left as written.
type Entry struct {
	Type   string
	Key    string
	Fields map[string]string
}

// Field returns the named field, or "".
func (e Entry) Field(name string) string {
	return e.Fields[strings.ToLower(name)]
}

// Month abbreviations predefined by BibTeX styles.
var monthMacros = map[string]string{
	"jan": "January", "feb": "February", "mar": "March", "apr": "April",
	"may": "May", "jun": "June", "jul": "July", "aug": "August",
	"sep": "September", "oct": "October", "nov": "November", "dec": "December",
}

// Parse reads every entry in text. Malformed entries are skipped; the
// returned error joins one ErrSyntax per skipped entry and is nil when all
// entries parsed.
func Parse(text string) ([]Entry, error) {
	p := &parser{src: text, macros: make(map[string]string)}
	for k, v := range monthMacros {
		p.macros[k] = v
	}

	var entries []Entry
	var errs []error
	for p.seek('@') {
		start := p.pos
		entry, ok, err := p.entry()
		if err != nil {
			errs = append(errs, err)
			// resume after the '@' that started the bad entry
			p.pos = start + 1
			continue
		}
		if ok {
			entries = append(entries, entry)
		}
	}
	return entries, errors.Join(errs...)
}

type parser struct {
	src    string
	pos    int
	macros map[string]string
}

func (p *parser) errorf(format string, args ...any) error {
	line := 1 + strings.Count(p.src[:min(p.pos, len(p.src))], "\n")
	return fmt.Errorf("%w: line %d: %s", ErrSyntax, line, fmt.Sprintf(format, args...))
}

// seek advances to the next c and reports whether one was found.
func (p *parser) seek(c byte) bool {
	i := strings.IndexByte(p.src[p.pos:], c)
	if i < 0 {
		p.pos = len(p.src)
		return false
	}
	p.pos += i
	return true
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) && unicode.IsSpace(rune(p.src[p.pos])) {
		p.pos++
	}
}

func (p *parser) peek() byte {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) expect(c byte) error {
	p.skipSpace()
	if p.peek() != c {
		return p.errorf("expected %q", c)
	}
	p.pos++
	return nil
}

func (p *parser) ident() string {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if unicode.IsSpace(rune(c)) || strings.IndexByte(`{}(),="#@%'`, c) >= 0 {
			break
		}
		p.pos++
	}
	return p.src[start:p.pos]
}

// entry parses one record starting at '@'. ok is false for records that
// carry no entry (@comment, @preamble, @string).
func (p *parser) entry() (Entry, bool, error) {
	p.pos++ // '@'
	kind := strings.ToLower(p.ident())
	if kind == "" {
		return Entry{}, false, p.errorf("missing entry type")
	}

	p.skipSpace()
	open := p.peek()
	if open != '{' && open != '(' {
		if kind == "comment" {
			return Entry{}, false, nil
		}
		return Entry{}, false, p.errorf("expected '{' after @%s", kind)
	}
	closing := byte('}')
	if open == '(' {
		closing = ')'
	}

	switch kind {
	case "comment":
		_, err := p.braced()
		return Entry{}, false, err
	case "preamble":
		p.pos++
		if _, err := p.value(); err != nil {
			return Entry{}, false, err
		}
		return Entry{}, false, p.expect(closing)
	case "string":
		p.pos++
		name := strings.ToLower(p.ident())
		if err := p.expect('='); err != nil {
			return Entry{}, false, err
		}
		v, err := p.value()
		if err != nil {
			return Entry{}, false, err
		}
		p.macros[name] = v
		return Entry{}, false, p.expect(closing)
	}

	p.pos++
	e := Entry{Type: kind, Fields: make(map[string]string)}

	p.skipSpace()
	keyStart := p.pos
	for p.pos < len(p.src) && p.src[p.pos] != ',' && p.src[p.pos] != closing {
		if p.src[p.pos] == '\n' || p.src[p.pos] == '=' {
			return Entry{}, false, p.errorf("malformed citation key")
		}
		p.pos++
	}
	e.Key = strings.TrimSpace(p.src[keyStart:p.pos])

	for {
		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
			continue
		case closing:
			p.pos++
			return e, true, nil
		case 0:
			return Entry{}, false, p.errorf("unterminated entry %q", e.Key)
		}

		name := strings.ToLower(p.ident())
		if name == "" {
			return Entry{}, false, p.errorf("expected field name in %q", e.Key)
		}
		if err := p.expect('='); err != nil {
			return Entry{}, false, err
		}
		v, err := p.value()
		if err != nil {
			return Entry{}, false, err
		}
		e.Fields[name] = v
	}
}

// value parses a field value: pieces joined with '#'.
func (p *parser) value() (string, error) {
	var b strings.Builder
	for {
		p.skipSpace()
		switch c := p.peek(); {
		case c == '{':
			s, err := p.braced()
			if err != nil {
				return "", err
			}
			b.WriteString(s)
		case c == '"':
			s, err := p.quoted()
			if err != nil {
				return "", err
			}
			b.WriteString(s)
		case c >= '0' && c <= '9':
			start := p.pos
			for p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
				p.pos++
			}
			b.WriteString(p.src[start:p.pos])
		default:
			name := p.ident()
			if name == "" {
				return "", p.errorf("expected value")
			}
			b.WriteString(p.macros[strings.ToLower(name)])
		}

		p.skipSpace()
		if p.peek() != '#' {
			return b.String(), nil
		}
		p.pos++
	}
}

// braced returns the content between balanced braces, excluding the outer pair.
func (p *parser) braced() (string, error) {
	start := p.pos + 1
	depth := 0
	for i := p.pos; i < len(p.src); i++ {
		switch p.src[i] {
		case '\\':
			i++ // escaped brace
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				p.pos = i + 1
				return p.src[start:i], nil
			}
		}
	}
	return "", p.errorf("unbalanced braces")
}

// quoted returns the content of a "..." value; quotes inside braces do not end it.
func (p *parser) quoted() (string, error) {
	start := p.pos + 1
	depth := 0
	for i := start; i < len(p.src); i++ {
		switch p.src[i] {
		case '\\':
			i++
		case '{':
			depth++
		case '}':
			depth--
		case '"':
			if depth == 0 {
				p.pos = i + 1
				return p.src[start:i], nil
			}
		}
	}
	return "", p.errorf("unterminated quoted value")
}
