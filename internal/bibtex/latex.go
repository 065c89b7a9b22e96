package bibtex

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Combining marks for the LaTeX accent commands.
var accents = map[byte]rune{
	'`':  '\u0300',
	'\'': '\u0301',
	'^':  '\u0302',
	'~':  '\u0303',
	'=':  '\u0304',
	'u':  '\u0306',
	'.':  '\u0307',
	'"':  '\u0308',
	'r':  '\u030a',
	'H':  '\u030b',
	'v':  '\u030c',
	'd':  '\u0323',
	'c':  '\u0327',
	'k':  '\u0328',
	'b':  '\u0331',
}

// Letter commands without arguments.
var symbols = map[string]string{
	"ss": "ß", "ae": "æ", "AE": "Æ", "oe": "œ", "OE": "Œ",
	"aa": "å", "AA": "Å", "o": "ø", "O": "Ø", "l": "ł", "L": "Ł",
	"i": "ı", "j": "ȷ",
	"textendash": "\u2013", "textemdash": "\u2014",
	"textquoteleft": "\u2018", "textquoteright": "\u2019",
	"textasciitilde": "~", "textasciicircum": "^", "textbackslash": `\`,
	"textregistered": "®", "copyright": "©", "dag": "†", "S": "§", "P": "¶",
}

// Commands whose braced argument is kept and the command dropped.
var wrappers = map[string]bool{
	"emph": true, "textit": true, "textbf": true, "textsc": true, "texttt": true,
	"textrm": true, "textsf": true, "mbox": true, "text": true, "url": true,
	"textup": true, "textnormal": true, "it": true, "bf": true, "em": true,
}

// Decode converts LaTeX markup in a BibTeX value to plain Unicode text.
// Math between $ signs is kept verbatim, protective braces are dropped, and
// the result is NFC-normalized with whitespace collapsed.
func Decode(s string) string {
	var b strings.Builder
	decodeInto(&b, s)
	out := norm.NFC.String(b.String())
	return strings.Join(strings.Fields(out), " ")
}

func decodeInto(b *strings.Builder, s string) {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '$':
			end := strings.IndexByte(s[i+1:], '$')
			if end < 0 {
				b.WriteString(s[i:])
				return
			}
			b.WriteString(s[i : i+end+2])
			i += end + 1
		case '{', '}':
			// grouping only
		case '~':
			b.WriteByte(' ')
		case '-':
			switch {
			case strings.HasPrefix(s[i:], "---"):
				b.WriteString("\u2014")
				i += 2
			case strings.HasPrefix(s[i:], "--"):
				b.WriteString("\u2013")
				i++
			default:
				b.WriteByte('-')
			}
		case '\\':
			i = command(b, s, i)
		default:
			b.WriteByte(c)
		}
	}
}

// command decodes the command starting at s[i] == '\\' and returns the
// index of its last consumed byte.
func command(b *strings.Builder, s string, i int) int {
	if i+1 >= len(s) {
		return i
	}
	next := s[i+1]

	// Escaped specials.
	if strings.IndexByte(`&%$#_{}\ `, next) >= 0 {
		if next == '\\' {
			b.WriteByte(' ')
		} else {
			b.WriteByte(next)
		}
		return i + 1
	}

	// Symbol accents: \'e, \"{o}, \^{}.
	if mark, ok := accents[next]; ok && !isLetter(next) {
		arg, end := argument(s, i+2)
		writeAccent(b, arg, mark)
		return end
	}

	// Named command.
	j := i + 1
	for j < len(s) && isLetter(s[j]) {
		j++
	}
	name := s[i+1 : j]
	if name == "" {
		return i
	}

	if mark, ok := accents[name[0]]; ok && len(name) == 1 {
		// letter accents such as \c{c}, \v s
		k := j
		for k < len(s) && s[k] == ' ' {
			k++
		}
		arg, end := argument(s, k)
		writeAccent(b, arg, mark)
		return end
	}
	if sym, ok := symbols[name]; ok {
		b.WriteString(sym)
		// \ss{} and "\ss " consume the terminator
		if strings.HasPrefix(s[j:], "{}") {
			return j + 1
		}
		if j < len(s) && s[j] == ' ' {
			return j
		}
		return j - 1
	}
	if wrappers[name] {
		k := j
		for k < len(s) && s[k] == ' ' {
			k++
		}
		if k < len(s) && s[k] == '{' {
			arg, end := argument(s, k)
			decodeInto(b, arg)
			return end
		}
		return j - 1
	}

	// Unknown command: keep it so nothing is silently lost.
	b.WriteString(s[i:j])
	return j - 1
}

// argument returns the accent or wrapper argument at s[i] (either a braced
// group or a single character) and the index of its last byte.
func argument(s string, i int) (string, int) {
	if i >= len(s) {
		return "", len(s) - 1
	}
	if s[i] == '{' {
		depth := 0
		for j := i; j < len(s); j++ {
			switch s[j] {
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					return s[i+1 : j], j
				}
			}
		}
		return s[i+1:], len(s) - 1
	}
	if s[i] == '\\' {
		// \'\i
		j := i + 1
		for j < len(s) && isLetter(s[j]) {
			j++
		}
		return s[i:j], j - 1
	}
	return s[i : i+1], i
}

func writeAccent(b *strings.Builder, arg string, mark rune) {
	var inner strings.Builder
	decodeInto(&inner, arg)
	base := inner.String()
	if strings.HasPrefix(base, "ı") {
		base = "i" + strings.TrimPrefix(base, "ı")
	}
	if base == "" {
		b.WriteRune(mark)
		return
	}
	// The mark attaches to the first character.
	r := []rune(base)
	b.WriteRune(r[0])
	b.WriteRune(mark)
	b.WriteString(string(r[1:]))
}

func isLetter(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}
