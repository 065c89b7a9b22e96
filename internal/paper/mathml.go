package paper

import (
	"errors"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// The three recognized MathML shapes, applied in this order.
var mathMLPatterns = []*regexp.Regexp{
	regexp.MustCompile(`<math\b[^>]*>[\s\S]*?</math>`),
	regexp.MustCompile(`<mml:math\b[^>]*>[\s\S]*?</mml:math>`),
	regexp.MustCompile(`<mrow\b[^>]*>[\s\S]*?</mrow>`),
}

var errNotMathML = errors.New("no MathML element found")

// FormatMath rewrites each embedded MathML span in text to `$latex$`.
// Spans that do not convert are left as they are.
func FormatMath(text string) string {
	for _, re := range mathMLPatterns {
		if !re.MatchString(text) {
			continue
		}
		text = re.ReplaceAllStringFunc(text, func(span string) string {
			latex, err := MathMLToLaTeX(strings.ReplaceAll(span, "mml:", ""))
			if err != nil || strings.TrimSpace(latex) == "" {
				return span
			}
			return "$" + latex + "$"
		})
	}
	return text
}

// MathMLToLaTeX converts a MathML fragment to LaTeX.
func MathMLToLaTeX(markup string) (string, error) {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(markup), body)
	if err != nil {
		return "", err
	}

	var parts []string
	found := false
	for _, n := range nodes {
		if n.Type == html.ElementNode {
			found = true
		}
		parts = append(parts, convertNode(n))
	}
	if !found {
		return "", errNotMathML
	}
	return strings.TrimSpace(joinLaTeX(parts)), nil
}

func convertNode(n *html.Node) string {
	switch n.Type {
	case html.TextNode:
		return strings.TrimSpace(n.Data)
	case html.ElementNode:
	default:
		return ""
	}

	switch n.Data {
	case "annotation", "annotation-xml":
		return ""
	case "semantics":
		if kids := elementChildren(n); len(kids) > 0 {
			return convertNode(kids[0])
		}
		return ""
	case "mi":
		return identifier(textContent(n))
	case "mn":
		return textContent(n)
	case "mo":
		return operator(textContent(n))
	case "mtext":
		t := textContent(n)
		if t == "" {
			return ""
		}
		return `\text{` + t + `}`
	case "ms":
		return `"` + textContent(n) + `"`
	case "mspace":
		return joinLaTeX(append([]string{`\ `}, convertChildren(n)...))
	case "mfrac":
		kids := elementChildren(n)
		if len(kids) < 2 {
			return convertAll(kids)
		}
		if attr(n, "linethickness") == "0" {
			return `\binom{` + convertNode(kids[0]) + `}{` + convertNode(kids[1]) + `}`
		}
		return `\frac{` + convertNode(kids[0]) + `}{` + convertNode(kids[1]) + `}`
	case "msqrt":
		return `\sqrt{` + joinLaTeX(convertChildren(n)) + `}`
	case "mroot":
		kids := elementChildren(n)
		if len(kids) < 2 {
			return `\sqrt{` + convertAll(kids) + `}`
		}
		return `\sqrt[` + convertNode(kids[1]) + `]{` + convertNode(kids[0]) + `}`
	case "msup":
		kids := elementChildren(n)
		if len(kids) < 2 {
			return convertAll(kids)
		}
		return convertNode(kids[0]) + `^{` + convertNode(kids[1]) + `}`
	case "msub":
		kids := elementChildren(n)
		if len(kids) < 2 {
			return convertAll(kids)
		}
		return convertNode(kids[0]) + `_{` + convertNode(kids[1]) + `}`
	case "msubsup", "munderover":
		kids := elementChildren(n)
		if len(kids) < 3 {
			return convertAll(kids)
		}
		return convertNode(kids[0]) + `_{` + convertNode(kids[1]) + `}^{` + convertNode(kids[2]) + `}`
	case "mover":
		return convertOver(n)
	case "munder":
		return convertUnder(n)
	case "mfenced":
		return convertFenced(n)
	case "mtable":
		return convertTable(n)
	case "mtr", "mlabeledtr":
		return strings.Join(convertAllSlice(elementChildren(n)), " & ")
	}

	// math, mrow, mstyle, mtd, menclose, mpadded and anything unknown pass their content through.
	return joinLaTeX(convertChildren(n))
}

var accentCommands = map[string]string{
	"^": `\hat`,
	"ˆ": `\hat`,
	"~": `\tilde`,
	"˜": `\tilde`,
	"¯": `\overline`,
	"‾": `\overline`,
	"―": `\overline`,
	"→": `\vec`,
	"\u20d7": `\vec`,
	"˙": `\dot`,
	".": `\dot`,
	"¨": `\ddot`,
	"⏞": `\overbrace`,
}

var largeOperators = map[string]bool{
	`\sum`: true, `\prod`: true, `\int`: true, `\oint`: true, `\lim`: true,
	`\bigcup`: true, `\bigcap`: true, `\coprod`: true, `\max`: true, `\min`: true,
}

func convertOver(n *html.Node) string {
	kids := elementChildren(n)
	if len(kids) < 2 {
		return convertAll(kids)
	}
	base := convertNode(kids[0])
	over := textContent(kids[1])
	if cmd, ok := accentCommands[over]; ok {
		return cmd + `{` + base + `}`
	}
	if largeOperators[base] {
		return base + `^{` + convertNode(kids[1]) + `}`
	}
	return `\overset{` + convertNode(kids[1]) + `}{` + base + `}`
}

func convertUnder(n *html.Node) string {
	kids := elementChildren(n)
	if len(kids) < 2 {
		return convertAll(kids)
	}
	base := convertNode(kids[0])
	under := textContent(kids[1])
	switch under {
	case "⏟", "︸":
		return `\underbrace{` + base + `}`
	case "¯", "_", "―":
		return `\underline{` + base + `}`
	}
	if largeOperators[base] {
		return base + `_{` + convertNode(kids[1]) + `}`
	}
	return `\underset{` + convertNode(kids[1]) + `}{` + base + `}`
}

func convertFenced(n *html.Node) string {
	open, closing, sep := "(", ")", ","
	if v, ok := attrOK(n, "open"); ok {
		open = v
	}
	if v, ok := attrOK(n, "close"); ok {
		closing = v
	}
	if v, ok := attrOK(n, "separators"); ok {
		sep = strings.TrimSpace(v)
	}
	return fence(open) + strings.Join(convertAllSlice(elementChildren(n)), sep) + fence(closing)
}

func fence(s string) string {
	switch s {
	case "{":
		return `\{`
	case "}":
		return `\}`
	}
	return s
}

func convertTable(n *html.Node) string {
	var rows []string
	for _, row := range elementChildren(n) {
		rows = append(rows, convertNode(row))
	}
	return `\begin{matrix}` + strings.Join(rows, ` \\ `) + `\end{matrix}`
}

var greekLetters = map[rune]string{
	'α': `\alpha`, 'β': `\beta`, 'γ': `\gamma`, 'δ': `\delta`, 'ε': `\epsilon`,
	'ϵ': `\epsilon`, 'ζ': `\zeta`, 'η': `\eta`, 'θ': `\theta`, 'ι': `\iota`,
	'κ': `\kappa`, 'λ': `\lambda`, 'μ': `\mu`, 'ν': `\nu`, 'ξ': `\xi`,
	'π': `\pi`, 'ρ': `\rho`, 'σ': `\sigma`, 'τ': `\tau`, 'υ': `\upsilon`,
	'φ': `\phi`, 'ϕ': `\phi`, 'χ': `\chi`, 'ψ': `\psi`, 'ω': `\omega`,
	'Γ': `\Gamma`, 'Δ': `\Delta`, 'Θ': `\Theta`, 'Λ': `\Lambda`, 'Ξ': `\Xi`,
	'Π': `\Pi`, 'Σ': `\Sigma`, 'Υ': `\Upsilon`, 'Φ': `\Phi`, 'Ψ': `\Psi`,
	'Ω': `\Omega`, '∞': `\infty`, 'ℓ': `\ell`, '∂': `\partial`, '∅': `\emptyset`,
}

var mathFunctions = map[string]bool{
	"sin": true, "cos": true, "tan": true, "cot": true, "sec": true, "csc": true,
	"log": true, "ln": true, "exp": true, "lim": true, "max": true, "min": true,
	"det": true, "dim": true, "sup": true, "inf": true, "arg": true, "gcd": true,
	"sinh": true, "cosh": true, "tanh": true, "arcsin": true, "arccos": true, "arctan": true,
}

func identifier(s string) string {
	if s == "" {
		return ""
	}
	if mathFunctions[s] {
		return `\` + s
	}
	runes := []rune(s)
	if len(runes) == 1 {
		if cmd, ok := greekLetters[runes[0]]; ok {
			return cmd
		}
		return s
	}
	return `\mathrm{` + s + `}`
}

var operators = map[string]string{
	"−": "-", "×": `\times`, "·": `\cdot`, "⋅": `\cdot`, "÷": `\div`,
	"±": `\pm`, "∓": `\mp`, "≤": `\leq`, "≥": `\geq`, "≠": `\neq`,
	"≈": `\approx`, "≡": `\equiv`, "∼": `\sim`, "∝": `\propto`,
	"∈": `\in`, "∉": `\notin`, "⊂": `\subset`, "⊆": `\subseteq`,
	"⊃": `\supset`, "⊇": `\supseteq`, "∪": `\cup`, "∩": `\cap`,
	"→": `\rightarrow`, "←": `\leftarrow`, "↔": `\leftrightarrow`,
	"⇒": `\Rightarrow`, "⇐": `\Leftarrow`, "⇔": `\Leftrightarrow`,
	"∑": `\sum`, "∏": `\prod`, "∫": `\int`, "∮": `\oint`,
	"∂": `\partial`, "∇": `\nabla`, "∞": `\infty`, "∀": `\forall`,
	"∃": `\exists`, "¬": `\neg`, "∧": `\wedge`, "∨": `\vee`,
	"∘": `\circ`, "…": `\ldots`, "⋯": `\cdots`, "\u2061": "", "\u2062": "",
	"\u2063": ",", "{": `\{`, "}": `\}`, "%": `\%`, "#": `\#`, "&": `\&`,
	"⟨": `\langle`, "⟩": `\rangle`, "‖": `\|`,
}

func operator(s string) string {
	if mapped, ok := operators[s]; ok {
		return mapped
	}
	if mathFunctions[s] {
		return `\` + s
	}
	return s
}

var trailingCommand = regexp.MustCompile(`\\[A-Za-z]+$`)

// joinLaTeX concatenates converted pieces, separating a trailing control
// word from a following letter so `\alpha` + `x` does not become `\alphax`.
func joinLaTeX(parts []string) string {
	var b strings.Builder
	for _, p := range parts {
		if p == "" {
			continue
		}
		cur := b.String()
		if trailingCommand.MatchString(cur) {
			if r := []rune(p)[0]; unicode.IsLetter(r) {
				b.WriteByte(' ')
			}
		}
		b.WriteString(p)
	}
	return b.String()
}

func convertChildren(n *html.Node) []string {
	var parts []string
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		parts = append(parts, convertNode(c))
	}
	return parts
}

func convertAllSlice(nodes []*html.Node) []string {
	parts := make([]string, 0, len(nodes))
	for _, c := range nodes {
		parts = append(parts, convertNode(c))
	}
	return parts
}

func convertAll(nodes []*html.Node) string {
	return joinLaTeX(convertAllSlice(nodes))
}

func elementChildren(n *html.Node) []*html.Node {
	var kids []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			kids = append(kids, c)
		}
	}
	return kids
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(cur *html.Node) {
		if cur.Type == html.TextNode {
			b.WriteString(cur.Data)
		}
		for c := cur.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(b.String())
}

func attr(n *html.Node, key string) string {
	v, _ := attrOK(n, key)
	return v
}

func attrOK(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}
