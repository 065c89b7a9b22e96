// Package pdf reads PDF files into the page layout used for metadata
// recognition.
package pdf

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrNoPages is returned for a PDF without any readable page.
var ErrNoPages = errors.New("pdf has no pages")

// Default page size (US Letter, points) when a page carries no MediaBox.
const (
	defaultPageWidth  = 612
	defaultPageHeight = 792
)

// infoKeys are the document information entries copied into Metadata.
var infoKeys = []string{"Title", "Author", "Subject", "Keywords", "Creator", "Producer", "CreationDate", "ModDate"}

// Document is the layout of the leading pages of a PDF.
type Document struct {
	TotalPages int
	Metadata   map[string]string
	FileName   string
	Pages      []Page
}

// Page is one page: its size and its text lines from top to bottom.
type Page struct {
	Width  float64
	Height float64
	Lines  []Line
}

// Line is a run of words sharing a baseline.
type Line struct {
	Words []Word
}

// Word is a positioned piece of text. Coordinates use a top-left origin.
type Word struct {
	XMin, YMin, XMax, YMax float64
	FontSize               float64
	SpaceAfter             bool
	Text                   string
}

// Text returns the words of the line joined by their spacing.
func (l Line) Text() string {
	var b strings.Builder
	for i, w := range l.Words {
		b.WriteString(w.Text)
		if w.SpaceAfter && i < len(l.Words)-1 {
			b.WriteByte(' ')
		}
	}
	return b.String()
}

// FontSize returns the largest font size on the line.
func (l Line) FontSize() float64 {
	var size float64
	for _, w := range l.Words {
		size = math.Max(size, w.FontSize)
	}
	return size
}

// Text returns the plain text of all loaded pages, one line per row.
func (d *Document) Text() string {
	var b strings.Builder
	for _, p := range d.Pages {
		for _, l := range p.Lines {
			b.WriteString(l.Text())
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// Recognize parses data and lays out at most maxPages pages. A maxPages of
// zero or less loads every page.
func Recognize(data []byte, maxPages int) (doc *Document, err error) {
	// The reader panics on some malformed objects.
	defer func() {
		if r := recover(); r != nil {
			doc, err = nil, fmt.Errorf("reading pdf: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("opening pdf: %w", err)
	}
	if r.NumPage() == 0 {
		return nil, ErrNoPages
	}

	doc = &Document{
		TotalPages: r.NumPage(),
		Metadata:   readInfo(r),
	}

	if maxPages <= 0 || maxPages > r.NumPage() {
		maxPages = r.NumPage()
	}
	for i := 1; i <= maxPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		doc.Pages = append(doc.Pages, layoutPage(page))
	}
	return doc, nil
}

func readInfo(r *pdf.Reader) map[string]string {
	meta := make(map[string]string)
	info := r.Trailer().Key("Info")
	if info.IsNull() {
		return meta
	}
	for _, key := range infoKeys {
		if v := strings.TrimSpace(info.Key(key).Text()); v != "" {
			meta[key] = v
		}
	}
	return meta
}

func layoutPage(page pdf.Page) Page {
	width, height := pageSize(page)
	out := Page{Width: width, Height: height}

	var current []pdf.Text
	var lines [][]pdf.Text
	for _, t := range page.Content().Text {
		if len(current) > 0 && !sameLine(current[len(current)-1], t) {
			lines = append(lines, current)
			current = nil
		}
		current = append(current, t)
	}
	if len(current) > 0 {
		lines = append(lines, current)
	}

	for _, glyphs := range lines {
		if l := buildLine(glyphs, height); len(l.Words) > 0 {
			out.Lines = append(out.Lines, l)
		}
	}
	sortLines(out.Lines)
	return out
}

func pageSize(page pdf.Page) (float64, float64) {
	for v := page.V; !v.IsNull(); v = v.Key("Parent") {
		box := v.Key("MediaBox")
		if box.Len() == 4 {
			w := box.Index(2).Float64() - box.Index(0).Float64()
			h := box.Index(3).Float64() - box.Index(1).Float64()
			if w > 0 && h > 0 {
				return w, h
			}
		}
	}
	return defaultPageWidth, defaultPageHeight
}

func sameLine(prev, next pdf.Text) bool {
	tolerance := math.Max(prev.FontSize, next.FontSize) * 0.5
	return math.Abs(prev.Y-next.Y) <= tolerance
}

// buildLine groups glyphs into words. Glyphs keep content-stream order.
func buildLine(glyphs []pdf.Text, pageHeight float64) Line {
	var line Line
	var word *Word
	var text strings.Builder

	flush := func(spaceAfter bool) {
		if word == nil {
			return
		}
		word.Text = text.String()
		word.SpaceAfter = spaceAfter
		line.Words = append(line.Words, *word)
		word = nil
		text.Reset()
	}

	for i, g := range glyphs {
		if strings.TrimSpace(g.S) == "" {
			flush(true)
			continue
		}
		if word != nil && i > 0 && g.X-glyphs[i-1].X-glyphs[i-1].W > g.FontSize*0.25 {
			flush(true)
		}
		if word == nil {
			top := pageHeight - g.Y - g.FontSize
			word = &Word{
				XMin:     g.X,
				YMin:     top,
				XMax:     g.X + g.W,
				YMax:     top + g.FontSize,
				FontSize: g.FontSize,
			}
		}
		word.XMax = math.Max(word.XMax, g.X+g.W)
		word.FontSize = math.Max(word.FontSize, g.FontSize)
		text.WriteString(g.S)
	}
	flush(false)
	return line
}

// sortLines orders lines top to bottom, keeping stream order for ties.
func sortLines(lines []Line) {
	for i := 1; i < len(lines); i++ {
		for j := i; j > 0 && lineTop(lines[j]) < lineTop(lines[j-1]); j-- {
			lines[j], lines[j-1] = lines[j-1], lines[j]
		}
	}
}

func lineTop(l Line) float64 {
	return math.Round(l.Words[0].YMin)
}

// MarshalJSON renders the document in the array-based layout expected by
// the recognizer service: pages are [width, height, [blocks]], blocks hold
// lines, lines hold words, and each word is a fixed-position tuple.
func (d *Document) MarshalJSON() ([]byte, error) {
	pages := make([]any, 0, len(d.Pages))
	for _, p := range d.Pages {
		lines := make([]any, 0, len(p.Lines))
		for _, l := range p.Lines {
			words := make([]any, 0, len(l.Words))
			for _, w := range l.Words {
				words = append(words, []any{
					round2(w.XMin), round2(w.YMin), round2(w.XMax), round2(w.YMax),
					round2(w.FontSize),
					boolInt(w.SpaceAfter),
					round2(w.YMax), // baseline
					0, 0, 0, 0, 0, 0, // rotation, underlined, bold, italic, color, font
					w.Text,
				})
			}
			lines = append(lines, words)
		}
		// One block per page: line grouping into blocks is left to the service.
		pages = append(pages, []any{round2(p.Width), round2(p.Height), []any{lines}})
	}

	meta := d.Metadata
	if meta == nil {
		meta = map[string]string{}
	}
	return json.Marshal(struct {
		TotalPages int               `json:"totalPages"`
		Metadata   map[string]string `json:"metadata"`
		FileName   string            `json:"fileName"`
		Pages      []any             `json:"pages"`
	}{d.TotalPages, meta, d.FileName, pages})
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
