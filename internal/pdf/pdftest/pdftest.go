// Package pdftest builds small PDF fixtures for tests.
package pdftest

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/jung-kurt/gofpdf"
)

// Line is one line of text placed on the first page.
type Line struct {
	Text string
	Size float64
}

// Paper describes a fixture document.
type Paper struct {
	Title  string // document info title
	Author string // document info author
	Lines  []Line
	Pages  int // total pages; extra pages are blank
}

// Build renders p and returns the PDF bytes. Streams are left uncompressed
// so failures are easy to inspect.
func Build(t testing.TB, p Paper) []byte {
	t.Helper()

	doc := gofpdf.New("P", "pt", "Letter", "")
	doc.SetCompression(false)
	if p.Title != "" {
		doc.SetTitle(p.Title, false)
	}
	if p.Author != "" {
		doc.SetAuthor(p.Author, false)
	}

	doc.AddPage()
	for _, l := range p.Lines {
		size := l.Size
		if size == 0 {
			size = 11
		}
		doc.SetFont("Helvetica", "", size)
		doc.CellFormat(0, size*1.6, l.Text, "", 1, "L", false, 0, "")
	}
	for i := 1; i < p.Pages; i++ {
		doc.AddPage()
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		t.Fatalf("rendering pdf fixture: %v", err)
	}
	return buf.Bytes()
}

// Write renders p into dir/name and returns the path.
func Write(t testing.TB, dir, name string, p Paper) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, Build(t, p), 0o644); err != nil {
		t.Fatalf("writing pdf fixture: %v", err)
	}
	return path
}
