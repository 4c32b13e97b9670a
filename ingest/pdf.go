package ingest

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// DefaultPDFMaxChars bounds the text extracted from a PDF so that it fits in
// a model context.
const DefaultPDFMaxChars = 10000

// PDFReader extracts the plain text of PDF reports, page after page. The text
// is cut silently at MaxChars characters.
type PDFReader struct {
	MaxChars int
	// pages extracts the text of every page.
	pages func(path string) ([]string, error)
}

func NewPDFReader(maxChars int) *PDFReader {
	if maxChars <= 0 {
		maxChars = DefaultPDFMaxChars
	}
	return &PDFReader{MaxChars: maxChars, pages: pdfPages}
}

func (p *PDFReader) Read(path string) (*Document, error) {
	pages, err := p.pages(path)
	if err != nil {
		return nil, err
	}
	var b strings.Builder
	for _, page := range pages {
		b.WriteString(page)
		b.WriteString("\n")
	}
	return &Document{Path: path, Kind: PDF, Text: truncate(b.String(), p.MaxChars)}, nil
}

// truncate returns the first n characters of s.
func truncate(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

func pdfPages(path string) (pages []string, err error) {
	// the pdf package panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		pages = append(pages, text)
	}
	return pages, nil
}
