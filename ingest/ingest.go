// Package ingest converts financial documents into text a stage can work on:
// transaction spreadsheets and CSV exports become markdown tables, brokerage
// PDF reports become plain text.
//
// The extension alone selects the ingestor.
package ingest

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/etnz/finasync"
	md "github.com/nao1215/markdown"
)

// Kind is a supported document format.
type Kind string

const (
	Spreadsheet Kind = "spreadsheet"
	CSV         Kind = "csv"
	PDF         Kind = "pdf"
)

// label is how error messages name the format.
func (k Kind) label() string {
	switch k {
	case Spreadsheet:
		return "Excel"
	case CSV:
		return "CSV"
	case PDF:
		return "PDF"
	}
	return string(k)
}

// ErrUnsupported is returned for files with an unknown extension.
var ErrUnsupported = errors.New("unsupported file type")

// KindOf returns the kind of document at path, based on its extension.
func KindOf(path string) (Kind, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xls":
		return Spreadsheet, nil
	case ".csv":
		return CSV, nil
	case ".pdf":
		return PDF, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupported, filepath.Ext(path))
}

// Table is a parsed tabular document, the first row being the header.
type Table struct {
	Header []string
	Rows   [][]string
}

// Column returns the index of the header matching name, case insensitive, or -1.
func (t *Table) Column(name string) int {
	for i, h := range t.Header {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return i
		}
	}
	return -1
}

// Markdown renders the table as a markdown table.
func (t *Table) Markdown() string {
	var buf bytes.Buffer
	rows := make([][]string, 0, len(t.Rows))
	for _, r := range t.Rows {
		rows = append(rows, escape(r))
	}
	doc := md.NewMarkdown(&buf)
	doc.Table(md.TableSet{Header: escape(t.Header), Rows: rows})
	return doc.String()
}

// escape protects markdown table cells.
func escape(cells []string) []string {
	res := make([]string, len(cells))
	for i, c := range cells {
		c = strings.ReplaceAll(c, "|", `\|`)
		res[i] = strings.ReplaceAll(c, "\n", " ")
	}
	return res
}

// normalize pads or cuts rows to the header width and drops blank rows.
func normalize(records [][]string) *Table {
	t := &Table{Header: records[0]}
	for _, r := range records[1:] {
		blank := true
		for _, c := range r {
			if strings.TrimSpace(c) != "" {
				blank = false
				break
			}
		}
		if blank {
			continue
		}
		row := make([]string, len(t.Header))
		copy(row, r)
		t.Rows = append(t.Rows, row)
	}
	return t
}

// Document is the normalized content of a file.
type Document struct {
	Path string
	Kind Kind
	// Text is the markdown table of tabular documents, the extracted text of
	// PDFs.
	Text string
	// Table is set for tabular documents only.
	Table *Table
}

// An Ingestor reads one document format.
type Ingestor interface {
	Read(path string) (*Document, error)
}

// Options tune the ingestors.
type Options struct {
	// PDFMaxChars bounds the text extracted from PDFs, DefaultPDFMaxChars when zero.
	PDFMaxChars int
}

// For returns the ingestor for path.
func For(path string, opts Options) (Ingestor, error) {
	kind, err := KindOf(path)
	if err != nil {
		return nil, err
	}
	return ingestor(kind, opts)
}

func ingestor(kind Kind, opts Options) (Ingestor, error) {
	switch kind {
	case Spreadsheet:
		return SpreadsheetReader{}, nil
	case CSV:
		return CSVReader{}, nil
	case PDF:
		return NewPDFReader(opts.PDFMaxChars), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupported, kind)
}

// Read reads path with the matching ingestor.
func Read(path string, opts Options) (*Document, error) {
	in, err := For(path, opts)
	if err != nil {
		return nil, err
	}
	return in.Read(path)
}

// Outcome reads path with the ingestor of kind and returns the tool outcome:
// the document text, or the reason it could not be read.
func Outcome(kind Kind, path string, opts Options) finasync.Result {
	in, err := ingestor(kind, opts)
	if err != nil {
		return finasync.Failure(err)
	}
	doc, err := in.Read(path)
	if err != nil {
		return finasync.Failure(fmt.Errorf("Error reading %s file: %w", kind.label(), err))
	}
	return finasync.Success(doc.Text)
}
