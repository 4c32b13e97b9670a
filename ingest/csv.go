package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"os"

	zlog "github.com/rs/zerolog/log"
)

// CSVReader reads CSV transaction exports. The comma is tried first, then the
// semicolon used by European exports. No other delimiter is inferred.
type CSVReader struct{}

func (CSVReader) Read(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf")) // UTF-8 BOM

	t, err := parseCSV(data, ',')
	if err != nil {
		zlog.Debug().Err(err).Str("file", path).Msg("comma delimiter failed, trying semicolon")
		t, err = parseCSV(data, ';')
		if err != nil {
			return nil, err
		}
	}
	return &Document{Path: path, Kind: CSV, Text: t.Markdown(), Table: t}, nil
}

// parseCSV parses data with the given delimiter. A single column result is a
// failure: a transaction export has at least an amount and a label.
func parseCSV(data []byte, comma rune) (*Table, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = comma
	r.TrimLeadingSpace = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, errors.New("no columns to parse from file")
	}
	if len(records[0]) < 2 {
		return nil, fmt.Errorf("a single column found using delimiter %q", comma)
	}
	return normalize(records), nil
}
