package ingest

import (
	"errors"

	"github.com/xuri/excelize/v2"
)

// SpreadsheetReader reads the first sheet of an Excel workbook. The first row
// is the header, typically Date, Description, Category and Amount.
type SpreadsheetReader struct{}

func (SpreadsheetReader) Read(path string) (_ *Document, err error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if e := f.Close(); e != nil && err == nil {
			err = e
		}
	}()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheet")
	}
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}
	// skip leading empty rows, some exports start with a blank line.
	for len(records) > 0 && len(records[0]) == 0 {
		records = records[1:]
	}
	if len(records) == 0 {
		return nil, errors.New("first sheet is empty")
	}
	t := normalize(records)
	return &Document{Path: path, Kind: Spreadsheet, Text: t.Markdown(), Table: t}, nil
}
