package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/etnz/finasync"
	"github.com/etnz/finasync/chart"
	"github.com/etnz/finasync/eodhd"
	"github.com/etnz/finasync/ingest"
	"github.com/etnz/finasync/store"
	"github.com/etnz/finasync/upload"
	"github.com/shopspring/decimal"
)

// PriceLookup returns the latest price of a ticker.
type PriceLookup = eodhd.Pricer

// ChartRenderer draws the expenses, savings and stock value chart and returns
// the image path.
type ChartRenderer = chart.Drawer

// Toolbox holds the collaborators shared by every stage. Its methods are the
// tools stages call, they answer with the two-shape tool outcome.
type Toolbox struct {
	Store    store.Store
	Prices   PriceLookup
	Chart    ChartRenderer
	Uploader upload.Uploader
	Ingest   ingest.Options
	// Income is the monthly income savings are computed from.
	Income decimal.Decimal
	// OutputDir receives the report.
	OutputDir string
	// HTML also writes the report as HTML.
	HTML bool
	// Now is the report clock, time.Now when nil.
	Now func() time.Time
	// Read reads the documents stages analyse, ingest.Read when nil.
	Read func(path string, opts ingest.Options) (*ingest.Document, error)
}

func (t *Toolbox) read(path string) (*ingest.Document, error) {
	if t.Read == nil {
		return ingest.Read(path, t.Ingest)
	}
	return t.Read(path, t.Ingest)
}

func (t *Toolbox) now() time.Time {
	if t.Now == nil {
		return time.Now()
	}
	return t.Now()
}

func (t *Toolbox) uploader() upload.Uploader {
	if t.Uploader == nil {
		return upload.Noop{}
	}
	return t.Uploader
}

// ReadPDF returns the text of a PDF file.
func (t *Toolbox) ReadPDF(path string) finasync.Result {
	return ingest.Outcome(ingest.PDF, path, t.Ingest)
}

// ReadSpreadsheet returns the first sheet of a workbook as a markdown table.
func (t *Toolbox) ReadSpreadsheet(path string) finasync.Result {
	return ingest.Outcome(ingest.Spreadsheet, path, t.Ingest)
}

// ReadCSV returns a CSV file as a markdown table.
func (t *Toolbox) ReadCSV(path string) finasync.Result {
	return ingest.Outcome(ingest.CSV, path, t.Ingest)
}

// StockPrice returns the current price of ticker.
func (t *Toolbox) StockPrice(ctx context.Context, ticker string) finasync.Result {
	return eodhd.PriceOutcome(ctx, t.Prices, ticker)
}

// UpdateCache writes summary under category.
func (t *Toolbox) UpdateCache(ctx context.Context, category, summary string) finasync.Result {
	if err := t.Store.Put(ctx, finasync.Category(category), summary); err != nil {
		return finasync.Failure(err)
	}
	return finasync.Success(fmt.Sprintf("Updated %s in the monthly cache.", category))
}

// GetCache returns every finding, plus the last update time when the store
// was ever written.
func (t *Toolbox) GetCache(ctx context.Context) finasync.Result {
	snap, err := t.Store.GetAll(ctx)
	if err != nil {
		return finasync.Failure(err)
	}
	cache := snap.Map()
	if !snap.LastUpdated.IsZero() {
		cache[finasync.LastUpdatedKey] = snap.LastUpdated.Format(finasync.TimeLayout)
	}
	return finasync.Result{Status: finasync.StatusSuccess, Cache: cache}
}

// RenderChart draws the chart.
func (t *Toolbox) RenderChart(expenses, savings, stockValue float64) finasync.Result {
	return chart.DrawOutcome(t.Chart, decimal.NewFromFloat(expenses), decimal.NewFromFloat(savings), decimal.NewFromFloat(stockValue))
}

// Upload sends path to the remote store.
func (t *Toolbox) Upload(ctx context.Context, path string) finasync.Result {
	return upload.Outcome(ctx, t.uploader(), path)
}
