// Package chart renders the monthly snapshot pie chart.
package chart

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/etnz/finasync"
	"github.com/shopspring/decimal"
	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// FileName is the chart file, overwritten on every render.
const FileName = "financial_chart.png"

// Renderer draws the chart in a directory.
type Renderer struct {
	Dir    string
	Width  int
	Height int
}

// New returns a renderer writing into dir.
func New(dir string) *Renderer {
	return &Renderer{Dir: dir, Width: 600, Height: 600}
}

// Path returns the file Render writes.
func (r *Renderer) Path() string { return filepath.Join(r.Dir, FileName) }

// Render draws the three totals as a pie chart and returns the image path.
//
// Values are drawn as they are: nothing checks they add up to anything. Zero
// and negative values get an empty slice, their label still reads the real
// amount. When nothing is positive a single grey disc marks the absence of
// data, so that a file is always produced.
func (r *Renderer) Render(expenses, savings, stockValue decimal.Decimal) (string, error) {
	slices := []struct {
		label string
		value decimal.Decimal
		color drawing.Color
	}{
		{"Expenses", expenses, drawing.ColorFromHex("e4572e")},
		{"Savings", savings, drawing.ColorFromHex("29335c")},
		{"Stocks", stockValue, drawing.ColorFromHex("17bebb")},
	}

	var values []gochart.Value
	for _, s := range slices {
		if !s.value.IsPositive() {
			continue
		}
		values = append(values, gochart.Value{
			Label: fmt.Sprintf("%s %s", s.label, finasync.USD(s.value)),
			Value: s.value.InexactFloat64(),
			Style: gochart.Style{FillColor: s.color},
		})
	}
	if len(values) == 0 {
		values = []gochart.Value{{
			Label: "No data",
			Value: 1,
			Style: gochart.Style{FillColor: drawing.ColorFromHex("bbbbbb")},
		}}
	}

	pie := gochart.PieChart{
		Title:  fmt.Sprintf("Expenses %s / Savings %s / Stocks %s", finasync.USD(expenses), finasync.USD(savings), finasync.USD(stockValue)),
		Width:  r.Width,
		Height: r.Height,
		Values: values,
	}

	path := r.Path()
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("cannot create chart file %q: %w", path, err)
	}
	if err := pie.Render(gochart.PNG, f); err != nil {
		f.Close()
		return "", fmt.Errorf("cannot render chart: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("cannot write chart file %q: %w", path, err)
	}
	return path, nil
}

// A Drawer renders the chart and returns the image path.
type Drawer interface {
	Render(expenses, savings, stockValue decimal.Decimal) (string, error)
}

// Outcome renders the chart and returns the tool outcome.
func (r *Renderer) Outcome(expenses, savings, stockValue decimal.Decimal) finasync.Result {
	return DrawOutcome(r, expenses, savings, stockValue)
}

// DrawOutcome renders the chart with d and returns the tool outcome.
func DrawOutcome(d Drawer, expenses, savings, stockValue decimal.Decimal) finasync.Result {
	path, err := d.Render(expenses, savings, stockValue)
	if err != nil {
		return finasync.Failure(err)
	}
	return finasync.Result{Status: finasync.StatusSuccess, ImagePath: path}
}
