package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/etnz/finasync"
	"github.com/etnz/finasync/ingest"
	"github.com/etnz/finasync/report"
	"github.com/etnz/finasync/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePrices map[string]float64

func (f fakePrices) Price(_ context.Context, ticker string) (decimal.Decimal, error) {
	p, ok := f[ticker]
	if !ok {
		return decimal.Zero, errors.New("unknown ticker")
	}
	return decimal.NewFromFloat(p), nil
}

type fakeChart struct {
	dir                         string
	expenses, savings, invested decimal.Decimal
	calls                       int
}

func (f *fakeChart) Render(expenses, savings, stockValue decimal.Decimal) (string, error) {
	f.calls++
	f.expenses, f.savings, f.invested = expenses, savings, stockValue
	path := filepath.Join(f.dir, "financial_chart.png")
	return path, os.WriteFile(path, []byte("png"), 0o644)
}

type fakeUploader struct {
	uploaded []string
}

func (f *fakeUploader) Available() bool { return true }
func (f *fakeUploader) Upload(_ context.Context, path string) (string, error) {
	f.uploaded = append(f.uploaded, filepath.Base(path))
	return "remote://" + filepath.Base(path), nil
}

func newTools(t *testing.T) *Toolbox {
	dir := t.TempDir()
	return &Toolbox{
		Store:     store.NewMemoryStore(),
		Prices:    fakePrices{"AAPL": 190.5, "MSFT": 400},
		Chart:     &fakeChart{dir: dir},
		Income:    decimal.NewFromInt(5000),
		OutputDir: dir,
		Now:       func() time.Time { return time.Date(2025, 3, 31, 12, 0, 0, 0, time.UTC) },
	}
}

// pdfText makes tools read every file as a PDF holding text.
func pdfText(tools *Toolbox, text string) {
	tools.Read = func(path string, _ ingest.Options) (*ingest.Document, error) {
		return &ingest.Document{Path: path, Kind: ingest.PDF, Text: text}, nil
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const transactions = `Date,Description,Amount,Category
2025-03-01,Rent,-1000.00,Housing
2025-03-02,Coffee,-3.50,Food
2025-03-03,Groceries,-96.50,Food
2025-03-04,Refund,n/a,Food
`

func TestParseHoldings(t *testing.T) {
	text := "Brokerage statement\nAAPL  10\nMSFT 5 shares\nTOTAL VALUE 1234\nBRK.B 2.5\nAAPL 2\nnot a holding 12\n"
	got := ParseHoldings(text)
	require.Len(t, got, 3)
	assert.Equal(t, "AAPL", got[0].Ticker)
	assert.True(t, got[0].Quantity.Equal(decimal.NewFromInt(12)), "repeated tickers are merged")
	assert.Equal(t, "MSFT", got[1].Ticker)
	assert.Equal(t, "BRK.B", got[2].Ticker)
	assert.Equal(t, "2.5", got[2].Quantity.String())
}

func TestInvestmentStage(t *testing.T) {
	tools := newTools(t)
	pdfText(tools, "AAPL  10\nMSFT 5\n")
	h := finasync.NewHandoff("r", "statement.pdf")

	r, err := (&InvestmentStage{Tools: tools}).Run(t.Context(), h)
	require.NoError(t, err)
	assert.Equal(t, finasync.StageComplete, r.Status)

	snap, err := tools.Store.GetAll(t.Context())
	require.NoError(t, err)
	summary := snap.Get(finasync.Investments)
	assert.True(t, strings.HasPrefix(summary, "Total: $3,905.00\n"), summary)
	assert.Contains(t, summary, "AAPL: 10 x $190.50 = $1,905.00")
}

func TestInvestmentStage_PartialPrices(t *testing.T) {
	tools := newTools(t)
	pdfText(tools, "AAPL 1\nZZZZ 3\n")

	r, err := (&InvestmentStage{Tools: tools}).Run(t.Context(), finasync.NewHandoff("r", "s.pdf"))
	require.NoError(t, err)
	assert.Contains(t, r.Message, "1 holdings")

	snap, _ := tools.Store.GetAll(t.Context())
	assert.Contains(t, snap.Get(finasync.Investments), "ZZZZ: 3 shares, price unavailable")
}

func TestInvestmentStage_Failures(t *testing.T) {
	tools := newTools(t)
	pdfText(tools, "nothing here")
	_, err := (&InvestmentStage{Tools: tools}).Run(t.Context(), finasync.NewHandoff("r", "s.pdf"))
	assert.ErrorContains(t, err, "no holdings")

	pdfText(tools, "ZZZZ 3\n")
	_, err = (&InvestmentStage{Tools: tools}).Run(t.Context(), finasync.NewHandoff("r", "s.pdf"))
	assert.ErrorContains(t, err, "cannot price")

	snap, _ := tools.Store.GetAll(t.Context())
	assert.False(t, snap.Has(finasync.Investments))
}

func TestInvestmentStage_SkipsOtherFiles(t *testing.T) {
	tools := newTools(t)
	tools.Read = func(string, ingest.Options) (*ingest.Document, error) {
		t.Fatal("a skipped stage must not read the file")
		return nil, nil
	}
	for _, file := range []string{"a.csv", "b.xlsx", "c.txt"} {
		r, err := (&InvestmentStage{Tools: tools}).Run(t.Context(), finasync.NewHandoff("r", file))
		require.NoError(t, err)
		assert.Equal(t, finasync.StageSkipped, r.Status, file)
	}
}

func TestAnalyseExpenses(t *testing.T) {
	e, err := AnalyseExpenses(&ingest.Table{
		Header: []string{"date", "AMOUNT", "category"},
		Rows: [][]string{
			{"1", "1.000,50", "Rent"},
			{"2", "20.00", ""},
			{"3", "30", "Rent"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "1050.5", e.Total.String())
	assert.Zero(t, e.Credits)
	require.Len(t, e.Categories, 2)
	assert.Equal(t, "Rent", e.Categories[0].Category)
	assert.Equal(t, "1030.5", e.Categories[0].Amount.String())
	assert.Equal(t, Uncategorized, e.Categories[1].Category)

	_, err = AnalyseExpenses(&ingest.Table{Header: []string{"Date", "Label"}})
	assert.ErrorContains(t, err, "Amount")
}

func TestAnalyseExpenses_MixedSigns(t *testing.T) {
	e, err := AnalyseExpenses(&ingest.Table{
		Header: []string{"Description", "Amount", "Category"},
		Rows: [][]string{
			{"Salary", "+5000", "Income"},
			{"Rent", "-1200", "Housing"},
			{"Shop", "(45.00)", "Food"},
			{"Refund", "12.50", "Food"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "1245", e.Total.String())
	assert.Equal(t, 2, e.Credits)
	require.Len(t, e.Categories, 2)
	assert.Equal(t, "Housing", e.Categories[0].Category)
	assert.Equal(t, "45", e.Categories[1].Amount.String())

	snap := finasync.NewSnapshot()
	snap.Summaries[finasync.Expenses] = e.Summary()
	totals := ComputeTotals(snap, decimal.NewFromInt(5000))
	assert.Equal(t, "1245", totals.Expenses.String())
	assert.Equal(t, "3755", totals.Savings.String())
}

func TestExpenseStage(t *testing.T) {
	tools := newTools(t)
	file := writeFile(t, "march.csv", transactions)

	r, err := (&ExpenseStage{Tools: tools}).Run(t.Context(), finasync.NewHandoff("r", file))
	require.NoError(t, err)
	assert.Equal(t, finasync.StageComplete, r.Status)
	assert.Contains(t, r.Message, "3 transactions")

	snap, err := tools.Store.GetAll(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "Total: $1,100.00\nHousing: $1,000.00\nFood: $100.00", snap.Get(finasync.Expenses))
}

func TestExpenseStage_SkipsPDF(t *testing.T) {
	r, err := (&ExpenseStage{Tools: newTools(t)}).Run(t.Context(), finasync.NewHandoff("r", "statement.pdf"))
	require.NoError(t, err)
	assert.Equal(t, finasync.StageSkipped, r.Status)
}

func TestExpenseStage_UnreadableFile(t *testing.T) {
	file := writeFile(t, "bad.csv", "a|b|c\n1|2|3\n")
	_, err := (&ExpenseStage{Tools: newTools(t)}).Run(t.Context(), finasync.NewHandoff("r", file))
	assert.Error(t, err)
}

func TestComputeTotals(t *testing.T) {
	snap := finasync.NewSnapshot()
	snap.Summaries[finasync.Expenses] = "Total: $1,100.00\nHousing: $1,000.00"
	got := ComputeTotals(snap, decimal.NewFromInt(5000))
	assert.Equal(t, "1100", got.Expenses.String())
	assert.True(t, got.Investments.IsZero(), "missing total counts as zero")
	assert.Equal(t, "3900", got.Savings.String())
}

func TestCFOStage(t *testing.T) {
	tools := newTools(t)
	up := new(fakeUploader)
	tools.Uploader = up
	require.NoError(t, tools.Store.Put(t.Context(), finasync.Expenses, "Total: $6,000.00"))
	require.NoError(t, tools.Store.Put(t.Context(), finasync.Investments, "Total: $3,905.00\nAAPL: 10"))

	h := finasync.NewHandoff("run-1", "statement.pdf")
	r, err := (&CFOStage{Tools: tools}).Run(t.Context(), h)
	require.NoError(t, err)
	assert.Equal(t, finasync.StageComplete, r.Status)
	assert.Contains(t, r.Message, "2/2 files uploaded")

	c := tools.Chart.(*fakeChart)
	assert.Equal(t, 1, c.calls)
	assert.Equal(t, "6000", c.expenses.String())
	assert.Equal(t, "-1000", c.savings.String())
	assert.Equal(t, "3905", c.invested.String())

	content, err := os.ReadFile(filepath.Join(tools.OutputDir, report.FileName))
	require.NoError(t, err)
	assert.Contains(t, string(content), "March 2025")
	assert.Contains(t, string(content), "expenses exceed income")
	assert.Equal(t, []string{report.FileName, "financial_chart.png"}, up.uploaded)
	assert.Contains(t, h.String(), "remote://financial_report.md")
}

func TestCFOStage_NoUploader(t *testing.T) {
	tools := newTools(t)
	tools.HTML = true
	r, err := (&CFOStage{Tools: tools}).Run(t.Context(), finasync.NewHandoff("r", "x.csv"))
	require.NoError(t, err)
	assert.NotContains(t, r.Message, "uploaded")
	assert.FileExists(t, filepath.Join(tools.OutputDir, "financial_report.html"))
}

func TestToolbox(t *testing.T) {
	tools := newTools(t)
	ctx := t.Context()

	res := tools.StockPrice(ctx, "AAPL")
	require.True(t, res.OK())
	assert.Equal(t, 190.5, *res.Price)

	res = tools.StockPrice(ctx, "NOPE")
	assert.Equal(t, finasync.StatusError, res.Status)
	assert.Contains(t, res.ErrorMessage, "Could not fetch price for NOPE")

	res = tools.GetCache(ctx)
	require.True(t, res.OK())
	assert.Equal(t, map[string]string{"expenses": finasync.NoData, "investments": finasync.NoData}, res.Cache)

	assert.True(t, tools.UpdateCache(ctx, "expenses", "Total: $1").OK())
	assert.False(t, tools.UpdateCache(ctx, finasync.LastUpdatedKey, "x").OK())
	res = tools.GetCache(ctx)
	assert.Equal(t, "Total: $1", res.Cache["expenses"])
	assert.Contains(t, res.Cache, finasync.LastUpdatedKey)

	res = tools.RenderChart(100, 4900, 0)
	require.True(t, res.OK())
	assert.NotEmpty(t, res.ImagePath)

	res = tools.Upload(ctx, res.ImagePath)
	assert.False(t, res.OK(), "no uploader configured")

	res = tools.ReadCSV(writeFile(t, "t.csv", transactions))
	require.True(t, res.OK())
	assert.Contains(t, res.Data, "Groceries")
}
