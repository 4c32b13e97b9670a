package report

import (
	"os"
	"path/filepath"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/etnz/finasync"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() *Report {
	findings := finasync.NewSnapshot()
	findings.Summaries[finasync.Expenses] = "Total: $1,200.00\nRent: $1,000.00\nFood: $200.00"
	findings.LastUpdated = time.Date(2025, 3, 31, 18, 0, 0, 0, time.UTC)
	return &Report{
		Date:        time.Date(2025, 3, 31, 18, 5, 0, 0, time.UTC),
		RunID:       "run-1",
		File:        "/tmp/statement.csv",
		Income:      finasync.USD(5000),
		Expenses:    finasync.USD(1200),
		Investments: finasync.USD(0),
		Savings:     finasync.USD(3800),
		Findings:    findings,
		ChartPath:   "/tmp/financial_chart.png",
		Stages: []finasync.StageReport{
			{Stage: "investment", Status: finasync.StageSkipped, Message: "not a PDF"},
			{Stage: "expense", Status: finasync.StageComplete},
		},
	}
}

func TestMarkdown(t *testing.T) {
	got := sample().Markdown()

	assert.Contains(t, got, "# Monthly Financial Snapshot, March 2025")
	assert.Contains(t, got, "$3,800.00")
	assert.Contains(t, got, "$1,200.00")
	assert.Contains(t, got, "Rent: $1,000.00")
	assert.Contains(t, got, finasync.NoData, "investments were never written")
	assert.Contains(t, got, "financial_chart.png")
	assert.Contains(t, got, "skipped")
	assert.NotContains(t, got, "Warning")
}

func TestMarkdown_Overspent(t *testing.T) {
	r := sample()
	r.Savings = finasync.USD(-100)
	assert.Contains(t, r.Markdown(), "expenses exceed income")
}

func TestMarkdown_AccentedCategory(t *testing.T) {
	r := sample()
	r.Findings.Summaries["épargne"] = "Total: $300.00"
	out := r.Markdown()
	assert.True(t, utf8.ValidString(out))
	assert.Contains(t, out, "### Épargne")

	assert.Equal(t, "", title(""))
	assert.Equal(t, "Expenses", title("expenses"))
}

func TestHTML(t *testing.T) {
	h, err := HTML("# Title\n\n| a | b |\n|---|---|\n| 1 | 2 |\n")
	require.NoError(t, err)
	assert.Contains(t, h, "<h1>Title</h1>")
}

func TestWrite(t *testing.T) {
	dir := t.TempDir()
	paths, err := sample().Write(dir, true)
	require.NoError(t, err)
	require.Len(t, paths, 2)
	assert.Equal(t, filepath.Join(dir, FileName), paths[0])
	assert.Equal(t, filepath.Join(dir, "financial_report.html"), paths[1])

	content, err := os.ReadFile(paths[1])
	require.NoError(t, err)
	assert.Contains(t, string(content), "<h1>")
}

func TestWrite_MissingDir(t *testing.T) {
	_, err := sample().Write(filepath.Join(t.TempDir(), "missing"), false)
	assert.Error(t, err)
}
