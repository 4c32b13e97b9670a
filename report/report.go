// Package report renders the monthly financial snapshot written at the end of
// a pipeline run.
package report

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/etnz/finasync"
	md "github.com/nao1215/markdown"
	zlog "github.com/rs/zerolog/log"
	"github.com/yuin/goldmark"
)

// FileName is the name of the markdown report, in the output directory.
const FileName = "financial_report.md"

// Report is the CFO monthly snapshot.
type Report struct {
	Date        time.Time
	RunID       string
	File        string
	Income      finasync.Money
	Expenses    finasync.Money
	Investments finasync.Money
	Savings     finasync.Money
	Findings    finasync.Snapshot
	ChartPath   string
	Stages      []finasync.StageReport
}

// Markdown renders the report.
func (r *Report) Markdown() string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Monthly Financial Snapshot, %s", r.Date.Format("January 2006")))
	intro := fmt.Sprintf("Generated on %s", r.Date.Format(finasync.TimeLayout))
	if r.File != "" {
		intro += fmt.Sprintf(" from %s", md.Code(filepath.Base(r.File)))
	}
	doc.PlainText(intro + ".")

	doc.H2("Totals")
	doc.Table(md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{"Item", "Amount"},
		Rows: [][]string{
			{"Income", r.Income.String()},
			{"Expenses", r.Expenses.String()},
			{md.Bold("Savings"), md.Bold(r.Savings.String())},
			{"Investments", r.Investments.String()},
		},
	})
	if r.Savings.IsNegative() {
		doc.PlainText(md.Bold("Warning:") + " expenses exceed income this month.")
	}

	doc.H2("Findings")
	for _, c := range r.Findings.Categories() {
		doc.H3(title(string(c)))
		var lines []string
		for _, l := range strings.Split(r.Findings.Get(c), "\n") {
			if l = strings.TrimSpace(l); l != "" {
				lines = append(lines, l)
			}
		}
		doc.BulletList(lines...)
	}
	if !r.Findings.LastUpdated.IsZero() {
		doc.PlainText(fmt.Sprintf("Findings last updated %s.", r.Findings.LastUpdated.Format(finasync.TimeLayout)))
	}

	if r.ChartPath != "" {
		doc.H2("Chart")
		doc.PlainText(md.Image("Financial overview", filepath.Base(r.ChartPath)))
	}

	if len(r.Stages) > 0 {
		doc.H2("Pipeline")
		table := md.TableSet{
			Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft, md.AlignLeft},
			Header:    []string{"Stage", "Status", "Message"},
		}
		for _, s := range r.Stages {
			table.Rows = append(table.Rows, []string{s.Stage, string(s.Status), oneLine(s.Message)})
		}
		doc.Table(table)
	}
	if r.RunID != "" {
		doc.PlainText(fmt.Sprintf("Run %s.", md.Code(r.RunID)))
	}
	return doc.String()
}

// HTML converts markdown to HTML.
func HTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("cannot convert report to HTML: %w", err)
	}
	return buf.String(), nil
}

// Write saves the report in dir, and its HTML rendition when html is set. It
// returns the paths of the written files, markdown first.
func (r *Report) Write(dir string, html bool) ([]string, error) {
	return Save(dir, r.Markdown(), html)
}

// Save writes a markdown report as FileName in dir, and its HTML rendition
// when html is set.
func Save(dir, markdown string, html bool) ([]string, error) {
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte(markdown), 0o644); err != nil {
		return nil, fmt.Errorf("cannot write report: %w", err)
	}
	paths := []string{path}
	if html {
		h, err := HTML(markdown)
		if err != nil {
			return paths, err
		}
		hpath := strings.TrimSuffix(path, filepath.Ext(path)) + ".html"
		if err := os.WriteFile(hpath, []byte(h), 0o644); err != nil {
			return paths, fmt.Errorf("cannot write report: %w", err)
		}
		paths = append(paths, hpath)
	}
	zlog.Info().Strs("files", paths).Msg("report written")
	return paths, nil
}

func title(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	if n == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[n:]
}

func oneLine(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return strings.ReplaceAll(s, "|", `\|`)
}
