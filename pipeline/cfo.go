package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/etnz/finasync"
	"github.com/etnz/finasync/report"
	zlog "github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Totals are the figures of the monthly snapshot.
type Totals struct {
	Income      decimal.Decimal
	Expenses    decimal.Decimal
	Investments decimal.Decimal
	Savings     decimal.Decimal
}

// ComputeTotals reads the totals out of the findings. A category without a
// readable total counts as zero.
func ComputeTotals(snap finasync.Snapshot, income decimal.Decimal) Totals {
	t := Totals{Income: income}
	if v, ok := finasync.ParseTotal(snap.Get(finasync.Expenses)); ok {
		t.Expenses = v.Abs()
	}
	if v, ok := finasync.ParseTotal(snap.Get(finasync.Investments)); ok {
		t.Investments = v
	}
	t.Savings = income.Sub(t.Expenses)
	return t
}

// CFOStage consolidates the findings into the monthly snapshot: chart, report
// and their upload.
type CFOStage struct {
	Tools *Toolbox
}

func (s *CFOStage) Name() string { return CFOName }

func (s *CFOStage) Run(ctx context.Context, h *finasync.Handoff) (finasync.StageReport, error) {
	snap, err := s.Tools.Store.GetAll(ctx)
	if err != nil {
		return finasync.StageReport{}, fmt.Errorf("cannot read findings: %w", err)
	}
	t := ComputeTotals(snap, s.Tools.Income)

	r := &report.Report{
		Date:        s.Tools.now(),
		RunID:       h.RunID,
		File:        h.File,
		Income:      finasync.USD(t.Income),
		Expenses:    finasync.USD(t.Expenses),
		Investments: finasync.USD(t.Investments),
		Savings:     finasync.USD(t.Savings),
		Findings:    snap,
		Stages:      h.Reports,
	}

	var outputs []string
	if path, err := s.Tools.Chart.Render(t.Expenses, t.Savings, t.Investments); err != nil {
		// the report is still worth writing without its chart.
		zlog.Warn().Err(err).Msg("cannot render chart")
	} else {
		r.ChartPath = path
		outputs = append(outputs, path)
	}

	paths, err := r.Write(s.Tools.OutputDir, s.Tools.HTML)
	if err != nil {
		return finasync.StageReport{}, err
	}
	outputs = append(paths, outputs...)

	msg := fmt.Sprintf("savings %s on %s income, report %s", r.Savings, r.Income, paths[0])
	if up := s.Tools.uploader(); up.Available() {
		var locations []string
		for _, p := range outputs {
			res := s.Tools.Upload(ctx, p)
			if !res.OK() {
				zlog.Warn().Str("file", p).Str("error", res.ErrorMessage).Msg("upload failed")
				continue
			}
			locations = append(locations, res.Location)
		}
		msg += fmt.Sprintf(", %d/%d files uploaded", len(locations), len(outputs))
		if len(locations) > 0 {
			h.Say("Uploaded: " + strings.Join(locations, ", "))
		}
	}
	h.Say(r.Markdown())
	return finasync.StageReport{Stage: s.Name(), Status: finasync.StageComplete, Message: msg}, nil
}
