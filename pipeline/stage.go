// Package pipeline runs the three analysis stages over an uploaded file:
// investments, then expenses, then the CFO synthesis.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/etnz/finasync"
	"github.com/etnz/finasync/ingest"
)

// Stage names, as recorded in the handoff.
const (
	InvestmentName = "investment"
	ExpenseName    = "expense"
	CFOName        = "cfo"
)

// A Stage is one step of the pipeline. Run returns the stage report, an error
// marks the stage as failed.
type Stage interface {
	Name() string
	Run(ctx context.Context, h *finasync.Handoff) (finasync.StageReport, error)
}

// Skip returns the report of a stage that has nothing to do with a file.
func Skip(stage, file string) finasync.StageReport {
	return finasync.StageReport{
		Stage:   stage,
		Status:  finasync.StageSkipped,
		Message: fmt.Sprintf("nothing to analyse in %q", file),
	}
}

// Accepts reports whether file is of one of the kinds. Unsupported files are
// not accepted, other errors are returned.
func Accepts(file string, kinds ...ingest.Kind) (bool, error) {
	kind, err := ingest.KindOf(file)
	if errors.Is(err, ingest.ErrUnsupported) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	for _, k := range kinds {
		if k == kind {
			return true, nil
		}
	}
	return false, nil
}
