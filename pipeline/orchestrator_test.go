package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/etnz/finasync"
	"github.com/etnz/finasync/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStage struct {
	name string
	run  func(ctx context.Context, h *finasync.Handoff) (finasync.StageReport, error)
}

func (s *fakeStage) Name() string { return s.name }
func (s *fakeStage) Run(ctx context.Context, h *finasync.Handoff) (finasync.StageReport, error) {
	return s.run(ctx, h)
}

func recorder(name string, order *[]string, err error) *fakeStage {
	return &fakeStage{name: name, run: func(context.Context, *finasync.Handoff) (finasync.StageReport, error) {
		*order = append(*order, name)
		return finasync.StageReport{Status: finasync.StageComplete}, err
	}}
}

func TestOrchestrator_OrderAndContinueOnFailure(t *testing.T) {
	var order []string
	o := New(recorder("a", &order, nil), recorder("b", &order, errors.New("boom")), recorder("c", &order, nil))
	o.NewID = func() string { return "run-1" }

	h, err := o.Run(t.Context(), "file.csv")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, order)
	assert.Equal(t, Done, o.State())
	assert.Equal(t, "run-1", h.RunID)

	require.Len(t, h.Reports, 3)
	assert.Equal(t, finasync.StageComplete, h.Reports[0].Status)
	assert.Equal(t, finasync.StageReport{Stage: "b", Status: finasync.StageFailed, Message: "boom"}, h.Reports[1])
	assert.Equal(t, "c", h.Reports[2].Stage)

	file, ok := finasync.ParseHandoffToken(h.String())
	assert.True(t, ok)
	assert.Equal(t, "file.csv", file)
	assert.Contains(t, h.String(), "Step 1 Complete. Passing file: file.csv")
	assert.Contains(t, h.String(), "Step 2 Complete. Passing file: file.csv")
}

func TestOrchestrator_States(t *testing.T) {
	var o *Orchestrator
	var seen []State
	probe := func(name string) *fakeStage {
		return &fakeStage{name: name, run: func(context.Context, *finasync.Handoff) (finasync.StageReport, error) {
			seen = append(seen, o.State())
			return finasync.StageReport{Status: finasync.StageComplete}, nil
		}}
	}
	o = New(probe("a"), probe("b"), probe("c"))
	assert.Equal(t, Idle, o.State())
	_, err := o.Run(t.Context(), "f.pdf")
	require.NoError(t, err)
	assert.Equal(t, []State{Stage1Running, Stage2Running, Stage3Running}, seen)
	assert.Equal(t, "done", o.State().String())

	// a done orchestrator accepts a new run.
	_, err = o.Run(t.Context(), "f.pdf")
	assert.NoError(t, err)
}

func TestOrchestrator_RejectsConcurrentRun(t *testing.T) {
	var o *Orchestrator
	var nested error
	reentrant := &fakeStage{name: "a", run: func(ctx context.Context, h *finasync.Handoff) (finasync.StageReport, error) {
		_, nested = o.Run(ctx, "other.csv")
		return finasync.StageReport{Status: finasync.StageComplete}, nil
	}}
	var order []string
	o = New(reentrant, recorder("b", &order, nil), recorder("c", &order, nil))

	_, err := o.Run(t.Context(), "f.csv")
	require.NoError(t, err)
	assert.ErrorIs(t, nested, ErrRunning)
}

func TestOrchestrator_Cancel(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	var order []string
	first := &fakeStage{name: "a", run: func(context.Context, *finasync.Handoff) (finasync.StageReport, error) {
		order = append(order, "a")
		cancel()
		return finasync.StageReport{Status: finasync.StageComplete}, nil
	}}
	o := New(first, recorder("b", &order, nil), recorder("c", &order, nil))

	h, err := o.Run(ctx, "f.csv")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"a"}, order)
	assert.Len(t, h.Reports, 1)
	assert.Equal(t, Idle, o.State())
}

func TestOrchestrator_NoFile(t *testing.T) {
	var order []string
	o := New(recorder("a", &order, nil), recorder("b", &order, nil), recorder("c", &order, nil))
	_, err := o.Run(t.Context(), "")
	assert.Error(t, err)
	assert.Empty(t, order)
}

func TestNewRules_EndToEnd(t *testing.T) {
	tools := newTools(t)
	file := writeFile(t, "march.csv", transactions)

	h, err := NewRules(tools).Run(t.Context(), file)
	require.NoError(t, err)

	status := make(map[string]finasync.StageStatus)
	for _, r := range h.Reports {
		status[r.Stage] = r.Status
	}
	assert.Equal(t, map[string]finasync.StageStatus{
		InvestmentName: finasync.StageSkipped,
		ExpenseName:    finasync.StageComplete,
		CFOName:        finasync.StageComplete,
	}, status)

	content, err := os.ReadFile(filepath.Join(tools.OutputDir, report.FileName))
	require.NoError(t, err)
	assert.Contains(t, string(content), "$3,900.00")
	assert.Contains(t, string(content), finasync.NoData)
}
