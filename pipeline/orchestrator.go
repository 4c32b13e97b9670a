package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/etnz/finasync"
	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"
)

// ErrRunning is returned when a run is requested while another one is active.
var ErrRunning = errors.New("a pipeline run is already active")

// State is the orchestrator progress.
type State int

const (
	Idle State = iota
	Stage1Running
	Stage2Running
	Stage3Running
	Done
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Stage1Running:
		return "stage 1 running"
	case Stage2Running:
		return "stage 2 running"
	case Stage3Running:
		return "stage 3 running"
	case Done:
		return "done"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Orchestrator runs the investment, expense and CFO stages in this order over
// one file. A failed stage is recorded and the next one still runs.
type Orchestrator struct {
	mu     sync.Mutex
	state  State
	stages [3]Stage
	// NewID returns run identifiers, random UUIDs by default.
	NewID func() string
}

// New returns an idle orchestrator.
func New(investment, expense, cfo Stage) *Orchestrator {
	return &Orchestrator{
		stages: [3]Stage{investment, expense, cfo},
		NewID:  uuid.NewString,
	}
}

// NewRules returns the orchestrator of the deterministic stages sharing tools.
func NewRules(tools *Toolbox) *Orchestrator {
	return New(&InvestmentStage{Tools: tools}, &ExpenseStage{Tools: tools}, &CFOStage{Tools: tools})
}

// State returns the current state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func (o *Orchestrator) set(s State) {
	o.mu.Lock()
	o.state = s
	o.mu.Unlock()
}

// Run processes file. It returns the handoff of the run even when the run was
// interrupted by ctx.
func (o *Orchestrator) Run(ctx context.Context, file string) (*finasync.Handoff, error) {
	if file == "" {
		return nil, errors.New("no file to process")
	}
	o.mu.Lock()
	if o.state != Idle && o.state != Done {
		o.mu.Unlock()
		return nil, ErrRunning
	}
	o.state = Stage1Running
	o.mu.Unlock()

	h := finasync.NewHandoff(o.NewID(), file)
	log := zlog.With().Str("run", h.RunID).Str("file", file).Logger()
	log.Info().Msg("pipeline started")

	for i, stage := range o.stages {
		if err := ctx.Err(); err != nil {
			o.set(Idle)
			return h, fmt.Errorf("pipeline interrupted before %s: %w", stage.Name(), err)
		}
		o.set(Stage1Running + State(i))

		r, err := stage.Run(ctx, h)
		if err != nil {
			r = finasync.StageReport{Status: finasync.StageFailed, Message: err.Error()}
		}
		if r.Stage == "" {
			r.Stage = stage.Name()
		}
		h.Record(r)
		log.Info().Str("stage", r.Stage).Str("status", string(r.Status)).Msg(r.Message)

		if i < len(o.stages)-1 {
			h.Say(h.Token(i + 1))
		}
	}
	o.set(Done)
	log.Info().Msg("pipeline done")
	return h, nil
}
