package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/etnz/finasync"
	"github.com/etnz/finasync/docs"
	"github.com/etnz/finasync/ingest"
	"github.com/etnz/finasync/pipeline"
	"github.com/etnz/finasync/report"
	zlog "github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

// DefaultModel is the Gemini model of the experts.
const DefaultModel = "gemini-2.5-flash-lite"

func newStageExpert(name, description, model, topic string, tools []*Func) (*Expert, error) {
	instructions, err := docs.Instructions(topic)
	if err != nil {
		return nil, err
	}
	if model == "" {
		model = DefaultModel
	}
	e := NewExpert(name, description)
	e.ModelName = model
	e.Config = &genai.GenerateContentConfig{
		Tools:             []*genai.Tool{{FunctionDeclarations: NewDeclaration(tools)}},
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: instructions}}},
	}
	e.Library = NewLibrary(tools)
	return e, nil
}

func NewInvestmentAnalyst(model string, tools map[string]*Func) (*Expert, error) {
	return newStageExpert("InvestmentAnalyst",
		`The investment analyst reads brokerage statements, prices the holdings
		and knows the value of the user's stock portfolio.`,
		model, pipeline.InvestmentName, Select(tools, ReadPDF, StockPrice, UpdateCache))
}

func NewExpenseAnalyst(model string, tools map[string]*Func) (*Expert, error) {
	return newStageExpert("ExpenseAnalyst",
		`The expense analyst reads bank exports and knows what the user spent
		this month, per category.`,
		model, pipeline.ExpenseName, Select(tools, ReadExcel, ReadCSV, UpdateCache))
}

// NewCFO returns the CFO expert, it can upload files only when upload is set.
func NewCFO(model string, tools map[string]*Func, upload bool) (*Expert, error) {
	names := []string{GetCache, GenerateChart}
	if upload {
		names = append(names, UploadFile)
	}
	return newStageExpert("CFO",
		`The CFO consolidates the findings of the analysts into the monthly
		snapshot: income, expenses, savings and investments.`,
		model, pipeline.CFOName, Select(tools, names...))
}

// Stage runs a pipeline stage by asking an expert.
type Stage struct {
	name   string
	expert *Expert
	client *genai.Client
	// kinds of files the stage analyses, every file when empty.
	kinds []ingest.Kind
	// prompt is the first message of the chat.
	prompt func(h *finasync.Handoff) string
	// finish is called with the expert answer.
	finish func(ctx context.Context, h *finasync.Handoff, answer string) (string, error)
}

func (s *Stage) Name() string { return s.name }

func (s *Stage) Run(ctx context.Context, h *finasync.Handoff) (finasync.StageReport, error) {
	if len(s.kinds) > 0 {
		ok, err := pipeline.Accepts(h.File, s.kinds...)
		if err != nil {
			return finasync.StageReport{}, err
		}
		if !ok {
			return pipeline.Skip(s.name, h.File), nil
		}
	}
	if s.client == nil {
		return finasync.StageReport{}, errors.New("no Gemini client")
	}
	// every run is a new conversation.
	if err := s.expert.Start(ctx, s.client); err != nil {
		return finasync.StageReport{}, fmt.Errorf("cannot start %s: %w", s.expert.Name, err)
	}
	content, err := s.expert.Ask(ctx, &genai.Part{Text: s.prompt(h)})
	if err != nil {
		return finasync.StageReport{}, fmt.Errorf("%s failed: %w", s.expert.Name, err)
	}
	answer := Text(content)
	h.Say(answer)

	msg := firstLine(answer)
	if s.finish != nil {
		if msg, err = s.finish(ctx, h, answer); err != nil {
			return finasync.StageReport{}, err
		}
	}
	return finasync.StageReport{Stage: s.name, Status: finasync.StageComplete, Message: msg}, nil
}

// checkToken warns when an analyst did not hand the file over.
func checkToken(_ context.Context, h *finasync.Handoff, answer string) (string, error) {
	file, ok := finasync.ParseHandoffToken(answer)
	if !ok || file != h.File {
		zlog.Warn().Str("run", h.RunID).Str("file", file).Msg("analyst did not hand the file over")
	}
	return firstLine(answer), nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return s
}

// NewOrchestrator returns the pipeline of the Gemini driven stages over t.
func NewOrchestrator(client *genai.Client, model string, t *pipeline.Toolbox) (*pipeline.Orchestrator, error) {
	tools := Tools(t)
	investment, err := NewInvestmentAnalyst(model, tools)
	if err != nil {
		return nil, err
	}
	expense, err := NewExpenseAnalyst(model, tools)
	if err != nil {
		return nil, err
	}
	upload := t.Uploader != nil && t.Uploader.Available()
	cfo, err := NewCFO(model, tools, upload)
	if err != nil {
		return nil, err
	}

	income, _ := t.Income.Float64()
	return pipeline.New(
		&Stage{
			name:   pipeline.InvestmentName,
			expert: investment,
			client: client,
			kinds:  []ingest.Kind{ingest.PDF},
			prompt: func(h *finasync.Handoff) string { return "Analyze the file: " + h.File },
			finish: checkToken,
		},
		&Stage{
			name:   pipeline.ExpenseName,
			expert: expense,
			client: client,
			kinds:  []ingest.Kind{ingest.Spreadsheet, ingest.CSV},
			prompt: func(h *finasync.Handoff) string { return h.Token(1) },
			finish: checkToken,
		},
		&Stage{
			name:   pipeline.CFOName,
			expert: cfo,
			client: client,
			prompt: func(h *finasync.Handoff) string {
				return h.Token(2) + "\nThe monthly income is $" + quote(income) + "."
			},
			finish: func(ctx context.Context, h *finasync.Handoff, answer string) (string, error) {
				return saveAnswer(ctx, t, answer)
			},
		},
	), nil
}

// saveAnswer writes the CFO answer as the report and uploads it when possible.
func saveAnswer(ctx context.Context, t *pipeline.Toolbox, answer string) (string, error) {
	paths, err := report.Save(t.OutputDir, answer, t.HTML)
	if err != nil {
		return "", err
	}
	msg := "report " + paths[0]
	if t.Uploader != nil && t.Uploader.Available() {
		res := t.Upload(ctx, paths[0])
		if !res.OK() {
			zlog.Warn().Str("error", res.ErrorMessage).Msg("cannot upload report")
		} else {
			msg += ", uploaded to " + res.Location
		}
	}
	return msg, nil
}
