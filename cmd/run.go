package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/finasync"
	"github.com/etnz/finasync/agent"
	"github.com/etnz/finasync/config"
	"github.com/etnz/finasync/pipeline"
	"github.com/google/subcommands"
	"google.golang.org/genai"
)

type runCmd struct {
	llm  bool
	html bool
	json bool
}

func (*runCmd) Name() string { return "run" }
func (*runCmd) Synopsis() string {
	return "analyse a statement or bank export and write the monthly snapshot"
}
func (*runCmd) Usage() string {
	return `finasync run [-llm] [-html] [-json] <file>

  Runs the investment, expense and CFO stages over <file>, a PDF brokerage
  statement or a .csv, .xlsx or .xls bank export. Findings are kept in the
  finding store, the snapshot is written to financial_report.md along with
  financial_chart.png.

  A stage that has nothing to do with the file is skipped, a failing stage
  does not prevent the next ones from running.
`
}

func (c *runCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.llm, "llm", false, "Use Gemini driven stages, whatever the configured mode.")
	f.BoolVar(&c.html, "html", false, "Also write the report as HTML.")
	f.BoolVar(&c.json, "json", false, "Print the run record as JSON.")
}

func (c *runCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: run expects exactly one file")
		return subcommands.ExitUsageError
	}
	file := f.Arg(0)
	if _, err := os.Stat(file); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	cfg, tb, status := setup(ctx)
	if status != subcommands.ExitSuccess {
		return status
	}
	defer closeStore(tb)
	tb.HTML = c.html

	var o *pipeline.Orchestrator
	if c.llm || cfg.Mode == config.ModeLLM {
		client, err := genai.NewClient(ctx, nil)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error initializing Gemini's client:", err)
			return subcommands.ExitFailure
		}
		if o, err = agent.NewOrchestrator(client, cfg.Model, tb); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
	} else {
		o = pipeline.NewRules(tb)
	}

	h, err := o.Run(ctx, file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if h == nil {
			return subcommands.ExitFailure
		}
	}

	if c.json {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(h); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
	} else {
		printMarkdown(runMarkdown(h))
	}

	for _, r := range h.Reports {
		if r.Status == finasync.StageFailed {
			return subcommands.ExitFailure
		}
	}
	if err != nil {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
