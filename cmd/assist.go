package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/finasync/agent"
	"github.com/google/subcommands"
	"google.golang.org/genai"
)

// assistCmd is the subcommand for the AI assistant.
type assistCmd struct{}

func (*assistCmd) Name() string { return "assist" }
func (*assistCmd) Synopsis() string {
	return "ask the analysts and the CFO about your finances"
}
func (*assistCmd) Usage() string {
	return `finasync assist [<question>]

  Starts an interactive session with the finance team: a facilitator asks the
  investment analyst, the expense analyst and the CFO on your behalf. They
  share the finding store with the run command.
`
}
func (*assistCmd) SetFlags(_ *flag.FlagSet) {}

func (c *assistCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, tb, status := setup(ctx)
	if status != subcommands.ExitSuccess {
		return status
	}
	defer closeStore(tb)

	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error initializing Gemini's client:", err)
		return subcommands.ExitFailure
	}

	tools := agent.Tools(tb)
	investment, err := agent.NewInvestmentAnalyst(cfg.Model, tools)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	expense, err := agent.NewExpenseAnalyst(cfg.Model, tools)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	cfo, err := agent.NewCFO(cfg.Model, tools, tb.Uploader.Available())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	a := agent.New(os.Stdout, os.Stdin, cfg.Model, investment, expense, cfo)
	a.Render = func(markdown string) string {
		out, err := renderMarkdown(markdown)
		if err != nil {
			return markdown
		}
		return out
	}
	if err := a.Run(ctx, client, strings.Join(f.Args(), " ")); err != nil {
		fmt.Fprintln(os.Stderr, "Agent failed:", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
