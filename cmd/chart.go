package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/finasync"
	"github.com/etnz/finasync/chart"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

type chartCmd struct {
	dir string
}

func (*chartCmd) Name() string     { return "chart" }
func (*chartCmd) Synopsis() string { return "draw the expenses, savings and stock value chart" }
func (*chartCmd) Usage() string {
	return `finasync chart [-o <dir>] <expenses> <savings> <stock_value>

  Draws the pie chart of the monthly snapshot into financial_chart.png.
  Amounts may be written as "1,200.50" or "$1200.5". Zero and negative
  values are left out of the chart.
`
}
func (c *chartCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.dir, "o", "", "Output directory, the configured one by default.")
}

func (c *chartCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 3 {
		fmt.Fprintln(os.Stderr, "Error: chart expects <expenses> <savings> <stock_value>")
		return subcommands.ExitUsageError
	}
	var values [3]decimal.Decimal
	for i, arg := range f.Args() {
		v, err := finasync.ParseAmount(arg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitUsageError
		}
		values[i] = v
	}

	dir := c.dir
	if dir == "" {
		cfg, err := LoadConfig()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitUsageError
		}
		dir = cfg.OutputDir
	}
	res := chart.New(dir).Outcome(values[0], values[1], values[2])
	if !res.OK() {
		fmt.Fprintln(os.Stderr, res.ErrorMessage)
		return subcommands.ExitFailure
	}
	fmt.Println(res.ImagePath)
	return subcommands.ExitSuccess
}
