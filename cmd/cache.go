package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/etnz/finasync"
	"github.com/google/subcommands"
	"github.com/olekukonko/tablewriter"
)

// cacheCmd is the top-level command for the finding store.
type cacheCmd struct{}

func (*cacheCmd) Name() string     { return "cache" }
func (*cacheCmd) Synopsis() string { return "inspect or edit the monthly findings" }
func (*cacheCmd) Usage() string {
	return `finasync cache <subcommand> <options>

Subcommands:
  show    print every finding
  put     replace the finding of a category
`
}
func (c *cacheCmd) SetFlags(f *flag.FlagSet) {}

func (c *cacheCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	commander := subcommands.NewCommander(f, "cache")
	commander.Register(&cacheShowCmd{}, "")
	commander.Register(&cachePutCmd{}, "")
	return commander.Execute(ctx, args...)
}

type cacheShowCmd struct {
	json bool
}

func (*cacheShowCmd) Name() string     { return "show" }
func (*cacheShowCmd) Synopsis() string { return "print every finding" }
func (*cacheShowCmd) Usage() string {
	return `finasync cache show [-json]

  Prints the findings of every category, the known ones always listed.
`
}
func (c *cacheShowCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.json, "json", false, "Print the get_monthly_cache tool outcome as JSON.")
}

func (c *cacheShowCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	_, tb, status := setup(ctx)
	if status != subcommands.ExitSuccess {
		return status
	}
	defer closeStore(tb)

	if c.json {
		out, err := json.MarshalIndent(tb.GetCache(ctx), "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Println(string(out))
		return subcommands.ExitSuccess
	}

	snap, err := tb.Store.GetAll(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	writeSnapshot(os.Stdout, snap, time.Now())
	return subcommands.ExitSuccess
}

// writeSnapshot prints the findings as a table.
func writeSnapshot(w io.Writer, snap finasync.Snapshot, now time.Time) {
	tw := tablewriter.NewWriter(w)
	tw.SetHeader([]string{"Category", "Total", "Summary"})
	tw.SetAutoWrapText(false)
	tw.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, c := range snap.Categories() {
		summary := snap.Get(c)
		total := "-"
		if v, ok := finasync.ParseTotal(summary); ok {
			total = finasync.USD(v).String()
		}
		tw.Append([]string{string(c), total, strings.ReplaceAll(summary, "\n", " | ")})
	}
	tw.Render()

	if snap.LastUpdated.IsZero() {
		fmt.Fprintln(w, "Never updated.")
		return
	}
	fmt.Fprintf(w, "Last updated %s (%s).\n", humanize.RelTime(snap.LastUpdated, now, "ago", "from now"), snap.LastUpdated.Format(finasync.TimeLayout))
}

type cachePutCmd struct{}

func (*cachePutCmd) Name() string     { return "put" }
func (*cachePutCmd) Synopsis() string { return "replace the finding of a category" }
func (*cachePutCmd) Usage() string {
	return `finasync cache put <category> <summary>...

  Replaces the finding of <category> with the summary, the remaining
  arguments joined by spaces. Use "-" to read the summary from stdin.
`
}
func (c *cachePutCmd) SetFlags(f *flag.FlagSet) {}

func (c *cachePutCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() < 2 {
		fmt.Fprintln(os.Stderr, "Error: put expects <category> <summary>")
		return subcommands.ExitUsageError
	}
	category, summary := f.Arg(0), strings.Join(f.Args()[1:], " ")
	if summary == "-" {
		content, err := io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading stdin: %v\n", err)
			return subcommands.ExitFailure
		}
		summary = strings.TrimSpace(string(content))
	}

	_, tb, status := setup(ctx)
	if status != subcommands.ExitSuccess {
		return status
	}
	defer closeStore(tb)

	res := tb.UpdateCache(ctx, category, summary)
	if !res.OK() {
		fmt.Fprintf(os.Stderr, "Error: %s\n", res.ErrorMessage)
		return subcommands.ExitFailure
	}
	fmt.Println(res.Data)
	return subcommands.ExitSuccess
}
