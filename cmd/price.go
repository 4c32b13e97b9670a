package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/finasync"
	"github.com/etnz/finasync/eodhd"
	"github.com/google/subcommands"
	"github.com/olekukonko/tablewriter"
)

type priceCmd struct {
	json   bool
	search bool
}

func (*priceCmd) Name() string     { return "price" }
func (*priceCmd) Synopsis() string { return "look up the current price of stocks on eodhd.com" }
func (*priceCmd) Usage() string {
	return `finasync price [-json] <ticker>...
finasync price -search <term>...

  Prints the current price of every ticker, US exchange unless the ticker
  names another one (e.g. MC.PA). The API key is read from the configuration
  or EODHD_API_KEY, the public demo key is used otherwise.

  With -search, looks up the symbols matching a company name or an ISIN.
`
}
func (c *priceCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.json, "json", false, "Print the tool outcome of each lookup as JSON.")
	f.BoolVar(&c.search, "search", false, "Search symbols instead of looking up prices.")
}

func (c *priceCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: at least one ticker expected")
		return subcommands.ExitUsageError
	}
	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	client := eodhd.New(cfg.EODHD.APIKey, cfg.EODHD.BaseURL)
	if c.search {
		return c.searchSymbols(ctx, client, strings.Join(f.Args(), " "))
	}

	status := subcommands.ExitSuccess
	for _, ticker := range f.Args() {
		res := client.Outcome(ctx, ticker)
		if !res.OK() {
			status = subcommands.ExitFailure
		}
		if c.json {
			out, _ := json.Marshal(res)
			fmt.Println(string(out))
			continue
		}
		if !res.OK() {
			fmt.Fprintln(os.Stderr, res.ErrorMessage)
			continue
		}
		fmt.Printf("%s\t%s\n", eodhd.Symbol(ticker), finasync.USD(*res.Price))
	}
	return status
}

func (c *priceCmd) searchSymbols(ctx context.Context, client *eodhd.Client, term string) subcommands.ExitStatus {
	results, err := client.Search(ctx, term)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error searching %q: %v\n", term, err)
		return subcommands.ExitFailure
	}
	if c.json {
		out, _ := json.MarshalIndent(results, "", "  ")
		fmt.Println(string(out))
		return subcommands.ExitSuccess
	}
	tw := tablewriter.NewWriter(os.Stdout)
	tw.SetHeader([]string{"Symbol", "Name", "Type", "ISIN", "Currency", "Previous Close"})
	for _, r := range results {
		tw.Append([]string{r.Symbol(), r.Name, r.Type, r.ISIN, r.Currency, fmt.Sprintf("%.2f", r.PreviousClose)})
	}
	tw.Render()
	return subcommands.ExitSuccess
}
