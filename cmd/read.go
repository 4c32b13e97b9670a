package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/etnz/finasync/ingest"
	"github.com/google/subcommands"
)

type readCmd struct{}

func (*readCmd) Name() string     { return "read" }
func (*readCmd) Synopsis() string { return "print a file the way the analysts read it" }
func (*readCmd) Usage() string {
	return `finasync read <file>

  Reads a .csv, .xlsx, .xls or .pdf file with the matching ingestor and
  prints it: tables as markdown, PDFs as their extracted text.
`
}
func (c *readCmd) SetFlags(f *flag.FlagSet) {}

func (c *readCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: read expects exactly one file")
		return subcommands.ExitUsageError
	}
	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	doc, err := ingest.Read(f.Arg(0), ingest.Options{PDFMaxChars: cfg.Ingest.PDFMaxChars})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", f.Arg(0), err)
		return subcommands.ExitFailure
	}
	printMarkdown(documentMarkdown(filepath.Base(doc.Path), doc.Text, doc.Kind == ingest.PDF))
	return subcommands.ExitSuccess
}
