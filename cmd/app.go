// Package cmd implements the finasync command line application.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/finasync"
	"github.com/etnz/finasync/chart"
	"github.com/etnz/finasync/config"
	"github.com/etnz/finasync/eodhd"
	"github.com/etnz/finasync/ingest"
	"github.com/etnz/finasync/pipeline"
	"github.com/etnz/finasync/store"
	"github.com/etnz/finasync/upload"
	"github.com/google/subcommands"
)

// Commands are the finasync subcommands, a main package registers them.
var Commands = []subcommands.Command{
	&runCmd{},
	&readCmd{},
	&priceCmd{},
	&cacheCmd{},
	&chartCmd{},
	&topicCmd{},
	&assistCmd{},
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var (
	configPath  = flag.String("config", "", "Path to the configuration file, "+config.DefaultFile+" when it exists.")
	storeFlag   = flag.String("store", "", "Finding store backend: file, memory, sqlite or postgres.")
	storePath   = flag.String("store-path", "", "Path of the file store, or DSN of the sqlite and postgres stores.")
	sessionFlag = flag.String("session", "", "Session of the sqlite and postgres stores.")
	Verbose     = flag.Bool("v", false, "Verbose logging.")
)

// InitLog sets up logging according to the global flags.
func InitLog() { finasync.InitLog(os.Stderr, *Verbose) }

// LoadConfig loads the configuration file, then the environment, then the
// global flags.
func LoadConfig() (*config.Config, error) {
	c, err := config.Load(*configPath)
	if err != nil {
		return nil, err
	}
	if err := c.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}
	applyFlags(c)
	return c, c.Validate()
}

func applyFlags(c *config.Config) {
	if *storeFlag != "" {
		c.Store.Backend = *storeFlag
	}
	if *storePath != "" {
		if c.Store.Backend == config.BackendFile {
			c.Store.Path = *storePath
		} else {
			c.Store.DSN = *storePath
		}
	}
	if *sessionFlag != "" {
		c.Store.Session = *sessionFlag
	}
}

// NewToolbox opens the collaborators of the pipeline. The returned store must
// be closed.
func NewToolbox(ctx context.Context, c *config.Config) (*pipeline.Toolbox, error) {
	s, err := store.Open(ctx, c.Store)
	if err != nil {
		return nil, fmt.Errorf("cannot open the finding store: %w", err)
	}
	return &pipeline.Toolbox{
		Store:     s,
		Prices:    eodhd.New(c.EODHD.APIKey, c.EODHD.BaseURL),
		Chart:     chart.New(c.OutputDir),
		Uploader:  upload.New(c.Upload),
		Ingest:    ingest.Options{PDFMaxChars: c.Ingest.PDFMaxChars},
		Income:    c.IncomeDecimal(),
		OutputDir: c.OutputDir,
	}, nil
}

// setup loads the configuration and opens the toolbox, reporting errors the
// way commands do.
func setup(ctx context.Context) (*config.Config, *pipeline.Toolbox, subcommands.ExitStatus) {
	c, err := LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return nil, nil, subcommands.ExitUsageError
	}
	tb, err := NewToolbox(ctx, c)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return nil, nil, subcommands.ExitFailure
	}
	return c, tb, subcommands.ExitSuccess
}

// closeStore closes the toolbox store and reports errors.
func closeStore(tb *pipeline.Toolbox) {
	if err := tb.Store.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Error closing the finding store: %v\n", err)
	}
}

// printMarkdown prints markdown content to the terminal.
func printMarkdown(content string) {
	out, err := renderMarkdown(content)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: cannot render markdown: %v\n", err)
		out = content
	}
	fmt.Print(out)
}

func renderMarkdown(content string) (string, error) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err != nil {
		return "", err
	}
	return r.Render(content)
}
