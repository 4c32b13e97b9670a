package cmd

import (
	"flag"

	"github.com/etnz/finasync"
	"github.com/etnz/finasync/docs"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// Completion returns the shell completion of the command line, installed with
// COMP_INSTALL=1 finasync.
func Completion() *complete.Command {
	topics, _ := docs.GetAllTopics()
	categories := make(predict.Set, 0, len(finasync.KnownCategories))
	for _, c := range finasync.KnownCategories {
		categories = append(categories, string(c))
	}
	documents := predict.Or(predict.Files("*.csv"), predict.Files("*.xlsx"), predict.Files("*.xls"), predict.Files("*.pdf"))
	args := map[string]complete.Predictor{
		"run":   documents,
		"read":  documents,
		"topic": predict.Set(append(topics, "*")),
	}

	root := &complete.Command{
		Sub:   make(map[string]*complete.Command),
		Flags: flagPredictors(flag.CommandLine),
	}
	root.Flags["config"] = predict.Files("*.yaml")
	root.Flags["store"] = predict.Set{"file", "memory", "sqlite", "postgres"}

	for _, c := range Commands {
		sub := commandCompletion(c)
		sub.Args = args[c.Name()]
		root.Sub[c.Name()] = sub
	}
	root.Sub["cache"].Sub = map[string]*complete.Command{
		"show": commandCompletion(&cacheShowCmd{}),
		"put":  {Args: categories},
	}
	root.Sub["help"] = &complete.Command{Args: predict.Set(commandNames())}
	return root
}

func commandCompletion(c subcommands.Command) *complete.Command {
	f := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
	c.SetFlags(f)
	return &complete.Command{Flags: flagPredictors(f)}
}

// flagPredictors predicts nothing after boolean flags, something otherwise.
func flagPredictors(f *flag.FlagSet) map[string]complete.Predictor {
	res := make(map[string]complete.Predictor)
	f.VisitAll(func(fl *flag.Flag) {
		if b, ok := fl.Value.(interface{ IsBoolFlag() bool }); ok && b.IsBoolFlag() {
			res[fl.Name] = predict.Nothing
			return
		}
		res[fl.Name] = predict.Something
	})
	return res
}

func commandNames() []string {
	names := make([]string, 0, len(Commands))
	for _, c := range Commands {
		names = append(names, c.Name())
	}
	return names
}
