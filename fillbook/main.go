package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"

	"github.com/tradelytics/fillbook/cmd"
)

func main() {
	// Handles shell completion requests and returns immediately otherwise.
	completion().Complete("fillbook")

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	for _, c := range cmd.Commands {
		commander.Register(c, "")
	}

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

func completion() *complete.Command {
	partition := map[string]complete.Predictor{
		"account":    predict.Nothing,
		"instrument": predict.Nothing,
	}
	return &complete.Command{
		Flags: map[string]complete.Predictor{
			"config": predict.Files("*.yaml"),
		},
		Sub: map[string]*complete.Command{
			"import":    {Flags: map[string]complete.Predictor{"file": predict.Files("*.csv")}},
			"rebuild":   {Flags: partition},
			"positions": {Flags: partition},
			"report":    {Flags: partition},
		},
	}
}
