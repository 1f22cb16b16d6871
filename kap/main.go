// Command kap computes the German capital income tax (Anlage KAP) of a
// broker account.
package main

import (
	"context"
	"flag"
	"io"
	"log"
	"os"
	"path"

	"github.com/etnz/kap/cmd"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// completion describes the command line for shell completion.
func completion() *complete.Command {
	year := predict.Something
	return &complete.Command{
		Flags: map[string]complete.Predictor{
			"input": predict.Dirs("*"),
			"v":     predict.Nothing,
			"raw":   predict.Nothing,
		},
		Sub: map[string]*complete.Command{
			"report":    {Flags: map[string]complete.Predictor{"y": year}},
			"lots":      {},
			"events":    {Flags: map[string]complete.Predictor{"y": year}},
			"reconcile": {Flags: map[string]complete.Predictor{"o": predict.Files("*.jsonl")}},
			"export":    {Flags: map[string]complete.Predictor{"o": predict.Files("*.xlsx")}},
			"quote": {Flags: map[string]complete.Predictor{
				"isin":   predict.Something,
				"year":   year,
				"append": predict.Nothing,
				"url":    predict.Something,
			}},
			"topic":  {Args: predict.Set{"readme", "inputs", "vorabpauschale", "*"}},
			"assist": {},
			"help":   {},
		},
	}
}

func main() {
	// exits when invoked by the shell for completion.
	completion().Complete(path.Base(os.Args[0]))

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	cmd.Register(commander)

	flag.Parse()
	if !*cmd.Verbose {
		log.SetOutput(io.Discard)
	}
	os.Exit(int(commander.Execute(context.Background())))
}
