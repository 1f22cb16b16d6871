package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/kap"
	"github.com/google/subcommands"
)

type reconcileCmd struct {
	output string
}

func (*reconcileCmd) Name() string     { return "reconcile" }
func (*reconcileCmd) Synopsis() string { return "remove broker cancellations and report the result" }
func (*reconcileCmd) Usage() string {
	return `reconcile [-o <file.jsonl>]

Remove cancellation records and the records they cancel. Print how many
records were removed and the cancellations that matched nothing.

With -o, the reconciled transactions are written in the JSON lines format
accepted as input.
`
}

func (c *reconcileCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", "", "Write the reconciled transactions to this file")
}

func (c *reconcileCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	txs, _, err := loadTransactions(*inputDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading %q: %v\n", *inputDir, err)
		return subcommands.ExitFailure
	}
	reconciled, unmatched := kap.Reconcile(txs)

	fmt.Fprintf(stdout, "%d transactions, %d removed, %d kept\n", len(txs), len(txs)-len(reconciled), len(reconciled))
	for _, d := range unmatched {
		fmt.Fprintln(stdout, d)
	}

	if c.output == "" {
		return subcommands.ExitSuccess
	}
	out, err := os.Create(c.output)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating %q: %v\n", c.output, err)
		return subcommands.ExitFailure
	}
	defer out.Close()
	if err := kap.EncodeTransactions(out, reconciled); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %q: %v\n", c.output, err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(stdout, "Successfully wrote %d transactions to %s\n", len(reconciled), c.output)
	return subcommands.ExitSuccess
}
