package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/kap"
	"github.com/google/subcommands"
)

type eventsCmd struct {
	year int
}

func (*eventsCmd) Name() string     { return "events" }
func (*eventsCmd) Synopsis() string { return "print the tax events as JSON lines" }
func (*eventsCmd) Usage() string {
	return `events [-y <year>]

Print one JSON object per tax event: sales, deemed distributions, dividends,
interest and foreign withholding tax.
`
}

func (c *eventsCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.year, "y", 0, "Tax year of the events (all years if omitted)")
}

func (c *eventsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	b, status := openBooks()
	if status != subcommands.ExitSuccess {
		return status
	}

	events := b.engine.Events().All()
	if c.year != 0 {
		events = b.engine.Events().Year(c.year)
	}
	if err := kap.EncodeEvents(stdout, events); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing events: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
