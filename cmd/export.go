package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/kap/renderer"
	"github.com/google/subcommands"
)

type exportCmd struct {
	output string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "write the tax events to a spreadsheet" }
func (*exportCmd) Usage() string {
	return `export -o <file.xlsx>

Write an xlsx workbook with a summary sheet and one sheet of tax events per year.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", "kap.xlsx", "Output workbook")
}

func (c *exportCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	b, status := openBooks()
	if status != subcommands.ExitSuccess {
		return status
	}

	out, err := os.Create(c.output)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating %q: %v\n", c.output, err)
		return subcommands.ExitFailure
	}
	if err := renderer.WriteWorkbook(out, b.years(), b.engine.Events().All()); err != nil {
		out.Close()
		fmt.Fprintf(os.Stderr, "Error writing %q: %v\n", c.output, err)
		return subcommands.ExitFailure
	}
	if err := out.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Error closing %q: %v\n", c.output, err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(stdout, "Successfully exported %d years to %s\n", len(b.years()), c.output)
	return subcommands.ExitSuccess
}
