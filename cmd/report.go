package cmd

import (
	"context"
	"flag"
	"strings"

	"github.com/etnz/kap/renderer"
	"github.com/google/subcommands"
)

type reportCmd struct {
	year int
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "print the tax report (Anlage KAP) of each year" }
func (*reportCmd) Usage() string {
	return `report [-y <year>]

Print the tax report of a year, or of every year with a tax event.
Warnings raised while processing the transactions are listed at the end.
`
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.year, "y", 0, "Tax year to report (all years if omitted)")
}

func (c *reportCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	b, status := openBooks()
	if status != subcommands.ExitSuccess {
		return status
	}

	var md strings.Builder
	for _, year := range selectYears(b, c.year) {
		md.WriteString(renderer.RenderYearReport(renderer.NewYearReport(year, b.engine.Events().All())))
		md.WriteString("\n")
	}
	md.WriteString(renderer.DiagnosticsMarkdown(b.diagnostics()))
	printMarkdown(md.String())
	return subcommands.ExitSuccess
}

type lotsCmd struct{}

func (*lotsCmd) Name() string     { return "lots" }
func (*lotsCmd) Synopsis() string { return "print the lots still open after processing" }
func (*lotsCmd) Usage() string {
	return `lots

Print the open acquisition lots, oldest first, with their accrued deemed
distributions.
`
}

func (c *lotsCmd) SetFlags(f *flag.FlagSet) {}

func (c *lotsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	b, status := openBooks()
	if status != subcommands.ExitSuccess {
		return status
	}
	printMarkdown(renderer.LotsMarkdown(b.engine.Lots()))
	return subcommands.ExitSuccess
}
