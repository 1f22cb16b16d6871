package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/kap/agent"
	"github.com/etnz/kap/renderer"
	"github.com/google/subcommands"
	"google.golang.org/genai"
)

// AssistCmd is the subcommand for the AI assistant.
type AssistCmd struct{}

// Name returns the name of the command.
func (*AssistCmd) Name() string { return "assist" }

// Synopsis returns a short-one line synopsis of the command.
func (*AssistCmd) Synopsis() string { return "Start an interactive session with the AI assistant." }

// Usage returns a long-form usage string.
func (*AssistCmd) Usage() string {
	return `assist [question]:
  Start an interactive session with the AI assistant about the computed tax reports.
  The Gemini API key is read from GEMINI_API_KEY.
`
}

// SetFlags sets the flags for the command.
func (*AssistCmd) SetFlags(_ *flag.FlagSet) {}

// Execute executes the command.
func (c *AssistCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	initialPrompt := strings.Join(f.Args(), " ")

	b, status := openBooks()
	if status != subcommands.ExitSuccess {
		return status
	}

	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error initializing Gemini's client:", err)
		return subcommands.ExitFailure
	}

	a := agent.New(os.Stdout, os.Stdin, agent.NewAdvisor(), agent.NewAccountant(assistBooks{b}))
	a.Render = renderMarkdown
	if err := a.Run(ctx, client, initialPrompt); err != nil {
		fmt.Fprintln(os.Stderr, "Agent failed:", err)
		return subcommands.ExitFailure
	}

	return subcommands.ExitSuccess
}

// assistBooks exposes the books to the assistant.
type assistBooks struct{ b *books }

func (a assistBooks) Years() []int { return a.b.years() }

func (a assistBooks) YearReport(year int) string {
	return renderer.RenderYearReport(renderer.NewYearReport(year, a.b.engine.Events().All()))
}

func (a assistBooks) OpenLots() string { return renderer.LotsMarkdown(a.b.engine.Lots()) }
