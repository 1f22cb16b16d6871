// Package agent implements an interactive assistant, backed by Gemini, that
// explains the computed tax reports.
package agent

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"google.golang.org/genai"
)

// Agent runs a question and answer session about the user's taxes. The
// facilitator answers and delegates to the experts.
type Agent struct {
	out         io.Writer
	in          *bufio.Scanner
	Facilitator *Expert
	Experts     []*Expert
	// Render formats an answer before printing, raw text if nil.
	Render func(markdown string) string
}

// New creates an Agent printing to w and reading questions from r, one per line.
func New(w io.Writer, r io.Reader, experts ...*Expert) *Agent {
	return &Agent{
		out:         w,
		in:          bufio.NewScanner(r),
		Experts:     experts,
		Facilitator: newFacilitator(experts...),
	}
}

// Start creates the chat sessions of the experts and the facilitator.
func (a *Agent) Start(ctx context.Context, client *genai.Client) error {
	for _, e := range a.Experts {
		if err := e.Start(ctx, client); err != nil {
			return fmt.Errorf("cannot start %s: %w", e.Name, err)
		}
	}
	return a.Facilitator.Start(ctx, client)
}

const prompt = "kap> "

// Run asks questions first, then reads the user's questions until "bye" or
// the end of input.
func (a *Agent) Run(ctx context.Context, client *genai.Client, questions ...string) error {
	if a.Facilitator.chat == nil {
		if err := a.Start(ctx, client); err != nil {
			return err
		}
	}
	a.help()

	for {
		fmt.Fprint(a.out, prompt)
		var input string
		if len(questions) > 0 {
			input, questions = questions[0], questions[1:]
			fmt.Fprintln(a.out, input)
		} else {
			if !a.in.Scan() {
				return a.in.Err()
			}
			input = a.in.Text()
		}

		switch command(input) {
		case skip:
			continue
		case quit:
			return nil
		case help:
			a.help()
			continue
		}

		content, err := a.Facilitator.Ask(ctx, &genai.Part{Text: input})
		if err != nil {
			return err
		}
		a.print(answer(content))
	}
}

type action int

const (
	ask action = iota
	skip
	quit
	help
)

// command recognizes the inputs handled without the model.
func command(input string) action {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "":
		return skip
	case "bye", "exit", "quit":
		return quit
	case "help", "?":
		return help
	}
	return ask
}

func (a *Agent) help() {
	fmt.Fprintln(a.out, "Ask about your tax reports, 'bye' to exit. The assistant consults:")
	for _, e := range a.Experts {
		fmt.Fprintf(a.out, "  - %s\n", e.Name)
	}
	fmt.Fprintln(a.out, "Figures are estimates, not tax advice.")
}

func (a *Agent) print(text string) {
	if a.Render != nil {
		text = a.Render(text)
	}
	fmt.Fprintln(a.out, text)
}

// answer joins the text parts of a reply.
func answer(content *genai.Content) string {
	var texts []string
	for _, p := range content.Parts {
		if p.Text != "" && !p.Thought {
			texts = append(texts, p.Text)
		}
	}
	return strings.Join(texts, "\n")
}
