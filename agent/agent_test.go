package agent

import (
	"bytes"
	"testing"

	"google.golang.org/genai"
)

func TestCommand(t *testing.T) {
	tests := []struct {
		input string
		want  action
	}{
		{"", skip},
		{"   \n", skip},
		{"bye", quit},
		{" Exit\n", quit},
		{"?", help},
		{"How much tax do I owe in 2023?", ask},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := command(tt.input); got != tt.want {
				t.Errorf("command(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestAnswer(t *testing.T) {
	content := &genai.Content{Parts: []*genai.Part{
		{Text: "planning", Thought: true},
		{Text: "The deemed distribution is €17.85."},
		{FunctionCall: &genai.FunctionCall{Name: "OpenLots"}},
		{Text: "It is taxed in 2023."},
	}}
	want := "The deemed distribution is €17.85.\nIt is taxed in 2023."
	if got := answer(content); got != want {
		t.Errorf("answer() = %q, want %q", got, want)
	}
}

func TestAgent_Print(t *testing.T) {
	var out bytes.Buffer
	a := New(&out, nil, NewAccountant(fakeBooks{}))
	a.Render = func(md string) string { return "<" + md + ">" }
	a.print("hello")
	a.help()
	want := "<hello>\n" +
		"Ask about your tax reports, 'bye' to exit. The assistant consults:\n" +
		"  - Accountant\n" +
		"Figures are estimates, not tax advice.\n"
	if got := out.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}
