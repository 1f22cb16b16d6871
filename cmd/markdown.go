package cmd

import (
	"fmt"
	"log"

	"github.com/charmbracelet/glamour"
)

// printMarkdown prints md rendered for the terminal.
func printMarkdown(md string) {
	fmt.Fprint(stdout, renderMarkdown(md))
}

// renderMarkdown renders md for the terminal. It returns md unchanged when
// -raw is set or the rendering fails.
func renderMarkdown(md string) string {
	if *rawMarkdown {
		return md
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(160),
	)
	if err != nil {
		log.Printf("cannot create markdown renderer: %v", err)
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		log.Printf("cannot render markdown: %v", err)
		return md
	}
	return out
}
