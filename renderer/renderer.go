// Package renderer formats tax events and lots as markdown and spreadsheets.
package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"
)

//go:embed templates/*.md
var templateFS embed.FS

// templates is the root of the embedded markdown templates.
var templates, _ = fs.Sub(templateFS, "templates")

// RenderYearReport renders the tax report of a year to a markdown string.
func RenderYearReport(r *YearReport) string {
	partials := map[string]string{
		"year_title":       "year_title.md",
		"year_sales":       "year_sales.md",
		"year_deemed":      "year_deemed.md",
		"year_income":      "year_income.md",
		"year_withholding": "year_withholding.md",
		"year_total":       "year_total.md",
	}
	return renderTemplate("yearReport", "year_report.md", partials, r)
}

// renderTemplate is a generic utility to render a main template that depends on several partials.
func renderTemplate(templateName, mainFile string, partials map[string]string, data any) string {
	mainContent, err := fs.ReadFile(templates, mainFile)
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}

	tmpl, err := template.New(templateName).Parse(string(mainContent))
	if err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", mainFile, err)
	}

	for name, file := range partials {
		content, err := fs.ReadFile(templates, file)
		if err != nil {
			return fmt.Sprintf("error reading partial template %q: %v", file, err)
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Sprintf("error parsing partial template %q for %q: %v", file, name, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, templateName, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", templateName, err)
	}
	return b.String()
}
