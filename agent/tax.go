package agent

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/etnz/kap/docs"
	"google.golang.org/genai"
)

const model = "gemini-2.5-pro"

// Books gives access to the computed tax figures.
type Books interface {
	// Years returns the years with a tax event.
	Years() []int
	// YearReport returns the markdown tax report of a year.
	YearReport(year int) string
	// OpenLots returns the markdown table of open lots.
	OpenLots() string
}

func newFacilitator(experts ...*Expert) *Expert {
	return &Expert{
		Name:      "Facilitator",
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(experts)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			As a facilitator you are in charge of the conversation and solving the user's request.

			The user is a private investor resident in Germany, preparing the Anlage KAP of
			the income tax return for capital held at a foreign broker.

			Learn about the expert's skill that you can get from the Tools to ask them questions.
			They keep context of your previous questions.

			Devise a plan of questions to ask to each expert and come up with the best response
			to the user's request. Always state that figures are estimates and not tax advice.
		`}}},
		},
		Library: NewLibrary(experts),
	}
}

// NewAdvisor returns an expert on German investment taxation, grounded with
// Google Search.
func NewAdvisor() *Expert {
	return &Expert{
		Name: "TaxAdvisor",
		Description: `This is an expert of the German investment tax law (InvStG, EStG).
		Ask the TaxAdvisor about partial exemptions, the Vorabpauschale, base rates,
		loss pots and how to fill in the Anlage KAP.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{GoogleSearch: &genai.GoogleSearch{}},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			You are an expert in German taxation of private investments. Leverage Google Search to
			ground your assertions in the law and in the publications of the Bundesministerium der Finanzen.
			This is how the user's figures are computed:

			` + must(docs.GetTopic("vorabpauschale"))}}},
		},
	}
}

// NewAccountant returns the expert reading the user's computed books.
func NewAccountant(b Books) *Expert {
	lib := []Function{yearReportFunc(b), openLotsFunc(b)}
	return &Expert{
		Name: "Accountant",
		Description: `This is the Accountant. He reads the tax reports computed from the
		user's broker statements: sales, deemed distributions, dividends, interest and
		foreign withholding tax per year, and the lots still held.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(lib)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
				You are an accountant in charge of the user's tax reports.
				Use the available tools to get the reports, quote their figures exactly
				and explain how they add up.
			`}}},
		},
		Library: NewLibrary(lib),
	}
}

// Func implements a simple Function
type Func struct {
	Decl *genai.FunctionDeclaration
	Func func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse
}

func (f *Func) Declaration() *genai.FunctionDeclaration { return f.Decl }
func (f *Func) Call(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
	return f.Func(ctx, id, args)
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func yearReportFunc(b Books) *Func {
	const name = "YearReport"
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name:        name,
			Description: `YearReport returns the tax report of a year: every taxable event grouped by Anlage KAP section, and the estimated tax.`,
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"year": {
						Type:        genai.TypeInteger,
						Description: "The tax year.",
					},
				},
				Required: []string{"year"},
			},
			Response: &genai.Schema{
				Type:        genai.TypeString,
				Description: "A markdown-formatted tax report.",
			},
		},
		Func: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			year, err := parseYear(args)
			if err != nil {
				return errorResponse(id, name, err)
			}
			if !contains(b.Years(), year) {
				return errorResponse(id, name, fmt.Errorf("no tax event in %d, years with events are %v", year, b.Years()))
			}
			return outputResponse(id, name, b.YearReport(year))
		},
	}
}

func openLotsFunc(b Books) *Func {
	const name = "OpenLots"
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name:        name,
			Description: `OpenLots lists the acquisition lots still held, with their cost and the deemed distributions already taxed.`,
			Response: &genai.Schema{
				Type:        genai.TypeString,
				Description: "A markdown-formatted table of open lots.",
			},
		},
		Func: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			return outputResponse(id, name, b.OpenLots())
		},
	}
}

// parseYear reads the year argument. Models send numbers as float64, but
// sometimes as strings.
func parseYear(args map[string]any) (int, error) {
	switch v := args["year"].(type) {
	case float64:
		return int(v), nil
	case int:
		return v, nil
	case string:
		year, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("argument 'year' must be a year got %q", v)
		}
		return year, nil
	case nil:
		return 0, fmt.Errorf("argument 'year' is required")
	default:
		return 0, fmt.Errorf("argument 'year' is not a number as expected but %T", v)
	}
}

func contains(years []int, year int) bool {
	for _, y := range years {
		if y == year {
			return true
		}
	}
	return false
}
