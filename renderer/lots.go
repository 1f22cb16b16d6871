package renderer

import (
	"fmt"
	"strings"

	"github.com/etnz/kap"
)

// LotsMarkdown renders the open lots as a markdown table, oldest first per ISIN.
func LotsMarkdown(lots []kap.Lot) string {
	var b strings.Builder
	fmt.Fprint(&b, "# Open Lots\n\n")
	if len(lots) == 0 {
		fmt.Fprintln(&b, "No open lot.")
		return b.String()
	}

	fmt.Fprintln(&b, "| Acquired | Symbol | ISIN | Remaining | Original | Unit Cost | Cost | Deemed Accrued |")
	fmt.Fprintln(&b, "|:---|:---|:---|---:|---:|---:|---:|---:|")

	var cost, vap kap.Money
	for _, lot := range lots {
		// cost of the remaining units.
		remainingCost := lot.UnitCost().Mul(lot.RemainingQuantity)
		cost = cost.Add(remainingCost)
		vap = vap.Add(lot.AccumulatedVap)
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s | %s |\n",
			lot.Acquired,
			lot.Symbol,
			lot.ISIN,
			lot.RemainingQuantity,
			lot.OriginalQuantity,
			lot.UnitCost(),
			remainingCost,
			lot.AccumulatedVap,
		)
	}
	fmt.Fprintf(&b, "| **%s** | | | | | | **%s** | **%s** |\n", "Total", cost, vap)
	return b.String()
}

// DiagnosticsMarkdown renders the warnings of a run as a bullet list.
func DiagnosticsMarkdown(diags []kap.Diagnostic) string {
	var b strings.Builder
	ConditionalBlock(&b, func(w *strings.Builder) bool {
		fmt.Fprint(w, "## Warnings\n\n")
		for _, d := range diags {
			fmt.Fprintf(w, "- %s **%s** %s: %s\n", d.Date, d.Kind, d.Symbol, d.Message)
		}
		return len(diags) > 0
	})
	return b.String()
}
