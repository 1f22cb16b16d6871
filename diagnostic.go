package kap

import (
	"fmt"

	"github.com/etnz/kap/date"
)

// DiagnosticKind classifies a non fatal anomaly found while processing.
type DiagnosticKind string

const (
	// ShortSale: a sale with no open lot for its ISIN.
	ShortSale DiagnosticKind = "short-sale"
	// ExhaustedLots: a sale larger than the open lots; the excess is ignored.
	ExhaustedLots DiagnosticKind = "exhausted-lots"
	// UnmatchedCancellation: a cancellation record with no original to cancel.
	UnmatchedCancellation DiagnosticKind = "unmatched-cancellation"
	// MissingPrice: open lots at year end without a reference price.
	MissingPrice DiagnosticKind = "missing-price"
)

// Diagnostic is a warning collected during a run. Processing continues.
type Diagnostic struct {
	Kind    DiagnosticKind
	Date    date.Date
	Symbol  string
	ISIN    string
	Message string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s %s %s (%s): %s", d.Date, d.Kind, d.Symbol, d.ISIN, d.Message)
}

// MarshalJSON implements the json.Marshaler interface.
func (d Diagnostic) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("kind", d.Kind)
	w.Optional("date", d.Date)
	w.Optional("symbol", d.Symbol)
	w.Optional("isin", d.ISIN)
	w.Append("message", d.Message)
	return w.MarshalJSON()
}
