package kap

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/etnz/kap/date"
	"github.com/shopspring/decimal"
)

// EventKind is the kind of a tax event.
type EventKind string

const (
	SaleEvent        EventKind = "sale"
	DividendEvent    EventKind = "dividend"
	InterestEvent    EventKind = "interest"
	DeemedEvent      EventKind = "deemed-distribution"
	WithholdingEvent EventKind = "withholding-tax"
)

// TaxEvent is one dated fact destined for the tax report. Events are values
// and never change once recorded.
type TaxEvent struct {
	TaxYear int // Year the event is declared in, may differ from Date's year.
	Date    date.Date
	Kind    EventKind
	Symbol  string
	ISIN    string

	Raw     Money // Before partial exemption.
	Taxable Money // After partial exemption.
	Quota   Rate  // Partial exemption applied.

	UsedVap            Money // Deemed distribution realized by a sale.
	ForeignWithholding Money // Tax already paid abroad, creditable.

	// Sale details.
	QuantitySold    Quantity
	Proceeds        Money
	SaleFees        Money
	AcquisitionCost Money
	Acquired        date.Date

	BuyPriceOrigin  decimal.Decimal
	BuyFX           Rate
	SellPriceOrigin decimal.Decimal
	SellFX          Rate
}

// MarshalJSON implements the json.Marshaler interface.
func (e TaxEvent) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("taxYear", e.TaxYear)
	w.Append("date", e.Date)
	w.Append("kind", e.Kind)
	w.Optional("symbol", e.Symbol)
	w.Optional("isin", e.ISIN)
	w.Append("raw", e.Raw)
	w.Append("taxable", e.Taxable)
	if !e.Quota.IsZero() {
		w.Append("quota", e.Quota)
	}
	if !e.UsedVap.IsZero() {
		w.Append("usedVap", e.UsedVap)
	}
	if !e.ForeignWithholding.IsZero() {
		w.Append("foreignWithholding", e.ForeignWithholding)
	}
	if e.Kind == SaleEvent {
		w.Append("quantity", e.QuantitySold)
		w.Append("proceeds", e.Proceeds)
		w.Append("fees", e.SaleFees)
		w.Append("cost", e.AcquisitionCost)
		w.Optional("acquired", e.Acquired)
	}
	return w.MarshalJSON()
}

// EventLedger is the append-only record of tax events in processing order.
type EventLedger struct {
	events []TaxEvent
}

func (l *EventLedger) append(e TaxEvent) { l.events = append(l.events, e) }

// Len returns the number of recorded events.
func (l *EventLedger) Len() int { return len(l.events) }

// All returns a copy of every event in processing order.
func (l *EventLedger) All() []TaxEvent {
	return append([]TaxEvent(nil), l.events...)
}

// Year returns the events attributed to a tax year, in processing order.
func (l *EventLedger) Year(year int) []TaxEvent {
	var events []TaxEvent
	for _, e := range l.events {
		if e.TaxYear == year {
			events = append(events, e)
		}
	}
	return events
}

// Years returns the tax years with at least one event, ascending.
func (l *EventLedger) Years() []int {
	seen := make(map[int]bool)
	var years []int
	for _, e := range l.events {
		if !seen[e.TaxYear] {
			seen[e.TaxYear] = true
			years = append(years, e.TaxYear)
		}
	}
	sort.Ints(years)
	return years
}

// EncodeEvents writes events as JSONL.
func EncodeEvents(w io.Writer, events []TaxEvent) error {
	bw := bufio.NewWriter(w)
	for _, e := range events {
		b, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("could not encode %s event of %s: %w", e.Kind, e.Date, err)
		}
		bw.Write(b)
		bw.WriteByte('\n')
	}
	return bw.Flush()
}
