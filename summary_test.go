package kap

import (
	"testing"

	"github.com/etnz/kap/date"
)

func TestSummarize(t *testing.T) {
	events := []TaxEvent{
		{TaxYear: 2023, Kind: SaleEvent, Taxable: EUR(300)},
		{TaxYear: 2023, Kind: SaleEvent, Taxable: EUR(-100)},
		{TaxYear: 2023, Kind: DeemedEvent, Date: date.NewYear(2023), Taxable: EUR(12.5)},
		{TaxYear: 2023, Kind: DividendEvent, Taxable: EUR(70)},
		{TaxYear: 2023, Kind: WithholdingEvent, Raw: EUR(-15), ForeignWithholding: EUR(15)},
		{TaxYear: 2023, Kind: InterestEvent, Taxable: EUR(17.5)},
		{TaxYear: 2024, Kind: DeemedEvent, Taxable: EUR(1000)},
	}
	s := Summarize(2023, events)
	assertMoney(t, "sales", s.Sales, 200)
	assertMoney(t, "deemed", s.Deemed, 12.5)
	assertMoney(t, "dividends", s.Dividends, 70)
	assertMoney(t, "interest", s.Interest, 17.5)
	assertMoney(t, "withholding", s.Withholding, 15)
	assertMoney(t, "other", s.Other(), 100)
	assertMoney(t, "total", s.Total(), 300)
	// 300 * 25% * 1.055
	assertMoney(t, "estimated tax", s.EstimatedTax(), 79.125)
	assertMoney(t, "due", s.Due(), 64.125)

	if empty := Summarize(2025, events); !empty.Total().IsZero() || !empty.Due().IsZero() {
		t.Errorf("Summarize(2025) = %+v", empty)
	}
}
