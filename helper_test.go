package kap

import (
	"testing"
	"time"
)

const (
	isinX = "IE00B4L5Y983"
	isinY = "US0378331005"
)

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

// at returns noon of a day, in UTC.
func at(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func buy(id string, on time.Time, isin string, qty, amount float64) RawTransaction {
	return RawTransaction{ID: id, Time: on, Action: Buy, Symbol: "SYM", ISIN: isin, Quantity: Q(qty), Amount: EUR(amount)}
}

// sell follows the broker convention: negative quantity, negative amount.
func sell(id string, on time.Time, isin string, qty, amount float64) RawTransaction {
	return RawTransaction{ID: id, Time: on, Action: Sell, Symbol: "SYM", ISIN: isin, Quantity: Q(-qty), Amount: EUR(-amount)}
}

func cash(id string, on time.Time, action Action, isin string, amount float64) RawTransaction {
	return RawTransaction{ID: id, Time: on, Action: action, Symbol: "SYM", ISIN: isin, Amount: EUR(amount)}
}

// assertMoney compares amounts rounded to the cent.
func assertMoney(t *testing.T, name string, got Money, want float64) {
	t.Helper()
	if !got.Round().Equal(EUR(want).Round()) {
		t.Errorf("%s = %s, want %v", name, got.Decimal(), want)
	}
}

func assertQuantity(t *testing.T, name string, got Quantity, want float64) {
	t.Helper()
	if !got.Equal(Q(want)) {
		t.Errorf("%s = %s, want %v", name, got, want)
	}
}

// newTestEngine returns an engine with no reference data: every instrument
// has a zero quota unless listed in quotas.
func newTestEngine(prices Prices, rates Rates, quotas map[string]float64) *Engine {
	instruments := Instruments{}
	for _, isin := range []string{isinX, isinY} {
		instruments[isin] = Instrument{Symbol: "SYM", ExemptionQuota: R(quotas[isin])}
	}
	return NewEngine(prices, rates, instruments)
}

func process(t *testing.T, e *Engine, txs ...RawTransaction) {
	t.Helper()
	for _, tx := range txs {
		if err := e.Process(tx); err != nil {
			t.Fatalf("Process(%q) error = %v", tx.ID, err)
		}
	}
}
