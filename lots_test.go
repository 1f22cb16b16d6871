package kap

import (
	"errors"
	"testing"
	"time"

	"github.com/etnz/kap/date"
)

func newLot(id string, acquired date.Date, qty, cost float64) Lot {
	return Lot{ID: id, Symbol: "SYM", ISIN: isinX, Acquired: acquired, OriginalQuantity: Q(qty), Cost: EUR(cost)}
}

func TestLotLedger_Sell(t *testing.T) {
	jan := date.New(2023, time.January, 1)
	feb := date.New(2023, time.February, 1)
	mar := date.New(2023, time.March, 1)

	tests := []struct {
		name          string
		sell          float64
		wantDraws     []float64 // quantity taken per lot.
		wantRemaining []float64 // remaining quantity of the open lots.
		wantUnmatched float64
	}{
		{name: "less than the oldest lot", sell: 3, wantDraws: []float64{3}, wantRemaining: []float64{7, 5, 2}},
		{name: "exactly the oldest lot", sell: 10, wantDraws: []float64{10}, wantRemaining: []float64{5, 2}},
		{name: "across two lots", sell: 12, wantDraws: []float64{10, 2}, wantRemaining: []float64{3, 2}},
		{name: "everything", sell: 17, wantDraws: []float64{10, 5, 2}, wantRemaining: nil},
		{name: "more than held", sell: 20, wantDraws: []float64{10, 5, 2}, wantRemaining: nil, wantUnmatched: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLotLedger()
			l.Open(newLot("a", jan, 10, 100))
			l.Open(newLot("b", feb, 5, 60))
			l.Open(newLot("c", mar, 2, 30))

			draws, unmatched, err := l.Sell(isinX, Q(tt.sell))
			if err != nil {
				t.Fatalf("Sell() error = %v", err)
			}
			if len(draws) != len(tt.wantDraws) {
				t.Fatalf("got %d draws, want %d", len(draws), len(tt.wantDraws))
			}
			for i, d := range draws {
				assertQuantity(t, "draw "+d.Lot.ID, d.Quantity, tt.wantDraws[i])
			}
			assertQuantity(t, "unmatched", unmatched, tt.wantUnmatched)

			lots := l.Lots(isinX)
			if len(lots) != len(tt.wantRemaining) {
				t.Fatalf("got %d open lots, want %d", len(lots), len(tt.wantRemaining))
			}
			for i, lot := range lots {
				assertQuantity(t, "remaining "+lot.ID, lot.RemainingQuantity, tt.wantRemaining[i])
				if lot.RemainingQuantity.IsNegative() || lot.RemainingQuantity.GreaterThan(lot.OriginalQuantity) {
					t.Errorf("lot %s remaining %s out of [0, %s]", lot.ID, lot.RemainingQuantity, lot.OriginalQuantity)
				}
			}
		})
	}
}

func TestLotLedger_Sell_CostSumsToTotal(t *testing.T) {
	jan := date.New(2023, time.January, 1)
	l := NewLotLedger()
	l.Open(newLot("a", jan, 3, 100))
	l.Open(newLot("b", jan, 7, 250.5))
	l.Open(newLot("c", jan, 0.5, 17.3))

	// sell in three steps, the last one clears the position.
	var cost Money
	var sold Quantity
	for _, q := range []float64{1, 4.25, 5.25} {
		draws, unmatched, err := l.Sell(isinX, Q(q))
		if err != nil {
			t.Fatalf("Sell(%v) error = %v", q, err)
		}
		if !unmatched.IsZero() {
			t.Fatalf("Sell(%v) unmatched = %s", q, unmatched)
		}
		for _, d := range draws {
			cost = cost.Add(d.Cost)
			sold = sold.Add(d.Quantity)
		}
	}
	assertMoney(t, "total cost", cost, 367.8)
	assertQuantity(t, "total sold", sold, 10.5)
	if lots := l.Lots(isinX); len(lots) != 0 {
		t.Errorf("expected no open lot, got %v", lots)
	}
}

func TestLotLedger_Sell_Negligible(t *testing.T) {
	l := NewLotLedger()
	l.Open(newLot("a", date.New(2023, time.January, 1), 1, 10))
	l.Open(newLot("b", date.New(2023, time.January, 2), 1, 10))

	if _, _, err := l.Sell(isinX, Q(0.9999995)); err != nil {
		t.Fatal(err)
	}
	lots := l.Lots(isinX)
	if len(lots) != 1 || lots[0].ID != "b" {
		t.Fatalf("expected only lot b, got %v", lots)
	}

	draws, _, err := l.Sell(isinX, Q(0.5))
	if err != nil {
		t.Fatal(err)
	}
	if len(draws) != 1 || draws[0].Lot.ID != "b" {
		t.Errorf("a negligible lot must not be drawn, got %v", draws)
	}
}

func TestLotLedger_Sell_Vap(t *testing.T) {
	l := NewLotLedger()
	l.Open(newLot("a", date.New(2023, time.January, 1), 10, 100))
	l.accrue(isinX, 0, EUR(5))

	draws, _, err := l.Sell(isinX, Q(4))
	if err != nil {
		t.Fatal(err)
	}
	// 5/10 per unit, computed on the quantity before the draw.
	assertMoney(t, "used vap", draws[0].Vap, 2)
	assertMoney(t, "cost", draws[0].Cost, 40)
	lots := l.Lots(isinX)
	assertMoney(t, "accumulated vap", lots[0].AccumulatedVap, 3)

	draws, _, err = l.Sell(isinX, Q(6))
	if err != nil {
		t.Fatal(err)
	}
	assertMoney(t, "used vap", draws[0].Vap, 3)
	assertMoney(t, "cost", draws[0].Cost, 60)
}

func TestLotLedger_Sell_NoLots(t *testing.T) {
	l := NewLotLedger()
	if _, _, err := l.Sell(isinX, Q(1)); !errors.Is(err, ErrNoLots) {
		t.Errorf("Sell() on unknown isin error = %v, want ErrNoLots", err)
	}

	l.Open(newLot("a", date.New(2023, time.January, 1), 1, 10))
	if _, _, err := l.Sell(isinX, Q(1)); err != nil {
		t.Fatal(err)
	}
	if _, _, err := l.Sell(isinX, Q(1)); !errors.Is(err, ErrNoLots) {
		t.Errorf("Sell() on empty queue error = %v, want ErrNoLots", err)
	}
	if got := l.ISINs(); len(got) != 1 || got[0] != isinX {
		t.Errorf("ISINs() = %v", got)
	}
}

func TestLotLedger_LotsAreCopies(t *testing.T) {
	l := NewLotLedger()
	l.Open(newLot("a", date.New(2023, time.January, 1), 1, 10))
	lots := l.Lots(isinX)
	lots[0].RemainingQuantity = Q(0)
	assertQuantity(t, "held", l.Held(isinX), 1)
}
