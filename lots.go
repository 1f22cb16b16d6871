package kap

import (
	"errors"

	"github.com/etnz/kap/date"
	"github.com/shopspring/decimal"
)

// ErrNoLots is returned when selling an ISIN that has no open lot.
var ErrNoLots = errors.New("no open lots")

// Lot is one acquisition batch of an instrument.
type Lot struct {
	ID       string // ID of the buy transaction.
	Symbol   string
	ISIN     string
	Acquired date.Date

	OriginalQuantity  Quantity
	RemainingQuantity Quantity
	Cost              Money // Total acquisition cost including fees.
	// AccumulatedVap is the deemed distribution already taxed on the
	// remaining quantity and not yet realized by a sale.
	AccumulatedVap Money

	OriginPrice decimal.Decimal // Buy price in the origin currency.
	FXRate      Rate
}

// UnitCost returns the average cost of one unit of the original quantity.
func (l Lot) UnitCost() Money {
	if l.OriginalQuantity.IsZero() {
		return Money{}
	}
	return l.Cost.Div(l.OriginalQuantity)
}

// Draw is the part of a sale realized against a single lot.
type Draw struct {
	Lot      Lot // Lot as it was before the draw.
	Quantity Quantity
	Cost     Money // Allocated acquisition cost.
	Vap      Money // Allocated accumulated deemed distribution.
}

// LotLedger holds, per ISIN, the FIFO queue of open lots.
//
// Lots are owned by the ledger, accessors return copies.
type LotLedger struct {
	queues map[string][]Lot
	isins  []string // in order of first buy.
}

// NewLotLedger returns an empty ledger.
func NewLotLedger() *LotLedger {
	return &LotLedger{queues: make(map[string][]Lot)}
}

// Open appends a new lot at the tail of its ISIN queue.
func (l *LotLedger) Open(lot Lot) {
	if _, exists := l.queues[lot.ISIN]; !exists {
		l.isins = append(l.isins, lot.ISIN)
	}
	lot.RemainingQuantity = lot.OriginalQuantity
	l.queues[lot.ISIN] = append(l.queues[lot.ISIN], lot)
}

// Sell draws quantity from the head of the ISIN queue, oldest lot first.
//
// It returns the draws and the quantity that could not be matched because
// the queue got exhausted. It returns ErrNoLots when the queue is empty.
// Lots whose remaining quantity falls at or below 1e-6 are removed.
func (l *LotLedger) Sell(isin string, quantity Quantity) ([]Draw, Quantity, error) {
	lots := l.queues[isin]
	if len(lots) == 0 {
		return nil, quantity, ErrNoLots
	}

	var draws []Draw
	remaining := quantity
	for remaining.IsPositive() && len(lots) > 0 {
		lot := &lots[0]
		take := MinQ(remaining, lot.RemainingQuantity)

		cost := lot.UnitCost().Mul(take)
		var vap Money
		if lot.RemainingQuantity.IsPositive() {
			vap = lot.AccumulatedVap.Div(lot.RemainingQuantity).Mul(take)
		}
		draws = append(draws, Draw{Lot: *lot, Quantity: take, Cost: cost, Vap: vap})

		lot.RemainingQuantity = lot.RemainingQuantity.Sub(take)
		lot.AccumulatedVap = lot.AccumulatedVap.Sub(vap)
		remaining = remaining.Sub(take)

		if lot.RemainingQuantity.IsNegligible() {
			lots = lots[1:]
		}
	}
	l.queues[isin] = lots
	return draws, remaining, nil
}

// Held returns the total remaining quantity of an ISIN.
func (l *LotLedger) Held(isin string) Quantity {
	var total Quantity
	for _, lot := range l.queues[isin] {
		total = total.Add(lot.RemainingQuantity)
	}
	return total
}

// ISINs returns the ISINs ever bought, in order of first buy.
func (l *LotLedger) ISINs() []string {
	return append([]string(nil), l.isins...)
}

// Lots returns a copy of the open lots of an ISIN in FIFO order.
func (l *LotLedger) Lots(isin string) []Lot {
	return append([]Lot(nil), l.queues[isin]...)
}

// Snapshot returns a copy of every open lot, grouped by ISIN in order of first buy.
func (l *LotLedger) Snapshot() []Lot {
	var all []Lot
	for _, isin := range l.isins {
		all = append(all, l.queues[isin]...)
	}
	return all
}

// accrue adds a deemed distribution to the i-th lot of the ISIN queue.
func (l *LotLedger) accrue(isin string, i int, vap Money) {
	lots := l.queues[isin]
	lots[i].AccumulatedVap = lots[i].AccumulatedVap.Add(vap)
}
