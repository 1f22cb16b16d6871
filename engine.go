package kap

import (
	"errors"
	"fmt"
	"log"

	"github.com/etnz/kap/date"
)

// Engine computes tax events from a time ordered stream of transactions.
//
// An Engine owns its lot ledger, distribution tracker and event ledger for
// the whole run. It is not safe for concurrent use.
type Engine struct {
	prices      PriceProvider
	rates       RateProvider
	instruments InstrumentProvider

	lots          *LotLedger
	distributions *DistributionTracker
	events        *EventLedger
	diagnostics   []Diagnostic
}

// NewEngine creates an engine using the given reference data.
func NewEngine(prices PriceProvider, rates RateProvider, instruments InstrumentProvider) *Engine {
	return &Engine{
		prices:        prices,
		rates:         rates,
		instruments:   instruments,
		lots:          NewLotLedger(),
		distributions: NewDistributionTracker(),
		events:        &EventLedger{},
	}
}

// Events returns the event ledger.
func (e *Engine) Events() *EventLedger { return e.events }

// Lots returns a snapshot of the open lots.
func (e *Engine) Lots() []Lot { return e.lots.Snapshot() }

// Diagnostics returns the warnings collected so far.
func (e *Engine) Diagnostics() []Diagnostic {
	return append([]Diagnostic(nil), e.diagnostics...)
}

func (e *Engine) warn(d Diagnostic) {
	log.Printf("warning: %v", d)
	e.diagnostics = append(e.diagnostics, d)
}

// Process applies one transaction. Transactions must be processed in time
// order and already reconciled.
func (e *Engine) Process(tx RawTransaction) error {
	inst := e.instruments.Instrument(tx.ISIN, tx.Symbol)
	switch tx.Action {
	case Buy:
		e.buy(tx)
	case Sell:
		e.sell(tx, inst)
	case Dividend:
		e.dividend(tx, inst)
	case Withholding:
		e.withholding(tx)
	case Interest:
		e.interest(tx)
	default:
		return fmt.Errorf("transaction %q: unsupported action %q", tx.ID, tx.Action)
	}
	return nil
}

func (e *Engine) buy(tx RawTransaction) {
	e.lots.Open(Lot{
		ID:               tx.ID,
		Symbol:           tx.Symbol,
		ISIN:             tx.ISIN,
		Acquired:         tx.Date(),
		OriginalQuantity: tx.Quantity.Abs(),
		Cost:             tx.Amount.Add(tx.Fees),
		OriginPrice:      tx.OriginPrice,
		FXRate:           tx.FXRate,
	})
}

func (e *Engine) sell(tx RawTransaction, inst Instrument) {
	quantity := tx.Quantity.Abs()
	proceeds := tx.Amount.Abs()
	fees := tx.Fees

	draws, unmatched, err := e.lots.Sell(tx.ISIN, quantity)
	if errors.Is(err, ErrNoLots) {
		e.warn(Diagnostic{
			Kind:    ShortSale,
			Date:    tx.Date(),
			Symbol:  tx.Symbol,
			ISIN:    tx.ISIN,
			Message: fmt.Sprintf("sale of %s units skipped: %v", quantity, err),
		})
		return
	}

	for _, d := range draws {
		ratio := d.Quantity.Div(quantity)
		partProceeds := proceeds.Mul(ratio)
		partFees := fees.Mul(ratio)
		raw := partProceeds.Sub(partFees).Sub(d.Cost).Sub(d.Vap)

		e.events.append(TaxEvent{
			TaxYear:         tx.Year(),
			Date:            tx.Date(),
			Kind:            SaleEvent,
			Symbol:          tx.Symbol,
			ISIN:            tx.ISIN,
			Raw:             raw,
			Taxable:         inst.taxable(raw),
			Quota:           inst.ExemptionQuota,
			UsedVap:         d.Vap,
			QuantitySold:    d.Quantity,
			Proceeds:        partProceeds,
			SaleFees:        partFees,
			AcquisitionCost: d.Cost,
			Acquired:        d.Lot.Acquired,
			BuyPriceOrigin:  d.Lot.OriginPrice,
			BuyFX:           d.Lot.FXRate,
			SellPriceOrigin: tx.OriginPrice,
			SellFX:          tx.FXRate,
		})
	}

	if unmatched.IsPositive() {
		e.warn(Diagnostic{
			Kind:    ExhaustedLots,
			Date:    tx.Date(),
			Symbol:  tx.Symbol,
			ISIN:    tx.ISIN,
			Message: fmt.Sprintf("open lots exhausted, %s of %s units not matched", unmatched, quantity),
		})
	}
}

func (e *Engine) dividend(tx RawTransaction, inst Instrument) {
	e.events.append(TaxEvent{
		TaxYear: tx.Year(),
		Date:    tx.Date(),
		Kind:    DividendEvent,
		Symbol:  tx.Symbol,
		ISIN:    tx.ISIN,
		Raw:     tx.Amount,
		Taxable: inst.taxable(tx.Amount),
		Quota:   inst.ExemptionQuota,
	})
	e.distributions.Record(tx.Year(), tx.ISIN, tx.Amount, e.lots.Held(tx.ISIN))
}

func (e *Engine) withholding(tx RawTransaction) {
	e.events.append(TaxEvent{
		TaxYear:            tx.Year(),
		Date:               tx.Date(),
		Kind:               WithholdingEvent,
		Symbol:             tx.Symbol,
		ISIN:               tx.ISIN,
		Raw:                tx.Amount,
		ForeignWithholding: tx.Amount.Abs(),
	})
}

func (e *Engine) interest(tx RawTransaction) {
	e.events.append(TaxEvent{
		TaxYear: tx.Year(),
		Date:    tx.Date(),
		Kind:    InterestEvent,
		Symbol:  tx.Symbol,
		ISIN:    tx.ISIN,
		Raw:     tx.Amount,
		Taxable: tx.Amount,
	})
}

// Run processes txs, closing every year from the first transaction's year
// through the year after the last one. txs must be sorted by time and
// reconciled.
func (e *Engine) Run(txs []RawTransaction) error {
	if len(txs) == 0 {
		return nil
	}
	first, last := txs[0].Year(), txs[0].Year()
	for _, tx := range txs {
		first = min(first, tx.Year())
		last = max(last, tx.Year())
	}

	i := 0
	for year := first; year <= last+1; year++ {
		for ; i < len(txs) && txs[i].Year() <= year; i++ {
			if err := e.Process(txs[i]); err != nil {
				return err
			}
		}
		e.CloseYear(year)
	}
	return nil
}

// vapBasisShare is the share of the base rate defining the basis return (70%).
var vapBasisShare = R(0.7)

// CloseYear computes the deemed distribution (Vorabpauschale) of every open
// lot at the end of year. It must be called once per year, after all the
// transactions of that year.
//
// Events are dated January 1st of the next year and attributed to that
// year. A non positive base rate skips the year. An ISIN without a year end
// price is skipped.
func (e *Engine) CloseYear(year int) {
	rate := e.rates.Rate(year)
	if !rate.IsPositive() {
		return
	}
	basisFactor := rate.Mul(vapBasisShare)
	log.Printf("closing %d: base rate %s", year, rate.Percent())

	for _, isin := range e.lots.ISINs() {
		lots := e.lots.Lots(isin)
		if len(lots) == 0 {
			continue
		}
		price, ok := e.prices.Price(isin, year)
		if !ok {
			e.warn(Diagnostic{
				Kind:    MissingPrice,
				Date:    date.New(year, 12, 31),
				Symbol:  lots[0].Symbol,
				ISIN:    isin,
				Message: fmt.Sprintf("no year end price in %d, no deemed distribution", year),
			})
			continue
		}
		distributed := e.distributions.PerShare(year, isin)
		inst := e.instruments.Instrument(isin, lots[0].Symbol)

		for i, lot := range lots {
			if !lot.RemainingQuantity.IsPositive() {
				continue
			}
			perShare := deemedPerShare(lot, year, price, basisFactor, distributed)
			if !perShare.IsPositive() {
				continue
			}
			total := perShare.Mul(lot.RemainingQuantity)
			e.lots.accrue(isin, i, total)
			e.events.append(TaxEvent{
				TaxYear: year + 1,
				Date:    date.NewYear(year + 1),
				Kind:    DeemedEvent,
				Symbol:  lot.Symbol,
				ISIN:    isin,
				Raw:     total,
				Taxable: inst.taxable(total),
				Quota:   inst.ExemptionQuota,
			})
		}
	}
}

// deemedPerShare returns the deemed distribution per unit of a lot for year.
//
// The basis return accrues per started month for lots acquired during the
// year, and over 12 months for older lots. It is capped by the gain between
// the unit cost and the year end price, then reduced by the distributions
// already paid per share.
func deemedPerShare(lot Lot, year int, price Money, basisFactor Rate, distributed Money) Money {
	unit := lot.UnitCost()
	months := 12
	if lot.Acquired.Year() == year {
		months = 12 - int(lot.Acquired.Month()) + 1
	}
	basisReturn := unit.MulRate(basisFactor).Mul(Q(months)).Div(Q(12))
	priceGain := MaxM(Money{}, price.Sub(unit))
	capped := MinM(basisReturn, priceGain)
	return MaxM(Money{}, capped.Sub(distributed))
}
