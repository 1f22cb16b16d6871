package kap

// PriceProvider returns the year-end reference price of an instrument.
// ok is false when no price is known; the instrument is then skipped by
// that year's closing.
type PriceProvider interface {
	Price(isin string, year int) (price Money, ok bool)
}

// RateProvider returns the base interest rate (Basiszins) of a year.
// A rate <= 0 means no deemed distribution for that year.
type RateProvider interface {
	Rate(year int) Rate
}

// InstrumentProvider resolves reference data. It never fails: unknown ISINs
// get UnknownInstrument(isin, fallbackSymbol).
type InstrumentProvider interface {
	Instrument(isin, fallbackSymbol string) Instrument
}

// Prices is an in-memory PriceProvider keyed by year and ISIN.
type Prices map[int]map[string]Money

// Set records the year-end price of isin.
func (p Prices) Set(year int, isin string, price Money) {
	if p[year] == nil {
		p[year] = make(map[string]Money)
	}
	p[year][isin] = price
}

func (p Prices) Price(isin string, year int) (Money, bool) {
	price, ok := p[year][isin]
	return price, ok
}

// Rates is an in-memory RateProvider. Missing years have a zero rate.
type Rates map[int]Rate

func (r Rates) Rate(year int) Rate { return r[year] }

// Instruments is an in-memory InstrumentProvider keyed by ISIN.
type Instruments map[string]Instrument

func (m Instruments) Instrument(isin, fallbackSymbol string) Instrument {
	inst, ok := m[isin]
	if !ok {
		return UnknownInstrument(isin, fallbackSymbol)
	}
	if inst.Symbol == "" {
		inst.Symbol = fallbackSymbol
	}
	inst.ISIN = isin
	return inst
}
