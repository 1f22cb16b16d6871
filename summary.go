package kap

// Flat tax on capital income (Abgeltungsteuer) and the solidarity surcharge
// levied on top of it.
var (
	FlatTaxRate          = R(0.25)
	SolidarityMultiplier = R(1.055)
)

// YearSummary totals the taxable amounts of one tax year by category.
type YearSummary struct {
	Year int

	Sales     Money // Taxable sale gains, losses included.
	Deemed    Money
	Dividends Money
	Interest  Money

	Withholding Money // Creditable foreign withholding tax.
}

// Summarize totals the events of a tax year.
func Summarize(year int, events []TaxEvent) YearSummary {
	s := YearSummary{Year: year}
	for _, e := range events {
		if e.TaxYear != year {
			continue
		}
		switch e.Kind {
		case SaleEvent:
			s.Sales = s.Sales.Add(e.Taxable)
		case DeemedEvent:
			s.Deemed = s.Deemed.Add(e.Taxable)
		case DividendEvent:
			s.Dividends = s.Dividends.Add(e.Taxable)
		case InterestEvent:
			s.Interest = s.Interest.Add(e.Taxable)
		}
		s.Withholding = s.Withholding.Add(e.ForeignWithholding)
	}
	return s
}

// Other returns the taxable income that is not a sale gain.
func (s YearSummary) Other() Money { return s.Deemed.Add(s.Dividends).Add(s.Interest) }

// Total returns the taxable capital income of the year.
func (s YearSummary) Total() Money { return s.Sales.Add(s.Other()) }

// EstimatedTax returns the flat tax with solidarity surcharge on Total.
func (s YearSummary) EstimatedTax() Money {
	return s.Total().MulRate(FlatTaxRate.Mul(SolidarityMultiplier))
}

// Due returns the estimated tax minus the creditable withholding tax.
// A negative value is a refund.
func (s YearSummary) Due() Money { return s.EstimatedTax().Sub(s.Withholding) }

// MarshalJSON implements the json.Marshaler interface.
func (s YearSummary) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("year", s.Year)
	w.Append("sales", s.Sales)
	w.Append("deemed", s.Deemed)
	w.Append("dividends", s.Dividends)
	w.Append("interest", s.Interest)
	w.Append("total", s.Total())
	w.Append("withholding", s.Withholding)
	w.Append("estimatedTax", s.EstimatedTax())
	w.Append("due", s.Due())
	return w.MarshalJSON()
}
