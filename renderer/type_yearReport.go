package renderer

import "github.com/etnz/kap"

// YearReport holds the events of one tax year grouped by report section.
type YearReport struct {
	Year        int
	Sales       []kap.TaxEvent
	Deemed      []kap.TaxEvent
	Dividends   []kap.TaxEvent
	Interest    []kap.TaxEvent
	Withholding []kap.TaxEvent
	Summary     kap.YearSummary
}

// NewYearReport groups the events attributed to year.
func NewYearReport(year int, events []kap.TaxEvent) *YearReport {
	r := &YearReport{Year: year, Summary: kap.Summarize(year, events)}
	for _, e := range events {
		if e.TaxYear != year {
			continue
		}
		switch e.Kind {
		case kap.SaleEvent:
			r.Sales = append(r.Sales, e)
		case kap.DeemedEvent:
			r.Deemed = append(r.Deemed, e)
		case kap.DividendEvent:
			r.Dividends = append(r.Dividends, e)
		case kap.InterestEvent:
			r.Interest = append(r.Interest, e)
		case kap.WithholdingEvent:
			r.Withholding = append(r.Withholding, e)
		}
	}
	return r
}

// IsEmpty reports whether the year has no tax event.
func (r *YearReport) IsEmpty() bool {
	return len(r.Sales)+len(r.Deemed)+len(r.Dividends)+len(r.Interest)+len(r.Withholding) == 0
}
