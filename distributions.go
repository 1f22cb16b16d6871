package kap

// distributionKey identifies the distributions of an ISIN within a year.
type distributionKey struct {
	year int
	isin string
}

// DistributionTracker accumulates, per year and ISIN, the cash distributed
// per share. It is never reset during a run.
type DistributionTracker struct {
	perShare map[distributionKey]Money
}

// NewDistributionTracker returns an empty tracker.
func NewDistributionTracker() *DistributionTracker {
	return &DistributionTracker{perShare: make(map[distributionKey]Money)}
}

// Record adds a distribution of amount over held units. Nothing is recorded
// when held is not positive.
func (t *DistributionTracker) Record(year int, isin string, amount Money, held Quantity) {
	if !held.IsPositive() {
		return
	}
	k := distributionKey{year, isin}
	t.perShare[k] = t.perShare[k].Add(amount.Div(held))
}

// PerShare returns the cumulated per share distribution of an ISIN in a year.
func (t *DistributionTracker) PerShare(year int, isin string) Money {
	return t.perShare[distributionKey{year, isin}]
}
