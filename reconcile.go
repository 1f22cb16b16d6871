package kap

import (
	"fmt"
	"log"
)

// Reconcile removes broker cancellations from txs.
//
// For every record marked as a cancellation, the closest earlier record that
// it cancels (see RawTransaction.IsCancellationOf) is searched backward. When
// found both are removed. Otherwise only the cancellation is removed and an
// UnmatchedCancellation diagnostic is returned. A record is matched at most
// once. The input must be sorted by time; the relative order of the kept
// records is preserved and txs is not modified.
func Reconcile(txs []RawTransaction) ([]RawTransaction, []Diagnostic) {
	removed := make([]bool, len(txs))
	var diags []Diagnostic

	for i, tx := range txs {
		if !tx.Cancellation {
			continue
		}
		removed[i] = true

		match := -1
		for j := i - 1; j >= 0; j-- {
			if removed[j] || txs[j].Cancellation {
				continue
			}
			if tx.IsCancellationOf(txs[j]) {
				match = j
				break
			}
		}
		if match < 0 {
			d := Diagnostic{
				Kind:    UnmatchedCancellation,
				Date:    tx.Date(),
				Symbol:  tx.Symbol,
				ISIN:    tx.ISIN,
				Message: fmt.Sprintf("no original found for cancellation %q of %s, amount %s", tx.ID, tx.Quantity, tx.Amount),
			}
			log.Printf("warning: %v", d)
			diags = append(diags, d)
			continue
		}
		removed[match] = true
	}

	kept := make([]RawTransaction, 0, len(txs))
	for i, tx := range txs {
		if !removed[i] {
			kept = append(kept, tx)
		}
	}
	return kept, diags
}
