// Package kap computes German capital income tax (Anlage KAP) for a brokerage
// portfolio.
//
// The computation is a deterministic batch over a time ordered stream of
// normalized broker transactions:
//   - Reconciliation: broker cancellations (storno) are removed together with
//     the record they cancel, see Reconcile.
//   - Lot accounting: buys open tax lots, sells consume them in FIFO order
//     and realize a gain per lot, see LotLedger.
//   - Partial exemption: fund income and gains are taxed on 1-quota only
//     (Teilfreistellung), see Instrument.
//   - Deemed distribution: at each year end, open fund lots accrue a minimum
//     taxable yield (Vorabpauschale) capped by the year's price gain and net
//     of the distributions of the year. It is credited back on sale, see
//     Engine.CloseYear.
//
// The result is an append only ledger of TaxEvent, grouped by tax year, and
// summarized by Summarize. Per record anomalies are collected as Diagnostic
// while reference data errors abort the run.
//
// This package serves as the foundational logic for the `kap` command-line
// tool.
package kap
