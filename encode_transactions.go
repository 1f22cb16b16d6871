package kap

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// DecodeTransactions reads a JSONL stream, one RawTransaction per line, and
// returns them stably sorted by time. Empty lines are skipped.
func DecodeTransactions(r io.Reader) ([]RawTransaction, error) {
	var txs []RawTransaction
	scanner := bufio.NewScanner(r)
	i := 0
	for scanner.Scan() {
		i++
		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}
		var tx RawTransaction
		if err := json.Unmarshal(line, &tx); err != nil {
			return nil, fmt.Errorf("parse error on line %d: %w", i, err)
		}
		if err := tx.Validate(); err != nil {
			return nil, fmt.Errorf("invalid transaction on line %d: %w", i, err)
		}
		txs = append(txs, tx)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("could not read transactions: %w", err)
	}
	SortTransactions(txs)
	return txs, nil
}

// EncodeTransactions writes transactions as JSONL, one per line.
func EncodeTransactions(w io.Writer, txs []RawTransaction) error {
	bw := bufio.NewWriter(w)
	for _, tx := range txs {
		b, err := json.Marshal(tx)
		if err != nil {
			return fmt.Errorf("could not encode transaction %q: %w", tx.ID, err)
		}
		bw.Write(b)
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// SortTransactions sorts by time, keeping the input order of simultaneous records.
func SortTransactions(txs []RawTransaction) {
	sort.SliceStable(txs, func(i, j int) bool { return txs[i].Time.Before(txs[j].Time) })
}
