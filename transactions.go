package kap

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/etnz/kap/date"
	"github.com/shopspring/decimal"
)

// Action is the kind of a raw transaction. The set is closed.
type Action string

// Actions known by the engine.
const (
	Buy         Action = "buy"
	Sell        Action = "sell"
	Dividend    Action = "dividend"
	Withholding Action = "withholding"
	Interest    Action = "interest"
)

// ParseAction parses an action name.
func ParseAction(s string) (Action, error) {
	switch a := Action(s); a {
	case Buy, Sell, Dividend, Withholding, Interest:
		return a, nil
	default:
		return "", fmt.Errorf("unknown action %q", s)
	}
}

// RawTransaction is one normalized broker record. All amounts are already
// converted to the reporting currency.
type RawTransaction struct {
	ID          string
	Symbol      string
	ISIN        string
	AssetClass  string
	Time        time.Time
	Action      Action
	Description string
	Quantity    Quantity // Quantity is signed: negative for sells.
	Amount      Money    // Amount is signed: negative when cash flows in for sells, negative for withholding.
	Fees        Money
	FXRate      Rate
	OriginPrice decimal.Decimal // price (or cash amount) in the origin currency.

	// Cancellation marks a broker correction (storno) that cancels an earlier record.
	Cancellation bool
}

// Date returns the day of the transaction in UTC, the location transactions
// are ordered in.
func (t RawTransaction) Date() date.Date { return date.Of(t.Time.UTC()) }

// Year returns the calendar year of the transaction in UTC.
func (t RawTransaction) Year() int { return t.Time.UTC().Year() }

// IsCancellationOf reports whether t cancels o: same symbol, opposite
// quantity and amounts summing to zero within 0.05.
func (t RawTransaction) IsCancellationOf(o RawTransaction) bool {
	if t.Symbol != o.Symbol {
		return false
	}
	if !t.Quantity.Equal(o.Quantity.Neg()) {
		return false
	}
	return !t.Amount.Add(o.Amount).Abs().GreaterThan(cancellationTolerance)
}

var cancellationTolerance = EUR(decimal.New(5, -2))

// Validate checks the fields the engine relies on.
func (t RawTransaction) Validate() error {
	if _, err := ParseAction(string(t.Action)); err != nil {
		return fmt.Errorf("transaction %q: %w", t.ID, err)
	}
	if t.Time.IsZero() {
		return fmt.Errorf("transaction %q: missing time", t.ID)
	}
	switch t.Action {
	case Buy:
		if !t.Quantity.IsPositive() {
			return fmt.Errorf("transaction %q: buy quantity must be positive, got %s", t.ID, t.Quantity)
		}
	case Sell:
		if t.Quantity.IsZero() {
			return fmt.Errorf("transaction %q: sell quantity must not be zero", t.ID)
		}
	}
	return nil
}

// txTimeFormat is the format of the time field in the JSONL format.
const txTimeFormat = time.RFC3339

// MarshalJSON writes the transaction with a stable field order.
func (t RawTransaction) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("id", t.ID)
	w.Append("time", t.Time.Format(txTimeFormat))
	w.Append("action", t.Action)
	w.Append("symbol", t.Symbol)
	w.Optional("isin", t.ISIN)
	w.Optional("assetClass", t.AssetClass)
	if !t.Quantity.IsZero() {
		w.Append("quantity", t.Quantity)
	}
	w.Append("amount", t.Amount)
	if !t.Fees.IsZero() {
		w.Append("fees", t.Fees)
	}
	if !t.FXRate.IsZero() {
		w.Append("fx", t.FXRate)
	}
	if !t.OriginPrice.IsZero() {
		w.Append("originPrice", t.OriginPrice)
	}
	w.Optional("description", t.Description)
	w.Optional("cancellation", t.Cancellation)
	return w.MarshalJSON()
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (t *RawTransaction) UnmarshalJSON(data []byte) error {
	var temp struct {
		ID           string          `json:"id"`
		Time         string          `json:"time"`
		Action       string          `json:"action"`
		Symbol       string          `json:"symbol"`
		ISIN         string          `json:"isin"`
		AssetClass   string          `json:"assetClass"`
		Quantity     Quantity        `json:"quantity"`
		Amount       Money           `json:"amount"`
		Fees         Money           `json:"fees"`
		FX           Rate            `json:"fx"`
		OriginPrice  decimal.Decimal `json:"originPrice"`
		Description  string          `json:"description"`
		Cancellation bool            `json:"cancellation"`
	}
	if err := json.Unmarshal(data, &temp); err != nil {
		return err
	}
	action, err := ParseAction(temp.Action)
	if err != nil {
		return err
	}
	on, err := parseTxTime(temp.Time)
	if err != nil {
		return err
	}
	*t = RawTransaction{
		ID:           temp.ID,
		Symbol:       temp.Symbol,
		ISIN:         temp.ISIN,
		AssetClass:   temp.AssetClass,
		Time:         on,
		Action:       action,
		Description:  temp.Description,
		Quantity:     temp.Quantity,
		Amount:       temp.Amount,
		Fees:         temp.Fees,
		FXRate:       temp.FX,
		OriginPrice:  temp.OriginPrice,
		Cancellation: temp.Cancellation,
	}
	return nil
}

// parseTxTime accepts a full RFC3339 time or a plain day. Times are
// returned in UTC.
func parseTxTime(s string) (time.Time, error) {
	if on, err := time.Parse(txTimeFormat, s); err == nil {
		return on.UTC(), nil
	}
	d, err := date.Parse(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: %w", s, err)
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC), nil
}
