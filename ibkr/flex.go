// Package ibkr loads Interactive Brokers Flex Query XML statements into
// normalized kap transactions.
package ibkr

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/etnz/kap"
	"github.com/shopspring/decimal"
)

// Ignored categories of trades that are not reported as their asset class.
const (
	ForexHeuristic = "FOREX_HEURISTIC"
	unknown        = "UNKNOWN"
)

// Trade is a <Trade> element of a Flex statement.
type Trade struct {
	TransactionID string `xml:"transactionID,attr"`
	AssetCategory string `xml:"assetCategory,attr"`
	AssetClass    string `xml:"assetClass,attr"`
	Symbol        string `xml:"symbol,attr"`
	Description   string `xml:"description,attr"`
	ISIN          string `xml:"isin,attr"`
	DateTime      string `xml:"dateTime,attr"`
	TradeDate     string `xml:"tradeDate,attr"`
	BuySell       string `xml:"buySell,attr"`
	Quantity      string `xml:"quantity,attr"`
	TradePrice    string `xml:"tradePrice,attr"`
	FXRateToBase  string `xml:"fxRateToBase,attr"`
	IBCommission  string `xml:"ibCommission,attr"`
}

// CashTransaction is a <CashTransaction> element of a Flex statement.
type CashTransaction struct {
	TransactionID string `xml:"transactionID,attr"`
	Type          string `xml:"type,attr"`
	AssetCategory string `xml:"assetCategory,attr"`
	AssetClass    string `xml:"assetClass,attr"`
	Symbol        string `xml:"symbol,attr"`
	Description   string `xml:"description,attr"`
	ISIN          string `xml:"isin,attr"`
	DateTime      string `xml:"dateTime,attr"`
	ReportDate    string `xml:"reportDate,attr"`
	Amount        string `xml:"amount,attr"`
	Currency      string `xml:"currency,attr"`
	FXRateToBase  string `xml:"fxRateToBase,attr"`
}

// Statement is the content of one or more Flex files.
type Statement struct {
	Transactions []kap.RawTransaction
	// Ignored lists, per asset class (or ForexHeuristic), the symbols of the
	// trades that were skipped.
	Ignored map[string][]string
}

func (s *Statement) ignore(category, symbol string) {
	if s.Ignored == nil {
		s.Ignored = make(map[string][]string)
	}
	for _, known := range s.Ignored[category] {
		if known == symbol {
			return
		}
	}
	s.Ignored[category] = append(s.Ignored[category], symbol)
}

// Categories returns the ignored categories in alphabetical order.
func (s *Statement) Categories() []string {
	var cats []string
	for c := range s.Ignored {
		cats = append(cats, c)
	}
	sort.Strings(cats)
	return cats
}

// LoadDir reads every *.xml file in dir, in name order, and returns their
// transactions stably sorted by time. It fails if dir has no XML file.
func LoadDir(dir string) (*Statement, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.xml"))
	if err != nil {
		return nil, fmt.Errorf("cannot scan %q for flex statements: %w", dir, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no XML file found in %q", dir)
	}
	sort.Strings(files)
	log.Printf("importing %d flex statements from %s", len(files), dir)

	s := &Statement{}
	for _, file := range files {
		if err := s.loadFile(file); err != nil {
			return nil, err
		}
	}
	kap.SortTransactions(s.Transactions)
	return s, nil
}

func (s *Statement) loadFile(file string) error {
	f, err := os.Open(file)
	if err != nil {
		return fmt.Errorf("cannot open %q: %w", file, err)
	}
	defer f.Close()
	if err := s.Decode(f); err != nil {
		return fmt.Errorf("%s: %w", filepath.Base(file), err)
	}
	return nil
}

// Decode appends the transactions of one Flex XML document. Trade and
// CashTransaction elements are collected wherever they are nested.
func (s *Statement) Decode(r io.Reader) error {
	dec := xml.NewDecoder(r)
	for {
		token, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("invalid flex statement: %w", err)
		}
		start, ok := token.(xml.StartElement)
		if !ok {
			continue
		}
		switch start.Name.Local {
		case "Trade":
			var t Trade
			if err := dec.DecodeElement(&t, &start); err != nil {
				return fmt.Errorf("invalid Trade: %w", err)
			}
			if err := s.addTrade(t); err != nil {
				return err
			}
		case "CashTransaction":
			var c CashTransaction
			if err := dec.DecodeElement(&c, &start); err != nil {
				return fmt.Errorf("invalid CashTransaction: %w", err)
			}
			if err := s.addCash(c); err != nil {
				return err
			}
		}
	}
}

func (s *Statement) addTrade(t Trade) error {
	if t.TransactionID == "" {
		return nil
	}
	symbol := or(t.Symbol, unknown)
	class := assetClass(t.AssetCategory, t.AssetClass)
	switch {
	case class == "CASH":
		s.ignore(class, symbol)
		return nil
	case isForex(symbol):
		s.ignore(ForexHeuristic, symbol)
		return nil
	case class != "STK" && class != "FUND":
		s.ignore(class, symbol)
		return nil
	}

	on, err := parseDateTime(or(t.DateTime, t.TradeDate))
	if err != nil {
		return fmt.Errorf("trade %s: %w", t.TransactionID, err)
	}
	action, err := tradeAction(t.BuySell)
	if err != nil {
		return fmt.Errorf("trade %s: %w", t.TransactionID, err)
	}
	qty, err := number(t.Quantity, "0")
	if err != nil {
		return fmt.Errorf("trade %s: invalid quantity: %w", t.TransactionID, err)
	}
	price, err := number(t.TradePrice, "0")
	if err != nil {
		return fmt.Errorf("trade %s: invalid price: %w", t.TransactionID, err)
	}
	fx, err := number(t.FXRateToBase, "1")
	if err != nil {
		return fmt.Errorf("trade %s: invalid fx rate: %w", t.TransactionID, err)
	}
	commission, err := number(t.IBCommission, "0")
	if err != nil {
		return fmt.Errorf("trade %s: invalid commission: %w", t.TransactionID, err)
	}

	s.Transactions = append(s.Transactions, kap.RawTransaction{
		ID:           t.TransactionID,
		Symbol:       symbol,
		ISIN:         or(t.ISIN, unknown),
		AssetClass:   class,
		Time:         on,
		Action:       action,
		Description:  t.Description,
		Quantity:     kap.Q(qty),
		Amount:       kap.EUR(price.Mul(qty).RoundBank(4).Mul(fx)),
		Fees:         kap.EUR(commission.Abs().Mul(fx)),
		FXRate:       kap.R(fx),
		OriginPrice:  price,
		Cancellation: strings.Contains(t.Description, "(Ca.)") || strings.Contains(t.BuySell, "Ca."),
	})
	return nil
}

func (s *Statement) addCash(c CashTransaction) error {
	var action kap.Action
	switch {
	case strings.Contains(c.Type, "Dividends"):
		action = kap.Dividend
	case strings.Contains(c.Type, "Withholding Tax"):
		action = kap.Withholding
	case strings.Contains(c.Type, "Interest"):
		action = kap.Interest
	default:
		return nil
	}
	class := assetClass(c.AssetCategory, c.AssetClass)
	if action == kap.Dividend && class != "STK" && class != "FUND" {
		return nil
	}

	on, err := parseDateTime(or(c.DateTime, c.ReportDate))
	if err != nil {
		return fmt.Errorf("cash transaction %s: %w", c.TransactionID, err)
	}
	amount, err := number(c.Amount, "0")
	if err != nil {
		return fmt.Errorf("cash transaction %s: invalid amount: %w", c.TransactionID, err)
	}
	fx, err := number(c.FXRateToBase, "1")
	if err != nil {
		return fmt.Errorf("cash transaction %s: invalid fx rate: %w", c.TransactionID, err)
	}

	s.Transactions = append(s.Transactions, kap.RawTransaction{
		ID:           c.TransactionID,
		Symbol:       or(c.Symbol, "CASH"),
		ISIN:         or(c.ISIN, unknown),
		AssetClass:   class,
		Time:         on,
		Action:       action,
		Description:  c.Description,
		Amount:       kap.EUR(amount.RoundBank(4).Mul(fx)),
		FXRate:       kap.R(fx),
		OriginPrice:  amount,
		Cancellation: strings.Contains(c.Description, "(Ca.)"),
	})
	return nil
}

// tradeAction maps buySell values like "BUY", "SELL" or "SELL (Ca.)".
func tradeAction(buySell string) (kap.Action, error) {
	switch s := strings.ToUpper(buySell); {
	case strings.HasPrefix(s, "BUY"):
		return kap.Buy, nil
	case strings.HasPrefix(s, "SELL"):
		return kap.Sell, nil
	default:
		return "", fmt.Errorf("unknown buySell %q", buySell)
	}
}

// assetClass prefers assetCategory over assetClass.
func assetClass(category, class string) string {
	return or(category, or(class, unknown))
}

var forexCurrencies = []string{"EUR", "USD", "GBP", "CHF", "JPY"}

// isForex recognizes currency pairs like "EUR.USD".
func isForex(symbol string) bool {
	if len(symbol) != 7 || !strings.Contains(symbol, ".") {
		return false
	}
	for _, c := range forexCurrencies {
		if strings.Contains(symbol, c) {
			return true
		}
	}
	return false
}

// parseDateTime accepts "20060102;150405" or a day "20060102", the latter
// standing for the end of the day.
func parseDateTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, errors.New("empty date")
	}
	if t, err := time.Parse("20060102;150405", s); err == nil {
		return t, nil
	}
	d, err := time.Parse("20060102", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("unknown date format %q", s)
	}
	return d.Add(23*time.Hour + 59*time.Minute + 59*time.Second), nil
}

func number(s, def string) (decimal.Decimal, error) {
	return decimal.NewFromString(or(s, def))
}

func or(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
