// Package refdata loads the reference data of a tax computation: year end
// prices, base interest rates and instrument exemption quotas.
//
// Files live next to the broker statements:
//
//	prices.csv        year,isin,price_eur
//	basiszins.csv     year,rate
//	instruments.json  {"<isin>": {"name": "...", "tfs_quote": 0.3}}
//
// A missing file or an invalid row is an error.
package refdata

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/etnz/kap"
)

// File names in an input directory.
const (
	PricesFile      = "prices.csv"
	RatesFile       = "basiszins.csv"
	InstrumentsFile = "instruments.json"
)

// Data is the reference data of an input directory.
type Data struct {
	Prices      kap.Prices
	Rates       kap.Rates
	Instruments kap.Instruments
}

// LoadDir loads the three reference files of dir.
func LoadDir(dir string) (*Data, error) {
	prices, err := LoadPrices(filepath.Join(dir, PricesFile))
	if err != nil {
		return nil, err
	}
	rates, err := LoadRates(filepath.Join(dir, RatesFile))
	if err != nil {
		return nil, err
	}
	instruments, err := LoadInstruments(filepath.Join(dir, InstrumentsFile))
	if err != nil {
		return nil, err
	}
	return &Data{Prices: prices, Rates: rates, Instruments: instruments}, nil
}

// LoadPrices reads a prices file.
func LoadPrices(path string) (kap.Prices, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open prices: %w", err)
	}
	defer f.Close()
	prices, err := ReadPrices(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return prices, nil
}

// ReadPrices reads the year,isin,price_eur CSV format.
func ReadPrices(r io.Reader) (kap.Prices, error) {
	prices := kap.Prices{}
	err := readCSV(r, []string{"year", "isin", "price_eur"}, func(line int, row map[string]string) error {
		year, err := strconv.Atoi(row["year"])
		if err != nil {
			return fmt.Errorf("line %d: invalid year: %w", line, err)
		}
		price, err := kap.ParseMoney(row["price_eur"])
		if err != nil {
			return fmt.Errorf("line %d: invalid price: %w", line, err)
		}
		isin := row["isin"]
		if isin == "" {
			return fmt.Errorf("line %d: missing isin", line)
		}
		prices.Set(year, isin, price)
		return nil
	})
	return prices, err
}

// LoadRates reads a base rates file.
func LoadRates(path string) (kap.Rates, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open base rates: %w", err)
	}
	defer f.Close()
	rates, err := ReadRates(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rates, nil
}

// ReadRates reads the year,rate CSV format. Rates are fractions: 0.0255 is 2.55%.
func ReadRates(r io.Reader) (kap.Rates, error) {
	rates := kap.Rates{}
	err := readCSV(r, []string{"year", "rate"}, func(line int, row map[string]string) error {
		year, err := strconv.Atoi(row["year"])
		if err != nil {
			return fmt.Errorf("line %d: invalid year: %w", line, err)
		}
		rate, err := kap.ParseRate(row["rate"])
		if err != nil {
			return fmt.Errorf("line %d: invalid rate: %w", line, err)
		}
		rates[year] = rate
		return nil
	})
	return rates, err
}

// readCSV calls fn for each row, indexed by the header names. The header
// must contain the columns in want, in any order.
func readCSV(r io.Reader, want []string, fn func(line int, row map[string]string) error) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	data = bytes.TrimPrefix(data, []byte("\ufeff"))

	cr := csv.NewReader(bytes.NewReader(data))
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err == io.EOF {
		return fmt.Errorf("empty file, want header %s", strings.Join(want, ","))
	}
	if err != nil {
		return err
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	for _, col := range want {
		if !contains(header, col) {
			return fmt.Errorf("missing column %q in header %v", col, header)
		}
	}

	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(rec) {
				row[col] = strings.TrimSpace(rec[i])
			}
		}
		if err := fn(line, row); err != nil {
			return err
		}
	}
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}

// LoadInstruments reads an instruments file.
func LoadInstruments(path string) (kap.Instruments, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open instruments: %w", err)
	}
	defer f.Close()
	instruments, err := ReadInstruments(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return instruments, nil
}

// ReadInstruments reads the instruments JSON object keyed by ISIN. A listed
// instrument without tfs_quote has no partial exemption; only ISINs absent
// from the file get kap.DefaultExemptionQuota.
func ReadInstruments(r io.Reader) (kap.Instruments, error) {
	var jinstruments map[string]struct {
		Symbol   string    `json:"symbol"`
		Name     string    `json:"name"`
		TFSQuote *kap.Rate `json:"tfs_quote"`
	}
	if err := json.NewDecoder(r).Decode(&jinstruments); err != nil {
		return nil, fmt.Errorf("invalid instruments: %w", err)
	}
	instruments := make(kap.Instruments, len(jinstruments))
	for isin, j := range jinstruments {
		inst := kap.Instrument{ISIN: isin, Symbol: j.Symbol, Name: j.Name, ExemptionQuota: kap.R(0)}
		if j.TFSQuote != nil {
			inst.ExemptionQuota = *j.TFSQuote
		}
		// "Unknown" marks a symbol to be taken from the trades.
		if inst.Symbol == "Unknown" {
			inst.Symbol = ""
		}
		if q := inst.ExemptionQuota; q.Decimal().IsNegative() || q.GreaterThan(kap.R(1)) {
			return nil, fmt.Errorf("instrument %s: tfs_quote %s out of [0,1]", isin, q)
		}
		instruments[isin] = inst
	}
	return instruments, nil
}

// AppendPrice appends a year end price to a prices file, creating it with
// its header if needed.
func AppendPrice(path string, year int, isin string, price kap.Money) error {
	_, err := os.Stat(path)
	exists := err == nil

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("cannot open prices: %w", err)
	}
	w := csv.NewWriter(f)
	if !exists {
		w.Write([]string{"year", "isin", "price_eur"})
	}
	w.Write([]string{strconv.Itoa(year), isin, price.Decimal().String()})
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("cannot write prices: %w", err)
	}
	return f.Close()
}
