package refdata

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/etnz/kap"
)

func TestReadPrices(t *testing.T) {
	input := "\ufeffyear,isin,price_eur\n2022,IE00B4L5Y983,72.5\n2023, IE00B4L5Y983 ,85.1\n2023,US0378331005,172\n"
	prices, err := ReadPrices(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadPrices() error = %v", err)
	}
	tests := []struct {
		year  int
		isin  string
		want  float64
		found bool
	}{
		{2022, "IE00B4L5Y983", 72.5, true},
		{2023, "IE00B4L5Y983", 85.1, true},
		{2023, "US0378331005", 172, true},
		{2021, "IE00B4L5Y983", 0, false},
	}
	for _, tt := range tests {
		got, ok := prices.Price(tt.isin, tt.year)
		if ok != tt.found || (ok && !got.Equal(kap.EUR(tt.want))) {
			t.Errorf("Price(%s, %d) = %s, %v; want %v, %v", tt.isin, tt.year, got, ok, tt.want, tt.found)
		}
	}
}

func TestReadPrices_ColumnOrder(t *testing.T) {
	prices, err := ReadPrices(strings.NewReader("isin,price_eur,year\nX,1.5,2020\n"))
	if err != nil {
		t.Fatal(err)
	}
	if p, ok := prices.Price("X", 2020); !ok || !p.Equal(kap.EUR(1.5)) {
		t.Errorf("Price(X, 2020) = %s, %v", p, ok)
	}
}

func TestReadPrices_Errors(t *testing.T) {
	for name, input := range map[string]string{
		"empty":          "",
		"missing column": "year,isin\n2022,X\n",
		"bad year":       "year,isin,price_eur\ntwenty,X,1\n",
		"bad price":      "year,isin,price_eur\n2022,X,1,5\n",
		"missing isin":   "year,isin,price_eur\n2022,,1\n",
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := ReadPrices(strings.NewReader(input)); err == nil {
				t.Errorf("ReadPrices(%q) expected an error", input)
			}
		})
	}
}

func TestReadRates(t *testing.T) {
	rates, err := ReadRates(strings.NewReader("year,rate\n2022,-0.0005\n2023,0.0255\n2024,0.0229\n"))
	if err != nil {
		t.Fatalf("ReadRates() error = %v", err)
	}
	if !rates.Rate(2023).Equal(kap.R(0.0255)) {
		t.Errorf("Rate(2023) = %s", rates.Rate(2023))
	}
	if rates.Rate(2022).IsPositive() {
		t.Errorf("Rate(2022) = %s, want negative", rates.Rate(2022))
	}
	if !rates.Rate(2019).IsZero() {
		t.Errorf("Rate(2019) = %s, want 0", rates.Rate(2019))
	}
	if _, err := ReadRates(strings.NewReader("year,rate\n2022,2.5%\n")); err == nil {
		t.Error("expected an error for a percent rate")
	}
}

func TestReadInstruments(t *testing.T) {
	input := `{
		"IE00B4L5Y983": {"name": "iShares Core MSCI World", "tfs_quote": 0.3},
		"US0378331005": {"name": "Apple", "tfs_quote": "0", "symbol": "AAPL"},
		"DE0005140008": {"name": "Deutsche Bank", "symbol": "Unknown"}
	}`
	instruments, err := ReadInstruments(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadInstruments() error = %v", err)
	}
	world := instruments.Instrument("IE00B4L5Y983", "EUNL")
	if world.Name != "iShares Core MSCI World" || world.Symbol != "EUNL" || !world.ExemptionQuota.Equal(kap.R(0.3)) {
		t.Errorf("world = %+v", world)
	}
	apple := instruments.Instrument("US0378331005", "APC")
	if apple.Symbol != "AAPL" || !apple.ExemptionQuota.IsZero() {
		t.Errorf("apple = %+v", apple)
	}
	db := instruments.Instrument("DE0005140008", "DBK")
	if db.Symbol != "DBK" || !db.ExemptionQuota.IsZero() {
		t.Errorf("deutsche bank = %+v, want a zero quota without tfs_quote", db)
	}
	unlisted := instruments.Instrument("LU0274208692", "XDWD")
	if unlisted.Name != "Auto-Generated" || !unlisted.ExemptionQuota.Equal(kap.DefaultExemptionQuota) {
		t.Errorf("unlisted = %+v", unlisted)
	}

	for _, bad := range []string{`[]`, `{"X": {"tfs_quote": 1.5}}`, `{"X": {"tfs_quote": "high"}}`} {
		if _, err := ReadInstruments(strings.NewReader(bad)); err == nil {
			t.Errorf("ReadInstruments(%s) expected an error", bad)
		}
	}
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadDir(dir); err == nil {
		t.Fatal("LoadDir() on an empty directory expected an error")
	}
	write := func(name, content string) {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write(PricesFile, "year,isin,price_eur\n2022,X,12\n")
	write(RatesFile, "year,rate\n2022,0.0255\n")
	if _, err := LoadDir(dir); err == nil {
		t.Fatal("LoadDir() without instruments expected an error")
	}
	write(InstrumentsFile, `{"X": {"name": "x"}}`)

	data, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir() error = %v", err)
	}
	if _, ok := data.Prices.Price("X", 2022); !ok {
		t.Error("missing price")
	}
	if !data.Rates.Rate(2022).IsPositive() {
		t.Error("missing rate")
	}
	if data.Instruments.Instrument("X", "").Name != "x" {
		t.Error("missing instrument")
	}
}

func TestAppendPrice(t *testing.T) {
	path := filepath.Join(t.TempDir(), PricesFile)
	if err := AppendPrice(path, 2023, "X", kap.EUR(10.25)); err != nil {
		t.Fatal(err)
	}
	if err := AppendPrice(path, 2024, "X", kap.EUR(11)); err != nil {
		t.Fatal(err)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if want := "year,isin,price_eur\n2023,X,10.25\n2024,X,11\n"; string(content) != want {
		t.Errorf("prices file =\n%s\nwant\n%s", content, want)
	}
	prices, err := LoadPrices(path)
	if err != nil {
		t.Fatal(err)
	}
	if p, ok := prices.Price("X", 2024); !ok || !p.Equal(kap.EUR(11)) {
		t.Errorf("Price(X, 2024) = %s, %v", p, ok)
	}
}
