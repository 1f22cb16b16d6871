package cmd

import (
	"bytes"
	"context"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/etnz/kap"
	"github.com/google/subcommands"
	"github.com/xuri/excelize/v2"
)

const flexStatement = `<?xml version="1.0" encoding="UTF-8"?>
<FlexQueryResponse queryName="tax" type="AF">
<FlexStatements count="1">
<FlexStatement accountId="U1234567">
<Trades>
<Trade transactionID="T1" assetCategory="STK" symbol="EUNL" isin="IE00B4L5Y983" dateTime="20220103;100000" buySell="BUY" quantity="100" tradePrice="10" fxRateToBase="1" />
<Trade transactionID="T2" assetCategory="STK" symbol="EUNL" isin="IE00B4L5Y983" dateTime="20230601;100000" buySell="SELL" quantity="-100" tradePrice="12.5" fxRateToBase="1" />
<Trade transactionID="T3" assetCategory="STK" symbol="EUNL" isin="IE00B4L5Y983" dateTime="20230105;100000" buySell="BUY" quantity="5" tradePrice="10" fxRateToBase="1" />
<Trade transactionID="T4" assetCategory="STK" symbol="EUNL" isin="IE00B4L5Y983" dateTime="20230106;100000" buySell="SELL (Ca.)" quantity="-5" tradePrice="10" fxRateToBase="1" />
<Trade transactionID="T5" assetCategory="CASH" symbol="EUR.USD" dateTime="20230105;100000" buySell="BUY" quantity="1000" tradePrice="1.07" />
</Trades>
</FlexStatement>
</FlexStatements>
</FlexQueryResponse>`

// setupInput writes a complete input directory and points the -input flag to it.
func setupInput(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"flex.xml":         flexStatement,
		"manual.jsonl":     `{"id":"i1","time":"2023-07-03","action":"interest","symbol":"CASH","amount":4}` + "\n",
		"prices.csv":       "year,isin,price_eur\n2022,IE00B4L5Y983,12\n",
		"basiszins.csv":    "year,rate\n2022,0.0255\n",
		"instruments.json": `{"IE00B4L5Y983": {"name": "iShares Core MSCI World", "tfs_quote": 0.3}}`,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	oldInput, oldRaw, oldStdout := inputDir, rawMarkdown, stdout
	raw := true
	inputDir, rawMarkdown = &dir, &raw
	t.Cleanup(func() { inputDir, rawMarkdown, stdout = oldInput, oldRaw, oldStdout })
	return dir
}

// execute runs a subcommand with args and returns what it printed.
func execute(t *testing.T, c subcommands.Command, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	stdout = &out

	f := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
	c.SetFlags(f)
	if err := f.Parse(args); err != nil {
		t.Fatalf("%s: invalid args %v: %v", c.Name(), args, err)
	}
	if status := c.Execute(context.Background(), f); status != subcommands.ExitSuccess {
		t.Fatalf("%s %v: exit status %v", c.Name(), args, status)
	}
	return out.String()
}

func TestLoadBooks(t *testing.T) {
	dir := setupInput(t)

	b, err := loadBooks(dir)
	if err != nil {
		t.Fatalf("loadBooks() error = %v", err)
	}
	if len(b.loaded) != 5 || len(b.reconciled) != 3 {
		t.Errorf("loaded %d, reconciled %d, want 5 and 3", len(b.loaded), len(b.reconciled))
	}
	if got := b.ignored.Ignored["CASH"]; len(got) != 1 || got[0] != "EUR.USD" {
		t.Errorf("ignored = %v", b.ignored.Ignored)
	}
	if years := b.years(); len(years) != 1 || years[0] != 2023 {
		t.Errorf("years() = %v, want [2023]", years)
	}

	s := kap.Summarize(2023, b.engine.Events().All())
	for _, tt := range []struct {
		name string
		got  kap.Money
		want string
	}{
		{"sales", s.Sales, "162.51"},
		{"deemed", s.Deemed, "12.5"},
		{"interest", s.Interest, "4"},
	} {
		if got := tt.got.Round().Decimal().String(); got != tt.want {
			t.Errorf("%s = %s, want %s", tt.name, got, tt.want)
		}
	}
	if d := b.diagnostics(); len(d) != 0 {
		t.Errorf("unexpected diagnostics %v", d)
	}
}

func TestLoadBooks_Errors(t *testing.T) {
	t.Run("no transaction file", func(t *testing.T) {
		if _, err := loadBooks(t.TempDir()); err == nil {
			t.Error("expected an error")
		}
	})
	t.Run("missing reference data", func(t *testing.T) {
		dir := setupInput(t)
		if err := os.Remove(filepath.Join(dir, "basiszins.csv")); err != nil {
			t.Fatal(err)
		}
		if _, err := loadBooks(dir); err == nil {
			t.Error("expected an error")
		}
	})
}

func TestReportCmd(t *testing.T) {
	setupInput(t)
	got := execute(t, &reportCmd{}, "-y", "2023")
	for _, want := range []string{
		"# Tax Report 2023 (Anlage KAP)",
		"| 2023-06-01 | EUNL | 2022-01-03 | 100 | €1,250.00 | €1,000.00 | €0.00 | €17.85 | 30% | +€232.15 | +€162.51 |",
		"| Taxable capital income | €179.00 |",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("report does not contain %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "## Warnings") {
		t.Errorf("report has warnings:\n%s", got)
	}
}

func TestEventsCmd(t *testing.T) {
	setupInput(t)
	lines := strings.Split(strings.TrimSpace(execute(t, &eventsCmd{})), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d events, want 3:\n%s", len(lines), strings.Join(lines, "\n"))
	}
	for i, kind := range []string{`"kind":"deemed-distribution"`, `"kind":"sale"`, `"kind":"interest"`} {
		if !strings.Contains(lines[i], kind) {
			t.Errorf("event %d = %s, want %s", i, lines[i], kind)
		}
	}
	if got := execute(t, &eventsCmd{}, "-y", "2022"); got != "" {
		t.Errorf("events in 2022 = %q, want none", got)
	}
}

func TestLotsCmd(t *testing.T) {
	setupInput(t)
	if got := execute(t, &lotsCmd{}); got != "# Open Lots\n\nNo open lot.\n" {
		t.Errorf("lots = %q", got)
	}
}

func TestReconcileCmd(t *testing.T) {
	dir := setupInput(t)
	output := filepath.Join(dir, "out", "reconciled.jsonl")
	if err := os.Mkdir(filepath.Dir(output), 0o755); err != nil {
		t.Fatal(err)
	}

	got := execute(t, &reconcileCmd{}, "-o", output)
	if !strings.HasPrefix(got, "5 transactions, 2 removed, 3 kept\n") {
		t.Errorf("reconcile = %q", got)
	}

	f, err := os.Open(output)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	txs, err := kap.DecodeTransactions(f)
	if err != nil {
		t.Fatalf("reconciled file is not readable: %v", err)
	}
	ids := make([]string, 0, len(txs))
	for _, tx := range txs {
		ids = append(ids, tx.ID)
	}
	if got := strings.Join(ids, ","); got != "T1,T2,i1" {
		t.Errorf("reconciled ids = %s, want T1,T2,i1", got)
	}
}

func TestExportCmd(t *testing.T) {
	dir := setupInput(t)
	output := filepath.Join(dir, "kap.xlsx")
	execute(t, &exportCmd{}, "-o", output)

	f, err := excelize.OpenFile(output)
	if err != nil {
		t.Fatalf("cannot open workbook: %v", err)
	}
	defer f.Close()
	if got := strings.Join(f.GetSheetList(), ","); got != "Summary,2023" {
		t.Errorf("sheets = %s", got)
	}
}
