// Package cmd implements the CLI application computing the German capital
// income tax of a broker account.
package cmd

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/etnz/kap"
	"github.com/etnz/kap/ibkr"
	"github.com/etnz/kap/refdata"
	"github.com/google/subcommands"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&reportCmd{}, "tax")
	c.Register(&lotsCmd{}, "tax")
	c.Register(&eventsCmd{}, "tax")
	c.Register(&reconcileCmd{}, "tax")
	c.Register(&exportCmd{}, "tax")

	c.Register(&quoteCmd{}, "reference data")

	c.Register(&topicCmd{}, "help")
	c.Register(&AssistCmd{}, "help")
}

// EnvInputDir is the environment variable defining the default input directory.
const EnvInputDir = "KAP_INPUT_DIR"

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var inputDir = flag.String("input", defaultInputDir(), "Directory containing the broker statements and reference data (env "+EnvInputDir+")")

// Verbose enables the log output.
var Verbose = flag.Bool("v", false, "Print processing logs to stderr")

var rawMarkdown = flag.Bool("raw", false, "Print markdown without terminal rendering")

// stdout is where commands write their results.
var stdout io.Writer = os.Stdout

func defaultInputDir() string {
	if dir := os.Getenv(EnvInputDir); dir != "" {
		return dir
	}
	return "."
}

// books is the result of processing the input directory.
type books struct {
	engine *kap.Engine
	// transactions before and after reconciliation.
	loaded     []kap.RawTransaction
	reconciled []kap.RawTransaction
	// cancellations without a matching record.
	unmatched []kap.Diagnostic
	ignored   *ibkr.Statement
}

// years returns every year with a tax event.
func (b *books) years() []int { return b.engine.Events().Years() }

// diagnostics returns the warnings of both reconciliation and processing.
func (b *books) diagnostics() []kap.Diagnostic {
	diags := append([]kap.Diagnostic(nil), b.unmatched...)
	return append(diags, b.engine.Diagnostics()...)
}

// loadTransactions reads every flex statement (*.xml) and normalized
// transaction file (*.jsonl) of dir.
func loadTransactions(dir string) ([]kap.RawTransaction, *ibkr.Statement, error) {
	statement := &ibkr.Statement{}
	xmls, err := filepath.Glob(filepath.Join(dir, "*.xml"))
	if err != nil {
		return nil, nil, err
	}
	if len(xmls) > 0 {
		if statement, err = ibkr.LoadDir(dir); err != nil {
			return nil, nil, err
		}
	}
	txs := statement.Transactions

	jsonls, err := filepath.Glob(filepath.Join(dir, "*.jsonl"))
	if err != nil {
		return nil, nil, err
	}
	sort.Strings(jsonls)
	for _, file := range jsonls {
		f, err := os.Open(file)
		if err != nil {
			return nil, nil, err
		}
		decoded, err := kap.DecodeTransactions(f)
		f.Close()
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", filepath.Base(file), err)
		}
		log.Printf("imported %d transactions from %s", len(decoded), file)
		txs = append(txs, decoded...)
	}

	if len(xmls)+len(jsonls) == 0 {
		return nil, nil, fmt.Errorf("no transaction file (*.xml, *.jsonl) found in %q", dir)
	}
	kap.SortTransactions(txs)
	return txs, statement, nil
}

// loadBooks loads the input directory and runs the tax engine over it.
func loadBooks(dir string) (*books, error) {
	txs, statement, err := loadTransactions(dir)
	if err != nil {
		return nil, err
	}
	data, err := refdata.LoadDir(dir)
	if err != nil {
		return nil, err
	}

	reconciled, unmatched := kap.Reconcile(txs)
	log.Printf("reconciliation kept %d of %d transactions", len(reconciled), len(txs))

	engine := kap.NewEngine(data.Prices, data.Rates, data.Instruments)
	if err := engine.Run(reconciled); err != nil {
		return nil, err
	}
	b := &books{
		engine:     engine,
		loaded:     txs,
		reconciled: reconciled,
		unmatched:  unmatched,
		ignored:    statement,
	}
	printIgnored(os.Stderr, statement)
	return b, nil
}

// printIgnored reports the assets skipped while importing statements.
func printIgnored(w io.Writer, s *ibkr.Statement) {
	for _, category := range s.Categories() {
		symbols := s.Ignored[category]
		fmt.Fprintf(w, "ignored %d %s asset(s): %s\n", len(symbols), category, strings.Join(symbols, ", "))
	}
}

// openBooks loads the books of the input directory and reports failures.
func openBooks() (*books, subcommands.ExitStatus) {
	b, err := loadBooks(*inputDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading %q: %v\n", *inputDir, err)
		return nil, subcommands.ExitFailure
	}
	return b, subcommands.ExitSuccess
}

// selectYears returns []int{year} if year is set, all years otherwise.
func selectYears(b *books, year int) []int {
	if year != 0 {
		return []int{year}
	}
	return b.years()
}
