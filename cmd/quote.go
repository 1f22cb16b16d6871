package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/etnz/kap"
	"github.com/etnz/kap/refdata"
	"github.com/google/subcommands"
)

type quoteCmd struct {
	isin    string
	year    int
	append  bool
	baseURL string
}

func (*quoteCmd) Name() string     { return "quote" }
func (*quoteCmd) Synopsis() string { return "fetch the latest EUR quote of an instrument" }
func (*quoteCmd) Usage() string {
	return `quote -isin <isin> [-year <year>] [-append]

Fetch the latest quote of an instrument from the exchange. With -append,
record it as the year end price in the prices file of the input directory.
Run it on the last trading day of the year.
`
}

func (c *quoteCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.isin, "isin", "", "ISIN of the instrument")
	f.IntVar(&c.year, "year", time.Now().Year(), "Year of the price")
	f.BoolVar(&c.append, "append", false, "Append the price to "+refdata.PricesFile)
	f.StringVar(&c.baseURL, "url", refdata.DefaultQuoteURL, "Quote endpoint")
}

func (c *quoteCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := kap.ValidateISIN(c.isin); err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid -isin %q: %v\n", c.isin, err)
		return subcommands.ExitUsageError
	}

	client := &refdata.QuoteClient{Client: refdata.Daily(), BaseURL: c.baseURL}
	price, err := client.Latest(ctx, c.isin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(stdout, "%d,%s,%s\n", c.year, c.isin, price.Decimal())

	if !c.append {
		return subcommands.ExitSuccess
	}
	path := filepath.Join(*inputDir, refdata.PricesFile)
	if err := refdata.AppendPrice(path, c.year, c.isin, price); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(stdout, "Successfully appended price to %s\n", path)
	return subcommands.ExitSuccess
}
