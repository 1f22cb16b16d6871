package refdata

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/kap"
)

// DefaultQuoteURL is the Tradegate endpoint returning the latest quote of an ISIN in EUR.
const DefaultQuoteURL = "https://www.tradegate.de/refresh.php"

// ErrNoQuote is returned when the exchange has no usable price.
var ErrNoQuote = errors.New("no quote")

// QuoteClient fetches the latest EUR quote of an instrument, to seed the
// year end prices.
type QuoteClient struct {
	Client  *http.Client
	BaseURL string // DefaultQuoteURL if empty.
}

// Latest returns the last traded price of isin, or the bid when nothing
// traded yet. The endpoint answers like:
//
//	{"bid": 101.36, "ask": 101.42, "last": "./.", "bidsize": 2000}
func (c *QuoteClient) Latest(ctx context.Context, isin string) (kap.Money, error) {
	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}
	base := c.BaseURL
	if base == "" {
		base = DefaultQuoteURL
	}
	addr := base + "?isin=" + url.QueryEscape(isin)

	var jobj any
	if err := jwget(ctx, client, addr, &jobj); err != nil {
		return kap.Money{}, fmt.Errorf("error retrieving quote of %s: %w", isin, err)
	}

	// last is the last transaction, moves slower than the bid, but the bid can be 0.
	val, err := quoteAt(jobj, "$.last")
	if err != nil {
		log.Printf("'last' unusable (%v), falling back to 'bid'", err)
		val, err = quoteAt(jobj, "$.bid")
	}
	if err != nil {
		return kap.Money{}, fmt.Errorf("cannot read quote of %s: %w", isin, err)
	}
	return kap.EUR(val), nil
}

// quoteAt reads a price at path. The API returns numbers, or strings with
// a decimal comma, and "./." for no value.
func quoteAt(jobj any, path string) (float64, error) {
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}
	// jsonpath may return a list of 1 answer, keep the first one if any.
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		jval = jlist[0]
	}

	var val float64
	switch v := jval.(type) {
	case float64:
		val = v
	case string:
		if v == "./." || v == "" {
			return 0, fmt.Errorf("%s: %w", path, ErrNoQuote)
		}
		s := strings.ReplaceAll(strings.ReplaceAll(v, " ", ""), ",", ".")
		val, err = strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("%s: invalid value %q: %w", path, v, err)
		}
	default:
		return 0, fmt.Errorf("%s: unexpected value %v", path, jval)
	}
	if val == 0 {
		return 0, fmt.Errorf("%s: %w", path, ErrNoQuote)
	}
	return val, nil
}
