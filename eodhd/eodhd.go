// Package eodhd looks up live stock prices on eodhd.com.
package eodhd

import (
	"cmp"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/finasync"
	"github.com/shopspring/decimal"
)

// DemoKey is the public key of eodhd.com, it only serves a handful of tickers
// like AAPL.US or MSFT.US.
const DemoKey = "demo"

// DefaultBaseURL is the API root.
const DefaultBaseURL = "https://eodhd.com/api"

// Client queries the EODHD real-time API.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// New returns a client using apiKey, DemoKey when empty, against baseURL,
// DefaultBaseURL when empty.
func New(apiKey, baseURL string) *Client {
	return &Client{
		apiKey:  cmp.Or(apiKey, DemoKey),
		baseURL: strings.TrimSuffix(cmp.Or(baseURL, DefaultBaseURL), "/"),
		http:    new(http.Client),
	}
}

// Symbol returns the EODHD symbol of a ticker: upper case, with the US
// exchange when none is given.
func Symbol(ticker string) string {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if !strings.Contains(ticker, ".") {
		ticker += ".US"
	}
	return ticker
}

// pricePaths are tried in order, the close is "NA" outside market data hours
// for some exchanges.
var pricePaths = []string{"$.close", "$.previousClose"}

// Price returns the most recent price of ticker rounded to two decimals.
func (c *Client) Price(ctx context.Context, ticker string) (decimal.Decimal, error) {
	if strings.TrimSpace(ticker) == "" {
		return decimal.Zero, fmt.Errorf("empty ticker")
	}
	// https://eodhd.com/api/real-time/AAPL.US?api_token=demo&fmt=json
	// {"code":"AAPL.US","timestamp":1700000000,"gmtoffset":0,"open":189.1,
	//  "high":190.3,"low":188.2,"close":189.71,"volume":4467710,
	//  "previousClose":188.01,"change":1.7,"change_p":0.9042}
	addr := fmt.Sprintf("%s/real-time/%s?fmt=json&api_token=%s", c.baseURL, url.PathEscape(Symbol(ticker)), url.QueryEscape(c.apiKey))

	var jobj any
	if err := jwget(ctx, c.http, addr, &jobj); err != nil {
		return decimal.Zero, err
	}
	for _, path := range pricePaths {
		jval, err := jsonpath.Get(path, jobj)
		if err != nil {
			continue
		}
		if price, ok := asDecimal(jval); ok {
			return price.Round(2), nil
		}
	}
	return decimal.Zero, fmt.Errorf("no price available for %s", Symbol(ticker))
}

// asDecimal reads a JSON number, or a number written as a string. "NA" and
// zero are not prices.
func asDecimal(v any) (decimal.Decimal, bool) {
	// because jsonpath is never clear about wheter it returns a list of 1 answer, or a single answer:
	// by this call I keep the first one if any
	if list, ok := v.([]any); ok && len(list) > 0 {
		v = list[0]
	}
	var d decimal.Decimal
	switch x := v.(type) {
	case float64:
		d = decimal.NewFromFloat(x)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return d, false
		}
		d = decimal.NewFromFloat(f)
	default:
		return d, false
	}
	return d, d.IsPositive()
}

// A Pricer returns the latest price of a ticker.
type Pricer interface {
	Price(ctx context.Context, ticker string) (decimal.Decimal, error)
}

// Outcome looks up ticker and returns the tool outcome.
func (c *Client) Outcome(ctx context.Context, ticker string) finasync.Result {
	return PriceOutcome(ctx, c, ticker)
}

// PriceOutcome looks up ticker with p and returns the tool outcome.
func PriceOutcome(ctx context.Context, p Pricer, ticker string) finasync.Result {
	price, err := p.Price(ctx, ticker)
	if err != nil {
		return finasync.Failure(fmt.Errorf("Could not fetch price for %s: %w", ticker, err))
	}
	f := price.InexactFloat64()
	return finasync.Result{Status: finasync.StatusSuccess, Price: &f}
}
