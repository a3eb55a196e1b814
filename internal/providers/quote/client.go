// Package quote resolves a latest share price, trying Yahoo Finance first
// and falling back to Alpha Vantage when an API key is configured.
package quote

import (
	"context"
	"math"
	"net/url"
	"strconv"

	"github.com/phuslu/log"

	"github.com/azrea/companion/internal/infra"
)

const (
	defaultYahooURL        = "https://query1.finance.yahoo.com/v7/finance/quote"
	defaultAlphaVantageURL = "https://www.alphavantage.co/query"
)

// Client fetches share prices. Safe for concurrent use.
type Client struct {
	http            *infra.Client
	yahooURL        string
	alphaVantageURL string
	alphaVantageKey string
}

// Option customizes a Client, mainly for tests.
type Option func(*Client)

// WithYahooURL overrides the Yahoo quote endpoint.
func WithYahooURL(url string) Option {
	return func(c *Client) { c.yahooURL = url }
}

// WithAlphaVantageURL overrides the Alpha Vantage endpoint.
func WithAlphaVantageURL(url string) Option {
	return func(c *Client) { c.alphaVantageURL = url }
}

// New builds a quote client. alphaVantageKey may be empty, in which case
// only Yahoo is consulted.
func New(userAgent, alphaVantageKey string, opts ...Option) *Client {
	c := &Client{
		http:            infra.NewClient(infra.DefaultTimeout, userAgent),
		yahooURL:        defaultYahooURL,
		alphaVantageURL: defaultAlphaVantageURL,
		alphaVantageKey: alphaVantageKey,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Price returns the latest price for symbol. The second return is false
// when no source produced a usable number; that is not an error condition.
func (c *Client) Price(ctx context.Context, symbol string) (float64, bool) {
	if symbol == "" {
		return 0, false
	}

	price, err := c.yahooPrice(ctx, symbol)
	if err == nil {
		return price, true
	}
	log.Warn().Err(err).Str("symbol", symbol).Msg("yahoo quote failed")

	if c.alphaVantageKey == "" {
		return 0, false
	}
	price, err = c.alphaVantagePrice(ctx, symbol)
	if err != nil {
		log.Warn().Err(err).Str("symbol", symbol).Msg("alpha vantage quote failed")
		return 0, false
	}
	return price, true
}

func (c *Client) yahooPrice(ctx context.Context, symbol string) (float64, error) {
	params := url.Values{}
	params.Set("symbols", symbol)

	var resp yahooResponse
	if err := c.http.GetJSON(ctx, c.yahooURL, params, nil, &resp); err != nil {
		return 0, err
	}
	if len(resp.QuoteResponse.Result) == 0 {
		return 0, &infra.FetchError{Kind: infra.FailParse, URL: c.yahooURL, Err: errNoQuote(symbol)}
	}

	// Outside regular trading hours the regular price can be missing; the
	// post- and pre-market figures stand in, in that order.
	q := resp.QuoteResponse.Result[0]
	for _, p := range []*float64{q.RegularMarketPrice, q.PostMarketPrice, q.PreMarketPrice} {
		if p != nil && validPrice(*p) {
			return *p, nil
		}
	}
	return 0, &infra.FetchError{Kind: infra.FailParse, URL: c.yahooURL, Err: errNoQuote(symbol)}
}

func (c *Client) alphaVantagePrice(ctx context.Context, symbol string) (float64, error) {
	params := url.Values{}
	params.Set("function", "GLOBAL_QUOTE")
	params.Set("symbol", symbol)
	params.Set("apikey", c.alphaVantageKey)

	var resp alphaVantageResponse
	if err := c.http.GetJSON(ctx, c.alphaVantageURL, params, nil, &resp); err != nil {
		return 0, err
	}
	price, err := strconv.ParseFloat(resp.GlobalQuote.Price, 64)
	if err != nil {
		return 0, &infra.FetchError{Kind: infra.FailParse, URL: c.alphaVantageURL, Err: err}
	}
	if !validPrice(price) {
		return 0, &infra.FetchError{Kind: infra.FailParse, URL: c.alphaVantageURL, Err: errNoQuote(symbol)}
	}
	return price, nil
}

// validPrice rejects the garbage ParseFloat happily accepts: "NaN", "Inf"
// and negative figures are never real quotes.
func validPrice(p float64) bool {
	return !math.IsNaN(p) && !math.IsInf(p, 0) && p >= 0
}

type errNoQuote string

func (e errNoQuote) Error() string {
	return "no quote for " + string(e)
}
