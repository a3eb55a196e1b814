package quote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func yahooBody(fields string) string {
	return `{"quoteResponse": {"result": [{` + fields + `}], "error": null}}`
}

func TestPriceRegularMarket(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("symbols"); got != "AAPL" {
			t.Errorf("symbols = %q, want AAPL", got)
		}
		w.Write([]byte(yahooBody(`"regularMarketPrice": 232.14, "postMarketPrice": 233.05`)))
	}))
	t.Cleanup(srv.Close)
	c := New("test/1.0", "", WithYahooURL(srv.URL))

	price, ok := c.Price(context.Background(), "AAPL")
	if !ok || price != 232.14 {
		t.Fatalf("Price = %v, %v; want 232.14, true", price, ok)
	}
}

func TestPricePostMarketFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(yahooBody(`"postMarketPrice": 233.05`)))
	}))
	t.Cleanup(srv.Close)
	c := New("test/1.0", "", WithYahooURL(srv.URL))

	price, ok := c.Price(context.Background(), "AAPL")
	if !ok || price != 233.05 {
		t.Fatalf("Price = %v, %v; want 233.05, true", price, ok)
	}
}

func TestPriceSkipsUnusableFigures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(yahooBody(`"regularMarketPrice": -1, "postMarketPrice": 233.05`)))
	}))
	t.Cleanup(srv.Close)
	c := New("test/1.0", "", WithYahooURL(srv.URL))

	price, ok := c.Price(context.Background(), "AAPL")
	if !ok || price != 233.05 {
		t.Fatalf("Price = %v, %v; want 233.05, true", price, ok)
	}
}

func TestPriceAlphaVantageFallback(t *testing.T) {
	yahoo := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	t.Cleanup(yahoo.Close)
	av := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("function") != "GLOBAL_QUOTE" || q.Get("apikey") != "demo" {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		w.Write([]byte(`{"Global Quote": {"01. symbol": "AAPL", "05. price": "231.5000"}}`))
	}))
	t.Cleanup(av.Close)

	c := New("test/1.0", "demo", WithYahooURL(yahoo.URL), WithAlphaVantageURL(av.URL))
	price, ok := c.Price(context.Background(), "AAPL")
	if !ok || price != 231.5 {
		t.Fatalf("Price = %v, %v; want 231.5, true", price, ok)
	}
}

func TestPriceNoKeySkipsFallback(t *testing.T) {
	yahoo := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	t.Cleanup(yahoo.Close)
	var avHits atomic.Int64
	av := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		avHits.Add(1)
	}))
	t.Cleanup(av.Close)

	c := New("test/1.0", "", WithYahooURL(yahoo.URL), WithAlphaVantageURL(av.URL))
	if _, ok := c.Price(context.Background(), "AAPL"); ok {
		t.Fatal("expected no price")
	}
	if n := avHits.Load(); n != 0 {
		t.Errorf("alpha vantage hit %d times without a key, want 0", n)
	}
}

func TestPriceAlphaVantageRejectsNaN(t *testing.T) {
	yahoo := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	t.Cleanup(yahoo.Close)
	// ParseFloat accepts "NaN", but no exchange ever quoted one.
	av := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Global Quote": {"01. symbol": "AAPL", "05. price": "NaN"}}`))
	}))
	t.Cleanup(av.Close)

	c := New("test/1.0", "demo", WithYahooURL(yahoo.URL), WithAlphaVantageURL(av.URL))
	if price, ok := c.Price(context.Background(), "AAPL"); ok {
		t.Fatalf("Price = %v, true; want miss", price)
	}
}

func TestPriceBothSourcesFail(t *testing.T) {
	yahoo := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"quoteResponse": {"result": [], "error": null}}`))
	}))
	t.Cleanup(yahoo.Close)
	av := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Global Quote": {}}`))
	}))
	t.Cleanup(av.Close)

	c := New("test/1.0", "key", WithYahooURL(yahoo.URL), WithAlphaVantageURL(av.URL))
	if price, ok := c.Price(context.Background(), "AAPL"); ok {
		t.Fatalf("Price = %v, true; want miss", price)
	}
}

func TestPriceBlankSymbol(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	t.Cleanup(srv.Close)
	c := New("test/1.0", "", WithYahooURL(srv.URL))

	if _, ok := c.Price(context.Background(), ""); ok {
		t.Fatal("expected no price for blank symbol")
	}
	if n := hits.Load(); n != 0 {
		t.Errorf("server hit %d times for blank symbol, want 0", n)
	}
}
