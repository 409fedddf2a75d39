package mexc

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newRefServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v3/exchangeInfo", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"symbols":[
			{"symbol":"BTCUSDT","status":"1","baseAsset":"BTC","quoteAsset":"USDT","permissions":["SPOT"],"isSpotTradingAllowed":true},
			{"symbol":"ETHBTC","status":"1","baseAsset":"ETH","quoteAsset":"BTC","permissions":["SPOT"],"isSpotTradingAllowed":true}
		]}`))
	})
	mux.HandleFunc("/api/v1/contract/detail", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[
			{"symbol":"BTC_USDT","baseCoin":"BTC","quoteCoin":"USDT","state":0},
			{"symbol":"DOGE_USDT","baseCoin":"DOGE","quoteCoin":"USDT","state":2}
		]}`))
	})
	mux.HandleFunc("/api/v3/ticker/24hr", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"symbol":"BTCUSDT","quoteVolume":"123456.78"},
			{"symbol":"ETHUSDT","quoteVolume":"not-a-number"},
			{"symbol":"","quoteVolume":"1"}
		]`))
	})
	return httptest.NewServer(mux)
}

func TestRestClientSpotSymbols(t *testing.T) {
	srv := newRefServer(t)
	defer srv.Close()

	c := NewRestClient(srv.URL, srv.URL)
	syms, err := c.SpotSymbols(context.Background())
	if err != nil {
		t.Fatalf("spot symbols: %v", err)
	}
	if len(syms) != 2 {
		t.Fatalf("want 2 symbols, got %d", len(syms))
	}
	if syms[0].BaseAsset != "BTC" || syms[0].QuoteAsset != "USDT" || !syms[0].SpotTradingAllowed {
		t.Errorf("unexpected first symbol: %+v", syms[0])
	}
}

func TestRestClientContracts(t *testing.T) {
	srv := newRefServer(t)
	defer srv.Close()

	c := NewRestClient(srv.URL, srv.URL)
	contracts, err := c.Contracts(context.Background())
	if err != nil {
		t.Fatalf("contracts: %v", err)
	}
	if len(contracts) != 2 {
		t.Fatalf("want 2 contracts, got %d", len(contracts))
	}
	if contracts[1].State != 2 {
		t.Errorf("state must pass through untouched, got %d", contracts[1].State)
	}
}

func TestRestClientQuoteVolumes(t *testing.T) {
	srv := newRefServer(t)
	defer srv.Close()

	c := NewRestClient(srv.URL, srv.URL)
	vols, err := c.QuoteVolumes(context.Background())
	if err != nil {
		t.Fatalf("quote volumes: %v", err)
	}
	if got := vols["BTCUSDT"]; got != 123456.78 {
		t.Errorf("BTCUSDT volume: want 123456.78, got %v", got)
	}
	if _, ok := vols["ETHUSDT"]; ok {
		t.Error("unparsable volume must be skipped")
	}
	if len(vols) != 1 {
		t.Errorf("want 1 entry, got %d", len(vols))
	}
}

func TestRestClientHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewRestClient(srv.URL, srv.URL)
	if _, err := c.SpotSymbols(context.Background()); err == nil {
		t.Error("non-200 must surface as error")
	}
	if _, err := c.Contracts(context.Background()); err == nil {
		t.Error("non-200 must surface as error")
	}
}
