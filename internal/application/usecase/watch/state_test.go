package watch

import (
	"testing"

	"sfarb/internal/domain/model"
)

func spotQuote(sym string, bid, ask float64) model.Quote {
	return model.Quote{Market: model.MarketSpot, Symbol: sym, Bid: bid, Ask: ask}
}

func futQuote(sym string, bid, ask float64) model.Quote {
	return model.Quote{Market: model.MarketFutures, Symbol: sym, Bid: bid, Ask: ask}
}

func TestBoardLastWriteWins(t *testing.T) {
	b := NewBoard()
	b.Apply(spotQuote("BTC", 100, 101))
	b.Apply(spotQuote("BTC", 102, 103))
	b.Apply(futQuote("BTC", 104, 105))

	spot, fut, ok := b.Pair("BTC")
	if !ok {
		t.Fatal("both legs present, pair expected")
	}
	if spot.Bid != 102 {
		t.Errorf("spot must hold the newest quote, got bid %v", spot.Bid)
	}
	if fut.Ask != 105 {
		t.Errorf("futures leg: got ask %v", fut.Ask)
	}
}

func TestBoardPairRequiresBothLegs(t *testing.T) {
	b := NewBoard()
	b.Apply(spotQuote("ETH", 100, 101))

	if _, _, ok := b.Pair("ETH"); ok {
		t.Error("one-legged symbol must not pair")
	}
	if _, _, ok := b.Pair("SOL"); ok {
		t.Error("unknown symbol must not pair")
	}
}

func TestBoardCountsAndSymbols(t *testing.T) {
	b := NewBoard()
	b.Apply(spotQuote("BTC", 1, 2))
	b.Apply(spotQuote("BTC", 1, 2))
	b.Apply(futQuote("ETH", 1, 2))
	b.Apply(futQuote("BTC", 1, 2))
	b.Apply(model.Quote{Market: model.MarketSpot}) // empty symbol ignored

	spotN, futN, spotSyms, futSyms := b.Counts()
	if spotN != 2 || futN != 2 {
		t.Errorf("applied counts: got %d/%d", spotN, futN)
	}
	if spotSyms != 1 || futSyms != 2 {
		t.Errorf("symbol counts: got %d/%d", spotSyms, futSyms)
	}

	syms := b.FuturesSymbols()
	if len(syms) != 2 || syms[0] != "BTC" || syms[1] != "ETH" {
		t.Errorf("futures symbols must be sorted, got %v", syms)
	}
}
