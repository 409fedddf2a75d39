package watch

import (
	"math"
	"testing"

	"sfarb/internal/domain/model"
	dsvc "sfarb/internal/domain/service"
)

func boardWith(quotes ...model.Quote) *Board {
	b := NewBoard()
	for _, q := range quotes {
		b.Apply(q)
	}
	return b
}

func volumedSpot(sym string, bid, ask, vol float64) model.Quote {
	q := spotQuote(sym, bid, ask)
	q.Volume24h = vol
	return q
}

func TestScanComputesSpreads(t *testing.T) {
	e := NewEngine(nil, 0)
	b := boardWith(
		volumedSpot("BTC", 100, 100.5, 500000),
		futQuote("BTC", 101.5, 102),
	)

	opps, crossings := e.Scan(b, nil, 1000)
	if len(opps) != 1 {
		t.Fatalf("want one opportunity, got %d", len(opps))
	}
	if len(crossings) != 0 {
		t.Fatalf("first tick must never cross, got %d", len(crossings))
	}

	o := opps[0]
	wantGross := (102.0 - 100.0) / 100.0 * 100
	if math.Abs(o.GrossSpreadPct-wantGross) > 1e-9 {
		t.Errorf("gross: want %v, got %v", wantGross, o.GrossSpreadPct)
	}
	wantEntry := (101.5-100.5)/100.5*100 - dsvc.TotalFeesPct()
	if math.Abs(o.NetEntryPct-wantEntry) > 1e-9 {
		t.Errorf("entry: want %v, got %v", wantEntry, o.NetEntryPct)
	}
	wantExit := (100.0-102.0)/102.0*100 - dsvc.TotalFeesPct()
	if math.Abs(o.NetExitPct-wantExit) > 1e-9 {
		t.Errorf("exit: want %v, got %v", wantExit, o.NetExitPct)
	}
	if o.NetSpreadPct != math.Max(o.NetEntryPct, o.NetExitPct) {
		t.Errorf("net must be max(entry, exit), got %v", o.NetSpreadPct)
	}
	if o.Timestamp != 1000 {
		t.Errorf("timestamp: got %v", o.Timestamp)
	}
}

func TestScanCrossingFiresExactlyOnce(t *testing.T) {
	e := NewEngine(nil, 0)

	// exit spread negative: spot bid well below futures ask
	b := boardWith(volumedSpot("BTC", 99, 99.1, 1), futQuote("BTC", 99.9, 100))
	_, crossings := e.Scan(b, nil, 1)
	if len(crossings) != 0 {
		t.Fatal("negative exit spread must not cross")
	}

	// exit spread goes positive: spot bid now above futures ask plus fees
	b.Apply(volumedSpot("BTC", 101, 101.1, 1))
	_, crossings = e.Scan(b, nil, 2)
	if len(crossings) != 1 {
		t.Fatalf("negative-to-positive must cross once, got %d", len(crossings))
	}
	c := crossings[0]
	if c.Symbol != "BTC" || c.Timestamp != 2 {
		t.Errorf("crossing payload: %+v", c)
	}
	if c.ExitPct < 0 {
		t.Errorf("crossing must carry the non-negative exit spread, got %v", c.ExitPct)
	}

	// stays positive: no repeat
	_, crossings = e.Scan(b, nil, 3)
	if len(crossings) != 0 {
		t.Fatal("staying non-negative must not re-fire")
	}

	// dips negative, then recovers: fires again
	b.Apply(volumedSpot("BTC", 99, 99.1, 1))
	_, crossings = e.Scan(b, nil, 4)
	if len(crossings) != 0 {
		t.Fatal("going negative is not a crossing")
	}
	b.Apply(volumedSpot("BTC", 101, 101.1, 1))
	_, crossings = e.Scan(b, nil, 5)
	if len(crossings) != 1 {
		t.Fatalf("a fresh reversal must cross again, got %d", len(crossings))
	}
}

func TestScanFirstObservationAlreadyPositive(t *testing.T) {
	e := NewEngine(nil, 0)
	// exit spread positive from the very first tick
	b := boardWith(volumedSpot("BTC", 101, 101.1, 1), futQuote("BTC", 99.9, 100))

	_, crossings := e.Scan(b, nil, 1)
	if len(crossings) != 0 {
		t.Error("memory seeds with the current value: no spurious first-tick crossing")
	}
}

func TestScanSkipsBlacklistedEntirely(t *testing.T) {
	e := NewEngine([]string{"btc"}, 0)
	b := boardWith(volumedSpot("BTC", 99, 99.1, 1), futQuote("BTC", 99.9, 100))

	opps, crossings := e.Scan(b, nil, 1)
	if len(opps) != 0 || len(crossings) != 0 {
		t.Fatal("blacklisted symbol must produce nothing")
	}

	// flip to a state that would cross if memory had been seeded
	b.Apply(volumedSpot("BTC", 101, 101.1, 1))
	if _, ok := e.prevExit["BTC"]; ok {
		t.Fatal("blacklisted symbol must leave the spread memory untouched")
	}
}

func TestScanSkipsNonPositivePrices(t *testing.T) {
	e := NewEngine(nil, 0)
	b := boardWith(
		volumedSpot("AAA", 0, 1, 1), futQuote("AAA", 1, 2),
		volumedSpot("BBB", 1, 2, 1), futQuote("BBB", 1, 0),
	)

	opps, crossings := e.Scan(b, nil, 1)
	if len(opps) != 0 || len(crossings) != 0 {
		t.Errorf("non-positive legs must be skipped, got %d/%d", len(opps), len(crossings))
	}
}

func TestScanVolumeFloorAndBackfill(t *testing.T) {
	e := NewEngine(nil, 100000)
	b := boardWith(
		spotQuote("BTC", 100, 100.1), futQuote("BTC", 100.2, 100.3), // no feed volume
		volumedSpot("ETH", 100, 100.1, 50), futQuote("ETH", 100.2, 100.3), // below floor
	)

	volumes := func(sym string) float64 {
		if sym == "BTC" {
			return 250000
		}
		return 0
	}

	opps, _ := e.Scan(b, volumes, 1)
	if len(opps) != 1 {
		t.Fatalf("want only the backfilled BTC row, got %d", len(opps))
	}
	if opps[0].Symbol != "BTC" || opps[0].SpotVolume != 250000 {
		t.Errorf("backfill: got %+v", opps[0])
	}

	// low-volume symbols still keep their crossing memory updated
	if _, ok := e.prevExit["ETH"]; !ok {
		t.Error("volume floor gates the opportunity only, not the spread memory")
	}
}
