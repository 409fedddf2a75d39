package service

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestGrossSpreadPct(t *testing.T) {
	cases := []struct {
		name    string
		spotBid float64
		futAsk  float64
		want    float64
	}{
		{"futures above spot", 100, 101, 1.0},
		{"futures below spot", 100, 99, -1.0},
		{"flat", 50000.5, 50000.5, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := GrossSpreadPct(c.spotBid, c.futAsk)
			if !almostEqual(got, c.want) {
				t.Errorf("gross spread: want %v, got %v", c.want, got)
			}
		})
	}
}

func TestNetSpreadsSubtractFees(t *testing.T) {
	// 1% raw gap on both paths; net must be raw minus 0.12% total fees
	entry := NetEntrySpreadPct(100, 101)
	if !almostEqual(entry, 1.0-TotalFeesPct()) {
		t.Errorf("net entry: want %v, got %v", 1.0-TotalFeesPct(), entry)
	}

	exit := NetExitSpreadPct(101, 100)
	if !almostEqual(exit, 1.0-TotalFeesPct()) {
		t.Errorf("net exit: want %v, got %v", 1.0-TotalFeesPct(), exit)
	}
}

func TestNetSpreadPctIsMax(t *testing.T) {
	if got := NetSpreadPct(0.5, -0.2); !almostEqual(got, 0.5) {
		t.Errorf("want entry side, got %v", got)
	}
	if got := NetSpreadPct(-0.7, 0.1); !almostEqual(got, 0.1) {
		t.Errorf("want exit side, got %v", got)
	}
}

func TestCrossed(t *testing.T) {
	cases := []struct {
		name string
		prev float64
		cur  float64
		want bool
	}{
		{"negative to positive", -0.3, 0.2, true},
		{"negative to zero", -0.01, 0, true},
		{"stays negative", -0.5, -0.1, false},
		{"stays positive", 0.2, 0.4, false},
		{"positive to negative", 0.2, -0.1, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Crossed(c.prev, c.cur); got != c.want {
				t.Errorf("Crossed(%v, %v) = %v, want %v", c.prev, c.cur, got, c.want)
			}
		})
	}
}
