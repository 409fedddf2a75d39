package service

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestVolumeCacheRefreshAndGet(t *testing.T) {
	ref := &mockRefData{
		volumes: map[string]float64{
			"BTCUSDT": 500000,
			"ETHUSDT": 250000,
			"ETHBTC":  99999, // not USDT-quoted, ignored
		},
	}
	vc := NewVolumeCache(ref, time.Minute)

	vc.Refresh(context.Background())
	if got := vc.Get("BTC"); got != 500000 {
		t.Errorf("BTC volume: want 500000, got %v", got)
	}
	if got := vc.Get("eth"); got != 250000 {
		t.Errorf("lookup must be case-insensitive, got %v", got)
	}
	if got := vc.Get("XRP"); got != 0 {
		t.Errorf("absent symbol must read 0, got %v", got)
	}
}

func TestVolumeCacheKeepsStaleOnFailure(t *testing.T) {
	ref := &mockRefData{volumes: map[string]float64{"BTCUSDT": 100}}
	vc := NewVolumeCache(ref, time.Minute)
	vc.Refresh(context.Background())

	ref.volumesErr = errors.New("ticker endpoint down")
	ref.volumes = nil
	vc.Refresh(context.Background())

	if got := vc.Get("BTC"); got != 100 {
		t.Errorf("failed refresh must keep the previous cache, got %v", got)
	}
}
