package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"sfarb/internal/application/port"
)

// VolumeCache 定期轮询 24h 成交额参考接口，为不带量的现货报价补量。
// 刷新失败保留旧数据：宁可陈旧也不清空。
type VolumeCache struct {
	ref      port.ReferenceData
	suffix   string
	interval time.Duration

	mu      sync.RWMutex
	volumes map[string]float64 // coin -> 24h quote volume
}

func NewVolumeCache(ref port.ReferenceData, interval time.Duration) *VolumeCache {
	if interval <= 0 {
		interval = 60 * time.Second
	}
	return &VolumeCache{
		ref:      ref,
		suffix:   "USDT",
		interval: interval,
		volumes:  make(map[string]float64),
	}
}

// Start 先同步刷新一次，再启动后台定时刷新
func (v *VolumeCache) Start(ctx context.Context) {
	v.Refresh(ctx)

	go func() {
		ticker := time.NewTicker(v.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				v.Refresh(ctx)
			}
		}
	}()
}

// Refresh 拉取一轮成交额；失败时保留上一轮的缓存
func (v *VolumeCache) Refresh(ctx context.Context) {
	vols, err := v.ref.QuoteVolumes(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("volume refresh failed, keeping stale cache")
		return
	}

	next := make(map[string]float64, len(vols))
	for sym, vol := range vols {
		if !strings.HasSuffix(sym, v.suffix) {
			continue
		}
		coin := strings.TrimSuffix(sym, v.suffix)
		if coin == "" {
			continue
		}
		next[coin] = vol
	}

	v.mu.Lock()
	v.volumes = next
	v.mu.Unlock()

	log.Debug().Int("symbols", len(next)).Msg("volume cache refreshed")
}

// Get 返回币种的 24h 成交额，没有记录返回 0
func (v *VolumeCache) Get(coin string) float64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.volumes[strings.ToUpper(strings.TrimSpace(coin))]
}
