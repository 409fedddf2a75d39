package watch

import (
	"sort"
	"sync"

	"sfarb/internal/domain/model"
)

// Board 两个市场的最新报价表，last-write-wins。
// 现货连接器只写现货表，合约连接器只写合约表；价差扫描只读。
type Board struct {
	mu      sync.RWMutex
	spot    map[string]model.Quote
	futures map[string]model.Quote

	spotApplied    uint64
	futuresApplied uint64
}

func NewBoard() *Board {
	return &Board{
		spot:    make(map[string]model.Quote),
		futures: make(map[string]model.Quote),
	}
}

// Apply 覆盖该币种在对应市场的最新报价
func (b *Board) Apply(q model.Quote) {
	if q.Symbol == "" {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	switch q.Market {
	case model.MarketSpot:
		b.spot[q.Symbol] = q
		b.spotApplied++
	case model.MarketFutures:
		b.futures[q.Symbol] = q
		b.futuresApplied++
	}
}

// Pair 两条腿都有报价才算一对
func (b *Board) Pair(symbol string) (spot, futures model.Quote, ok bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	spot, sok := b.spot[symbol]
	futures, fok := b.futures[symbol]
	return spot, futures, sok && fok
}

// FuturesSymbols 返回合约表里的币种（扫描以合约侧为主导，排序保证确定性）
func (b *Board) FuturesSymbols() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]string, 0, len(b.futures))
	for sym := range b.futures {
		out = append(out, sym)
	}
	sort.Strings(out)
	return out
}

// Counts 状态行用的累计计数
func (b *Board) Counts() (spotApplied, futuresApplied uint64, spotSymbols, futuresSymbols int) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.spotApplied, b.futuresApplied, len(b.spot), len(b.futures)
}
