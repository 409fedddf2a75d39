package service

import (
	"context"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"sfarb/internal/application/port"
	"sfarb/internal/infrastructure/exchange"
)

// 合约参考接口不可用时的兜底监控清单
var defaultFuturesSymbols = []string{"BTC", "ETH", "SOL", "XRP", "DOGE"}

// Universe 一次符号发现的结果
type Universe struct {
	Spot    []string // base assets tradable on spot
	Futures []string // base assets with a live contract
	Working []string // intersection, the monitored set
}

// Discovery 启动时跑一次的符号发现：拉取两个市场的目录、过滤、取交集。
// 现货侧失败得到空集（服务照常启动但不产生价差）；合约侧失败退回兜底清单。
type Discovery struct {
	ref      port.ReferenceData
	filter   *exchange.Blocklist
	quote    string
	fallback []string
}

func NewDiscovery(ref port.ReferenceData, filter *exchange.Blocklist) *Discovery {
	return &Discovery{
		ref:      ref,
		filter:   filter,
		quote:    "USDT",
		fallback: defaultFuturesSymbols,
	}
}

func (d *Discovery) Discover(ctx context.Context) Universe {
	spot := d.discoverSpot(ctx)
	futures := d.discoverFutures(ctx)
	working := intersect(spot, futures)

	log.Info().
		Int("spot", len(spot)).
		Int("futures", len(futures)).
		Int("working", len(working)).
		Msg("symbol discovery done")

	return Universe{Spot: spot, Futures: futures, Working: working}
}

func (d *Discovery) discoverSpot(ctx context.Context) []string {
	infos, err := d.ref.SpotSymbols(ctx)
	if err != nil {
		log.Error().Err(err).Msg("spot discovery failed, starting with empty spot set")
		return nil
	}

	out := make([]string, 0, len(infos))
	for _, s := range infos {
		if !spotTradable(s, d.quote) {
			continue
		}
		base := strings.ToUpper(strings.TrimSpace(s.BaseAsset))
		if base == "" || d.filter.Blocked(base) {
			continue
		}
		out = append(out, base)
	}
	return dedupeSorted(out)
}

// spotTradable 三个条件缺一不可：状态可交易、USDT 计价、带显式 SPOT 权限
func spotTradable(s port.SpotSymbol, quote string) bool {
	if !strings.EqualFold(s.QuoteAsset, quote) {
		return false
	}
	if s.Status != "1" && !strings.EqualFold(s.Status, "ENABLED") {
		return false
	}
	if !s.SpotTradingAllowed {
		return false
	}
	for _, p := range s.Permissions {
		if strings.EqualFold(p, "SPOT") {
			return true
		}
	}
	return false
}

func (d *Discovery) discoverFutures(ctx context.Context) []string {
	contracts, err := d.ref.Contracts(ctx)
	if err != nil {
		log.Error().Err(err).Strs("fallback", d.fallback).
			Msg("futures discovery failed, using default symbol list")
		return append([]string(nil), d.fallback...)
	}

	out := make([]string, 0, len(contracts))
	for _, c := range contracts {
		if !strings.EqualFold(c.QuoteCoin, d.quote) || c.State != 0 {
			continue
		}
		base := strings.ToUpper(strings.TrimSpace(c.BaseCoin))
		if base == "" || d.filter.Blocked(base) {
			continue
		}
		out = append(out, base)
	}
	return dedupeSorted(out)
}

// intersect 只有两个市场都可交易的币种才有两条腿；单边的记日志后丢弃
func intersect(spot, futures []string) []string {
	spotSet := make(map[string]struct{}, len(spot))
	for _, s := range spot {
		spotSet[s] = struct{}{}
	}

	working := make([]string, 0, len(futures))
	for _, f := range futures {
		if _, ok := spotSet[f]; ok {
			working = append(working, f)
			delete(spotSet, f)
		} else {
			log.Debug().Str("symbol", f).Msg("dropped: futures-only symbol")
		}
	}
	for s := range spotSet {
		log.Debug().Str("symbol", s).Msg("dropped: spot-only symbol")
	}

	sort.Strings(working)
	return working
}

func dedupeSorted(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	sort.Strings(in)
	out := in[:1]
	for _, s := range in[1:] {
		if s != out[len(out)-1] {
			out = append(out, s)
		}
	}
	return out
}
