package watch

import (
	"strings"

	"sfarb/internal/domain/model"
	dsvc "sfarb/internal/domain/service"
)

// Engine 每个 tick 对盘面做一次全量扫描：算价差、对照上一轮出场价差
// 检测 crossing。prevExit 只被扫描 goroutine 触碰，不需要锁。
type Engine struct {
	blacklist map[string]struct{}
	minVolume float64
	prevExit  map[string]float64
}

func NewEngine(blacklist []string, minVolume float64) *Engine {
	bl := make(map[string]struct{}, len(blacklist))
	for _, s := range blacklist {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s != "" {
			bl[s] = struct{}{}
		}
	}
	return &Engine{
		blacklist: bl,
		minVolume: minVolume,
		prevExit:  make(map[string]float64),
	}
}

// Scan 遍历所有在合约表且有现货腿的币种。volumes 用于给不带量的现货
// 报价补 24h 成交额，可以为 nil。
func (e *Engine) Scan(board *Board, volumes func(string) float64, now int64) ([]model.Opportunity, []model.Crossing) {
	var opps []model.Opportunity
	var crossings []model.Crossing

	for _, sym := range board.FuturesSymbols() {
		if _, banned := e.blacklist[sym]; banned {
			// skipped entirely: no opportunity, no crossing, memory untouched
			continue
		}

		spot, fut, ok := board.Pair(sym)
		if !ok {
			continue
		}
		if spot.Bid <= 0 || fut.Ask <= 0 {
			// cannot compute a meaningful ratio
			continue
		}

		gross := dsvc.GrossSpreadPct(spot.Bid, fut.Ask)
		entry := dsvc.NetEntrySpreadPct(spot.Ask, fut.Bid)
		exit := dsvc.NetExitSpreadPct(spot.Bid, fut.Ask)
		net := dsvc.NetSpreadPct(entry, exit)

		prev, seen := e.prevExit[sym]
		if !seen {
			// first observation: seed with the current value, no spurious crossing
			prev = exit
		}
		if dsvc.Crossed(prev, exit) {
			crossings = append(crossings, model.Crossing{
				Symbol:    sym,
				ExitPct:   exit,
				Timestamp: now,
			})
		}
		e.prevExit[sym] = exit

		spotVolume := spot.Volume24h
		if spotVolume == 0 && volumes != nil {
			spotVolume = volumes(sym)
		}
		if spotVolume < e.minVolume {
			continue
		}

		opps = append(opps, model.Opportunity{
			Symbol:         sym,
			SpotBid:        spot.Bid,
			SpotVolume:     spotVolume,
			FuturesAsk:     fut.Ask,
			FuturesVolume:  fut.Volume24h,
			GrossSpreadPct: gross,
			NetSpreadPct:   net,
			NetEntryPct:    entry,
			NetExitPct:     exit,
			FeesPct:        dsvc.TotalFeesPct(),
			FundingRate:    fut.FundingRate,
			Timestamp:      now,
		})
	}

	return opps, crossings
}
