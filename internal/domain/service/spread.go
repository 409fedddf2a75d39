package service

// Taker fees in percent. The spot leg pays the spot taker fee, the futures leg
// pays the futures taker fee; both legs are charged on either direction.
const (
	SpotTakerFeePct    = 0.10
	FuturesTakerFeePct = 0.02
)

// TotalFeesPct 两条腿合计的 taker 费率（百分比）
func TotalFeesPct() float64 {
	return SpotTakerFeePct + FuturesTakerFeePct
}

// GrossSpreadPct 毛价差：(合约卖一 - 现货买一) / 现货买一 × 100
func GrossSpreadPct(spotBid, futuresAsk float64) float64 {
	return (futuresAsk - spotBid) / spotBid * 100
}

// NetEntrySpreadPct 买现货、开空合约的净价差（扣费）
func NetEntrySpreadPct(spotAsk, futuresBid float64) float64 {
	return (futuresBid-spotAsk)/spotAsk*100 - SpotTakerFeePct - FuturesTakerFeePct
}

// NetExitSpreadPct 卖现货、开多合约的净价差（扣费）
func NetExitSpreadPct(spotBid, futuresAsk float64) float64 {
	return (spotBid-futuresAsk)/futuresAsk*100 - SpotTakerFeePct - FuturesTakerFeePct
}

// NetSpreadPct 报告口径取两个方向中较优者
func NetSpreadPct(entry, exit float64) float64 {
	if entry > exit {
		return entry
	}
	return exit
}

// Crossed 出场价差由负转正才算一次 crossing；停留在非负区间不重复触发
func Crossed(prevExit, exit float64) bool {
	return prevExit < 0 && exit >= 0
}
