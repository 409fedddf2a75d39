package model

// Market 行情来源的市场类型
type Market string

const (
	MarketSpot    Market = "SPOT"
	MarketFutures Market = "FUTURES"
)

// Quote 某一市场上单个币种的最新盘口
type Quote struct {
	Market      Market  `json:"market"`
	Symbol      string  `json:"symbol"` // 币种，如 BTC（已去除 USDT 后缀）
	Bid         float64 `json:"bid"`
	Ask         float64 `json:"ask"`
	BidQty      float64 `json:"bid_qty"`
	AskQty      float64 `json:"ask_qty"`
	Volume24h   float64 `json:"volume24h"`
	FundingRate float64 `json:"funding_rate"` // 仅合约
	Timestamp   int64   `json:"ts_ms"`
}

// Opportunity 每个 tick 重新计算的价差快照，创建后不再修改
type Opportunity struct {
	Symbol         string  `json:"symbol"`
	SpotBid        float64 `json:"spot_bid"`
	SpotVolume     float64 `json:"spot_volume"`
	FuturesAsk     float64 `json:"futures_ask"`
	FuturesVolume  float64 `json:"futures_volume"`
	GrossSpreadPct float64 `json:"gross_spread_pct"`
	NetSpreadPct   float64 `json:"net_spread_pct"`
	NetEntryPct    float64 `json:"net_entry_pct"`
	NetExitPct     float64 `json:"net_exit_pct"`
	FeesPct        float64 `json:"fees_pct"`
	FundingRate    float64 `json:"funding_rate"`
	Timestamp      int64   `json:"ts_ms"`
	Active         bool    `json:"active"`
}

// Crossing 出场价差由负转正的一次性事件，追加写入，不可变
type Crossing struct {
	Symbol    string  `json:"symbol"`
	ExitPct   float64 `json:"exit_pct"`
	Timestamp int64   `json:"ts_ms"`
}
