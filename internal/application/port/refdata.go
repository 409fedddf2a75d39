package port

import "context"

// SpotSymbol 现货参考接口返回的单个交易对元数据
type SpotSymbol struct {
	Symbol             string
	BaseAsset          string
	QuoteAsset         string
	Status             string
	Permissions        []string
	SpotTradingAllowed bool
}

// Contract 合约参考接口返回的单个合约元数据
type Contract struct {
	Symbol    string
	BaseCoin  string
	QuoteCoin string
	State     int // 0 = live
}

// ReferenceData 两个市场的参考数据端点（交易对目录与 24h 成交额）。
type ReferenceData interface {
	SpotSymbols(ctx context.Context) ([]SpotSymbol, error)
	Contracts(ctx context.Context) ([]Contract, error)
	QuoteVolumes(ctx context.Context) (map[string]float64, error)
}
