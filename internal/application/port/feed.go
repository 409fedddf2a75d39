package port

import (
	"context"

	"sfarb/internal/domain/model"
)

// Feed 市场行情源。Subscribe 启动后台连接并返回规范化报价通道；
// 通道在 ctx 取消后关闭，之后不再有任何重连。
type Feed interface {
	Name() string
	Market() model.Market
	Subscribe(ctx context.Context, symbols []string) (<-chan model.Quote, error)
}
