package port

import (
	"context"

	"sfarb/internal/domain/model"
)

// CrossingPublisher 把 crossing 事件推给外部消费者（如 Redis stream）。
// 发布失败只记录日志，不影响持久化路径。
type CrossingPublisher interface {
	PublishCrossing(ctx context.Context, c model.Crossing) error
}
