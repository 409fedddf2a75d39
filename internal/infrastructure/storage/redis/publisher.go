package redis

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/redis/go-redis/v9"

	"sfarb/internal/application/port"
	"sfarb/internal/domain/model"
)

// Publisher 把 crossing 事件同时写入 stream（可回放）并 PUBLISH（实时推送）
type Publisher struct {
	rdb    *redis.Client
	stream string
	chann  string
}

func NewPublisher(rdb *redis.Client, prefix, stream, channel string) *Publisher {
	if strings.TrimSpace(stream) == "" {
		stream = prefix + ":crossings"
	}
	if strings.TrimSpace(channel) == "" {
		channel = prefix + ":crossings:pub"
	}
	return &Publisher{rdb: rdb, stream: stream, chann: channel}
}

func (p *Publisher) PublishCrossing(ctx context.Context, c model.Crossing) error {
	// 1) Stream: XADD <stream> * symbol exit_pct ts_ms
	_, err := p.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]any{
			"symbol":   c.Symbol,
			"exit_pct": c.ExitPct,
			"ts_ms":    c.Timestamp,
		},
	}).Result()
	if err != nil {
		return err
	}

	// 2) PubSub: PUBLISH <channel> json
	b, _ := json.Marshal(c)
	return p.rdb.Publish(ctx, p.chann, string(b)).Err()
}

var _ port.CrossingPublisher = (*Publisher)(nil)
