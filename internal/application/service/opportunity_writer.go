package service

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"sfarb/internal/application/port"
	"sfarb/internal/domain/model"
)

// OpportunityWriter 去抖批量写入器。同一币种在一个 flush 窗口内只保留
// 最后一次状态；crossing 不合并，观察到即落库。所有持久化失败只记日志，
// 绝不阻塞行情 tick。
type OpportunityWriter struct {
	repo port.Repository
	pub  port.CrossingPublisher // optional

	mu      sync.Mutex
	pending map[string]model.Opportunity
}

func NewOpportunityWriter(repo port.Repository, pub port.CrossingPublisher) *OpportunityWriter {
	return &OpportunityWriter{
		repo:    repo,
		pub:     pub,
		pending: make(map[string]model.Opportunity),
	}
}

// Enqueue 覆盖同币种尚未落库的条目（coalescing）
func (w *OpportunityWriter) Enqueue(opp model.Opportunity) {
	w.mu.Lock()
	w.pending[opp.Symbol] = opp
	w.mu.Unlock()
}

// Pending 当前窗口内待写条数（状态行用）
func (w *OpportunityWriter) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pending)
}

// Flush 空窗口是 no-op；否则先将历史 active 行置为 inactive，
// 再把当前窗口整体写为 active，最后清空窗口。
func (w *OpportunityWriter) Flush(ctx context.Context) {
	w.mu.Lock()
	if len(w.pending) == 0 {
		w.mu.Unlock()
		return
	}
	batch := make([]model.Opportunity, 0, len(w.pending))
	for _, opp := range w.pending {
		opp.Active = true
		batch = append(batch, opp)
	}
	w.pending = make(map[string]model.Opportunity)
	w.mu.Unlock()

	if err := w.repo.ReplaceActiveOpportunities(ctx, batch); err != nil {
		// next flush carries fresh data; a dropped write is only a delayed update
		log.Error().Err(err).Int("rows", len(batch)).Msg("opportunity flush failed")
	}
}

// RecordCrossing 立即追加一条 crossing 行，并转发给可选的发布器
func (w *OpportunityWriter) RecordCrossing(ctx context.Context, c model.Crossing) {
	if err := w.repo.InsertCrossing(ctx, c); err != nil {
		log.Error().Err(err).Str("symbol", c.Symbol).Msg("crossing insert failed")
	}
	if w.pub == nil {
		return
	}
	if err := w.pub.PublishCrossing(ctx, c); err != nil {
		log.Warn().Err(err).Str("symbol", c.Symbol).Msg("crossing publish failed")
	}
}
