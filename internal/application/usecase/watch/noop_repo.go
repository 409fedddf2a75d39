package watch

import (
	"context"

	"sfarb/internal/application/port"
	"sfarb/internal/domain/model"
)

type noopRepo struct{}

// NewNoopRepo 干跑模式：不落库，只走完整的扫描与去抖路径
func NewNoopRepo() port.Repository { return &noopRepo{} }

func (n *noopRepo) ReplaceActiveOpportunities(ctx context.Context, opps []model.Opportunity) error {
	return nil
}

func (n *noopRepo) InsertCrossing(ctx context.Context, c model.Crossing) error {
	return nil
}

func (n *noopRepo) Close() error { return nil }
