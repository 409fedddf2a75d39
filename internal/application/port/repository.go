package port

import (
	"context"

	"sfarb/internal/domain/model"
)

// Repository 下游报表所依赖的两张逻辑表的写入契约。
type Repository interface {
	// ReplaceActiveOpportunities: deactivate everything currently active,
	// then insert opps as the new active set (one flush window).
	ReplaceActiveOpportunities(ctx context.Context, opps []model.Opportunity) error

	// InsertCrossing appends one immutable crossing row.
	InsertCrossing(ctx context.Context, c model.Crossing) error

	// Connection management
	Close() error
}
