package repository

import (
	"context"

	"household-billing/internal/domain/model"
)

type PlanRepository interface {
	Save(ctx context.Context, tx Tx, plan *model.Plan) error
	// FindActiveByID returns the plan only when it exists AND is active.
	FindActiveByID(ctx context.Context, tx Tx, id string) (*model.Plan, error)
	// FirstActive returns the first active plan by ascending creation order.
	FirstActive(ctx context.Context, tx Tx) (*model.Plan, error)
	FindByID(ctx context.Context, tx Tx, id string) (*model.Plan, error)
	ListActive(ctx context.Context, tx Tx) ([]*model.Plan, error)
}
