// File: internal/usecase/plan_uc.go
package usecase

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"household-billing/internal/domain"
	"household-billing/internal/domain/model"
	"household-billing/internal/domain/ports/repository"
)

// Compile-time check
var _ PlanUseCase = (*planUC)(nil)

type PlanUseCase interface {
	// GetActive resolves the billing plan to charge: the given plan when it is
	// active, otherwise the first active plan. Returns domain.ErrNotFound when
	// no active plan exists; callers treat that as a fatal precondition.
	GetActive(ctx context.Context, planID string) (*model.Plan, error)
	ListActive(ctx context.Context) ([]*model.Plan, error)
}

type planUC struct {
	plans repository.PlanRepository
	log   *zerolog.Logger
}

func NewPlanUseCase(plans repository.PlanRepository, logger *zerolog.Logger) *planUC {
	return &planUC{plans: plans, log: logger}
}

func (u *planUC) GetActive(ctx context.Context, planID string) (*model.Plan, error) {
	if planID != "" {
		plan, err := u.plans.FindActiveByID(ctx, nil, planID)
		if err == nil {
			return plan, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		u.log.Debug().Str("plan_id", planID).Msg("plan not active, falling back to first active")
	}
	return u.plans.FirstActive(ctx, nil)
}

func (u *planUC) ListActive(ctx context.Context) ([]*model.Plan, error) {
	return u.plans.ListActive(ctx, nil)
}
