package repository

import (
	"context"

	"household-billing/internal/domain/model"
)

type SubscriptionRepository interface {
	Save(ctx context.Context, tx Tx, s *model.Subscription) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Subscription, error)
	FindActiveByHousehold(ctx context.Context, tx Tx, householdID string) (*model.Subscription, error)
}
