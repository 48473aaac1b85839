package repository

import (
	"context"
	"time"

	"household-billing/internal/domain/model"
)

type HouseholdRepository interface {
	Save(ctx context.Context, tx Tx, h *model.Household) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Household, error)
	// UpdateSubscriptionCache refreshes the denormalized subscription fields.
	UpdateSubscriptionCache(ctx context.Context, tx Tx, householdID, subscriptionID string, status model.SubscriptionStatus, endAt *time.Time) error
}
