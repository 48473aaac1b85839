package repository

import (
	"context"

	"household-billing/internal/domain/model"
)

// WebhookEventRepository is append-only: deliveries are recorded and never
// mutated afterwards.
type WebhookEventRepository interface {
	Append(ctx context.Context, tx Tx, e *model.WebhookEvent) error
	ListByProviderTxnID(ctx context.Context, tx Tx, txnID string) ([]*model.WebhookEvent, error)
}
