package repository

import (
	"context"
	"time"

	"household-billing/internal/domain/model"
)

type PaymentRepository interface {
	Save(ctx context.Context, tx Tx, p *model.Payment) error
	FindByProviderTxnID(ctx context.Context, tx Tx, txnID string) (*model.Payment, error)
	// FindByProviderTxnIDAndHousehold scopes the lookup to one household so a
	// caller can never poll another household's payment.
	FindByProviderTxnIDAndHousehold(ctx context.Context, tx Tx, txnID, householdID string) (*model.Payment, error)
	// UpdateFromProvider persists the fields a webhook or status poll refreshes.
	UpdateFromProvider(ctx context.Context, tx Tx, p *model.Payment) error
	ListPendingOlderThan(ctx context.Context, tx Tx, olderThan time.Time, limit int) ([]*model.Payment, error)
}
