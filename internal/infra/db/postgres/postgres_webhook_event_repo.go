package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"

	"household-billing/internal/domain"
	"household-billing/internal/domain/model"
	"household-billing/internal/domain/ports/repository"
)

var _ repository.WebhookEventRepository = (*webhookEventRepo)(nil)

type webhookEventRepo struct{ pool *pgxpool.Pool }

func NewWebhookEventRepo(pool *pgxpool.Pool) *webhookEventRepo {
	return &webhookEventRepo{pool: pool}
}

// Append inserts only; webhook deliveries are never updated or deleted.
func (r *webhookEventRepo) Append(ctx context.Context, tx repository.Tx, e *model.WebhookEvent) error {
	const q = `
INSERT INTO webhook_events (id, provider, provider_txn_id, external_id, event_status, payload, processed, received_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8);`
	_, err := execSQL(ctx, r.pool, tx, q, e.ID, e.Provider, e.ProviderTxnID,
		e.ExternalID, e.EventStatus, e.Payload, e.Processed, e.ReceivedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *webhookEventRepo) ListByProviderTxnID(ctx context.Context, tx repository.Tx, txnID string) ([]*model.WebhookEvent, error) {
	const q = `
SELECT id, provider, provider_txn_id, external_id, event_status, payload, processed, received_at
  FROM webhook_events
 WHERE provider_txn_id = $1
 ORDER BY received_at ASC;`
	rows, err := queryRows(ctx, r.pool, tx, q, txnID)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	var out []*model.WebhookEvent
	for rows.Next() {
		e := new(model.WebhookEvent)
		if err := rows.Scan(&e.ID, &e.Provider, &e.ProviderTxnID, &e.ExternalID,
			&e.EventStatus, &e.Payload, &e.Processed, &e.ReceivedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
