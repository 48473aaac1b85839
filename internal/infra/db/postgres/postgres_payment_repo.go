package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"household-billing/internal/domain"
	"household-billing/internal/domain/model"
	"household-billing/internal/domain/ports/repository"
)

var _ repository.PaymentRepository = (*paymentRepo)(nil)

type paymentRepo struct{ pool *pgxpool.Pool }

func NewPaymentRepo(pool *pgxpool.Pool) *paymentRepo {
	return &paymentRepo{pool: pool}
}

const paymentCols = `id, household_id, subscription_id, plan_id, provider, channel, currency, amount, provider_txn_id, provider_status, status, message, raw_request, raw_response, created_at, completed_at, last_webhook_at`

func scanPayment(row pgx.Row) (*model.Payment, error) {
	p := &model.Payment{}
	err := row.Scan(&p.ID, &p.HouseholdID, &p.SubscriptionID, &p.PlanID, &p.Provider, &p.Channel,
		&p.Currency, &p.Amount, &p.ProviderTxnID, &p.ProviderStatus, &p.Status, &p.Message,
		&p.RawRequest, &p.RawResponse, &p.CreatedAt, &p.CompletedAt, &p.LastWebhookAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return p, nil
}

func (r *paymentRepo) Save(ctx context.Context, tx repository.Tx, p *model.Payment) error {
	const q = `
INSERT INTO payments (
  id, household_id, subscription_id, plan_id, provider, channel, currency, amount,
  provider_txn_id, provider_status, status, message, raw_request, raw_response,
  created_at, completed_at, last_webhook_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17
) ON CONFLICT (id) DO UPDATE SET
  subscription_id=$3, provider_status=$10, status=$11, message=$12,
  raw_response=$14, completed_at=$16, last_webhook_at=$17;`

	_, err := execSQL(ctx, r.pool, tx, q, p.ID, p.HouseholdID, p.SubscriptionID, p.PlanID,
		p.Provider, p.Channel, p.Currency, p.Amount, p.ProviderTxnID, p.ProviderStatus,
		p.Status, p.Message, p.RawRequest, p.RawResponse, p.CreatedAt, p.CompletedAt, p.LastWebhookAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *paymentRepo) FindByProviderTxnID(ctx context.Context, tx repository.Tx, txnID string) (*model.Payment, error) {
	q := `SELECT ` + paymentCols + ` FROM payments WHERE provider_txn_id=$1 LIMIT 1`
	if _, ok := tx.(pgx.Tx); ok {
		q += " FOR UPDATE"
	}
	q += ";"
	row, err := pickRow(ctx, r.pool, tx, q, txnID)
	if err != nil {
		return nil, err
	}
	return scanPayment(row)
}

func (r *paymentRepo) FindByProviderTxnIDAndHousehold(ctx context.Context, tx repository.Tx, txnID, householdID string) (*model.Payment, error) {
	q := `SELECT ` + paymentCols + ` FROM payments WHERE provider_txn_id=$1 AND household_id=$2 LIMIT 1;`
	row, err := pickRow(ctx, r.pool, tx, q, txnID, householdID)
	if err != nil {
		return nil, err
	}
	return scanPayment(row)
}

// UpdateFromProvider persists the fields refreshed by a webhook or status poll.
func (r *paymentRepo) UpdateFromProvider(ctx context.Context, tx repository.Tx, p *model.Payment) error {
	const q = `
UPDATE payments
   SET subscription_id = $2,
       provider_status = $3,
       status          = $4,
       raw_response    = $5,
       completed_at    = COALESCE($6, completed_at),
       last_webhook_at = COALESCE($7, last_webhook_at)
 WHERE id = $1;`
	_, err := execSQL(ctx, r.pool, tx, q, p.ID, p.SubscriptionID, p.ProviderStatus,
		p.Status, p.RawResponse, p.CompletedAt, p.LastWebhookAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *paymentRepo) ListPendingOlderThan(ctx context.Context, tx repository.Tx, olderThan time.Time, limit int) ([]*model.Payment, error) {
	if limit <= 0 {
		limit = 100
	}
	q := `SELECT ` + paymentCols + ` FROM payments WHERE status='PENDING' AND created_at < $1 ORDER BY created_at ASC LIMIT $2;`
	rows, err := queryRows(ctx, r.pool, tx, q, olderThan, limit)
	if err != nil {
		switch err {
		case domain.ErrInvalidArgument, domain.ErrInvalidExecContext:
			return nil, err
		default:
			return nil, domain.ErrOperationFailed
		}
	}
	defer rows.Close()

	var out []*model.Payment
	for rows.Next() {
		p := new(model.Payment)
		if err := rows.Scan(&p.ID, &p.HouseholdID, &p.SubscriptionID, &p.PlanID, &p.Provider, &p.Channel,
			&p.Currency, &p.Amount, &p.ProviderTxnID, &p.ProviderStatus, &p.Status, &p.Message,
			&p.RawRequest, &p.RawResponse, &p.CreatedAt, &p.CompletedAt, &p.LastWebhookAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
