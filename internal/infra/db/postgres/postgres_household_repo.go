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

var _ repository.HouseholdRepository = (*householdRepo)(nil)

type householdRepo struct{ pool *pgxpool.Pool }

func NewHouseholdRepo(pool *pgxpool.Pool) *householdRepo {
	return &householdRepo{pool: pool}
}

const householdCols = `id, name, phone, current_subscription_id, subscription_status, subscription_end_at, created_at`

func (r *householdRepo) Save(ctx context.Context, tx repository.Tx, h *model.Household) error {
	const q = `
INSERT INTO households (id, name, phone, current_subscription_id, subscription_status, subscription_end_at, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
ON CONFLICT (id) DO UPDATE SET
  name=$2, phone=$3, current_subscription_id=$4, subscription_status=$5, subscription_end_at=$6;`
	_, err := execSQL(ctx, r.pool, tx, q, h.ID, h.Name, h.Phone,
		h.CurrentSubscriptionID, h.SubscriptionStatus, h.SubscriptionEndAt, h.CreatedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *householdRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Household, error) {
	q := `SELECT ` + householdCols + ` FROM households WHERE id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	h := &model.Household{}
	if err := row.Scan(&h.ID, &h.Name, &h.Phone, &h.CurrentSubscriptionID,
		&h.SubscriptionStatus, &h.SubscriptionEndAt, &h.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return h, nil
}

func (r *householdRepo) UpdateSubscriptionCache(ctx context.Context, tx repository.Tx, householdID, subscriptionID string, status model.SubscriptionStatus, endAt *time.Time) error {
	const q = `
UPDATE households
   SET current_subscription_id = $2,
       subscription_status     = $3,
       subscription_end_at     = $4
 WHERE id = $1;`
	_, err := execSQL(ctx, r.pool, tx, q, householdID, subscriptionID, status, endAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}
