package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"household-billing/internal/domain"
	"household-billing/internal/domain/model"
	"household-billing/internal/domain/ports/repository"
)

var _ repository.SubscriptionRepository = (*subscriptionRepo)(nil)

type subscriptionRepo struct{ pool *pgxpool.Pool }

func NewSubscriptionRepo(pool *pgxpool.Pool) *subscriptionRepo {
	return &subscriptionRepo{pool: pool}
}

const subCols = `id, household_id, plan_id, status, start_at, end_at, pause_reason, last_action, created_by_admin, created_at`

func scanSubscription(row pgx.Row) (*model.Subscription, error) {
	s := &model.Subscription{}
	err := row.Scan(&s.ID, &s.HouseholdID, &s.PlanID, &s.Status, &s.StartAt, &s.EndAt,
		&s.PauseReason, &s.LastAction, &s.CreatedByAdmin, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return s, nil
}

func (r *subscriptionRepo) Save(ctx context.Context, tx repository.Tx, s *model.Subscription) error {
	const q = `
INSERT INTO subscriptions (
  id, household_id, plan_id, status, start_at, end_at, pause_reason, last_action, created_by_admin, created_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10
) ON CONFLICT (id) DO UPDATE SET
  status=$4, start_at=$5, end_at=$6, pause_reason=$7, last_action=$8;`

	_, err := execSQL(ctx, r.pool, tx, q, s.ID, s.HouseholdID, s.PlanID, s.Status,
		s.StartAt, s.EndAt, s.PauseReason, s.LastAction, s.CreatedByAdmin, s.CreatedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *subscriptionRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Subscription, error) {
	q := `SELECT ` + subCols + ` FROM subscriptions WHERE id=$1`
	if _, ok := tx.(pgx.Tx); ok {
		q += " FOR UPDATE"
	}
	q += ";"
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanSubscription(row)
}

func (r *subscriptionRepo) FindActiveByHousehold(ctx context.Context, tx repository.Tx, householdID string) (*model.Subscription, error) {
	q := `SELECT ` + subCols + ` FROM subscriptions WHERE household_id=$1 AND status='ACTIVE' ORDER BY end_at DESC LIMIT 1;`
	row, err := pickRow(ctx, r.pool, tx, q, householdID)
	if err != nil {
		return nil, err
	}
	return scanSubscription(row)
}
