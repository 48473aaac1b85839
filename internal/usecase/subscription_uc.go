// File: internal/usecase/subscription_uc.go
package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"household-billing/internal/domain"
	"household-billing/internal/domain/model"
	"household-billing/internal/domain/ports/repository"
	"household-billing/internal/infra/metrics"
)

// Compile-time check
var _ SubscriptionUseCase = (*subscriptionUC)(nil)

type SubscriptionUseCase interface {
	// ActivateFromPayment grants or renews the subscription a successful
	// payment paid for. It is a no-op (not an error) when the provider status
	// does not map to SUCCESS. Must be called inside the caller's transaction;
	// it writes the Subscription row and the Household cache together.
	ActivateFromPayment(ctx context.Context, tx repository.Tx, payment *model.Payment, providerStatus string) (*model.Subscription, error)
	// SavePending persists the provisional row created at payment initiation.
	SavePending(ctx context.Context, tx repository.Tx, s *model.Subscription) error
	GetActive(ctx context.Context, householdID string) (*model.Subscription, error)
}

type subscriptionUC struct {
	subs       repository.SubscriptionRepository
	plans      repository.PlanRepository
	households repository.HouseholdRepository
	audits     repository.AuditLogRepository
	log        *zerolog.Logger
}

func NewSubscriptionUseCase(
	subs repository.SubscriptionRepository,
	plans repository.PlanRepository,
	households repository.HouseholdRepository,
	audits repository.AuditLogRepository,
	logger *zerolog.Logger,
) *subscriptionUC {
	return &subscriptionUC{subs: subs, plans: plans, households: households, audits: audits, log: logger}
}

func (u *subscriptionUC) ActivateFromPayment(ctx context.Context, tx repository.Tx, payment *model.Payment, providerStatus string) (*model.Subscription, error) {
	if model.MapProviderStatus(providerStatus) != model.PaymentStatusSuccess {
		return nil, nil
	}

	plan, err := u.plans.FindByID(ctx, tx, payment.PlanID)
	if err != nil {
		// A SUCCESS payment referencing an unresolvable plan is never failed
		// retroactively; it is surfaced through the log and a metric instead.
		u.log.Error().Str("payment_id", payment.ID).Str("plan_id", payment.PlanID).
			Err(err).Msg("successful payment references unresolvable plan; activation skipped")
		metrics.IncActivationSkipped("plan_unresolvable")
		return nil, nil
	}

	now := time.Now()
	action := model.ActionRenew
	var sub *model.Subscription
	if payment.SubscriptionID != nil {
		sub, err = u.subs.FindByID(ctx, tx, *payment.SubscriptionID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
	}
	if sub == nil {
		// No provisional row: create one lazily at first activation.
		sub, err = model.NewPendingSubscription(uuid.NewString(), payment.HouseholdID, payment.PlanID)
		if err != nil {
			return nil, err
		}
		action = model.ActionActivate
	} else if sub.Status == model.SubscriptionStatusPending {
		action = model.ActionActivate
	}

	// Every successful payment resets the window to now+duration. Renewals do
	// not stack; an early renewal discards the remaining paid-for time.
	sub.Activate(plan, now, action)
	if err := u.subs.Save(ctx, tx, sub); err != nil {
		return nil, err
	}
	if err := u.households.UpdateSubscriptionCache(ctx, tx, sub.HouseholdID, sub.ID, sub.Status, sub.EndAt); err != nil {
		return nil, err
	}
	if err := u.audits.Append(ctx, tx, &model.AuditEntry{
		ID:         uuid.NewString(),
		Actor:      model.ActorSystem,
		Action:     model.AuditActivateSubscription,
		EntityType: "subscription",
		EntityID:   sub.ID,
		CreatedAt:  now,
	}); err != nil {
		return nil, err
	}

	metrics.IncSubscriptionActivation(string(action))
	u.log.Info().Str("subscription_id", sub.ID).Str("household_id", sub.HouseholdID).
		Str("action", string(action)).Time("end_at", *sub.EndAt).Msg("subscription activated")
	return sub, nil
}

func (u *subscriptionUC) SavePending(ctx context.Context, tx repository.Tx, s *model.Subscription) error {
	if s == nil || s.Status != model.SubscriptionStatusPending {
		return domain.ErrInvalidArgument
	}
	return u.subs.Save(ctx, tx, s)
}

func (u *subscriptionUC) GetActive(ctx context.Context, householdID string) (*model.Subscription, error) {
	return u.subs.FindActiveByHousehold(ctx, nil, householdID)
}
