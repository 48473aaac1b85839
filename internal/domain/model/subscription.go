package model

import (
	"time"

	"household-billing/internal/domain"
)

type SubscriptionStatus string

const (
	SubscriptionStatusPending SubscriptionStatus = "PENDING"
	SubscriptionStatusActive  SubscriptionStatus = "ACTIVE"
	SubscriptionStatusPaused  SubscriptionStatus = "PAUSED"
	SubscriptionStatusExpired SubscriptionStatus = "EXPIRED"
)

type SubscriptionAction string

const (
	ActionActivate SubscriptionAction = "ACTIVATE"
	ActionRenew    SubscriptionAction = "RENEW"
	ActionPause    SubscriptionAction = "PAUSE"
	ActionExpire   SubscriptionAction = "EXPIRE"
)

// Subscription is the authoritative entitlement record for a household.
// The household row carries a denormalized copy of the current status and
// end date; the activation path keeps both in step.
type Subscription struct {
	ID             string // UUID
	HouseholdID    string // UUID
	PlanID         string // UUID
	Status         SubscriptionStatus
	StartAt        *time.Time // nil until activated
	EndAt          *time.Time // StartAt + plan.DurationDays once ACTIVE
	PauseReason    *string
	LastAction     SubscriptionAction
	CreatedByAdmin *string // nil means system/user-initiated
	CreatedAt      time.Time
}

// NewPendingSubscription creates the provisional record written at payment
// initiation time. It has no window yet; activation computes one.
func NewPendingSubscription(id, householdID, planID string) (*Subscription, error) {
	if id == "" || householdID == "" || planID == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &Subscription{
		ID:          id,
		HouseholdID: householdID,
		PlanID:      planID,
		Status:      SubscriptionStatusPending,
		CreatedAt:   time.Now(),
	}, nil
}

// Activate overwrites the subscription window with a fresh one starting at
// `at`. Renewals do not stack: a renewal processed before the previous period
// expires discards the remaining time.
func (s *Subscription) Activate(plan *Plan, at time.Time, action SubscriptionAction) {
	end := at.Add(time.Duration(plan.DurationDays) * 24 * time.Hour)
	s.Status = SubscriptionStatusActive
	s.StartAt = &at
	s.EndAt = &end
	s.LastAction = action
}
