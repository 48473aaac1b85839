package model

import (
	"time"

	"household-billing/internal/domain"
)

// Plan represents a purchasable billing plan with a fixed duration and a
// price in minor currency units (e.g. XAF has no subunit, so 2000 == 2000 XAF).
// A plan is immutable once a payment references it.
type Plan struct {
	ID           string
	Name         string
	Price        int64
	DurationDays int
	Active       bool
	CreatedAt    time.Time
}

// NewPlan validates and constructs a plan.
func NewPlan(id, name string, price int64, durationDays int, active bool) (*Plan, error) {
	if id == "" || name == "" || price <= 0 || durationDays <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	return &Plan{
		ID:           id,
		Name:         name,
		Price:        price,
		DurationDays: durationDays,
		Active:       active,
		CreatedAt:    time.Now(),
	}, nil
}
