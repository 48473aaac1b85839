package model

import "time"

// Household carries a denormalized cache of the current subscription for
// fast reads. The Subscription row is the source of truth; only the
// activation path writes these fields, in the same transaction as the
// subscription upsert.
type Household struct {
	ID                    string // UUID
	Name                  string
	Phone                 string
	CurrentSubscriptionID *string
	SubscriptionStatus    SubscriptionStatus
	SubscriptionEndAt     *time.Time
	CreatedAt             time.Time
}
