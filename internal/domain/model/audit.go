package model

import "time"

// Audit actor used when no user is behind an action (webhooks, workers).
const ActorSystem = "SYSTEM"

type AuditAction string

const (
	AuditInitiatePayment      AuditAction = "INITIATE_PAYMENT"
	AuditUpdatePaymentStatus  AuditAction = "UPDATE_PAYMENT_STATUS"
	AuditActivateSubscription AuditAction = "ACTIVATE_SUBSCRIPTION"
)

// AuditEntry is a generic append-only system audit record.
type AuditEntry struct {
	ID         string // UUID
	Actor      string // household/user id, or ActorSystem
	Action     AuditAction
	EntityType string
	EntityID   string
	CreatedAt  time.Time
}
