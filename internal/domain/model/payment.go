package model

import "time"

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING" // direct-pay issued; awaiting webhook or poll
	PaymentStatusSuccess PaymentStatus = "SUCCESS" // provider reported SUCCESSFUL
	PaymentStatusFailed  PaymentStatus = "FAILED"  // provider reported FAILED
	PaymentStatusExpired PaymentStatus = "EXPIRED" // provider reported EXPIRED
)

type PaymentChannel string

const (
	ChannelMTNMomo     PaymentChannel = "MTN_MOMO"
	ChannelOrangeMoney PaymentChannel = "ORANGE_MONEY"
)

// MapProviderStatus translates the provider's status vocabulary into ours.
// The mapping is pure and total: unrecognized strings stay PENDING so a
// payment is never marked definitively settled on a status we do not know.
func MapProviderStatus(providerStatus string) PaymentStatus {
	switch providerStatus {
	case "SUCCESSFUL":
		return PaymentStatusSuccess
	case "FAILED":
		return PaymentStatusFailed
	case "EXPIRED":
		return PaymentStatusExpired
	case "PENDING":
		return PaymentStatusPending
	default:
		return PaymentStatusPending
	}
}

// Payment records the external payment intent/transaction.
type Payment struct {
	ID             string  // UUID
	HouseholdID    string  // UUID of the paying household
	SubscriptionID *string // UUID of the provisional subscription, nil until created
	PlanID         string  // UUID of the plan being bought
	Provider       string  // e.g. "fapshi"
	Channel        PaymentChannel
	Currency       string // e.g. "XAF"
	Amount         int64  // minor units, always plan.Price at initiation
	ProviderTxnID  string // provider transaction id returned by direct-pay
	ProviderStatus string // last raw status string the provider reported
	Status         PaymentStatus
	Message        string // free-text, usually the gateway's message
	RawRequest     []byte // outbound direct-pay payload, stored verbatim for audit
	RawResponse    []byte // last provider payload (response or webhook), verbatim
	CreatedAt      time.Time
	CompletedAt    *time.Time // set only when status becomes SUCCESS
	LastWebhookAt  *time.Time // set on every webhook delivery
}
