package model

import "time"

// WebhookEvent is an immutable record of a single webhook delivery from the
// payment provider. Rows are appended and never updated or deleted.
type WebhookEvent struct {
	ID            string // UUID
	Provider      string
	ProviderTxnID string
	ExternalID    string // provider-side event/external id when present
	EventStatus   string // raw status string from the payload
	Payload       []byte // full payload, verbatim
	Processed     bool   // whether local processing completed without error
	ReceivedAt    time.Time
}
