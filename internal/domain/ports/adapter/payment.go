package adapter

import "context"

// DirectPayResult is what the provider returns when a collection request is
// accepted. Raw carries the provider payload verbatim for audit storage.
type DirectPayResult struct {
	TransID string
	Status  string
	Message string
	Raw     []byte
}

// StatusResult is the provider's answer to a synchronous status query.
type StatusResult struct {
	TransID string
	Status  string
	Medium  string
	Amount  int64
	Raw     []byte
}

// PaymentGateway abstracts the mobile-money provider. Both calls are blocking
// network operations; callers bound them with ctx.
type PaymentGateway interface {
	Name() string
	// DirectPay pushes a collection request to the subscriber's phone.
	DirectPay(ctx context.Context, amount int64, phone, medium, message string) (*DirectPayResult, error)
	// PaymentStatus queries the current state of a previously initiated payment.
	PaymentStatus(ctx context.Context, transID string) (*StatusResult, error)
}
