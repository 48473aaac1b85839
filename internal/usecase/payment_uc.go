// File: internal/usecase/payment_uc.go
package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"household-billing/internal/domain"
	"household-billing/internal/domain/model"
	"household-billing/internal/domain/ports/adapter"
	"household-billing/internal/domain/ports/repository"
	"household-billing/internal/infra/logging"
	"household-billing/internal/infra/metrics"
)

// Compile-time check
var _ PaymentUseCase = (*paymentUC)(nil)

// InitiateResult is returned to the caller after a direct-pay push.
type InitiateResult struct {
	TransactionID string
	Amount        int64
	Phone         string
	Status        model.PaymentStatus
	Channel       model.PaymentChannel
	PlanID        string
}

// WebhookPayload is the decoded provider callback.
type WebhookPayload struct {
	TransID    string
	Status     string
	ExternalID string
	Raw        []byte // full payload, stored verbatim
}

// WebhookResult reports how a delivery was reconciled.
type WebhookResult struct {
	TransactionID string
	Status        model.PaymentStatus
	PaymentID     string
}

// PollResult is the answer to a user-triggered status check.
type PollResult struct {
	TransactionID string
	Status        model.PaymentStatus
	Amount        int64
}

type PaymentUseCase interface {
	// Initiate validates the request, pushes a direct-pay to the provider and
	// persists a PENDING payment plus a provisional PENDING subscription.
	Initiate(ctx context.Context, householdID, phone, method, planID string) (*InitiateResult, error)
	// HandleWebhook reconciles an asynchronous provider callback.
	HandleWebhook(ctx context.Context, payload WebhookPayload) (*WebhookResult, error)
	// PollStatus re-checks a pending payment synchronously, best effort.
	PollStatus(ctx context.Context, householdID, transID string) (*PollResult, error)
}

// Locker serializes reconciliation of one provider transaction across
// concurrent webhook deliveries and user polls.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (token string, err error)
	Unlock(ctx context.Context, key, token string) error
}

type paymentUC struct {
	payments repository.PaymentRepository
	events   repository.WebhookEventRepository
	audits   repository.AuditLogRepository
	planUC   PlanUseCase
	subUC    SubscriptionUseCase
	gateway  adapter.PaymentGateway
	tm       repository.TransactionManager
	locker   Locker // may be nil; reconciliation then relies on row atomicity alone
	currency string
	log      *zerolog.Logger
}

func NewPaymentUseCase(
	payments repository.PaymentRepository,
	events repository.WebhookEventRepository,
	audits repository.AuditLogRepository,
	planUC PlanUseCase,
	subUC SubscriptionUseCase,
	gateway adapter.PaymentGateway,
	tm repository.TransactionManager,
	locker Locker,
	currency string,
	logger *zerolog.Logger,
) *paymentUC {
	return &paymentUC{
		payments: payments,
		events:   events,
		audits:   audits,
		planUC:   planUC,
		subUC:    subUC,
		gateway:  gateway,
		tm:       tm,
		locker:   locker,
		currency: currency,
		log:      logger,
	}
}

func (u *paymentUC) Initiate(ctx context.Context, householdID, phone, method, planID string) (*InitiateResult, error) {
	defer logging.TraceDuration(u.log, "PaymentUC.Initiate")()

	if phone == "" || method == "" {
		return nil, fmt.Errorf("phone and payment method are required: %w", domain.ErrInvalidArgument)
	}

	plan, err := u.planUC.GetActive(ctx, planID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNoActivePlan
		}
		return nil, err
	}

	localPhone, err := model.NormalizePhone(phone)
	if err != nil {
		return nil, err
	}
	channel := model.ChannelForMethod(method)

	message := fmt.Sprintf("Household subscription: %s", plan.Name)
	rawReq, _ := json.Marshal(map[string]any{
		"amount":  plan.Price,
		"phone":   localPhone,
		"medium":  string(channel),
		"message": message,
	})

	res, err := u.gateway.DirectPay(ctx, plan.Price, localPhone, string(channel), message)
	if err != nil {
		metrics.IncPayment("gateway_error")
		var gwErr *domain.GatewayError
		if errors.As(err, &gwErr) {
			return nil, err
		}
		return nil, domain.NewGatewayError(u.gateway.Name(), err.Error(), err)
	}
	if res.TransID == "" {
		metrics.IncPayment("gateway_error")
		return nil, domain.NewGatewayError(u.gateway.Name(), res.Message, nil)
	}

	providerStatus := res.Status
	if providerStatus == "" {
		providerStatus = "PENDING"
	}

	now := time.Now()
	sub, err := model.NewPendingSubscription(uuid.NewString(), householdID, plan.ID)
	if err != nil {
		return nil, err
	}
	payment := &model.Payment{
		ID:             uuid.NewString(),
		HouseholdID:    householdID,
		SubscriptionID: &sub.ID,
		PlanID:         plan.ID,
		Provider:       u.gateway.Name(),
		Channel:        channel,
		Currency:       u.currency,
		Amount:         plan.Price,
		ProviderTxnID:  res.TransID,
		ProviderStatus: providerStatus,
		Status:         model.PaymentStatusPending,
		Message:        res.Message,
		RawRequest:     rawReq,
		RawResponse:    res.Raw,
		CreatedAt:      now,
	}

	err = u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		if err := u.subUC.SavePending(ctx, tx, sub); err != nil {
			return err
		}
		if err := u.payments.Save(ctx, tx, payment); err != nil {
			return err
		}
		return u.audits.Append(ctx, tx, &model.AuditEntry{
			ID:         uuid.NewString(),
			Actor:      householdID,
			Action:     model.AuditInitiatePayment,
			EntityType: "payment",
			EntityID:   payment.ID,
			CreatedAt:  now,
		})
	})
	if err != nil {
		return nil, err
	}

	metrics.IncPayment("initiated")
	u.log.Info().Str("payment_id", payment.ID).Str("txn_id", res.TransID).
		Str("phone", logging.Redact(localPhone, false)).
		Str("channel", string(channel)).Int64("amount", plan.Price).Msg("payment initiated")

	return &InitiateResult{
		TransactionID: res.TransID,
		Amount:        plan.Price,
		Phone:         localPhone,
		Status:        model.PaymentStatusPending,
		Channel:       channel,
		PlanID:        plan.ID,
	}, nil
}

func (u *paymentUC) HandleWebhook(ctx context.Context, payload WebhookPayload) (*WebhookResult, error) {
	defer logging.TraceDuration(u.log, "PaymentUC.HandleWebhook")()

	if payload.TransID == "" || payload.Status == "" {
		return nil, fmt.Errorf("transId and status are required: %w", domain.ErrInvalidArgument)
	}

	unlock, err := u.lockTxn(ctx, payload.TransID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	// A webhook for a payment that was never initiated locally is dropped.
	payment, err := u.payments.FindByProviderTxnID(ctx, nil, payload.TransID)
	if err != nil {
		metrics.IncWebhook("unknown_txn")
		return nil, err
	}

	mapped := model.MapProviderStatus(payload.Status)
	now := time.Now()

	err = u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		payment.ProviderStatus = payload.Status
		payment.Status = mapped
		payment.LastWebhookAt = &now
		payment.RawResponse = payload.Raw
		if mapped == model.PaymentStatusSuccess && payment.CompletedAt == nil {
			payment.CompletedAt = &now
		}

		if mapped == model.PaymentStatusSuccess {
			sub, err := u.subUC.ActivateFromPayment(ctx, tx, payment, payload.Status)
			if err != nil {
				return err
			}
			if sub != nil {
				payment.SubscriptionID = &sub.ID
			}
		}

		if err := u.payments.UpdateFromProvider(ctx, tx, payment); err != nil {
			return err
		}
		if err := u.events.Append(ctx, tx, &model.WebhookEvent{
			ID:            uuid.NewString(),
			Provider:      payment.Provider,
			ProviderTxnID: payload.TransID,
			ExternalID:    payload.ExternalID,
			EventStatus:   payload.Status,
			Payload:       payload.Raw,
			Processed:     true,
			ReceivedAt:    now,
		}); err != nil {
			return err
		}
		return u.audits.Append(ctx, tx, &model.AuditEntry{
			ID:         uuid.NewString(),
			Actor:      model.ActorSystem,
			Action:     model.AuditUpdatePaymentStatus,
			EntityType: "payment",
			EntityID:   payment.ID,
			CreatedAt:  now,
		})
	})
	if err != nil {
		metrics.IncWebhook("error")
		return nil, err
	}

	metrics.IncWebhook("processed")
	metrics.IncPayment(string(mapped))
	if mapped == model.PaymentStatusSuccess {
		metrics.AddPaymentRevenue(payment.Currency, payment.Amount)
	}
	u.log.Info().Str("payment_id", payment.ID).Str("txn_id", payload.TransID).
		Str("provider_status", payload.Status).Str("status", string(mapped)).Msg("webhook reconciled")

	return &WebhookResult{TransactionID: payload.TransID, Status: mapped, PaymentID: payment.ID}, nil
}

func (u *paymentUC) PollStatus(ctx context.Context, householdID, transID string) (*PollResult, error) {
	defer logging.TraceDuration(u.log, "PaymentUC.PollStatus")()

	payment, err := u.payments.FindByProviderTxnIDAndHousehold(ctx, nil, transID, householdID)
	if err != nil {
		return nil, err
	}

	// Settled payments answer from storage; no provider traffic.
	if payment.Status != model.PaymentStatusPending {
		return &PollResult{TransactionID: transID, Status: payment.Status, Amount: payment.Amount}, nil
	}

	res, err := u.gateway.PaymentStatus(ctx, transID)
	if err != nil {
		// Best effort: a flaky provider must not surface as an error to the
		// caller; they see the last-known (stale) status instead.
		u.log.Warn().Str("txn_id", transID).Err(err).Msg("status query failed; returning stale status")
		return &PollResult{TransactionID: transID, Status: payment.Status, Amount: payment.Amount}, nil
	}

	unlock, err := u.lockTxn(ctx, transID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	mapped := model.MapProviderStatus(res.Status)
	now := time.Now()

	err = u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		payment.ProviderStatus = res.Status
		payment.Status = mapped
		payment.RawResponse = res.Raw
		if mapped == model.PaymentStatusSuccess && payment.CompletedAt == nil {
			payment.CompletedAt = &now
		}

		if mapped == model.PaymentStatusSuccess {
			sub, err := u.subUC.ActivateFromPayment(ctx, tx, payment, res.Status)
			if err != nil {
				return err
			}
			if sub != nil {
				payment.SubscriptionID = &sub.ID
			}
		}

		if err := u.payments.UpdateFromProvider(ctx, tx, payment); err != nil {
			return err
		}
		return u.audits.Append(ctx, tx, &model.AuditEntry{
			ID:         uuid.NewString(),
			Actor:      householdID,
			Action:     model.AuditUpdatePaymentStatus,
			EntityType: "payment",
			EntityID:   payment.ID,
			CreatedAt:  now,
		})
	})
	if err != nil {
		return nil, err
	}

	metrics.IncPayment(string(mapped))
	if mapped == model.PaymentStatusSuccess {
		metrics.AddPaymentRevenue(payment.Currency, payment.Amount)
	}

	return &PollResult{TransactionID: transID, Status: mapped, Amount: payment.Amount}, nil
}

func (u *paymentUC) lockTxn(ctx context.Context, transID string) (func(), error) {
	if u.locker == nil {
		return func() {}, nil
	}
	key := "billing:txn:" + transID
	token, err := u.locker.TryLock(ctx, key, 30*time.Second)
	if err != nil {
		return nil, err
	}
	return func() { _ = u.locker.Unlock(ctx, key, token) }, nil
}
