package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"household-billing/internal/domain/ports/repository"
	"household-billing/internal/usecase"
)

// PaymentReconciler periodically scans for stale pending payments and re-checks
// them against the provider. This covers webhook deliveries that never arrived
// or a process that crashed mid-reconcile.
type PaymentReconciler struct {
	uc         usecase.PaymentUseCase
	payments   repository.PaymentRepository
	interval   time.Duration // how often to scan
	staleAfter time.Duration // how old a pending payment must be to retry
	log        *zerolog.Logger
}

func NewPaymentReconciler(uc usecase.PaymentUseCase, payments repository.PaymentRepository, interval, staleAfter time.Duration, logger *zerolog.Logger) *PaymentReconciler {
	if interval <= 0 {
		interval = time.Minute
	}
	if staleAfter <= 0 {
		staleAfter = 10 * time.Minute
	}
	return &PaymentReconciler{uc: uc, payments: payments, interval: interval, staleAfter: staleAfter, log: logger}
}

func (w *PaymentReconciler) Start(ctx context.Context) {
	t := time.NewTicker(w.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			w.tick(ctx)
		}
	}
}

func (w *PaymentReconciler) tick(ctx context.Context) {
	cutoff := time.Now().Add(-w.staleAfter)
	pending, err := w.payments.ListPendingOlderThan(ctx, nil, cutoff, 200)
	if err != nil {
		w.log.Error().Err(err).Msg("payment-reconciler: list pending failed")
		return
	}
	for _, p := range pending {
		if p.ProviderTxnID == "" {
			continue
		}
		res, err := w.uc.PollStatus(ctx, p.HouseholdID, p.ProviderTxnID)
		if err != nil {
			w.log.Warn().Str("payment_id", p.ID).Str("txn_id", p.ProviderTxnID).Err(err).
				Msg("payment-reconciler: poll failed")
			continue
		}
		if res.Status != p.Status {
			w.log.Info().Str("payment_id", p.ID).Str("txn_id", p.ProviderTxnID).
				Str("status", string(res.Status)).Msg("payment-reconciler: reconciled")
		}
	}
}
