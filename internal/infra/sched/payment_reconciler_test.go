//go:build !integration

package sched

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"household-billing/internal/domain/model"
	"household-billing/internal/domain/ports/repository"
	"household-billing/internal/usecase"
)

type stubPaymentRepo struct {
	repository.PaymentRepository
	pending []*model.Payment
	listErr error
}

func (s *stubPaymentRepo) ListPendingOlderThan(ctx context.Context, tx repository.Tx, olderThan time.Time, limit int) ([]*model.Payment, error) {
	return s.pending, s.listErr
}

type stubPollUC struct {
	usecase.PaymentUseCase
	mu     sync.Mutex
	polled []string
	err    error
}

func (s *stubPollUC) PollStatus(ctx context.Context, householdID, transID string) (*usecase.PollResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.polled = append(s.polled, transID)
	if s.err != nil {
		return nil, s.err
	}
	return &usecase.PollResult{TransactionID: transID, Status: model.PaymentStatusSuccess}, nil
}

func TestReconcilerPollsStalePending(t *testing.T) {
	logger := zerolog.Nop()
	repo := &stubPaymentRepo{pending: []*model.Payment{
		{ID: "pay-1", HouseholdID: "hh-1", ProviderTxnID: "txn-1", Status: model.PaymentStatusPending},
		{ID: "pay-2", HouseholdID: "hh-2", ProviderTxnID: "", Status: model.PaymentStatusPending}, // never pushed
		{ID: "pay-3", HouseholdID: "hh-3", ProviderTxnID: "txn-3", Status: model.PaymentStatusPending},
	}}
	uc := &stubPollUC{}

	w := NewPaymentReconciler(uc, repo, time.Minute, 10*time.Minute, &logger)
	w.tick(context.Background())

	if len(uc.polled) != 2 {
		t.Fatalf("polled %d payments, want 2 (the one without a txn id is skipped)", len(uc.polled))
	}
	if uc.polled[0] != "txn-1" || uc.polled[1] != "txn-3" {
		t.Errorf("polled %v, want [txn-1 txn-3]", uc.polled)
	}
}

func TestReconcilerKeepsGoingOnPollErrors(t *testing.T) {
	logger := zerolog.Nop()
	repo := &stubPaymentRepo{pending: []*model.Payment{
		{ID: "pay-1", HouseholdID: "hh-1", ProviderTxnID: "txn-1", Status: model.PaymentStatusPending},
		{ID: "pay-2", HouseholdID: "hh-2", ProviderTxnID: "txn-2", Status: model.PaymentStatusPending},
	}}
	uc := &stubPollUC{err: errors.New("provider down")}

	w := NewPaymentReconciler(uc, repo, time.Minute, 10*time.Minute, &logger)
	w.tick(context.Background())

	if len(uc.polled) != 2 {
		t.Errorf("a failing poll must not stop the scan: polled %d, want 2", len(uc.polled))
	}
}

func TestReconcilerDefaults(t *testing.T) {
	logger := zerolog.Nop()
	w := NewPaymentReconciler(&stubPollUC{}, &stubPaymentRepo{}, 0, 0, &logger)
	if w.interval != time.Minute {
		t.Errorf("interval = %v, want 1m default", w.interval)
	}
	if w.staleAfter != 10*time.Minute {
		t.Errorf("staleAfter = %v, want 10m default", w.staleAfter)
	}
}
