// File: internal/usecase/mocks_test.go
package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"household-billing/internal/domain"
	"household-billing/internal/domain/model"
	"household-billing/internal/domain/ports/adapter"
	"household-billing/internal/domain/ports/repository"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// memPlanRepo is a small in-memory implementation used by unit tests.
type memPlanRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Plan
	order []string // insertion order stands in for created_at ordering
}

func newMemPlanRepo() *memPlanRepo {
	return &memPlanRepo{store: make(map[string]*model.Plan)}
}

func (m *memPlanRepo) Save(ctx context.Context, tx repository.Tx, plan *model.Plan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[plan.ID]; !ok {
		m.order = append(m.order, plan.ID)
	}
	cp := *plan
	m.store[plan.ID] = &cp
	return nil
}

func (m *memPlanRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Plan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memPlanRepo) FindActiveByID(ctx context.Context, tx repository.Tx, id string) (*model.Plan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.store[id]
	if !ok || !p.Active {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memPlanRepo) FirstActive(ctx context.Context, tx repository.Tx) (*model.Plan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, id := range m.order {
		if p := m.store[id]; p.Active {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memPlanRepo) ListActive(ctx context.Context, tx repository.Tx) ([]*model.Plan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Plan
	for _, id := range m.order {
		if p := m.store[id]; p.Active {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

// memPaymentRepo stores payments keyed by id and indexes them by provider
// transaction id the way the real repo's unique index does.
type memPaymentRepo struct {
	mu      sync.RWMutex
	store   map[string]*model.Payment
	byTxn   map[string]string // provider_txn_id -> payment id
	saveErr error
}

func newMemPaymentRepo() *memPaymentRepo {
	return &memPaymentRepo{store: make(map[string]*model.Payment), byTxn: make(map[string]string)}
}

func (m *memPaymentRepo) Save(ctx context.Context, tx repository.Tx, p *model.Payment) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.store[p.ID] = &cp
	m.byTxn[p.ProviderTxnID] = p.ID
	return nil
}

func (m *memPaymentRepo) FindByProviderTxnID(ctx context.Context, tx repository.Tx, txnID string) (*model.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.byTxn[txnID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *m.store[id]
	return &cp, nil
}

func (m *memPaymentRepo) FindByProviderTxnIDAndHousehold(ctx context.Context, tx repository.Tx, txnID, householdID string) (*model.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.byTxn[txnID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	p := m.store[id]
	if p.HouseholdID != householdID {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memPaymentRepo) UpdateFromProvider(ctx context.Context, tx repository.Tx, p *model.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.store[p.ID]
	if !ok {
		return domain.ErrNotFound
	}
	cur.SubscriptionID = p.SubscriptionID
	cur.ProviderStatus = p.ProviderStatus
	cur.Status = p.Status
	cur.RawResponse = p.RawResponse
	if p.CompletedAt != nil {
		cur.CompletedAt = p.CompletedAt
	}
	if p.LastWebhookAt != nil {
		cur.LastWebhookAt = p.LastWebhookAt
	}
	return nil
}

func (m *memPaymentRepo) ListPendingOlderThan(ctx context.Context, tx repository.Tx, olderThan time.Time, limit int) ([]*model.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Payment
	for _, p := range m.store {
		if p.Status == model.PaymentStatusPending && p.CreatedAt.Before(olderThan) {
			cp := *p
			out = append(out, &cp)
		}
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (m *memPaymentRepo) count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.store)
}

// memSubRepo provides in-memory subscriptions for tests.
type memSubRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Subscription
}

func newMemSubRepo() *memSubRepo {
	return &memSubRepo{store: make(map[string]*model.Subscription)}
}

func (m *memSubRepo) Save(ctx context.Context, tx repository.Tx, s *model.Subscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.store[s.ID] = &cp
	return nil
}

func (m *memSubRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Subscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *memSubRepo) FindActiveByHousehold(ctx context.Context, tx repository.Tx, householdID string) (*model.Subscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.store {
		if s.HouseholdID == householdID && s.Status == model.SubscriptionStatusActive {
			cp := *s
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

// memHouseholdRepo keeps the denormalized cache fields so tests can assert
// they track the subscription row.
type memHouseholdRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Household
}

func newMemHouseholdRepo() *memHouseholdRepo {
	return &memHouseholdRepo{store: make(map[string]*model.Household)}
}

func (m *memHouseholdRepo) Save(ctx context.Context, tx repository.Tx, h *model.Household) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *h
	m.store[h.ID] = &cp
	return nil
}

func (m *memHouseholdRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Household, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	h, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *h
	return &cp, nil
}

func (m *memHouseholdRepo) UpdateSubscriptionCache(ctx context.Context, tx repository.Tx, householdID, subscriptionID string, status model.SubscriptionStatus, endAt *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.store[householdID]
	if !ok {
		// UPDATE on a missing row is a silent no-op in SQL too.
		return nil
	}
	h.CurrentSubscriptionID = &subscriptionID
	h.SubscriptionStatus = status
	h.SubscriptionEndAt = endAt
	return nil
}

type memWebhookEventRepo struct {
	mu     sync.RWMutex
	events []*model.WebhookEvent
}

func newMemWebhookEventRepo() *memWebhookEventRepo { return &memWebhookEventRepo{} }

func (m *memWebhookEventRepo) Append(ctx context.Context, tx repository.Tx, e *model.WebhookEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *e
	m.events = append(m.events, &cp)
	return nil
}

func (m *memWebhookEventRepo) ListByProviderTxnID(ctx context.Context, tx repository.Tx, txnID string) ([]*model.WebhookEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.WebhookEvent
	for _, e := range m.events {
		if e.ProviderTxnID == txnID {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

type memAuditRepo struct {
	mu      sync.RWMutex
	entries []*model.AuditEntry
}

func newMemAuditRepo() *memAuditRepo { return &memAuditRepo{} }

func (m *memAuditRepo) Append(ctx context.Context, tx repository.Tx, e *model.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *e
	m.entries = append(m.entries, &cp)
	return nil
}

// mockGateway lets tests script the provider and count outbound calls.
type mockGateway struct {
	mu                sync.Mutex
	DirectPayFunc     func(ctx context.Context, amount int64, phone, medium, message string) (*adapter.DirectPayResult, error)
	PaymentStatusFunc func(ctx context.Context, transID string) (*adapter.StatusResult, error)
	directPayCalls    int
	statusCalls       int
}

func (g *mockGateway) Name() string { return "fapshi" }

func (g *mockGateway) DirectPay(ctx context.Context, amount int64, phone, medium, message string) (*adapter.DirectPayResult, error) {
	g.mu.Lock()
	g.directPayCalls++
	g.mu.Unlock()
	if g.DirectPayFunc != nil {
		return g.DirectPayFunc(ctx, amount, phone, medium, message)
	}
	return &adapter.DirectPayResult{TransID: "txn-123", Status: "PENDING", Message: "ok"}, nil
}

func (g *mockGateway) PaymentStatus(ctx context.Context, transID string) (*adapter.StatusResult, error) {
	g.mu.Lock()
	g.statusCalls++
	g.mu.Unlock()
	if g.PaymentStatusFunc != nil {
		return g.PaymentStatusFunc(ctx, transID)
	}
	return &adapter.StatusResult{TransID: transID, Status: "PENDING"}, nil
}

func (g *mockGateway) directPayCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.directPayCalls
}

func (g *mockGateway) statusCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.statusCalls
}

// mockTxManager runs the callback without a real transaction.
type mockTxManager struct{}

func (m *mockTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	return fn(ctx, nil)
}
