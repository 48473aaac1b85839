//go:build !integration

package model

import (
	"errors"
	"testing"
	"time"

	"household-billing/internal/domain"
)

func TestNewPendingSubscription(t *testing.T) {
	s, err := NewPendingSubscription("sub-1", "hh-1", "plan-1")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if s.Status != SubscriptionStatusPending {
		t.Errorf("status = %q, want PENDING", s.Status)
	}
	if s.StartAt != nil || s.EndAt != nil {
		t.Error("a pending subscription has no window")
	}

	for _, args := range [][3]string{
		{"", "hh-1", "plan-1"},
		{"sub-1", "", "plan-1"},
		{"sub-1", "hh-1", ""},
	} {
		if _, err := NewPendingSubscription(args[0], args[1], args[2]); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("NewPendingSubscription(%q,%q,%q) expected ErrInvalidArgument, got %v", args[0], args[1], args[2], err)
		}
	}
}

func TestActivateOverwritesWindow(t *testing.T) {
	plan := &Plan{ID: "plan-1", Name: "Monthly", Price: 2000, DurationDays: 30, Active: true}
	s, _ := NewPendingSubscription("sub-1", "hh-1", "plan-1")

	at := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	s.Activate(plan, at, ActionActivate)

	if s.Status != SubscriptionStatusActive {
		t.Errorf("status = %q, want ACTIVE", s.Status)
	}
	if !s.StartAt.Equal(at) {
		t.Errorf("start_at = %v, want %v", s.StartAt, at)
	}
	wantEnd := at.Add(30 * 24 * time.Hour)
	if !s.EndAt.Equal(wantEnd) {
		t.Errorf("end_at = %v, want %v", s.EndAt, wantEnd)
	}
	if s.LastAction != ActionActivate {
		t.Errorf("last_action = %q, want ACTIVATE", s.LastAction)
	}

	// Re-activating mid-window replaces it; the leftover time is gone.
	later := at.Add(10 * 24 * time.Hour)
	s.Activate(plan, later, ActionRenew)
	wantEnd = later.Add(30 * 24 * time.Hour)
	if !s.EndAt.Equal(wantEnd) {
		t.Errorf("renewed end_at = %v, want %v", s.EndAt, wantEnd)
	}
	if s.LastAction != ActionRenew {
		t.Errorf("last_action = %q, want RENEW", s.LastAction)
	}
}
