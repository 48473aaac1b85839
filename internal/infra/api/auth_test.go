//go:build !integration

package api_test

import (
	"net/http"
	"testing"
	"time"

	"household-billing/internal/infra/api"
)

func TestMintAndParse(t *testing.T) {
	auth := api.NewAuthManager("secret", time.Hour)

	tok, err := auth.Mint("hh-1")
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	claims, err := auth.ParseFromRequest(req)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.HouseholdID != "hh-1" {
		t.Errorf("household = %q, want hh-1", claims.HouseholdID)
	}
}

func TestParseRejectsBadTokens(t *testing.T) {
	auth := api.NewAuthManager("secret", time.Hour)

	t.Run("missing header", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, "/", nil)
		if _, err := auth.ParseFromRequest(req); err == nil {
			t.Error("expected an error without an Authorization header")
		}
	})

	t.Run("wrong scheme", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Basic abc")
		if _, err := auth.ParseFromRequest(req); err == nil {
			t.Error("expected an error for a non-bearer header")
		}
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := api.NewAuthManager("different-secret", time.Hour)
		tok, _ := other.Mint("hh-1")
		req, _ := http.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		if _, err := auth.ParseFromRequest(req); err == nil {
			t.Error("expected an error for a token signed with another secret")
		}
	})

	t.Run("expired token", func(t *testing.T) {
		short := api.NewAuthManager("secret", -time.Minute)
		tok, _ := short.Mint("hh-1")
		req, _ := http.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		if _, err := auth.ParseFromRequest(req); err == nil {
			t.Error("expected an error for an expired token")
		}
	})
}
