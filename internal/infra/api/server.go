package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"household-billing/internal/domain"
	"household-billing/internal/infra/logging"
	"household-billing/internal/infra/metrics"
	"household-billing/internal/infra/payment"
	"household-billing/internal/infra/redis"
	"household-billing/internal/usecase"
)

type ctxKey string

const ctxHousehold ctxKey = "household_id"

// RateLimiter is what the server needs from the redis limiter. Nil disables
// rate limiting (tests, dev).
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// Server wires the payment flow routes to the use cases.
type Server struct {
	payUC         usecase.PaymentUseCase
	planUC        usecase.PlanUseCase
	subUC         usecase.SubscriptionUseCase
	auth          *AuthManager
	limiter       RateLimiter
	initiateLimit int
	webhookSecret string
	log           *zerolog.Logger
}

func NewServer(
	payUC usecase.PaymentUseCase,
	planUC usecase.PlanUseCase,
	subUC usecase.SubscriptionUseCase,
	auth *AuthManager,
	limiter RateLimiter,
	initiateLimit int,
	webhookSecret string,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		payUC:         payUC,
		planUC:        planUC,
		subUC:         subUC,
		auth:          auth,
		limiter:       limiter,
		initiateLimit: initiateLimit,
		webhookSecret: webhookSecret,
		log:           logger,
	}
}

// Router builds the chi router with all routes attached.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(s.requestLogger)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/plans", s.handleListPlans)
		// The provider calls this; there is no bearer token to demand.
		r.Post("/payments/webhook", s.handleWebhook)

		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)
			r.Post("/payments/initiate", s.handleInitiate)
			r.Get("/payments/status/{transactionId}", s.handleStatus)
			r.Get("/subscription", s.handleSubscription)
		})
	})

	return r
}

// requestLogger tags each request with a trace id and logs it on completion.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := logging.WithTraceID(r.Context(), uuid.NewString())
		next.ServeHTTP(w, r.WithContext(ctx))
		logging.With(ctx, s.log).Debug().
			Str("method", r.Method).Str("path", r.URL.Path).
			Dur("duration", time.Since(start)).Msg("request")
	})
}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := s.auth.ParseFromRequest(r)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, errorBody("unauthorized"))
			return
		}
		ctx := context.WithValue(r.Context(), ctxHousehold, claims.HouseholdID)
		ctx = logging.WithHouseholdID(ctx, claims.HouseholdID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func householdFrom(ctx context.Context) string {
	if v := ctx.Value(ctxHousehold); v != nil {
		return v.(string)
	}
	return ""
}

// ---- handlers ----

type initiateRequest struct {
	Phone  string `json:"phone"`
	Method string `json:"method"`
	PlanID string `json:"planId"`
}

type initiateResponse struct {
	TransactionID string `json:"transactionId"`
	Amount        int64  `json:"amount"`
	Phone         string `json:"phone"`
	Status        string `json:"status"`
	Channel       string `json:"channel"`
	PlanID        string `json:"planId"`
}

func (s *Server) handleInitiate(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	householdID := householdFrom(ctx)

	if s.limiter != nil {
		ok, err := s.limiter.Allow(ctx, redis.InitiateKey(householdID), s.initiateLimit, time.Minute)
		if err != nil {
			s.log.Warn().Err(err).Msg("rate limiter unavailable; allowing request")
		} else if !ok {
			s.writeError(w, domain.ErrRateLimited)
			return
		}
	}

	var req initiateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	res, err := s.payUC.Initiate(ctx, householdID, req.Phone, req.Method, req.PlanID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, initiateResponse{
		TransactionID: res.TransactionID,
		Amount:        res.Amount,
		Phone:         res.Phone,
		Status:        string(res.Status),
		Channel:       string(res.Channel),
		PlanID:        res.PlanID,
	})
}

type webhookRequest struct {
	TransID    string `json:"transId"`
	Status     string `json:"status"`
	ExternalID string `json:"externalId"`
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("unreadable body"))
		return
	}

	if !payment.VerifyWebhookSignature(s.webhookSecret, body, r.Header.Get("X-Fapshi-Signature")) {
		metrics.IncWebhook("bad_signature")
		writeJSON(w, http.StatusUnauthorized, errorBody("invalid signature"))
		return
	}

	var req webhookRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	res, err := s.payUC.HandleWebhook(ctx, usecase.WebhookPayload{
		TransID:    req.TransID,
		Status:     req.Status,
		ExternalID: req.ExternalID,
		Raw:        body,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"transactionId": res.TransactionID,
		"status":        string(res.Status),
		"paymentId":     res.PaymentID,
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	transID := chi.URLParam(r, "transactionId")
	ctx = logging.WithTxnID(ctx, transID)
	res, err := s.payUC.PollStatus(ctx, householdFrom(ctx), transID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"transactionId": res.TransactionID,
		"status":        string(res.Status),
		"amount":        res.Amount,
	})
}

func (s *Server) handleSubscription(w http.ResponseWriter, r *http.Request) {
	sub, err := s.subUC.GetActive(r.Context(), householdFrom(r.Context()))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":      sub.ID,
		"planId":  sub.PlanID,
		"status":  string(sub.Status),
		"startAt": sub.StartAt,
		"endAt":   sub.EndAt,
	})
}

func (s *Server) handleListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := s.planUC.ListActive(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	type planView struct {
		ID           string `json:"id"`
		Name         string `json:"name"`
		Price        int64  `json:"price"`
		DurationDays int    `json:"durationDays"`
	}
	out := make([]planView, 0, len(plans))
	for _, p := range plans {
		out = append(out, planView{ID: p.ID, Name: p.Name, Price: p.Price, DurationDays: p.DurationDays})
	}
	writeJSON(w, http.StatusOK, out)
}

// ---- response helpers ----

func (s *Server) writeError(w http.ResponseWriter, err error) {
	var gwErr *domain.GatewayError
	switch {
	case errors.Is(err, domain.ErrInvalidArgument), errors.Is(err, domain.ErrInvalidPhone), errors.Is(err, domain.ErrNoActivePlan):
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case errors.Is(err, domain.ErrRateLimited):
		writeJSON(w, http.StatusTooManyRequests, errorBody("too many requests"))
	case errors.As(err, &gwErr):
		writeJSON(w, http.StatusBadGateway, errorBody(gwErr.Error()))
	default:
		s.log.Error().Err(err).Msg("request failed")
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func errorBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}
