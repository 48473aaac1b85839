// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"household-billing/internal/config"
	"household-billing/internal/infra/api"
	pg "household-billing/internal/infra/db/postgres"
	"household-billing/internal/infra/logging"
	"household-billing/internal/infra/metrics"
	"household-billing/internal/infra/payment"
	red "household-billing/internal/infra/redis"
	"household-billing/internal/infra/sched"
	"household-billing/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, no redaction)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("[DEV MODE] enabled")
	}

	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()
	go pg.ReportPoolStats(ctx, pool, 15*time.Second)

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis")
	}
	defer redisClient.Close()
	locker := red.NewLocker(redisClient)
	rateLimiter := red.NewRateLimiter(redisClient)

	// ---- Repositories ----
	planRepo := pg.NewPlanRepo(pool)
	subRepo := pg.NewSubscriptionRepo(pool)
	payRepo := pg.NewPaymentRepo(pool)
	householdRepo := pg.NewHouseholdRepo(pool)
	eventRepo := pg.NewWebhookEventRepo(pool)
	auditRepo := pg.NewAuditLogRepo(pool)
	tm := pg.NewTxManager(pool)

	// ---- Gateway ----
	gateway := payment.NewFapshiGateway(cfg.Payment.Fapshi.BaseURL, cfg.Payment.Fapshi.APIUser, cfg.Payment.Fapshi.APIKey)
	logger.Info().Str("base_url", cfg.Payment.Fapshi.BaseURL).Bool("sandbox", cfg.Payment.Fapshi.Sandbox).
		Msg("payment gateway: fapshi")

	// ---- Use cases ----
	planUC := usecase.NewPlanUseCase(planRepo, logger)
	subUC := usecase.NewSubscriptionUseCase(subRepo, planRepo, householdRepo, auditRepo, logger)
	payUC := usecase.NewPaymentUseCase(payRepo, eventRepo, auditRepo, planUC, subUC, gateway, tm, locker,
		cfg.Payment.Fapshi.Currency, logger)

	// ---- HTTP API ----
	auth := api.NewAuthManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	srv := api.NewServer(payUC, planUC, subUC, auth, rateLimiter, cfg.RateLimit.InitiatePerMinute,
		cfg.Payment.Fapshi.WebhookSecret, logger)
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.API.Port),
		Handler:      srv.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http api listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server")
		}
	}()

	// ---- Payment reconciler ----
	reconciler := sched.NewPaymentReconciler(payUC, payRepo, cfg.Reconciler.Interval, cfg.Reconciler.StaleAfter, logger)
	go reconciler.Start(ctx)

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")
	cancel()

	shCtx, shCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shCancel()
	_ = server.Shutdown(shCtx)
}
