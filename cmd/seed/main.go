package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"household-billing/internal/config"
	"household-billing/internal/domain/model"
	"household-billing/internal/infra/api"
	pg "household-billing/internal/infra/db/postgres"
	"household-billing/internal/infra/logging"
	"household-billing/internal/usecase"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, true)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := logging.New(cfg.Log, true)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 4)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	planRepo := pg.NewPlanRepo(pool)
	householdRepo := pg.NewHouseholdRepo(pool)
	planUC := usecase.NewPlanUseCase(planRepo, logger)

	// If plans already exist, do nothing
	plans, err := planUC.ListActive(ctx)
	if err != nil {
		log.Fatalf("list plans: %v", err)
	}
	if len(plans) > 0 {
		fmt.Printf("%d plans already present. No changes.\n", len(plans))
		for _, p := range plans {
			fmt.Printf("  - %s (days=%d, price=%d XAF)\n", p.Name, p.DurationDays, p.Price)
		}
		return
	}

	seed := []struct {
		Name  string
		Days  int
		Price int64
	}{
		{"Monthly", 30, 2_000},
		{"Quarterly", 90, 5_500},
		{"Yearly", 365, 20_000},
	}
	for _, s := range seed {
		p, err := model.NewPlan(uuid.NewString(), s.Name, s.Price, s.Days, true)
		if err != nil {
			log.Fatalf("plan %q: %v", s.Name, err)
		}
		if err := planRepo.Save(ctx, nil, p); err != nil {
			log.Fatalf("save plan %q: %v", s.Name, err)
		}
		fmt.Printf("seeded plan: %s (id=%s, days=%d, price=%d XAF)\n", p.Name, p.ID, p.DurationDays, p.Price)
	}

	// A demo household plus a ready-to-use bearer token for manual testing.
	h := &model.Household{
		ID:        uuid.NewString(),
		Name:      "Demo Household",
		Phone:     "679690703",
		CreatedAt: time.Now(),
	}
	if err := householdRepo.Save(ctx, nil, h); err != nil {
		log.Fatalf("save household: %v", err)
	}
	fmt.Printf("seeded household: %s (id=%s)\n", h.Name, h.ID)

	token, err := api.NewAuthManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL).Mint(h.ID)
	if err != nil {
		log.Fatalf("mint token: %v", err)
	}
	fmt.Printf("bearer token: %s\n", token)

	fmt.Println("Seeding complete.")
}
