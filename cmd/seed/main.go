package main

import (
	"context"
	"time"

	"github.com/joy095/workspace/config"
	"github.com/joy095/workspace/config/db"
	"github.com/joy095/workspace/logger"
	"github.com/joy095/workspace/seed"
	"github.com/joy095/workspace/store/postgres_store"
)

func main() {
	config.LoadEnv()
	logger.InitLoggers()
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.ErrorLogger.Fatalf("Database unavailable: %v", err)
	}
	defer db.Close(pool)

	if err := db.Migrate(ctx, pool); err != nil {
		logger.ErrorLogger.Fatalf("Migration failed: %v", err)
	}

	res, err := seed.Load(ctx, postgres_store.New(pool), time.Now())
	if err != nil {
		logger.ErrorLogger.Fatalf("Seed failed: %v", err)
	}
	if res != nil {
		logger.InfoLogger.Infof("Database seeded: %d users, %d spaces", len(res.Users), len(res.Spaces))
	}
}
