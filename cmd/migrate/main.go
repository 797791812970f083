package main

import (
	"context"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/sir_venger/chunkload/internal/config"
	meta "github.com/sir_venger/chunkload/internal/repo"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	if meta.IsMemory(cfg.MetaDSN) {
		logger.Info("memory meta store selected, skipping migrations")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := meta.ApplyMigrations(ctx, cfg.MetaDSN); err != nil {
		logger.Fatal("apply migrations", zap.Error(err))
	}

	logger.Info("migrations applied")
}
