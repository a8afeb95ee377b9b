package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/qs3c/mini_tweeter_server/config"
	"github.com/qs3c/mini_tweeter_server/internal/database"
	"github.com/qs3c/mini_tweeter_server/internal/pkg/cron"
	"github.com/qs3c/mini_tweeter_server/internal/pkg/logger"
	"github.com/qs3c/mini_tweeter_server/internal/repository"
	"github.com/qs3c/mini_tweeter_server/internal/service"
)

var (
	dryRun        = flag.Bool("dry-run", true, "Only count affected rows, don't modify anything")
	cleanQuotas   = flag.Bool("clean-quotas", true, "Delete quota rows older than quota.retention_days")
	expirePending = flag.Bool("expire-payments", true, "Cancel pending payments older than payment.pending_ttl_hours")
	timeout       = flag.Duration("timeout", 5*time.Minute, "Overall timeout")
)

func main() {
	flag.Parse()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log)
	log.Info().Bool("dry_run", *dryRun).Msg("starting cleanup")

	// 一次性任务不做迁移
	cfg.Database.AutoMigrate = false
	db, err := database.Open(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}()

	quotaService := service.NewQuotaService(repository.NewQuotaRepository(db), cfg)
	paymentService := service.NewPaymentService(repository.NewPaymentRepository(db), quotaService, cfg)
	jobs := cron.NewService(quotaService, paymentService, nil, log, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	failed := false
	if *cleanQuotas {
		if _, err := jobs.CleanupQuotas(ctx, *dryRun); err != nil {
			failed = true
		}
	}
	if *expirePending {
		if _, err := jobs.ExpirePayments(ctx, *dryRun); err != nil {
			failed = true
		}
	}

	if failed {
		log.Error().Msg("cleanup finished with errors")
		cancel()
		os.Exit(1)
	}
	if *dryRun {
		log.Info().Msg("dry run complete, run with -dry-run=false to apply")
	}
}
