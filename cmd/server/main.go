package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/qs3c/mini_tweeter_server/config"
	"github.com/qs3c/mini_tweeter_server/internal/api"
	"github.com/qs3c/mini_tweeter_server/internal/api/handler"
	"github.com/qs3c/mini_tweeter_server/internal/database"
	"github.com/qs3c/mini_tweeter_server/internal/pkg/cron"
	"github.com/qs3c/mini_tweeter_server/internal/pkg/logger"
	"github.com/qs3c/mini_tweeter_server/internal/pkg/metrics"
	"github.com/qs3c/mini_tweeter_server/internal/pkg/oauth"
	"github.com/qs3c/mini_tweeter_server/internal/repository"
	"github.com/qs3c/mini_tweeter_server/internal/service"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	// 加载配置
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log)

	// 初始化数据库
	db, err := database.Open(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Database.Driver).Msg("failed to connect database")
	}
	log.Info().Str("driver", cfg.Database.Driver).Msg("database connected")

	m := metrics.New()

	// 初始化 Repository
	userRepo := repository.NewUserRepository(db)
	tweetRepo := repository.NewTweetRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	interactionRepo := repository.NewInteractionRepository(db)
	quotaRepo := repository.NewQuotaRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)

	// Google 登录未配置时返回明确错误
	var google oauth.GoogleVerifier
	if g := cfg.OAuth.Google; g.ClientID != "" {
		google = oauth.NewGoogleOAuth(g.ClientID, g.ClientSecret, g.RedirectURI)
	} else {
		log.Warn().Msg("google sign-in disabled: oauth.google.client_id is empty")
	}

	// 初始化 Service
	authService := service.NewAuthService(userRepo, google, cfg)
	quotaService := service.NewQuotaService(quotaRepo, cfg)
	userService := service.NewUserService(userRepo, tweetRepo, commentRepo, interactionRepo, quotaRepo, paymentRepo)
	tweetService := service.NewTweetService(tweetRepo, commentRepo, interactionRepo, quotaService, m)
	commentService := service.NewCommentService(commentRepo, tweetRepo, interactionRepo)
	interactionService := service.NewInteractionService(interactionRepo, m)
	paymentService := service.NewPaymentService(paymentRepo, quotaService, cfg)

	// 初始化 Router
	router := api.NewRouter(api.Handlers{
		Auth:        handler.NewAuthHandler(authService),
		User:        handler.NewUserHandler(userService),
		Quota:       handler.NewQuotaHandler(quotaService),
		Tweet:       handler.NewTweetHandler(tweetService, commentService),
		Comment:     handler.NewCommentHandler(commentService),
		Interaction: handler.NewInteractionHandler(interactionService),
		Payment:     handler.NewPaymentHandler(paymentService),
		Health:      handler.NewHealthHandler(db),
	}, quotaService, m, log, cfg)
	engine, err := router.Setup()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to set up router")
	}

	// 定时任务
	var jobs *cron.Service
	if cfg.Cron.Enabled {
		jobs = cron.NewService(quotaService, paymentService, m, log, cfg)
		if err := jobs.Start(); err != nil {
			log.Fatal().Err(err).Msg("failed to start cron service")
		}
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	timeout := time.Duration(cfg.Server.ShutdownTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
	if jobs != nil {
		jobs.Stop(ctx)
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info().Msg("server stopped")
}
