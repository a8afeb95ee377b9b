package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/qs3c/mini_tweeter_server/config"
	"github.com/qs3c/mini_tweeter_server/internal/pkg/metrics"
)

const (
	JobQuotaCleanup  = "quota_cleanup"
	JobPaymentExpiry = "payment_expiry"

	defaultQuotaCleanupSpec  = "@daily"
	defaultPaymentExpirySpec = "@every 15m"
	jobTimeout               = 5 * time.Minute
)

// QuotaCleaner 清理过期配额记录
type QuotaCleaner interface {
	CleanupBefore(ctx context.Context, retentionDays int, dryRun bool) (int64, error)
}

// PaymentExpirer 取消超时未完成的支付
type PaymentExpirer interface {
	ExpirePending(ctx context.Context, dryRun bool) (int64, error)
}

type Service struct {
	quotas   QuotaCleaner
	payments PaymentExpirer
	metrics  *metrics.Metrics
	logger   zerolog.Logger
	cfg      config.Config
	cron     *cron.Cron
}

func NewService(
	quotas QuotaCleaner,
	payments PaymentExpirer,
	m *metrics.Metrics,
	logger zerolog.Logger,
	cfg *config.Config,
) *Service {
	return &Service{
		quotas:   quotas,
		payments: payments,
		metrics:  m,
		logger:   logger.With().Str("component", "cron").Logger(),
		cfg:      *cfg,
		cron:     cron.New(cron.WithLocation(time.UTC)),
	}
}

// Start 注册并启动定时任务
func (s *Service) Start() error {
	quotaSpec := s.cfg.Cron.QuotaCleanupSpec
	if quotaSpec == "" {
		quotaSpec = defaultQuotaCleanupSpec
	}
	paymentSpec := s.cfg.Cron.PaymentExpirySpec
	if paymentSpec == "" {
		paymentSpec = defaultPaymentExpirySpec
	}

	if _, err := s.cron.AddFunc(quotaSpec, s.scheduled(s.CleanupQuotas)); err != nil {
		return fmt.Errorf("schedule %s: %w", JobQuotaCleanup, err)
	}
	if _, err := s.cron.AddFunc(paymentSpec, s.scheduled(s.ExpirePayments)); err != nil {
		return fmt.Errorf("schedule %s: %w", JobPaymentExpiry, err)
	}

	s.cron.Start()
	s.logger.Info().
		Str("quota_cleanup", quotaSpec).
		Str("payment_expiry", paymentSpec).
		Msg("cron service started")
	return nil
}

// Stop 停止调度并等待正在执行的任务结束
func (s *Service) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
		s.logger.Info().Msg("cron service stopped")
	case <-ctx.Done():
		s.logger.Warn().Msg("cron service stop timed out")
	}
}

func (s *Service) scheduled(fn func(ctx context.Context, dryRun bool) (int64, error)) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		_, _ = fn(ctx, false)
	}
}

// CleanupQuotas 删除超出保留期的配额记录
func (s *Service) CleanupQuotas(ctx context.Context, dryRun bool) (int64, error) {
	return s.run(ctx, JobQuotaCleanup, dryRun, func(ctx context.Context) (int64, error) {
		return s.quotas.CleanupBefore(ctx, s.cfg.Quota.RetentionDays, dryRun)
	})
}

// ExpirePayments 将超时的 Pending 支付标记为 Cancelled
func (s *Service) ExpirePayments(ctx context.Context, dryRun bool) (int64, error) {
	return s.run(ctx, JobPaymentExpiry, dryRun, func(ctx context.Context) (int64, error) {
		return s.payments.ExpirePending(ctx, dryRun)
	})
}

func (s *Service) run(ctx context.Context, job string, dryRun bool, fn func(context.Context) (int64, error)) (int64, error) {
	start := time.Now()
	affected, err := fn(ctx)
	s.metrics.ObserveJobRun(job, err == nil)

	if err != nil {
		s.logger.Error().Err(err).Str("job", job).Msg("cron job failed")
		return 0, fmt.Errorf("%s: %w", job, err)
	}

	s.logger.Info().
		Str("job", job).
		Bool("dry_run", dryRun).
		Int64("affected", affected).
		Dur("elapsed", time.Since(start)).
		Msg("cron job finished")
	return affected, nil
}
