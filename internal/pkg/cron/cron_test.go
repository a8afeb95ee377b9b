package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/mini_tweeter_server/config"
	"github.com/qs3c/mini_tweeter_server/internal/model"
	"github.com/qs3c/mini_tweeter_server/internal/pkg/metrics"
	"github.com/qs3c/mini_tweeter_server/internal/repository"
	"github.com/qs3c/mini_tweeter_server/internal/service"
	"github.com/qs3c/mini_tweeter_server/internal/testutil"
)

type fakeCleaner struct {
	retention int
	dryRun    bool
	affected  int64
	err       error
}

func (f *fakeCleaner) CleanupBefore(_ context.Context, retentionDays int, dryRun bool) (int64, error) {
	f.retention = retentionDays
	f.dryRun = dryRun
	return f.affected, f.err
}

type fakeExpirer struct {
	calls    int
	affected int64
	err      error
}

func (f *fakeExpirer) ExpirePending(context.Context, bool) (int64, error) {
	f.calls++
	return f.affected, f.err
}

func testConfig() *config.Config {
	return &config.Config{
		Quota:   config.QuotaConfig{DailyTweetLimit: 3, RetentionDays: 7},
		Payment: config.PaymentConfig{PendingTTLHours: 24, DefaultCurrency: "USD"},
	}
}

func TestService_CleanupQuotas(t *testing.T) {
	cleaner := &fakeCleaner{affected: 4}
	m := metrics.New()
	svc := NewService(cleaner, &fakeExpirer{}, m, zerolog.Nop(), testConfig())

	affected, err := svc.CleanupQuotas(context.Background(), true)

	require.NoError(t, err)
	assert.Equal(t, int64(4), affected)
	assert.Equal(t, 7, cleaner.retention)
	assert.True(t, cleaner.dryRun)
	assert.Equal(t, float64(1), promtest.ToFloat64(m.JobRuns.WithLabelValues(JobQuotaCleanup, "true")))
}

func TestService_JobFailure(t *testing.T) {
	expirer := &fakeExpirer{err: errors.New("db down")}
	m := metrics.New()
	svc := NewService(&fakeCleaner{}, expirer, m, zerolog.Nop(), testConfig())

	affected, err := svc.ExpirePayments(context.Background(), false)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), JobPaymentExpiry)
	assert.Zero(t, affected)
	assert.Equal(t, 1, expirer.calls)
	assert.Equal(t, float64(1), promtest.ToFloat64(m.JobRuns.WithLabelValues(JobPaymentExpiry, "false")))
}

func TestService_StartStop(t *testing.T) {
	t.Run("default schedules", func(t *testing.T) {
		svc := NewService(&fakeCleaner{}, &fakeExpirer{}, nil, zerolog.Nop(), testConfig())
		require.NoError(t, svc.Start())
		assert.Len(t, svc.cron.Entries(), 2)

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		svc.Stop(ctx)
	})

	t.Run("invalid schedule", func(t *testing.T) {
		cfg := testConfig()
		cfg.Cron.QuotaCleanupSpec = "not a schedule"
		svc := NewService(&fakeCleaner{}, &fakeExpirer{}, nil, zerolog.Nop(), cfg)

		err := svc.Start()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), JobQuotaCleanup)
	})
}

func TestService_WithDatabase(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	cfg := testConfig()
	quotaService := service.NewQuotaService(repository.NewQuotaRepository(db), cfg)
	paymentService := service.NewPaymentService(repository.NewPaymentRepository(db), quotaService, cfg)
	svc := NewService(quotaService, paymentService, nil, zerolog.Nop(), cfg)

	user := testutil.TestUser(t, db)
	old := time.Now().UTC().AddDate(0, 0, -30).Format("2006-01-02")
	testutil.TestQuota(t, db, user.ID, old, 2, false)
	testutil.TestQuota(t, db, user.ID, time.Now().UTC().Format("2006-01-02"), 1, false)
	stale := testutil.TestPayment(t, db, user.ID, testutil.WithCreatedAt(time.Now().Add(-48*time.Hour)))
	fresh := testutil.TestPayment(t, db, user.ID)

	affected, err := svc.CleanupQuotas(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	affected, err = svc.ExpirePayments(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	var got model.Payment
	require.NoError(t, db.First(&got, stale.ID).Error)
	assert.Equal(t, model.PaymentCancelled, got.Status)
	require.NoError(t, db.First(&got, fresh.ID).Error)
	assert.Equal(t, model.PaymentPending, got.Status)
}
