package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/qs3c/mini_tweeter_server/internal/model"
	"github.com/qs3c/mini_tweeter_server/internal/repository"
	"github.com/qs3c/mini_tweeter_server/internal/testutil"
)

var fixedNow = time.Date(2024, 5, 20, 15, 0, 0, 0, time.UTC)

func setupQuotaService(t *testing.T) (*QuotaService, *gorm.DB, func()) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	service := NewQuotaService(repository.NewQuotaRepository(db), testConfig())
	service.now = func() time.Time { return fixedNow }

	cleanup := func() {
		testutil.CleanupTestDB(t, db)
	}

	return service, db, cleanup
}

func TestQuotaService_CheckQuota(t *testing.T) {
	service, db, cleanup := setupQuotaService(t)
	defer cleanup()

	today := model.QuotaDate(fixedNow)

	fresh := testutil.TestUser(t, db)
	ok, err := service.CheckQuota(context.Background(), fresh.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	partial := testutil.TestUser(t, db)
	testutil.TestQuota(t, db, partial.ID, today, 2, false)
	ok, err = service.CheckQuota(context.Background(), partial.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	exhausted := testutil.TestUser(t, db)
	testutil.TestQuota(t, db, exhausted.ID, today, 3, false)
	ok, err = service.CheckQuota(context.Background(), exhausted.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	unlimited := testutil.TestUser(t, db)
	testutil.TestQuota(t, db, unlimited.ID, today, 50, true)
	ok, err = service.CheckQuota(context.Background(), unlimited.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	// 昨天的记录不影响今天
	yesterday := testutil.TestUser(t, db)
	testutil.TestQuota(t, db, yesterday.ID, model.QuotaDate(fixedNow.AddDate(0, 0, -1)), 3, false)
	ok, err = service.CheckQuota(context.Background(), yesterday.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestQuotaService_Consume_StopsAtLimit(t *testing.T) {
	service, db, cleanup := setupQuotaService(t)
	defer cleanup()

	user := testutil.TestUser(t, db)

	for i := 0; i < 3; i++ {
		require.NoError(t, service.Consume(context.Background(), db, user.ID))
	}
	err := service.Consume(context.Background(), db, user.ID)
	assert.Equal(t, ErrQuotaExceeded, err)

	info, err := service.GetQuotaInfo(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, info.TweetsCount)
	assert.Equal(t, 0, info.Remaining)
}

func TestQuotaService_Consume_Unlimited(t *testing.T) {
	service, db, cleanup := setupQuotaService(t)
	defer cleanup()

	user := testutil.TestUser(t, db)
	require.NoError(t, service.GrantUnlimited(context.Background(), nil, user.ID))

	for i := 0; i < 5; i++ {
		require.NoError(t, service.Consume(context.Background(), db, user.ID))
	}

	info, err := service.GetQuotaInfo(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, info.TweetsCount)
	assert.True(t, info.HasUnlimited)
	assert.Equal(t, -1, info.Remaining)
}

func TestQuotaService_Consume_NoLimitConfigured(t *testing.T) {
	service, db, cleanup := setupQuotaService(t)
	defer cleanup()
	service.cfg.Quota.DailyTweetLimit = 0

	user := testutil.TestUser(t, db)
	for i := 0; i < 10; i++ {
		require.NoError(t, service.Consume(context.Background(), db, user.ID))
	}

	ok, err := service.CheckQuota(context.Background(), user.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestQuotaService_GetQuotaInfo_NoRecord(t *testing.T) {
	service, db, cleanup := setupQuotaService(t)
	defer cleanup()

	user := testutil.TestUser(t, db)

	info, err := service.GetQuotaInfo(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "2024-05-20", info.Date)
	assert.Equal(t, 0, info.TweetsCount)
	assert.Equal(t, 3, info.DailyLimit)
	assert.Equal(t, 3, info.Remaining)
	assert.False(t, info.HasUnlimited)
}

func TestQuotaService_CleanupBefore(t *testing.T) {
	service, db, cleanup := setupQuotaService(t)
	defer cleanup()

	user := testutil.TestUser(t, db)
	testutil.TestQuota(t, db, user.ID, model.QuotaDate(fixedNow.AddDate(0, 0, -40)), 1, false)
	testutil.TestQuota(t, db, user.ID, model.QuotaDate(fixedNow.AddDate(0, 0, -31)), 1, false)
	testutil.TestQuota(t, db, user.ID, model.QuotaDate(fixedNow.AddDate(0, 0, -5)), 1, false)

	count, err := service.CleanupBefore(context.Background(), 30, true)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	deleted, err := service.CleanupBefore(context.Background(), 30, false)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	var remaining int64
	require.NoError(t, db.Model(&model.UserTweetQuota{}).Count(&remaining).Error)
	assert.Equal(t, int64(1), remaining)
}
