package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/qs3c/mini_tweeter_server/internal/model"
	"github.com/qs3c/mini_tweeter_server/internal/testutil"
)

func TestPaymentRepository_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewPaymentRepository(db)
	ctx := context.Background()
	user := testutil.TestUser(t, db)

	payment := &model.Payment{UserID: user.ID, TransactionID: "txn_abc", Amount: 12.5, Currency: "EUR"}
	require.NoError(t, repo.Create(ctx, payment))

	found, err := repo.GetByID(ctx, payment.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentPending, found.Status)
	assert.Equal(t, 12.5, found.Amount)
	assert.Equal(t, "EUR", found.Currency)
}

func TestPaymentRepository_Create_DuplicateTransaction(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewPaymentRepository(db)
	user := testutil.TestUser(t, db)
	testutil.TestPayment(t, db, user.ID, testutil.WithTransactionID("txn_dup"))

	err := repo.Create(context.Background(), &model.Payment{UserID: user.ID, TransactionID: "txn_dup", Amount: 1, Currency: "USD"})
	assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey))
}

func TestPaymentRepository_GetByTransactionID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewPaymentRepository(db)
	ctx := context.Background()
	user := testutil.TestUser(t, db)
	payment := testutil.TestPayment(t, db, user.ID, testutil.WithTransactionID("pi_lookup"))

	found, err := repo.GetByTransactionID(ctx, "pi_lookup")
	require.NoError(t, err)
	assert.Equal(t, payment.ID, found.ID)

	_, err = repo.GetByTransactionID(ctx, "pi_absent")
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestPaymentRepository_UpdateStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewPaymentRepository(db)
	ctx := context.Background()
	user := testutil.TestUser(t, db)
	payment := testutil.TestPayment(t, db, user.ID)

	n, err := repo.UpdateStatus(ctx, payment.ID, model.PaymentPending, model.PaymentCompleted, map[string]interface{}{"charge_id": "ch_1"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	found, err := repo.GetByID(ctx, payment.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentCompleted, found.Status)
	assert.Equal(t, "ch_1", found.ProviderResponse["charge_id"])

	// 状态已变化，条件更新不再生效
	n, err = repo.UpdateStatus(ctx, payment.ID, model.PaymentPending, model.PaymentFailed, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestPaymentRepository_ListByUserID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewPaymentRepository(db)
	ctx := context.Background()
	user := testutil.TestUser(t, db)
	other := testutil.TestUser(t, db)
	testutil.TestPayment(t, db, user.ID)
	testutil.TestPayment(t, db, user.ID)
	testutil.TestPayment(t, db, other.ID)

	payments, total, err := repo.ListByUserID(ctx, user.ID, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, payments, 2)

	exists, err := repo.ExistsByUserID(ctx, other.ID)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestPaymentRepository_CancelPendingBefore(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewPaymentRepository(db)
	ctx := context.Background()
	user := testutil.TestUser(t, db)
	old := time.Now().Add(-48 * time.Hour)

	stale := testutil.TestPayment(t, db, user.ID, testutil.WithCreatedAt(old))
	done := testutil.TestPayment(t, db, user.ID, testutil.WithCreatedAt(old), testutil.WithStatus(model.PaymentCompleted))
	fresh := testutil.TestPayment(t, db, user.ID)

	cutoff := time.Now().Add(-24 * time.Hour)
	count, err := repo.CountPendingBefore(ctx, cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	n, err := repo.CancelPendingBefore(ctx, cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	for id, want := range map[int64]model.PaymentStatus{
		stale.ID: model.PaymentCancelled,
		done.ID:  model.PaymentCompleted,
		fresh.ID: model.PaymentPending,
	} {
		found, err := repo.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, want, found.Status)
	}
}
