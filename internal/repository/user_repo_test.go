package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/qs3c/mini_tweeter_server/internal/model"
	"github.com/qs3c/mini_tweeter_server/internal/testutil"
)

func TestUserRepository_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewUserRepository(db)
	ctx := context.Background()

	user := &model.User{
		Username:     "alice",
		Email:        "alice@example.com",
		FirstName:    "Alice",
		LastName:     "Liddell",
		PasswordHash: "hash",
	}
	require.NoError(t, repo.Create(ctx, user))
	assert.NotZero(t, user.ID)

	found, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", found.Username)
	assert.Equal(t, "Alice", found.FirstName)
}

func TestUserRepository_Create_DuplicateEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewUserRepository(db)
	testutil.TestUser(t, db, testutil.WithEmail("dup@example.com"))

	err := repo.Create(context.Background(), &model.User{
		Username:     "other",
		Email:        "dup@example.com",
		FirstName:    "O",
		LastName:     "T",
		PasswordHash: "hash",
	})
	assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey))
}

func TestUserRepository_GetByEmailOrUsername(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewUserRepository(db)
	ctx := context.Background()
	user := testutil.TestUser(t, db, testutil.WithUsername("Bob"), testutil.WithEmail("Bob@Example.com"))

	t.Run("by email case insensitive", func(t *testing.T) {
		found, err := repo.GetByEmailOrUsername(ctx, "bob@example.com")
		require.NoError(t, err)
		assert.Equal(t, user.ID, found.ID)
	})

	t.Run("by username case insensitive", func(t *testing.T) {
		found, err := repo.GetByEmailOrUsername(ctx, "BOB")
		require.NoError(t, err)
		assert.Equal(t, user.ID, found.ID)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := repo.GetByEmailOrUsername(ctx, "nobody")
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})
}

func TestUserRepository_Exists(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewUserRepository(db)
	ctx := context.Background()
	user := testutil.TestUser(t, db, testutil.WithUsername("carol"), testutil.WithEmail("carol@example.com"))

	exists, err := repo.ExistsByEmail(ctx, "CAROL@example.com", 0)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByEmail(ctx, "carol@example.com", user.ID)
	require.NoError(t, err)
	assert.False(t, exists, "own email is excluded")

	exists, err = repo.ExistsByUsername(ctx, "carol", 0)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByUsername(ctx, "dave", 0)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestUserRepository_UpdateFields(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewUserRepository(db)
	ctx := context.Background()
	user := testutil.TestUser(t, db)

	require.NoError(t, repo.UpdateFields(ctx, user.ID, map[string]interface{}{"first_name": "Changed"}))

	found, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Changed", found.FirstName)
}

func TestUserRepository_Delete_RestrictedByTweets(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewUserRepository(db)
	ctx := context.Background()
	user := testutil.TestUser(t, db)
	testutil.TestTweet(t, db, user.ID)

	err := repo.Delete(ctx, user.ID)
	assert.Error(t, err, "foreign key must restrict deleting a user with tweets")

	_, err = repo.GetByID(ctx, user.ID)
	assert.NoError(t, err)
}

func TestUserRepository_GetByIDs(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewUserRepository(db)
	u1 := testutil.TestUser(t, db)
	u2 := testutil.TestUser(t, db)

	users, err := repo.GetByIDs(context.Background(), []int64{u1.ID, u2.ID, 9999})
	require.NoError(t, err)
	assert.Len(t, users, 2)
	assert.Equal(t, u2.Username, users[u2.ID].Username)
}
