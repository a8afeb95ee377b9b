package service

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/qs3c/mini_tweeter_server/internal/model"
	"github.com/qs3c/mini_tweeter_server/internal/pkg/metrics"
	"github.com/qs3c/mini_tweeter_server/internal/repository"
	dbtest "github.com/qs3c/mini_tweeter_server/internal/testutil"
)

func setupInteractionService(t *testing.T) (*InteractionService, *metrics.Metrics, *gorm.DB, func()) {
	t.Helper()

	db := dbtest.SetupTestDB(t)
	m := metrics.New()
	service := NewInteractionService(repository.NewInteractionRepository(db), m)

	cleanup := func() {
		dbtest.CleanupTestDB(t, db)
	}

	return service, m, db, cleanup
}

func TestInteractionService_LikeUnlike(t *testing.T) {
	service, m, db, cleanup := setupInteractionService(t)
	defer cleanup()

	author := dbtest.TestUser(t, db)
	fan := dbtest.TestUser(t, db)
	tweet := dbtest.TestTweet(t, db, author.ID)
	target := TargetOf(model.TargetTweet, tweet.ID)

	state, err := service.Like(context.Background(), fan.ID, target)
	require.NoError(t, err)
	assert.True(t, state.Liked)
	assert.Equal(t, 1, state.LikesCount)
	assert.Equal(t, "tweet", state.TargetType)

	_, err = service.Like(context.Background(), fan.ID, target)
	assert.Equal(t, ErrAlreadyLiked, err)

	var rows int64
	require.NoError(t, db.Model(&model.Like{}).Count(&rows).Error)
	assert.Equal(t, int64(1), rows)

	state, err = service.Unlike(context.Background(), fan.ID, target)
	require.NoError(t, err)
	assert.False(t, state.Liked)
	assert.Equal(t, 0, state.LikesCount)

	_, err = service.Unlike(context.Background(), fan.ID, target)
	assert.Equal(t, ErrNotLiked, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Interactions.WithLabelValues("like", "tweet")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Interactions.WithLabelValues("unlike", "tweet")))
}

func TestInteractionService_Unlike_FloorsAtZero(t *testing.T) {
	service, _, db, cleanup := setupInteractionService(t)
	defer cleanup()

	author := dbtest.TestUser(t, db)
	tweet := dbtest.TestTweet(t, db, author.ID, dbtest.WithCounts(0, 0))
	// 计数与记录不一致时也不会出现负数
	dbtest.TestLike(t, db, author.ID, model.TargetTweet, tweet.ID)

	state, err := service.Unlike(context.Background(), author.ID, TargetOf(model.TargetTweet, tweet.ID))
	require.NoError(t, err)
	assert.Equal(t, 0, state.LikesCount)
}

func TestInteractionService_RetweetComment(t *testing.T) {
	service, _, db, cleanup := setupInteractionService(t)
	defer cleanup()

	author := dbtest.TestUser(t, db)
	fan := dbtest.TestUser(t, db)
	tweet := dbtest.TestTweet(t, db, author.ID)
	comment := dbtest.TestComment(t, db, author.ID, tweet.ID, "quotable")
	target := TargetOf(model.TargetComment, comment.ID)

	state, err := service.Retweet(context.Background(), fan.ID, target)
	require.NoError(t, err)
	assert.True(t, state.Retweeted)
	assert.Equal(t, 1, state.RetweetsCount)
	assert.Equal(t, "comment", state.TargetType)

	_, err = service.Retweet(context.Background(), fan.ID, target)
	assert.Equal(t, ErrAlreadyRetweeted, err)

	// 点赞与转发互不影响
	_, err = service.Like(context.Background(), fan.ID, target)
	require.NoError(t, err)

	state, err = service.Unretweet(context.Background(), fan.ID, target)
	require.NoError(t, err)
	assert.Equal(t, 0, state.RetweetsCount)

	_, err = service.Unretweet(context.Background(), fan.ID, target)
	assert.Equal(t, ErrNotRetweeted, err)

	var stored model.Comment
	require.NoError(t, db.First(&stored, comment.ID).Error)
	assert.Equal(t, 1, stored.LikesCount)
	assert.Equal(t, 0, stored.RetweetsCount)
}

func TestInteractionService_TargetErrors(t *testing.T) {
	service, _, db, cleanup := setupInteractionService(t)
	defer cleanup()

	user := dbtest.TestUser(t, db)

	_, err := service.Like(context.Background(), user.ID, TargetOf(model.TargetTweet, 99999))
	assert.Equal(t, ErrTargetNotFound, err)

	_, err = service.Unretweet(context.Background(), user.ID, TargetOf(model.TargetComment, 99999))
	assert.Equal(t, ErrTargetNotFound, err)

	_, err = service.Like(context.Background(), user.ID, TargetOf(model.TargetType("user"), 1))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestInteractionService_DeletedUser(t *testing.T) {
	service, _, db, cleanup := setupInteractionService(t)
	defer cleanup()

	author := dbtest.TestUser(t, db)
	tweet := dbtest.TestTweet(t, db, author.ID)
	target := TargetOf(model.TargetTweet, tweet.ID)

	_, err := service.Like(context.Background(), 999999, target)
	assert.Equal(t, ErrUserNotFound, err)

	_, err = service.Retweet(context.Background(), 999999, target)
	assert.Equal(t, ErrUserNotFound, err)

	// 事务回滚，计数不变
	var stored model.Tweet
	require.NoError(t, db.First(&stored, tweet.ID).Error)
	assert.Equal(t, 0, stored.LikesCount)
	assert.Equal(t, 0, stored.RetweetsCount)
}
