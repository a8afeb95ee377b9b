package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/qs3c/mini_tweeter_server/internal/model"
	"github.com/qs3c/mini_tweeter_server/internal/model/dto"
	"github.com/qs3c/mini_tweeter_server/internal/pkg/metrics"
	"github.com/qs3c/mini_tweeter_server/internal/repository"
)

var ErrTweetNotFound = errors.New("推文不存在")

type TweetService struct {
	tweetRepo       *repository.TweetRepository
	commentRepo     *repository.CommentRepository
	interactionRepo *repository.InteractionRepository
	quotaService    *QuotaService
	metrics         *metrics.Metrics
}

func NewTweetService(
	tweetRepo *repository.TweetRepository,
	commentRepo *repository.CommentRepository,
	interactionRepo *repository.InteractionRepository,
	quotaService *QuotaService,
	m *metrics.Metrics,
) *TweetService {
	return &TweetService{
		tweetRepo:       tweetRepo,
		commentRepo:     commentRepo,
		interactionRepo: interactionRepo,
		quotaService:    quotaService,
		metrics:         m,
	}
}

// Create 发推，配额扣减与插入在同一事务中完成
func (s *TweetService) Create(ctx context.Context, userID int64, req *dto.CreateTweetRequest) (*dto.TweetItem, error) {
	message, err := normalizeMessage(req.Message)
	if err != nil {
		return nil, err
	}

	tweet := &model.Tweet{
		UserID:  userID,
		Message: message,
	}

	err = s.tweetRepo.Transaction(ctx, func(tx *gorm.DB) error {
		if err := s.quotaService.Consume(ctx, tx, userID); err != nil {
			return err
		}
		return s.tweetRepo.WithTx(tx).Create(ctx, tweet)
	})
	if err != nil {
		if errors.Is(err, ErrQuotaExceeded) {
			s.metrics.ObserveQuotaRejection()
			return nil, ErrQuotaExceeded
		}
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("create tweet: %w", err)
	}
	s.metrics.ObserveTweetCreated()

	return s.Get(ctx, userID, tweet.ID)
}

// Get 获取推文详情，viewerID > 0 时附带点赞和转发状态
func (s *TweetService) Get(ctx context.Context, viewerID, tweetID int64) (*dto.TweetItem, error) {
	tweet, err := s.tweetRepo.GetByIDWithUser(ctx, tweetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTweetNotFound
		}
		return nil, err
	}

	items := []*dto.TweetItem{buildTweetItem(tweet)}
	if err := s.fillViewerState(ctx, viewerID, items); err != nil {
		return nil, err
	}
	return items[0], nil
}

// List 分页获取推文，指定 user_id 时只看该用户
func (s *TweetService) List(ctx context.Context, viewerID int64, req *dto.TweetListRequest) (*dto.TweetListResponse, error) {
	page, pageSize := req.Normalize()

	tweets, total, err := s.tweetRepo.List(ctx, req.UserID, page, pageSize)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.TweetItem, 0, len(tweets))
	for _, t := range tweets {
		items = append(items, buildTweetItem(t))
	}
	if err := s.fillViewerState(ctx, viewerID, items); err != nil {
		return nil, err
	}

	return &dto.TweetListResponse{
		Total:    total,
		Page:     page,
		PageSize: pageSize,
		Items:    items,
	}, nil
}

// Update 编辑推文，仅作者可操作
func (s *TweetService) Update(ctx context.Context, userID, tweetID int64, req *dto.UpdateTweetRequest) (*dto.TweetItem, error) {
	message, err := normalizeMessage(req.Message)
	if err != nil {
		return nil, err
	}

	if _, err := s.getOwned(ctx, userID, tweetID); err != nil {
		return nil, err
	}

	if err := s.tweetRepo.UpdateMessage(ctx, tweetID, message); err != nil {
		return nil, fmt.Errorf("update tweet: %w", err)
	}
	return s.Get(ctx, userID, tweetID)
}

// Delete 删除推文及其评论，并清理指向它们的点赞和转发
func (s *TweetService) Delete(ctx context.Context, userID, tweetID int64) error {
	if _, err := s.getOwned(ctx, userID, tweetID); err != nil {
		return err
	}

	return s.tweetRepo.Transaction(ctx, func(tx *gorm.DB) error {
		interactions := s.interactionRepo.WithTx(tx)

		commentIDs, err := s.commentRepo.WithTx(tx).ListIDsByTweetIDs(ctx, []int64{tweetID})
		if err != nil {
			return err
		}
		if err := interactions.DeleteByTargets(ctx, model.TargetComment, commentIDs); err != nil {
			return err
		}
		if err := interactions.DeleteByTargets(ctx, model.TargetTweet, []int64{tweetID}); err != nil {
			return err
		}
		return s.tweetRepo.WithTx(tx).Delete(ctx, tweetID)
	})
}

func (s *TweetService) getOwned(ctx context.Context, userID, tweetID int64) (*model.Tweet, error) {
	tweet, err := s.tweetRepo.GetByID(ctx, tweetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTweetNotFound
		}
		return nil, err
	}
	if tweet.UserID != userID {
		return nil, ErrForbidden
	}
	return tweet, nil
}

func (s *TweetService) fillViewerState(ctx context.Context, viewerID int64, items []*dto.TweetItem) error {
	if viewerID <= 0 || len(items) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}

	liked, err := s.interactionRepo.ExistingTargets(ctx, repository.KindLike, viewerID, model.TargetTweet, ids)
	if err != nil {
		return err
	}
	retweeted, err := s.interactionRepo.ExistingTargets(ctx, repository.KindRetweet, viewerID, model.TargetTweet, ids)
	if err != nil {
		return err
	}

	for _, item := range items {
		item.Liked = liked[item.ID]
		item.Retweeted = retweeted[item.ID]
	}
	return nil
}
