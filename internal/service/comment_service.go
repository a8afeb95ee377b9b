package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/qs3c/mini_tweeter_server/internal/model"
	"github.com/qs3c/mini_tweeter_server/internal/model/dto"
	"github.com/qs3c/mini_tweeter_server/internal/repository"
)

var ErrCommentNotFound = errors.New("评论不存在")

type CommentService struct {
	commentRepo     *repository.CommentRepository
	tweetRepo       *repository.TweetRepository
	interactionRepo *repository.InteractionRepository
}

func NewCommentService(
	commentRepo *repository.CommentRepository,
	tweetRepo *repository.TweetRepository,
	interactionRepo *repository.InteractionRepository,
) *CommentService {
	return &CommentService{
		commentRepo:     commentRepo,
		tweetRepo:       tweetRepo,
		interactionRepo: interactionRepo,
	}
}

// Create 发表评论
func (s *CommentService) Create(ctx context.Context, userID int64, req *dto.CreateCommentRequest) (*dto.CommentItem, error) {
	message, err := normalizeMessage(req.Message)
	if err != nil {
		return nil, err
	}

	if _, err := s.tweetRepo.GetByID(ctx, req.TweetID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTweetNotFound
		}
		return nil, err
	}

	comment := &model.Comment{
		UserID:  userID,
		TweetID: req.TweetID,
		Message: message,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		// 推文在校验之后被删除，或作者账号已注销
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return nil, s.missingReference(ctx, req.TweetID)
		}
		return nil, fmt.Errorf("create comment: %w", err)
	}

	return s.Get(ctx, userID, comment.ID)
}

// Get 获取评论详情
func (s *CommentService) Get(ctx context.Context, viewerID, commentID int64) (*dto.CommentItem, error) {
	comment, err := s.commentRepo.GetByIDWithUser(ctx, commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}

	items := []*dto.CommentItem{buildCommentItem(comment)}
	if err := s.fillViewerState(ctx, viewerID, items); err != nil {
		return nil, err
	}
	return items[0], nil
}

// List 分页获取评论，指定 tweet_id 时只取该推文下的评论
func (s *CommentService) List(ctx context.Context, viewerID int64, req *dto.CommentListRequest) (*dto.CommentListResponse, error) {
	page, pageSize := req.Normalize()

	comments, total, err := s.commentRepo.List(ctx, req.TweetID, page, pageSize)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.CommentItem, 0, len(comments))
	for _, c := range comments {
		items = append(items, buildCommentItem(c))
	}
	if err := s.fillViewerState(ctx, viewerID, items); err != nil {
		return nil, err
	}

	return &dto.CommentListResponse{
		Total:    total,
		Page:     page,
		PageSize: pageSize,
		Items:    items,
	}, nil
}

// ListByTweet 获取某条推文的评论，推文不存在时返回 ErrTweetNotFound
func (s *CommentService) ListByTweet(ctx context.Context, viewerID, tweetID int64, page dto.PageRequest) (*dto.CommentListResponse, error) {
	if _, err := s.tweetRepo.GetByID(ctx, tweetID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTweetNotFound
		}
		return nil, err
	}
	return s.List(ctx, viewerID, &dto.CommentListRequest{PageRequest: page, TweetID: tweetID})
}

// Update 编辑评论，仅作者可操作
func (s *CommentService) Update(ctx context.Context, userID, commentID int64, req *dto.UpdateCommentRequest) (*dto.CommentItem, error) {
	message, err := normalizeMessage(req.Message)
	if err != nil {
		return nil, err
	}

	if _, err := s.getOwned(ctx, userID, commentID); err != nil {
		return nil, err
	}

	if err := s.commentRepo.UpdateMessage(ctx, commentID, message); err != nil {
		return nil, fmt.Errorf("update comment: %w", err)
	}
	return s.Get(ctx, userID, commentID)
}

// Delete 删除评论及指向它的点赞和转发
func (s *CommentService) Delete(ctx context.Context, userID, commentID int64) error {
	if _, err := s.getOwned(ctx, userID, commentID); err != nil {
		return err
	}

	return s.interactionRepo.Transaction(ctx, func(tx *gorm.DB) error {
		if err := s.interactionRepo.WithTx(tx).DeleteByTargets(ctx, model.TargetComment, []int64{commentID}); err != nil {
			return err
		}
		return s.commentRepo.WithTx(tx).Delete(ctx, commentID)
	})
}

func (s *CommentService) getOwned(ctx context.Context, userID, commentID int64) (*model.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}
	if comment.UserID != userID {
		return nil, ErrForbidden
	}
	return comment, nil
}

func (s *CommentService) fillViewerState(ctx context.Context, viewerID int64, items []*dto.CommentItem) error {
	if viewerID <= 0 || len(items) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}

	liked, err := s.interactionRepo.ExistingTargets(ctx, repository.KindLike, viewerID, model.TargetComment, ids)
	if err != nil {
		return err
	}
	retweeted, err := s.interactionRepo.ExistingTargets(ctx, repository.KindRetweet, viewerID, model.TargetComment, ids)
	if err != nil {
		return err
	}

	for _, item := range items {
		item.Liked = liked[item.ID]
		item.Retweeted = retweeted[item.ID]
	}
	return nil
}

// missingReference 外键冲突时区分是推文还是作者不存在
func (s *CommentService) missingReference(ctx context.Context, tweetID int64) error {
	if _, err := s.tweetRepo.GetByID(ctx, tweetID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTweetNotFound
		}
		return err
	}
	return ErrUserNotFound
}
