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

var (
	ErrAlreadyLiked     = errors.New("已经点过赞了")
	ErrNotLiked         = errors.New("尚未点赞")
	ErrAlreadyRetweeted = errors.New("已经转发过了")
	ErrNotRetweeted     = errors.New("尚未转发")
	ErrTargetNotFound   = errors.New("目标内容不存在")
	ErrInvalidTarget    = fmt.Errorf("%w: 不支持的目标类型", ErrInvalidInput)
)

// InteractionService 点赞与转发
type InteractionService struct {
	interactionRepo *repository.InteractionRepository
	metrics         *metrics.Metrics
}

func NewInteractionService(interactionRepo *repository.InteractionRepository, m *metrics.Metrics) *InteractionService {
	return &InteractionService{
		interactionRepo: interactionRepo,
		metrics:         m,
	}
}

// Like 点赞
func (s *InteractionService) Like(ctx context.Context, userID int64, target repository.TargetRef) (*dto.LikeState, error) {
	count, err := s.add(ctx, repository.KindLike, userID, target, ErrAlreadyLiked)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveInteraction("like", string(target.TargetType))
	return &dto.LikeState{
		TargetType: string(target.TargetType),
		TargetID:   target.TargetID,
		Liked:      true,
		LikesCount: count,
	}, nil
}

// Unlike 取消点赞
func (s *InteractionService) Unlike(ctx context.Context, userID int64, target repository.TargetRef) (*dto.LikeState, error) {
	count, err := s.remove(ctx, repository.KindLike, userID, target, ErrNotLiked)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveInteraction("unlike", string(target.TargetType))
	return &dto.LikeState{
		TargetType: string(target.TargetType),
		TargetID:   target.TargetID,
		Liked:      false,
		LikesCount: count,
	}, nil
}

// Retweet 转发
func (s *InteractionService) Retweet(ctx context.Context, userID int64, target repository.TargetRef) (*dto.RetweetState, error) {
	count, err := s.add(ctx, repository.KindRetweet, userID, target, ErrAlreadyRetweeted)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveInteraction("retweet", string(target.TargetType))
	return &dto.RetweetState{
		TargetType:    string(target.TargetType),
		TargetID:      target.TargetID,
		Retweeted:     true,
		RetweetsCount: count,
	}, nil
}

// Unretweet 取消转发
func (s *InteractionService) Unretweet(ctx context.Context, userID int64, target repository.TargetRef) (*dto.RetweetState, error) {
	count, err := s.remove(ctx, repository.KindRetweet, userID, target, ErrNotRetweeted)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveInteraction("unretweet", string(target.TargetType))
	return &dto.RetweetState{
		TargetType:    string(target.TargetType),
		TargetID:      target.TargetID,
		Retweeted:     false,
		RetweetsCount: count,
	}, nil
}

// add 插入互动并给目标计数加一，唯一索引冲突视为重复操作
func (s *InteractionService) add(ctx context.Context, kind repository.Kind, userID int64, target repository.TargetRef, errDup error) (int, error) {
	if !target.TargetType.Valid() {
		return 0, ErrInvalidTarget
	}

	var count int
	err := s.interactionRepo.Transaction(ctx, func(tx *gorm.DB) error {
		repo := s.interactionRepo.WithTx(tx)

		exists, err := repo.TargetExists(ctx, target)
		if err != nil {
			return err
		}
		if !exists {
			return ErrTargetNotFound
		}

		if err := repo.Create(ctx, kind, userID, target); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errDup
			}
			return err
		}
		if err := repo.IncrementCount(ctx, kind, target); err != nil {
			return err
		}

		count, err = repo.GetCount(ctx, kind, target)
		return err
	})
	if err != nil {
		return 0, mapInteractionError(err, kind)
	}
	return count, nil
}

// remove 删除互动并给目标计数减一，计数不会小于 0
func (s *InteractionService) remove(ctx context.Context, kind repository.Kind, userID int64, target repository.TargetRef, errMissing error) (int, error) {
	if !target.TargetType.Valid() {
		return 0, ErrInvalidTarget
	}

	var count int
	err := s.interactionRepo.Transaction(ctx, func(tx *gorm.DB) error {
		repo := s.interactionRepo.WithTx(tx)

		exists, err := repo.TargetExists(ctx, target)
		if err != nil {
			return err
		}
		if !exists {
			return ErrTargetNotFound
		}

		deleted, err := repo.Delete(ctx, kind, userID, target)
		if err != nil {
			return err
		}
		if deleted == 0 {
			return errMissing
		}
		if err := repo.DecrementCount(ctx, kind, target); err != nil {
			return err
		}

		count, err = repo.GetCount(ctx, kind, target)
		return err
	})
	if err != nil {
		return 0, mapInteractionError(err, kind)
	}
	return count, nil
}

func mapInteractionError(err error, kind repository.Kind) error {
	switch {
	case errors.Is(err, ErrTargetNotFound),
		errors.Is(err, ErrAlreadyLiked), errors.Is(err, ErrNotLiked),
		errors.Is(err, ErrAlreadyRetweeted), errors.Is(err, ErrNotRetweeted):
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrTargetNotFound
	// 互动表只有 user_id 外键，令牌签发后账号被注销
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return ErrUserNotFound
	default:
		return fmt.Errorf("%s: %w", kind, err)
	}
}

// TargetOf 构造互动目标
func TargetOf(targetType model.TargetType, id int64) repository.TargetRef {
	return repository.TargetRef{TargetType: targetType, TargetID: id}
}
