package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/qs3c/mini_tweeter_server/internal/model"
	"github.com/qs3c/mini_tweeter_server/internal/model/dto"
	"github.com/qs3c/mini_tweeter_server/internal/repository"
)

var (
	ErrForbidden       = errors.New("无权操作该资源")
	ErrUserHasPayments = errors.New("用户存在支付记录，无法删除")
)

type UserService struct {
	userRepo        *repository.UserRepository
	tweetRepo       *repository.TweetRepository
	commentRepo     *repository.CommentRepository
	interactionRepo *repository.InteractionRepository
	quotaRepo       *repository.QuotaRepository
	paymentRepo     *repository.PaymentRepository
}

func NewUserService(
	userRepo *repository.UserRepository,
	tweetRepo *repository.TweetRepository,
	commentRepo *repository.CommentRepository,
	interactionRepo *repository.InteractionRepository,
	quotaRepo *repository.QuotaRepository,
	paymentRepo *repository.PaymentRepository,
) *UserService {
	return &UserService{
		userRepo:        userRepo,
		tweetRepo:       tweetRepo,
		commentRepo:     commentRepo,
		interactionRepo: interactionRepo,
		quotaRepo:       quotaRepo,
		paymentRepo:     paymentRepo,
	}
}

// GetDetails 获取用户详情
func (s *UserService) GetDetails(ctx context.Context, userID int64) (*dto.UserInfo, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return buildUserInfo(user), nil
}

// UpdateDetails 更新用户名、姓名和邮箱；只能修改自己
func (s *UserService) UpdateDetails(ctx context.Context, callerID, userID int64, req *dto.UpdateUserDetailsRequest) (*dto.UserInfo, error) {
	if callerID != userID {
		return nil, ErrForbidden
	}

	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	username := strings.TrimSpace(req.Username)
	firstName := strings.TrimSpace(req.FirstName)
	lastName := strings.TrimSpace(req.LastName)
	email := normalizeEmail(req.Email)

	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if err := validateNames(firstName, lastName); err != nil {
		return nil, err
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, email, userID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailExists
	}
	exists, err = s.userRepo.ExistsByUsername(ctx, username, userID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUsernameExists
	}

	user.Username = username
	user.FirstName = firstName
	user.LastName = lastName
	user.Email = email

	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUsernameExists
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return buildUserInfo(user), nil
}

// UpdatePassword 修改密码；只能修改自己
func (s *UserService) UpdatePassword(ctx context.Context, callerID, userID int64, password string) error {
	if callerID != userID {
		return ErrForbidden
	}
	if err := validatePassword(password); err != nil {
		return err
	}
	if _, err := s.getUser(ctx, userID); err != nil {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	return s.userRepo.UpdateFields(ctx, userID, map[string]interface{}{
		"password_hash": string(hashedPassword),
	})
}

// DeleteUser 删除账号及其推文、评论、互动和配额记录；存在支付记录时拒绝
func (s *UserService) DeleteUser(ctx context.Context, callerID, userID int64) error {
	if callerID != userID {
		return ErrForbidden
	}
	if _, err := s.getUser(ctx, userID); err != nil {
		return err
	}

	hasPayments, err := s.paymentRepo.ExistsByUserID(ctx, userID)
	if err != nil {
		return err
	}
	if hasPayments {
		return ErrUserHasPayments
	}

	return s.userRepo.Transaction(ctx, func(tx *gorm.DB) error {
		interactions := s.interactionRepo.WithTx(tx)
		tweets := s.tweetRepo.WithTx(tx)
		comments := s.commentRepo.WithTx(tx)

		// 先回退该用户在别人内容上留下的计数
		for _, kind := range []repository.Kind{repository.KindLike, repository.KindRetweet} {
			targets, err := interactions.ListTargetsByUser(ctx, kind, userID)
			if err != nil {
				return err
			}
			for _, target := range targets {
				if err := interactions.DecrementCount(ctx, kind, target); err != nil {
					return err
				}
			}
		}
		if err := interactions.DeleteByUser(ctx, userID); err != nil {
			return err
		}

		tweetIDs, err := tweets.ListIDsByUserID(ctx, userID)
		if err != nil {
			return err
		}
		commentIDs, err := comments.ListIDsByUserID(ctx, userID)
		if err != nil {
			return err
		}
		// 自己推文下别人的评论会随推文级联删除，它们的互动也要清掉
		nestedIDs, err := comments.ListIDsByTweetIDs(ctx, tweetIDs)
		if err != nil {
			return err
		}
		commentIDs = append(commentIDs, nestedIDs...)

		if err := interactions.DeleteByTargets(ctx, model.TargetTweet, tweetIDs); err != nil {
			return err
		}
		if err := interactions.DeleteByTargets(ctx, model.TargetComment, commentIDs); err != nil {
			return err
		}

		if _, err := comments.DeleteByUserID(ctx, userID); err != nil {
			return err
		}
		if _, err := tweets.DeleteByUserID(ctx, userID); err != nil {
			return err
		}
		if err := s.quotaRepo.WithTx(tx).DeleteByUserID(ctx, userID); err != nil {
			return err
		}

		if err := s.userRepo.WithTx(tx).Delete(ctx, userID); err != nil {
			if errors.Is(err, gorm.ErrForeignKeyViolated) {
				return ErrUserHasPayments
			}
			return err
		}
		return nil
	})
}

func (s *UserService) getUser(ctx context.Context, userID int64) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
