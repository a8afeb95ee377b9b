package service

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/mini_tweeter_server/config"
	"github.com/qs3c/mini_tweeter_server/internal/model"
	"github.com/qs3c/mini_tweeter_server/internal/model/dto"
	"github.com/qs3c/mini_tweeter_server/internal/repository"
)

var ErrQuotaExceeded = errors.New("今日发推数量已达上限")

type QuotaService struct {
	quotaRepo *repository.QuotaRepository
	cfg       *config.Config
	now       func() time.Time
}

func NewQuotaService(quotaRepo *repository.QuotaRepository, cfg *config.Config) *QuotaService {
	return &QuotaService{
		quotaRepo: quotaRepo,
		cfg:       cfg,
		now:       time.Now,
	}
}

// DailyLimit 每日发推上限，<= 0 表示不限
func (s *QuotaService) DailyLimit() int {
	return s.cfg.Quota.DailyTweetLimit
}

// Today 当前配额日期（UTC）
func (s *QuotaService) Today() string {
	return model.QuotaDate(s.now())
}

// CheckQuota 检查用户今天是否还能发推，不消耗配额
func (s *QuotaService) CheckQuota(ctx context.Context, userID int64) (bool, error) {
	limit := s.DailyLimit()
	if limit <= 0 {
		return true, nil
	}

	quota, err := s.quotaRepo.GetByUserAndDate(ctx, userID, s.Today())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return true, nil
		}
		return false, err
	}
	return quota.HasUnlimited || quota.TweetsCount < limit, nil
}

// Consume 在事务 tx 中消耗一次发推配额，超限返回 ErrQuotaExceeded
func (s *QuotaService) Consume(ctx context.Context, tx *gorm.DB, userID int64) error {
	repo := s.quotaRepo.WithTx(tx)

	quota, err := repo.GetOrCreate(ctx, userID, s.Today())
	if err != nil {
		return err
	}

	ok, err := repo.TryIncrement(ctx, quota.ID, s.DailyLimit())
	if err != nil {
		return err
	}
	if !ok {
		return ErrQuotaExceeded
	}
	return nil
}

// GrantUnlimited 取消用户今天的发推上限
func (s *QuotaService) GrantUnlimited(ctx context.Context, tx *gorm.DB, userID int64) error {
	repo := s.quotaRepo
	if tx != nil {
		repo = repo.WithTx(tx)
	}
	return repo.SetUnlimited(ctx, userID, s.Today())
}

// GetQuotaInfo 获取用户今天的配额信息
func (s *QuotaService) GetQuotaInfo(ctx context.Context, userID int64) (*dto.QuotaInfo, error) {
	today := s.Today()
	limit := s.DailyLimit()
	info := &dto.QuotaInfo{
		Date:       today,
		DailyLimit: limit,
	}

	quota, err := s.quotaRepo.GetByUserAndDate(ctx, userID, today)
	switch {
	case err == nil:
		info.TweetsCount = quota.TweetsCount
		info.HasUnlimited = quota.HasUnlimited
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		return nil, err
	}

	if info.HasUnlimited || limit <= 0 {
		info.Remaining = -1
		return info, nil
	}

	info.Remaining = limit - info.TweetsCount
	if info.Remaining < 0 {
		info.Remaining = 0
	}
	return info, nil
}

// CleanupBefore 删除保留期之外的配额记录；dryRun 时只统计
func (s *QuotaService) CleanupBefore(ctx context.Context, retentionDays int, dryRun bool) (int64, error) {
	if retentionDays <= 0 {
		retentionDays = 30
	}
	cutoff := model.QuotaDate(s.now().AddDate(0, 0, -retentionDays))

	if dryRun {
		return s.quotaRepo.CountBefore(ctx, cutoff)
	}
	return s.quotaRepo.DeleteBefore(ctx, cutoff)
}
