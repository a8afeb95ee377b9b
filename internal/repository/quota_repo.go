package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/qs3c/mini_tweeter_server/internal/model"
)

type QuotaRepository struct {
	db *gorm.DB
}

func NewQuotaRepository(db *gorm.DB) *QuotaRepository {
	return &QuotaRepository{db: db}
}

// WithTx 返回绑定到事务 tx 的仓储
func (r *QuotaRepository) WithTx(tx *gorm.DB) *QuotaRepository {
	return &QuotaRepository{db: tx}
}

// GetByUserAndDate 获取某天的配额记录
func (r *QuotaRepository) GetByUserAndDate(ctx context.Context, userID int64, date string) (*model.UserTweetQuota, error) {
	var quota model.UserTweetQuota
	err := r.db.WithContext(ctx).Where("user_id = ? AND quota_date = ?", userID, date).First(&quota).Error
	if err != nil {
		return nil, err
	}
	return &quota, nil
}

// GetOrCreate 获取某天的配额记录，不存在则创建。
// 插入冲突时忽略，再用加锁读取拿到当前已提交的行（REPEATABLE READ 下普通读只能看到事务快照）
func (r *QuotaRepository) GetOrCreate(ctx context.Context, userID int64, date string) (*model.UserTweetQuota, error) {
	quota, err := r.GetByUserAndDate(ctx, userID, date)
	if err == nil {
		return quota, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if err := r.insertIfMissing(ctx, userID, date); err != nil {
		return nil, err
	}
	return r.getForUpdate(ctx, userID, date)
}

// insertIfMissing 插入当天配额行，已存在时不做任何事
func (r *QuotaRepository) insertIfMissing(ctx context.Context, userID int64, date string) error {
	quota := &model.UserTweetQuota{
		UserID:    userID,
		QuotaDate: date,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "quota_date"}},
			DoNothing: true,
		}).
		Create(quota).Error
}

// getForUpdate 当前读并锁定配额行；sqlite 忽略行锁
func (r *QuotaRepository) getForUpdate(ctx context.Context, userID int64, date string) (*model.UserTweetQuota, error) {
	var quota model.UserTweetQuota
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND quota_date = ?", userID, date).
		First(&quota).Error
	if err != nil {
		return nil, err
	}
	return &quota, nil
}

// TryIncrement 在未超出 limit 时计数加一；limit <= 0 表示不限，返回是否成功
func (r *QuotaRepository) TryIncrement(ctx context.Context, id int64, limit int) (bool, error) {
	query := r.db.WithContext(ctx).Model(&model.UserTweetQuota{}).Where("id = ?", id)
	if limit > 0 {
		query = query.Where("(has_unlimited = ? OR tweets_count < ?)", true, limit)
	}

	result := query.Updates(map[string]interface{}{
		"tweets_count": gorm.Expr("tweets_count + 1"),
		"updated_at":   time.Now(),
	})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// SetUnlimited 标记用户某天不受发推上限约束
func (r *QuotaRepository) SetUnlimited(ctx context.Context, userID int64, date string) error {
	quota, err := r.GetOrCreate(ctx, userID, date)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Model(&model.UserTweetQuota{}).Where("id = ?", quota.ID).
		Update("has_unlimited", true).Error
}

// CountBefore 统计早于 date 的配额记录
func (r *QuotaRepository) CountBefore(ctx context.Context, date string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.UserTweetQuota{}).Where("quota_date < ?", date).Count(&count).Error
	return count, err
}

// DeleteBefore 删除早于 date 的配额记录
func (r *QuotaRepository) DeleteBefore(ctx context.Context, date string) (int64, error) {
	result := r.db.WithContext(ctx).Where("quota_date < ?", date).Delete(&model.UserTweetQuota{})
	return result.RowsAffected, result.Error
}

// DeleteByUserID 删除用户全部配额记录
func (r *QuotaRepository) DeleteByUserID(ctx context.Context, userID int64) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.UserTweetQuota{}).Error
}
