package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/qs3c/mini_tweeter_server/internal/model"
)

type TweetRepository struct {
	db *gorm.DB
}

func NewTweetRepository(db *gorm.DB) *TweetRepository {
	return &TweetRepository{db: db}
}

// WithTx 返回绑定到事务 tx 的仓储
func (r *TweetRepository) WithTx(tx *gorm.DB) *TweetRepository {
	return &TweetRepository{db: tx}
}

// Transaction 在单个事务中执行 fn
func (r *TweetRepository) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

// Create 创建推文
func (r *TweetRepository) Create(ctx context.Context, tweet *model.Tweet) error {
	return r.db.WithContext(ctx).Create(tweet).Error
}

// GetByID 根据 ID 获取推文
func (r *TweetRepository) GetByID(ctx context.Context, id int64) (*model.Tweet, error) {
	var tweet model.Tweet
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&tweet).Error
	if err != nil {
		return nil, err
	}
	return &tweet, nil
}

// GetByIDWithUser 获取推文及作者信息
func (r *TweetRepository) GetByIDWithUser(ctx context.Context, id int64) (*model.Tweet, error) {
	var tweet model.Tweet
	err := r.db.WithContext(ctx).Preload("User").Where("id = ?", id).First(&tweet).Error
	if err != nil {
		return nil, err
	}
	return &tweet, nil
}

// List 按时间倒序分页获取推文，userID > 0 时只看该用户
func (r *TweetRepository) List(ctx context.Context, userID int64, page, pageSize int) ([]*model.Tweet, int64, error) {
	var tweets []*model.Tweet
	var total int64

	query := r.db.WithContext(ctx).Model(&model.Tweet{})
	if userID > 0 {
		query = query.Where("user_id = ?", userID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Preload("User").
		Order("created_at DESC").Order("id DESC").
		Offset(offset).Limit(pageSize).
		Find(&tweets).Error
	if err != nil {
		return nil, 0, err
	}

	return tweets, total, nil
}

// UpdateMessage 更新推文内容
func (r *TweetRepository) UpdateMessage(ctx context.Context, id int64, message string) error {
	return r.db.WithContext(ctx).Model(&model.Tweet{}).Where("id = ?", id).Update("message", message).Error
}

// Delete 删除推文，评论由外键级联删除
func (r *TweetRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&model.Tweet{}, id).Error
}

// ListIDsByUserID 获取用户全部推文 ID
func (r *TweetRepository) ListIDsByUserID(ctx context.Context, userID int64) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).Model(&model.Tweet{}).Where("user_id = ?", userID).Pluck("id", &ids).Error
	return ids, err
}

// DeleteByUserID 删除用户全部推文
func (r *TweetRepository) DeleteByUserID(ctx context.Context, userID int64) (int64, error) {
	result := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.Tweet{})
	return result.RowsAffected, result.Error
}
