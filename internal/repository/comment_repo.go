package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/qs3c/mini_tweeter_server/internal/model"
)

type CommentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

// WithTx 返回绑定到事务 tx 的仓储
func (r *CommentRepository) WithTx(tx *gorm.DB) *CommentRepository {
	return &CommentRepository{db: tx}
}

// Create 创建评论
func (r *CommentRepository) Create(ctx context.Context, comment *model.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

// GetByID 根据 ID 获取评论
func (r *CommentRepository) GetByID(ctx context.Context, id int64) (*model.Comment, error) {
	var comment model.Comment
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&comment).Error
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// GetByIDWithUser 获取评论及用户信息
func (r *CommentRepository) GetByIDWithUser(ctx context.Context, id int64) (*model.Comment, error) {
	var comment model.Comment
	err := r.db.WithContext(ctx).Preload("User").Where("id = ?", id).First(&comment).Error
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// UpdateMessage 更新评论内容
func (r *CommentRepository) UpdateMessage(ctx context.Context, id int64, message string) error {
	return r.db.WithContext(ctx).Model(&model.Comment{}).Where("id = ?", id).Update("message", message).Error
}

// Delete 删除评论
func (r *CommentRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&model.Comment{}, id).Error
}

// List 分页获取评论，tweetID > 0 时只取该推文下的评论
func (r *CommentRepository) List(ctx context.Context, tweetID int64, page, pageSize int) ([]*model.Comment, int64, error) {
	var comments []*model.Comment
	var total int64

	query := r.db.WithContext(ctx).Model(&model.Comment{})
	if tweetID > 0 {
		query = query.Where("tweet_id = ?", tweetID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Preload("User").
		Order("created_at DESC").Order("id DESC").
		Offset(offset).Limit(pageSize).
		Find(&comments).Error
	if err != nil {
		return nil, 0, err
	}

	return comments, total, nil
}

// CountByTweetID 获取推文的评论数
func (r *CommentRepository) CountByTweetID(ctx context.Context, tweetID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Comment{}).Where("tweet_id = ?", tweetID).Count(&count).Error
	return count, err
}

// ListIDsByTweetIDs 获取若干推文下全部评论 ID
func (r *CommentRepository) ListIDsByTweetIDs(ctx context.Context, tweetIDs []int64) ([]int64, error) {
	if len(tweetIDs) == 0 {
		return nil, nil
	}
	var ids []int64
	err := r.db.WithContext(ctx).Model(&model.Comment{}).Where("tweet_id IN ?", tweetIDs).Pluck("id", &ids).Error
	return ids, err
}

// ListIDsByUserID 获取用户发表的全部评论 ID
func (r *CommentRepository) ListIDsByUserID(ctx context.Context, userID int64) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).Model(&model.Comment{}).Where("user_id = ?", userID).Pluck("id", &ids).Error
	return ids, err
}

// DeleteByUserID 删除用户发表的全部评论
func (r *CommentRepository) DeleteByUserID(ctx context.Context, userID int64) (int64, error) {
	result := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.Comment{})
	return result.RowsAffected, result.Error
}
