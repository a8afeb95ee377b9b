package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/qs3c/mini_tweeter_server/internal/model"
)

// Kind 互动类型，对应 likes / retweets 两张表
type Kind string

const (
	KindLike    Kind = "like"
	KindRetweet Kind = "retweet"
)

func (k Kind) newModel() interface{} {
	if k == KindRetweet {
		return &model.Retweet{}
	}
	return &model.Like{}
}

// CounterColumn 目标表上的计数列
func (k Kind) CounterColumn() string {
	if k == KindRetweet {
		return "retweets_count"
	}
	return "likes_count"
}

func targetTable(targetType model.TargetType) (string, error) {
	switch targetType {
	case model.TargetTweet:
		return "tweets", nil
	case model.TargetComment:
		return "comments", nil
	default:
		return "", fmt.Errorf("unknown target type %q", targetType)
	}
}

// TargetRef 互动指向的目标
type TargetRef struct {
	TargetType model.TargetType
	TargetID   int64
}

type InteractionRepository struct {
	db *gorm.DB
}

func NewInteractionRepository(db *gorm.DB) *InteractionRepository {
	return &InteractionRepository{db: db}
}

// WithTx 返回绑定到事务 tx 的仓储
func (r *InteractionRepository) WithTx(tx *gorm.DB) *InteractionRepository {
	return &InteractionRepository{db: tx}
}

// Transaction 在单个事务中执行 fn
func (r *InteractionRepository) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

// Create 创建互动记录，重复时返回 gorm.ErrDuplicatedKey
func (r *InteractionRepository) Create(ctx context.Context, kind Kind, userID int64, target TargetRef) error {
	var row interface{}
	switch kind {
	case KindLike:
		row = &model.Like{UserID: userID, TargetType: target.TargetType, TargetID: target.TargetID}
	case KindRetweet:
		row = &model.Retweet{UserID: userID, TargetType: target.TargetType, TargetID: target.TargetID}
	default:
		return fmt.Errorf("unknown interaction kind %q", kind)
	}
	return r.db.WithContext(ctx).Create(row).Error
}

// Delete 删除互动记录，返回删除行数
func (r *InteractionRepository) Delete(ctx context.Context, kind Kind, userID int64, target TargetRef) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND target_type = ? AND target_id = ?", userID, target.TargetType, target.TargetID).
		Delete(kind.newModel())
	return result.RowsAffected, result.Error
}

// Exists 检查互动是否存在
func (r *InteractionRepository) Exists(ctx context.Context, kind Kind, userID int64, target TargetRef) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(kind.newModel()).
		Where("user_id = ? AND target_type = ? AND target_id = ?", userID, target.TargetType, target.TargetID).
		Count(&count).Error
	return count > 0, err
}

// ExistingTargets 批量查询用户对一组目标的互动状态
func (r *InteractionRepository) ExistingTargets(ctx context.Context, kind Kind, userID int64, targetType model.TargetType, targetIDs []int64) (map[int64]bool, error) {
	result := make(map[int64]bool, len(targetIDs))
	if len(targetIDs) == 0 {
		return result, nil
	}

	var ids []int64
	err := r.db.WithContext(ctx).Model(kind.newModel()).
		Where("user_id = ? AND target_type = ? AND target_id IN ?", userID, targetType, targetIDs).
		Pluck("target_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		result[id] = true
	}
	return result, nil
}

// TargetExists 检查目标是否存在
func (r *InteractionRepository) TargetExists(ctx context.Context, target TargetRef) (bool, error) {
	table, err := targetTable(target.TargetType)
	if err != nil {
		return false, err
	}
	var count int64
	err = r.db.WithContext(ctx).Table(table).Where("id = ?", target.TargetID).Count(&count).Error
	return count > 0, err
}

// IncrementCount 目标计数加一
func (r *InteractionRepository) IncrementCount(ctx context.Context, kind Kind, target TargetRef) error {
	table, err := targetTable(target.TargetType)
	if err != nil {
		return err
	}
	col := kind.CounterColumn()
	return r.db.WithContext(ctx).Table(table).Where("id = ?", target.TargetID).
		UpdateColumn(col, gorm.Expr(col+" + 1")).Error
}

// DecrementCount 目标计数减一，最小为 0
func (r *InteractionRepository) DecrementCount(ctx context.Context, kind Kind, target TargetRef) error {
	table, err := targetTable(target.TargetType)
	if err != nil {
		return err
	}
	col := kind.CounterColumn()
	return r.db.WithContext(ctx).Table(table).Where("id = ?", target.TargetID).
		UpdateColumn(col, gorm.Expr(fmt.Sprintf("CASE WHEN %s > 0 THEN %s - 1 ELSE 0 END", col, col))).Error
}

// GetCount 读取目标当前计数
func (r *InteractionRepository) GetCount(ctx context.Context, kind Kind, target TargetRef) (int, error) {
	table, err := targetTable(target.TargetType)
	if err != nil {
		return 0, err
	}
	var counts []int
	err = r.db.WithContext(ctx).Table(table).Where("id = ?", target.TargetID).
		Pluck(kind.CounterColumn(), &counts).Error
	if err != nil {
		return 0, err
	}
	if len(counts) == 0 {
		return 0, gorm.ErrRecordNotFound
	}
	return counts[0], nil
}

// ListTargetsByUser 获取用户全部互动的目标
func (r *InteractionRepository) ListTargetsByUser(ctx context.Context, kind Kind, userID int64) ([]TargetRef, error) {
	var refs []TargetRef
	err := r.db.WithContext(ctx).Model(kind.newModel()).
		Select("target_type", "target_id").
		Where("user_id = ?", userID).
		Find(&refs).Error
	return refs, err
}

// DeleteByUser 删除用户的全部点赞与转发
func (r *InteractionRepository) DeleteByUser(ctx context.Context, userID int64) error {
	for _, kind := range []Kind{KindLike, KindRetweet} {
		if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(kind.newModel()).Error; err != nil {
			return err
		}
	}
	return nil
}

// DeleteByTargets 删除指向一组目标的全部点赞与转发
func (r *InteractionRepository) DeleteByTargets(ctx context.Context, targetType model.TargetType, targetIDs []int64) error {
	if len(targetIDs) == 0 {
		return nil
	}
	for _, kind := range []Kind{KindLike, KindRetweet} {
		err := r.db.WithContext(ctx).
			Where("target_type = ? AND target_id IN ?", targetType, targetIDs).
			Delete(kind.newModel()).Error
		if err != nil {
			return err
		}
	}
	return nil
}
