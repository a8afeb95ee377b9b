package model

import (
	"time"
)

// TargetType 点赞/转发的对象类型
type TargetType string

const (
	TargetTweet   TargetType = "tweet"
	TargetComment TargetType = "comment"
)

func (t TargetType) Valid() bool {
	return t == TargetTweet || t == TargetComment
}

// Like 每个 (user, target) 至多一条，由唯一索引保证
type Like struct {
	ID         int64      `gorm:"primaryKey" json:"id"`
	UserID     int64      `gorm:"not null;uniqueIndex:idx_likes_user_target,priority:1" json:"user_id"`
	TargetType TargetType `gorm:"size:20;not null;uniqueIndex:idx_likes_user_target,priority:2;index:idx_likes_target,priority:1" json:"target_type"`
	TargetID   int64      `gorm:"not null;uniqueIndex:idx_likes_user_target,priority:3;index:idx_likes_target,priority:2" json:"target_id"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:RESTRICT" json:"-"`
}

func (Like) TableName() string {
	return "likes"
}

type Retweet struct {
	ID         int64      `gorm:"primaryKey" json:"id"`
	UserID     int64      `gorm:"not null;uniqueIndex:idx_retweets_user_target,priority:1" json:"user_id"`
	TargetType TargetType `gorm:"size:20;not null;uniqueIndex:idx_retweets_user_target,priority:2;index:idx_retweets_target,priority:1" json:"target_type"`
	TargetID   int64      `gorm:"not null;uniqueIndex:idx_retweets_user_target,priority:3;index:idx_retweets_target,priority:2" json:"target_id"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:RESTRICT" json:"-"`
}

func (Retweet) TableName() string {
	return "retweets"
}
