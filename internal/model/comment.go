package model

import (
	"time"
)

type Comment struct {
	ID            int64     `gorm:"primaryKey" json:"id"`
	UserID        int64     `gorm:"not null;index" json:"user_id"`
	TweetID       int64     `gorm:"not null;index" json:"tweet_id"`
	Message       string    `gorm:"size:280;not null" json:"message"`
	RetweetsCount int       `gorm:"not null;default:0" json:"retweets_count"`
	LikesCount    int       `gorm:"not null;default:0" json:"likes_count"`
	CreatedAt     time.Time `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	// 关联
	User  *User  `gorm:"foreignKey:UserID;constraint:OnDelete:RESTRICT" json:"user,omitempty"`
	Tweet *Tweet `gorm:"foreignKey:TweetID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Comment) TableName() string {
	return "comments"
}
