package model

import (
	"time"
)

const MaxMessageLength = 280

type Tweet struct {
	ID            int64     `gorm:"primaryKey" json:"id"`
	UserID        int64     `gorm:"not null;index" json:"user_id"`
	Message       string    `gorm:"size:280;not null" json:"message"`
	RetweetsCount int       `gorm:"not null;default:0" json:"retweets_count"`
	LikesCount    int       `gorm:"not null;default:0" json:"likes_count"`
	CreatedAt     time.Time `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	// 关联
	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:RESTRICT" json:"user,omitempty"`
}

func (Tweet) TableName() string {
	return "tweets"
}
