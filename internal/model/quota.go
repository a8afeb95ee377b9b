package model

import (
	"time"
)

// QuotaDateLayout quota_date 的存储格式（UTC 日期）
const QuotaDateLayout = "2006-01-02"

type UserTweetQuota struct {
	ID           int64     `gorm:"primaryKey" json:"id"`
	UserID       int64     `gorm:"not null;uniqueIndex:idx_quota_user_date,priority:1" json:"user_id"`
	QuotaDate    string    `gorm:"size:10;not null;uniqueIndex:idx_quota_user_date,priority:2;index" json:"quota_date"`
	TweetsCount  int       `gorm:"not null;default:0" json:"tweets_count"`
	HasUnlimited bool      `gorm:"not null;default:false" json:"has_unlimited"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:RESTRICT" json:"-"`
}

func (UserTweetQuota) TableName() string {
	return "user_tweet_quotas"
}

// QuotaDate 返回 t 对应的 UTC 日期字符串
func QuotaDate(t time.Time) string {
	return t.UTC().Format(QuotaDateLayout)
}
