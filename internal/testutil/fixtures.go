package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/qs3c/mini_tweeter_server/internal/model"
)

// TestPassword fixture 用户的明文密码
const TestPassword = "password123"

var (
	seq          atomic.Int64
	passwordHash string
)

func init() {
	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	passwordHash = string(hash)
}

func nextSeq() int64 {
	return seq.Add(1)
}

// TestUser 创建测试用户
func TestUser(t *testing.T, db *gorm.DB, opts ...func(*model.User)) *model.User {
	t.Helper()

	n := nextSeq()
	user := &model.User{
		Username:     fmt.Sprintf("testuser_%d", n),
		Email:        fmt.Sprintf("test_%d@example.com", n),
		FirstName:    "Test",
		LastName:     "User",
		PasswordHash: passwordHash,
	}

	for _, opt := range opts {
		opt(user)
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return user
}

// WithUsername 设置用户名
func WithUsername(username string) func(*model.User) {
	return func(u *model.User) {
		u.Username = username
	}
}

// WithEmail 设置邮箱
func WithEmail(email string) func(*model.User) {
	return func(u *model.User) {
		u.Email = email
	}
}

// WithName 设置姓名
func WithName(first, last string) func(*model.User) {
	return func(u *model.User) {
		u.FirstName = first
		u.LastName = last
	}
}

// TestTweet 创建测试推文
func TestTweet(t *testing.T, db *gorm.DB, userID int64, opts ...func(*model.Tweet)) *model.Tweet {
	t.Helper()

	tweet := &model.Tweet{
		UserID:  userID,
		Message: fmt.Sprintf("Test tweet %d", nextSeq()),
	}

	for _, opt := range opts {
		opt(tweet)
	}

	if err := db.Create(tweet).Error; err != nil {
		t.Fatalf("Failed to create test tweet: %v", err)
	}

	return tweet
}

// WithMessage 设置推文内容
func WithMessage(message string) func(*model.Tweet) {
	return func(tw *model.Tweet) {
		tw.Message = message
	}
}

// WithCounts 设置点赞与转发计数
func WithCounts(likes, retweets int) func(*model.Tweet) {
	return func(tw *model.Tweet) {
		tw.LikesCount = likes
		tw.RetweetsCount = retweets
	}
}

// TestComment 创建测试评论
func TestComment(t *testing.T, db *gorm.DB, userID, tweetID int64, message string) *model.Comment {
	t.Helper()

	comment := &model.Comment{
		UserID:  userID,
		TweetID: tweetID,
		Message: message,
	}

	if err := db.Create(comment).Error; err != nil {
		t.Fatalf("Failed to create test comment: %v", err)
	}

	return comment
}

// TestLike 直接插入点赞记录（不更新计数）
func TestLike(t *testing.T, db *gorm.DB, userID int64, targetType model.TargetType, targetID int64) *model.Like {
	t.Helper()

	like := &model.Like{
		UserID:     userID,
		TargetType: targetType,
		TargetID:   targetID,
	}

	if err := db.Create(like).Error; err != nil {
		t.Fatalf("Failed to create test like: %v", err)
	}

	return like
}

// TestRetweet 直接插入转发记录（不更新计数）
func TestRetweet(t *testing.T, db *gorm.DB, userID int64, targetType model.TargetType, targetID int64) *model.Retweet {
	t.Helper()

	retweet := &model.Retweet{
		UserID:     userID,
		TargetType: targetType,
		TargetID:   targetID,
	}

	if err := db.Create(retweet).Error; err != nil {
		t.Fatalf("Failed to create test retweet: %v", err)
	}

	return retweet
}

// TestQuota 创建某天的配额记录
func TestQuota(t *testing.T, db *gorm.DB, userID int64, date string, count int, unlimited bool) *model.UserTweetQuota {
	t.Helper()

	quota := &model.UserTweetQuota{
		UserID:       userID,
		QuotaDate:    date,
		TweetsCount:  count,
		HasUnlimited: unlimited,
	}

	if err := db.Create(quota).Error; err != nil {
		t.Fatalf("Failed to create test quota: %v", err)
	}

	return quota
}

// TestPayment 创建测试支付记录
func TestPayment(t *testing.T, db *gorm.DB, userID int64, opts ...func(*model.Payment)) *model.Payment {
	t.Helper()

	payment := &model.Payment{
		UserID:        userID,
		TransactionID: fmt.Sprintf("txn_%d", nextSeq()),
		Amount:        9.99,
		Currency:      "USD",
		Status:        model.PaymentPending,
	}

	for _, opt := range opts {
		opt(payment)
	}

	if err := db.Create(payment).Error; err != nil {
		t.Fatalf("Failed to create test payment: %v", err)
	}

	return payment
}

// WithStatus 设置支付状态
func WithStatus(status model.PaymentStatus) func(*model.Payment) {
	return func(p *model.Payment) {
		p.Status = status
	}
}

// WithCreatedAt 设置支付创建时间
func WithCreatedAt(at time.Time) func(*model.Payment) {
	return func(p *model.Payment) {
		p.CreatedAt = at
	}
}

// WithTransactionID 设置支付渠道交易号
func WithTransactionID(id string) func(*model.Payment) {
	return func(p *model.Payment) {
		p.TransactionID = id
	}
}

// WithAmount 设置支付金额与币种
func WithAmount(amount float64, currency string) func(*model.Payment) {
	return func(p *model.Payment) {
		p.Amount = amount
		p.Currency = currency
	}
}
