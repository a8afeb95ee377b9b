package service

import (
	"time"

	"github.com/qs3c/mini_tweeter_server/internal/model"
	"github.com/qs3c/mini_tweeter_server/internal/model/dto"
)

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func buildUserInfo(u *model.User) *dto.UserInfo {
	return &dto.UserInfo{
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		CreatedAt: formatTime(u.CreatedAt),
	}
}

func buildAuthor(u *model.User) *dto.AuthorInfo {
	if u == nil {
		return nil
	}
	return &dto.AuthorInfo{
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

func buildTweetItem(t *model.Tweet) *dto.TweetItem {
	return &dto.TweetItem{
		ID:            t.ID,
		Author:        buildAuthor(t.User),
		Message:       t.Message,
		LikesCount:    t.LikesCount,
		RetweetsCount: t.RetweetsCount,
		CreatedAt:     formatTime(t.CreatedAt),
		UpdatedAt:     formatTime(t.UpdatedAt),
	}
}

func buildCommentItem(c *model.Comment) *dto.CommentItem {
	return &dto.CommentItem{
		ID:            c.ID,
		TweetID:       c.TweetID,
		Author:        buildAuthor(c.User),
		Message:       c.Message,
		LikesCount:    c.LikesCount,
		RetweetsCount: c.RetweetsCount,
		CreatedAt:     formatTime(c.CreatedAt),
		UpdatedAt:     formatTime(c.UpdatedAt),
	}
}

func buildPaymentItem(p *model.Payment) *dto.PaymentItem {
	return &dto.PaymentItem{
		ID:               p.ID,
		TransactionID:    p.TransactionID,
		Amount:           p.Amount,
		Currency:         p.Currency,
		Status:           string(p.Status),
		ProviderResponse: p.ProviderResponse,
		CreatedAt:        formatTime(p.CreatedAt),
		UpdatedAt:        formatTime(p.UpdatedAt),
	}
}
