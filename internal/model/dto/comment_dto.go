package dto

// CreateCommentRequest 创建评论请求
type CreateCommentRequest struct {
	TweetID int64  `json:"tweet_id" binding:"required,gt=0"`
	Message string `json:"message" binding:"required,max=280"`
}

// UpdateCommentRequest 编辑评论请求
type UpdateCommentRequest struct {
	Message string `json:"message" binding:"required,max=280"`
}

// CommentItem 评论项
type CommentItem struct {
	ID            int64       `json:"id"`
	TweetID       int64       `json:"tweet_id"`
	Author        *AuthorInfo `json:"author,omitempty"`
	Message       string      `json:"message"`
	LikesCount    int         `json:"likes_count"`
	RetweetsCount int         `json:"retweets_count"`
	Liked         bool        `json:"liked"`
	Retweeted     bool        `json:"retweeted"`
	CreatedAt     string      `json:"created_at"`
	UpdatedAt     string      `json:"updated_at"`
}
