package dto

// CreateTweetRequest 发推请求
type CreateTweetRequest struct {
	Message string `json:"message" binding:"required,max=280"`
}

// UpdateTweetRequest 编辑推文请求
type UpdateTweetRequest struct {
	Message string `json:"message" binding:"required,max=280"`
}

// AuthorInfo 作者信息
type AuthorInfo struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// TweetItem 推文项
type TweetItem struct {
	ID            int64       `json:"id"`
	Author        *AuthorInfo `json:"author,omitempty"`
	Message       string      `json:"message"`
	LikesCount    int         `json:"likes_count"`
	RetweetsCount int         `json:"retweets_count"`
	Liked         bool        `json:"liked"`
	Retweeted     bool        `json:"retweeted"`
	CreatedAt     string      `json:"created_at"`
	UpdatedAt     string      `json:"updated_at"`
}
