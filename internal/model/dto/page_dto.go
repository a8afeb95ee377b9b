package dto

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// PageRequest 分页参数
type PageRequest struct {
	Page     int `form:"page,default=1" binding:"min=1"`
	PageSize int `form:"page_size,default=20" binding:"min=1,max=100"`
}

// Normalize 修正越界的分页参数
func (p PageRequest) Normalize() (page, pageSize int) {
	page, pageSize = p.Page, p.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}

// TweetListRequest 推文列表请求参数
type TweetListRequest struct {
	PageRequest
	UserID int64 `form:"user_id" binding:"omitempty,gt=0"`
}

// CommentListRequest 评论列表请求参数
type CommentListRequest struct {
	PageRequest
	TweetID int64 `form:"tweet_id" binding:"omitempty,gt=0"`
}

// TweetListResponse 推文列表响应
type TweetListResponse struct {
	Total    int64        `json:"total"`
	Page     int          `json:"page"`
	PageSize int          `json:"page_size"`
	Items    []*TweetItem `json:"items"`
}

// CommentListResponse 评论列表响应
type CommentListResponse struct {
	Total    int64          `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
	Items    []*CommentItem `json:"items"`
}

// PaymentListResponse 支付记录列表响应
type PaymentListResponse struct {
	Total    int64          `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
	Items    []*PaymentItem `json:"items"`
}
