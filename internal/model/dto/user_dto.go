package dto

// UpdateUserDetailsRequest 更新用户信息请求
type UpdateUserDetailsRequest struct {
	Username  string `json:"username" binding:"required,min=3,max=100,nospace"`
	FirstName string `json:"first_name" binding:"required,max=100"`
	LastName  string `json:"last_name" binding:"required,max=100"`
	Email     string `json:"email" binding:"required,email,max=100"`
}

// UpdatePasswordRequest 修改密码请求
type UpdatePasswordRequest struct {
	Password string `json:"password" binding:"required,min=6,max=100,nospace"`
}

// QuotaInfo 今日发推配额
type QuotaInfo struct {
	Date         string `json:"date"`
	TweetsCount  int    `json:"tweets_count"`
	DailyLimit   int    `json:"daily_limit"`
	Remaining    int    `json:"remaining"` // -1 表示不限
	HasUnlimited bool   `json:"has_unlimited"`
}
