package dto

// RegisterRequest 注册请求
type RegisterRequest struct {
	Username  string `json:"username" binding:"required,min=3,max=100,nospace"`
	FirstName string `json:"first_name" binding:"required,max=100"`
	LastName  string `json:"last_name" binding:"required,max=100"`
	Email     string `json:"email" binding:"required,email,max=100"`
	Password  string `json:"password" binding:"required,min=6,max=100,nospace"`
}

// LoginRequest 登录请求，支持邮箱或用户名
type LoginRequest struct {
	EmailOrUsername string `json:"email_or_username" binding:"required"`
	Password        string `json:"password" binding:"required"`
}

// GoogleAuthRequest Google 登录请求，id_token 与 code 二选一
type GoogleAuthRequest struct {
	IDToken     string `json:"id_token" binding:"required_without=Code"`
	Code        string `json:"code" binding:"required_without=IDToken"`
	RedirectURI string `json:"redirect_uri" binding:"omitempty,url"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	Access string    `json:"access"`
	User   *UserInfo `json:"user"`
}

// UserInfo 用户信息（返回给前端）
type UserInfo struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at,omitempty"`
}
