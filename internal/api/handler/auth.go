package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/mini_tweeter_server/internal/model/dto"
	"github.com/qs3c/mini_tweeter_server/internal/pkg/response"
	"github.com/qs3c/mini_tweeter_server/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Register 用户注册
// POST /api/user/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Created(c, "注册成功", user)
}

// Login 用户登录，支持邮箱或用户名
// POST /api/user/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.SuccessWithMessage(c, "登录成功", resp)
}

// GoogleAuth Google 登录
// POST /api/user/google-auth
func (h *AuthHandler) GoogleAuth(c *gin.Context) {
	var req dto.GoogleAuthRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.authService.GoogleAuth(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.SuccessWithMessage(c, "登录成功", resp)
}
