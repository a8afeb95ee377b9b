package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/mini_tweeter_server/internal/api/middleware"
	"github.com/qs3c/mini_tweeter_server/internal/model/dto"
	"github.com/qs3c/mini_tweeter_server/internal/pkg/response"
	"github.com/qs3c/mini_tweeter_server/internal/service"
)

type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// GetDetails 获取当前用户信息
// GET /api/user/user-details
func (h *UserHandler) GetDetails(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	info, err := h.userService.GetDetails(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, info)
}

// UpdateDetails 更新用户信息
// PUT /api/user/update-user-details/:id
func (h *UserHandler) UpdateDetails(c *gin.Context) {
	callerID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateUserDetailsRequest
	if !bindJSON(c, &req) {
		return
	}

	info, err := h.userService.UpdateDetails(c.Request.Context(), callerID, userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.SuccessWithMessage(c, "更新成功", info)
}

// UpdatePassword 修改密码
// PUT /api/user/update-user-password/:id
func (h *UserHandler) UpdatePassword(c *gin.Context) {
	callerID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdatePasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.userService.UpdatePassword(c.Request.Context(), callerID, userID, req.Password); err != nil {
		respondError(c, err)
		return
	}

	response.SuccessWithMessage(c, "密码已更新", nil)
}

// Delete 注销账号
// DELETE /api/user/delete-user/:id
func (h *UserHandler) Delete(c *gin.Context) {
	callerID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.userService.DeleteUser(c.Request.Context(), callerID, userID); err != nil {
		respondError(c, err)
		return
	}

	response.SuccessWithMessage(c, "账号已删除", nil)
}
