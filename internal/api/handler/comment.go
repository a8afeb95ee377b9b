package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/mini_tweeter_server/internal/api/middleware"
	"github.com/qs3c/mini_tweeter_server/internal/model/dto"
	"github.com/qs3c/mini_tweeter_server/internal/pkg/response"
	"github.com/qs3c/mini_tweeter_server/internal/service"
)

type CommentHandler struct {
	commentService *service.CommentService
}

func NewCommentHandler(commentService *service.CommentService) *CommentHandler {
	return &CommentHandler{
		commentService: commentService,
	}
}

// List 评论列表，可按 tweet_id 过滤
// GET /api/comment
func (h *CommentHandler) List(c *gin.Context) {
	var req dto.CommentListRequest
	if !bindQuery(c, &req) {
		return
	}

	viewerID, _ := middleware.GetUserID(c)
	resp, err := h.commentService.List(c.Request.Context(), viewerID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.SuccessPage(c, resp.Total, resp.Page, resp.PageSize, resp.Items)
}

// Get 评论详情
// GET /api/comment/:id
func (h *CommentHandler) Get(c *gin.Context) {
	commentID, ok := pathID(c, "id")
	if !ok {
		return
	}

	viewerID, _ := middleware.GetUserID(c)
	item, err := h.commentService.Get(c.Request.Context(), viewerID, commentID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, item)
}

// Create 发表评论
// POST /api/comment
func (h *CommentHandler) Create(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.CreateCommentRequest
	if !bindJSON(c, &req) {
		return
	}

	item, err := h.commentService.Create(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Created(c, "评论成功", item)
}

// Update 编辑评论
// PUT /api/comment/:id
func (h *CommentHandler) Update(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}
	commentID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateCommentRequest
	if !bindJSON(c, &req) {
		return
	}

	item, err := h.commentService.Update(c.Request.Context(), userID, commentID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.SuccessWithMessage(c, "更新成功", item)
}

// Delete 删除评论
// DELETE /api/comment/:id
func (h *CommentHandler) Delete(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}
	commentID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.commentService.Delete(c.Request.Context(), userID, commentID); err != nil {
		respondError(c, err)
		return
	}

	response.SuccessWithMessage(c, "删除成功", nil)
}
