package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/mini_tweeter_server/internal/api/middleware"
	"github.com/qs3c/mini_tweeter_server/internal/model/dto"
	"github.com/qs3c/mini_tweeter_server/internal/pkg/response"
	"github.com/qs3c/mini_tweeter_server/internal/service"
)

type TweetHandler struct {
	tweetService   *service.TweetService
	commentService *service.CommentService
}

func NewTweetHandler(tweetService *service.TweetService, commentService *service.CommentService) *TweetHandler {
	return &TweetHandler{
		tweetService:   tweetService,
		commentService: commentService,
	}
}

// List 推文列表
// GET /api/tweet
func (h *TweetHandler) List(c *gin.Context) {
	var req dto.TweetListRequest
	if !bindQuery(c, &req) {
		return
	}

	viewerID, _ := middleware.GetUserID(c)
	resp, err := h.tweetService.List(c.Request.Context(), viewerID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.SuccessPage(c, resp.Total, resp.Page, resp.PageSize, resp.Items)
}

// Get 推文详情
// GET /api/tweet/:id
func (h *TweetHandler) Get(c *gin.Context) {
	tweetID, ok := pathID(c, "id")
	if !ok {
		return
	}

	viewerID, _ := middleware.GetUserID(c)
	item, err := h.tweetService.Get(c.Request.Context(), viewerID, tweetID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, item)
}

// ListComments 推文下的评论
// GET /api/tweet/:id/comments
func (h *TweetHandler) ListComments(c *gin.Context) {
	tweetID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var page dto.PageRequest
	if !bindQuery(c, &page) {
		return
	}

	viewerID, _ := middleware.GetUserID(c)
	resp, err := h.commentService.ListByTweet(c.Request.Context(), viewerID, tweetID, page)
	if err != nil {
		respondError(c, err)
		return
	}

	response.SuccessPage(c, resp.Total, resp.Page, resp.PageSize, resp.Items)
}

// Create 发推
// POST /api/tweet
func (h *TweetHandler) Create(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.CreateTweetRequest
	if !bindJSON(c, &req) {
		return
	}

	item, err := h.tweetService.Create(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Created(c, "发布成功", item)
}

// Update 编辑推文
// PUT /api/tweet/:id
func (h *TweetHandler) Update(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}
	tweetID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateTweetRequest
	if !bindJSON(c, &req) {
		return
	}

	item, err := h.tweetService.Update(c.Request.Context(), userID, tweetID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.SuccessWithMessage(c, "更新成功", item)
}

// Delete 删除推文
// DELETE /api/tweet/:id
func (h *TweetHandler) Delete(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}
	tweetID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.tweetService.Delete(c.Request.Context(), userID, tweetID); err != nil {
		respondError(c, err)
		return
	}

	response.SuccessWithMessage(c, "删除成功", nil)
}
