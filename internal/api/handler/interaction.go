package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/mini_tweeter_server/internal/api/middleware"
	"github.com/qs3c/mini_tweeter_server/internal/model"
	"github.com/qs3c/mini_tweeter_server/internal/pkg/response"
	"github.com/qs3c/mini_tweeter_server/internal/repository"
	"github.com/qs3c/mini_tweeter_server/internal/service"
)

// InteractionHandler 推文和评论共用的点赞、转发接口
type InteractionHandler struct {
	interactionService *service.InteractionService
}

func NewInteractionHandler(interactionService *service.InteractionService) *InteractionHandler {
	return &InteractionHandler{
		interactionService: interactionService,
	}
}

type interactionFunc func(*service.InteractionService, *gin.Context, int64, repository.TargetRef) (interface{}, error)

func (h *InteractionHandler) handle(targetType model.TargetType, fn interactionFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.GetUserID(c)
		if !ok {
			response.AuthError(c, "")
			return
		}
		targetID, ok := pathID(c, "id")
		if !ok {
			return
		}

		state, err := fn(h.interactionService, c, userID, service.TargetOf(targetType, targetID))
		if err != nil {
			respondError(c, err)
			return
		}

		response.Success(c, state)
	}
}

// Like PUT /api/{tweet,comment}/:id/like
func (h *InteractionHandler) Like(targetType model.TargetType) gin.HandlerFunc {
	return h.handle(targetType, func(s *service.InteractionService, c *gin.Context, userID int64, target repository.TargetRef) (interface{}, error) {
		return s.Like(c.Request.Context(), userID, target)
	})
}

// Unlike PUT /api/{tweet,comment}/:id/unlike
func (h *InteractionHandler) Unlike(targetType model.TargetType) gin.HandlerFunc {
	return h.handle(targetType, func(s *service.InteractionService, c *gin.Context, userID int64, target repository.TargetRef) (interface{}, error) {
		return s.Unlike(c.Request.Context(), userID, target)
	})
}

// Retweet PUT /api/{tweet,comment}/:id/retweet
func (h *InteractionHandler) Retweet(targetType model.TargetType) gin.HandlerFunc {
	return h.handle(targetType, func(s *service.InteractionService, c *gin.Context, userID int64, target repository.TargetRef) (interface{}, error) {
		return s.Retweet(c.Request.Context(), userID, target)
	})
}

// Unretweet PUT /api/{tweet,comment}/:id/unretweet
func (h *InteractionHandler) Unretweet(targetType model.TargetType) gin.HandlerFunc {
	return h.handle(targetType, func(s *service.InteractionService, c *gin.Context, userID int64, target repository.TargetRef) (interface{}, error) {
		return s.Unretweet(c.Request.Context(), userID, target)
	})
}
