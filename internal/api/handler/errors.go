package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/qs3c/mini_tweeter_server/internal/pkg/response"
	"github.com/qs3c/mini_tweeter_server/internal/pkg/validate"
	"github.com/qs3c/mini_tweeter_server/internal/service"
)

// respondError 把服务层错误映射为统一响应，未知错误只记日志不回显
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		response.ParamError(c, err.Error())

	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrGoogleAuthFailed),
		errors.Is(err, service.ErrGoogleEmailNotVerified):
		response.AuthError(c, rootMessage(err))

	case errors.Is(err, service.ErrForbidden):
		response.PermissionError(c, err.Error())

	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrTweetNotFound),
		errors.Is(err, service.ErrCommentNotFound),
		errors.Is(err, service.ErrTargetNotFound),
		errors.Is(err, service.ErrPaymentNotFound):
		response.NotFoundError(c, err.Error())

	case errors.Is(err, service.ErrQuotaExceeded):
		response.QuotaError(c, err.Error())

	case errors.Is(err, service.ErrEmailExists),
		errors.Is(err, service.ErrUsernameExists),
		errors.Is(err, service.ErrAlreadyLiked),
		errors.Is(err, service.ErrNotLiked),
		errors.Is(err, service.ErrAlreadyRetweeted),
		errors.Is(err, service.ErrNotRetweeted),
		errors.Is(err, service.ErrTransactionExists),
		errors.Is(err, service.ErrPaymentFinalized),
		errors.Is(err, service.ErrUserHasPayments):
		response.DuplicateError(c, err.Error())

	case errors.Is(err, service.ErrGoogleNotConfigured),
		errors.Is(err, service.ErrWebhookNotConfigured):
		response.ServerError(c, err.Error())

	default:
		zerolog.Ctx(c.Request.Context()).Error().Err(err).
			Str("route", c.FullPath()).
			Msg("unhandled error")
		response.ServerError(c, "")
	}
}

// rootMessage 认证类错误只返回哨兵错误本身的描述
func rootMessage(err error) string {
	for _, sentinel := range []error{
		service.ErrInvalidCredentials,
		service.ErrGoogleAuthFailed,
		service.ErrGoogleEmailNotVerified,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return err.Error()
}

func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.ParamError(c, validate.Message(err))
		return false
	}
	return true
}

func bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		response.ParamError(c, validate.Message(err))
		return false
	}
	return true
}

// pathID 解析路径中的正整数 ID
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.ParamError(c, "无效的ID")
		return 0, false
	}
	return id, true
}
