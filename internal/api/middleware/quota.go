package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/qs3c/mini_tweeter_server/internal/pkg/metrics"
	"github.com/qs3c/mini_tweeter_server/internal/pkg/response"
	"github.com/qs3c/mini_tweeter_server/internal/service"
)

// QuotaCheck 发推前的配额预检，最终以事务内的扣减为准
func QuotaCheck(quotaService *service.QuotaService, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := GetUserID(c)
		if !ok {
			response.AuthError(c, "")
			c.Abort()
			return
		}

		hasQuota, err := quotaService.CheckQuota(c.Request.Context(), userID)
		if err != nil {
			zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("quota check failed")
			response.ServerError(c, "配额检查失败")
			c.Abort()
			return
		}

		if !hasQuota {
			m.ObserveQuotaRejection()
			response.QuotaError(c, service.ErrQuotaExceeded.Error())
			c.Abort()
			return
		}

		c.Next()
	}
}
