package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/qs3c/mini_tweeter_server/internal/api/middleware"
	"github.com/qs3c/mini_tweeter_server/internal/model/dto"
	"github.com/qs3c/mini_tweeter_server/internal/pkg/response"
	"github.com/qs3c/mini_tweeter_server/internal/service"
)

type PaymentHandler struct {
	paymentService *service.PaymentService
}

func NewPaymentHandler(paymentService *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

// Create 创建支付记录
// POST /api/payment
func (h *PaymentHandler) Create(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.CreatePaymentRequest
	if !bindJSON(c, &req) {
		return
	}

	item, err := h.paymentService.Create(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Created(c, "支付记录已创建", item)
}

// List 我的支付记录
// GET /api/payment
func (h *PaymentHandler) List(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var page dto.PageRequest
	if !bindQuery(c, &page) {
		return
	}

	resp, err := h.paymentService.List(c.Request.Context(), userID, page)
	if err != nil {
		respondError(c, err)
		return
	}

	response.SuccessPage(c, resp.Total, resp.Page, resp.PageSize, resp.Items)
}

// Get 支付详情
// GET /api/payment/:id
func (h *PaymentHandler) Get(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}
	paymentID, ok := pathID(c, "id")
	if !ok {
		return
	}

	item, err := h.paymentService.Get(c.Request.Context(), userID, paymentID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, item)
}

// UpdateStatus 变更支付状态
// PUT /api/payment/:id/status
func (h *PaymentHandler) UpdateStatus(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}
	paymentID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdatePaymentStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	item, err := h.paymentService.UpdateStatus(c.Request.Context(), userID, paymentID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.SuccessWithMessage(c, "状态已更新", item)
}

const maxWebhookBody = 64 << 10

// Webhook Stripe 支付结果回调，无需登录，凭签名鉴权
// POST /api/payment/webhook
func (h *PaymentHandler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody))
	if err != nil {
		response.ParamError(c, "读取回调内容失败")
		return
	}

	ctx := c.Request.Context()
	result, err := h.paymentService.HandleWebhook(ctx, payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("payment webhook rejected")
		respondError(c, err)
		return
	}

	logEvent := zerolog.Ctx(ctx).Info().
		Str("event_id", result.EventID).
		Str("event_type", result.EventType).
		Bool("ignored", result.Ignored)
	if result.Payment != nil {
		logEvent = logEvent.Int64("payment_id", result.Payment.ID).Str("status", string(result.Payment.Status))
	}
	logEvent.Msg("payment webhook handled")

	response.Success(c, gin.H{"received": true, "ignored": result.Ignored})
}
