package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
	"gorm.io/gorm"

	"github.com/qs3c/mini_tweeter_server/internal/model"
)

var (
	ErrWebhookNotConfigured = errors.New("支付回调未配置")
	ErrInvalidSignature     = fmt.Errorf("%w: 回调签名校验失败", ErrInvalidInput)
	ErrInvalidWebhookEvent  = fmt.Errorf("%w: 回调事件格式错误", ErrInvalidInput)
	ErrPaymentMismatch      = fmt.Errorf("%w: 回调金额或币种与支付记录不符", ErrInvalidInput)
)

// WebhookResult 回调处理结果；Ignored 表示事件类型与支付状态无关
type WebhookResult struct {
	EventID   string
	EventType string
	Ignored   bool
	Payment   *model.Payment
}

// 以最小货币单位计价时不带小数的币种
var zeroDecimalCurrencies = map[string]bool{
	"BIF": true, "CLP": true, "DJF": true, "GNF": true,
	"JPY": true, "KMF": true, "KRW": true, "MGA": true,
	"PYG": true, "RWF": true, "UGX": true, "VND": true,
	"VUV": true, "XAF": true, "XOF": true, "XPF": true,
}

// webhookStatus payment_intent 事件到支付状态的映射
func webhookStatus(eventType stripe.EventType) (model.PaymentStatus, bool) {
	switch eventType {
	case "payment_intent.succeeded":
		return model.PaymentCompleted, true
	case "payment_intent.payment_failed":
		return model.PaymentFailed, true
	case "payment_intent.canceled":
		return model.PaymentCancelled, true
	}
	return "", false
}

// HandleWebhook 校验 Stripe 回调签名并按 PaymentIntent 结果更新支付状态。
// PaymentIntent ID 即创建支付时登记的交易号；重复投递同一结果按成功处理。
func (s *PaymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) (*WebhookResult, error) {
	secret := s.cfg.Payment.WebhookSecret
	if secret == "" {
		return nil, ErrWebhookNotConfigured
	}

	event, err := webhook.ConstructEventWithOptions(payload, signature, secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	result := &WebhookResult{EventID: event.ID, EventType: string(event.Type)}

	to, ok := webhookStatus(event.Type)
	if !ok {
		result.Ignored = true
		return result, nil
	}
	if event.Data == nil {
		return nil, ErrInvalidWebhookEvent
	}

	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil || intent.ID == "" {
		return nil, ErrInvalidWebhookEvent
	}

	payment, err := s.paymentRepo.GetByTransactionID(ctx, intent.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	result.Payment = payment

	if !intentMatches(payment, &intent) {
		return nil, ErrPaymentMismatch
	}
	if payment.Status == to {
		return result, nil
	}
	if payment.Status.Terminal() {
		return nil, ErrPaymentFinalized
	}

	if err := s.transition(ctx, payment, to, event.Data.Object); err != nil {
		return nil, err
	}

	updated, err := s.paymentRepo.GetByID(ctx, payment.ID)
	if err != nil {
		return nil, err
	}
	result.Payment = updated
	return result, nil
}

// intentMatches 回调金额与币种必须和登记的支付记录一致
func intentMatches(payment *model.Payment, intent *stripe.PaymentIntent) bool {
	currency := strings.ToUpper(string(intent.Currency))
	if currency != payment.Currency {
		return false
	}
	return intent.Amount == minorUnits(payment.Amount, currency)
}

func minorUnits(amount float64, currency string) int64 {
	if zeroDecimalCurrencies[currency] {
		return int64(math.Round(amount))
	}
	return int64(math.Round(amount * 100))
}
