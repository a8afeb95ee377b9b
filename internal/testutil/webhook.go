package testutil

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stripe/stripe-go/v82/webhook"
)

// TestWebhookSecret 测试配置使用的回调签名密钥
const TestWebhookSecret = "whsec_test_secret"

// IntentEvent 构造 payment_intent 事件，amount 为最小货币单位
func IntentEvent(t *testing.T, eventType, intentID string, amount int64, currency string) []byte {
	t.Helper()

	payload, err := json.Marshal(map[string]interface{}{
		"id":          fmt.Sprintf("evt_%d", nextSeq()),
		"object":      "event",
		"type":        eventType,
		"api_version": "2025-04-30.basil",
		"data": map[string]interface{}{
			"object": map[string]interface{}{
				"id":              intentID,
				"object":          "payment_intent",
				"amount":          amount,
				"amount_received": amount,
				"currency":        currency,
			},
		},
	})
	if err != nil {
		t.Fatalf("Failed to marshal webhook event: %v", err)
	}
	return payload
}

// SignWebhook 用 secret 为 payload 生成 Stripe-Signature 头
func SignWebhook(payload []byte, secret string) string {
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    secret,
		Timestamp: time.Now(),
	})
	return signed.Header
}
