package dto

// CreatePaymentRequest 创建支付记录请求
type CreatePaymentRequest struct {
	TransactionID string  `json:"transaction_id" binding:"required,max=100,nospace"`
	Amount        float64 `json:"amount" binding:"required,gt=0"`
	Currency      string  `json:"currency" binding:"omitempty,len=3,alpha"`
}

// UpdatePaymentStatusRequest 用户更新支付状态请求，只允许取消；完成与失败由支付渠道回调写入
type UpdatePaymentStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=Pending Completed Failed Cancelled"`
}

// PaymentItem 支付记录项
type PaymentItem struct {
	ID               int64                  `json:"id"`
	TransactionID    string                 `json:"transaction_id"`
	Amount           float64                `json:"amount"`
	Currency         string                 `json:"currency"`
	Status           string                 `json:"status"`
	ProviderResponse map[string]interface{} `json:"provider_response,omitempty"`
	CreatedAt        string                 `json:"created_at"`
	UpdatedAt        string                 `json:"updated_at"`
}
