package model

import (
	"time"

	"gorm.io/datatypes"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "Pending"
	PaymentCompleted PaymentStatus = "Completed"
	PaymentFailed    PaymentStatus = "Failed"
	PaymentCancelled PaymentStatus = "Cancelled"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentCompleted, PaymentFailed, PaymentCancelled:
		return true
	}
	return false
}

// Terminal 终态不可再变更
func (s PaymentStatus) Terminal() bool {
	return s == PaymentCompleted || s == PaymentFailed || s == PaymentCancelled
}

type Payment struct {
	ID               int64             `gorm:"primaryKey" json:"id"`
	UserID           int64             `gorm:"not null;index" json:"user_id"`
	TransactionID    string            `gorm:"size:100;uniqueIndex;not null" json:"transaction_id"`
	Amount           float64           `gorm:"type:decimal(18,2);not null" json:"amount"`
	Currency         string            `gorm:"size:3;not null;default:USD" json:"currency"`
	Status           PaymentStatus     `gorm:"size:20;not null;default:Pending;index" json:"status"`
	ProviderResponse datatypes.JSONMap `json:"provider_response,omitempty"`
	CreatedAt        time.Time         `gorm:"index" json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:RESTRICT" json:"-"`
}

func (Payment) TableName() string {
	return "payments"
}
