package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/mini_tweeter_server/config"
	"github.com/qs3c/mini_tweeter_server/internal/model"
	"github.com/qs3c/mini_tweeter_server/internal/model/dto"
	"github.com/qs3c/mini_tweeter_server/internal/repository"
)

var (
	ErrPaymentNotFound         = errors.New("支付记录不存在")
	ErrTransactionExists       = errors.New("交易号已存在")
	ErrPaymentFinalized        = errors.New("支付已完结，状态不可再变更")
	ErrInvalidStatusTransition = fmt.Errorf("%w: 不支持的支付状态变更", ErrInvalidInput)
	ErrInvalidAmount           = fmt.Errorf("%w: 金额必须大于0", ErrInvalidInput)
	ErrInvalidCurrency         = fmt.Errorf("%w: 币种必须为3位字母代码", ErrInvalidInput)
	ErrInvalidTransactionID    = fmt.Errorf("%w: 交易号不能为空且不超过100个字符", ErrInvalidInput)
	ErrStatusNotAllowed        = fmt.Errorf("%w: 只能取消待支付记录，支付结果以支付渠道回调为准", ErrForbidden)
)

const defaultPendingTTL = 24 * time.Hour

type PaymentService struct {
	paymentRepo  *repository.PaymentRepository
	quotaService *QuotaService
	cfg          *config.Config
	now          func() time.Time
}

func NewPaymentService(paymentRepo *repository.PaymentRepository, quotaService *QuotaService, cfg *config.Config) *PaymentService {
	return &PaymentService{
		paymentRepo:  paymentRepo,
		quotaService: quotaService,
		cfg:          cfg,
		now:          time.Now,
	}
}

// Create 创建待支付记录
func (s *PaymentService) Create(ctx context.Context, userID int64, req *dto.CreatePaymentRequest) (*dto.PaymentItem, error) {
	transactionID := strings.TrimSpace(req.TransactionID)
	if transactionID == "" || len(transactionID) > 100 || hasSpace(transactionID) {
		return nil, ErrInvalidTransactionID
	}
	if req.Amount <= 0 {
		return nil, ErrInvalidAmount
	}

	currency, err := s.normalizeCurrency(req.Currency)
	if err != nil {
		return nil, err
	}

	payment := &model.Payment{
		UserID:        userID,
		TransactionID: transactionID,
		Amount:        req.Amount,
		Currency:      currency,
		Status:        model.PaymentPending,
	}
	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrTransactionExists
		}
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("create payment: %w", err)
	}

	return buildPaymentItem(payment), nil
}

// List 分页获取自己的支付记录
func (s *PaymentService) List(ctx context.Context, userID int64, req dto.PageRequest) (*dto.PaymentListResponse, error) {
	page, pageSize := req.Normalize()

	payments, total, err := s.paymentRepo.ListByUserID(ctx, userID, page, pageSize)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.PaymentItem, 0, len(payments))
	for _, p := range payments {
		items = append(items, buildPaymentItem(p))
	}

	return &dto.PaymentListResponse{
		Total:    total,
		Page:     page,
		PageSize: pageSize,
		Items:    items,
	}, nil
}

// Get 获取支付详情，仅本人可见
func (s *PaymentService) Get(ctx context.Context, userID, paymentID int64) (*dto.PaymentItem, error) {
	payment, err := s.getOwned(ctx, userID, paymentID)
	if err != nil {
		return nil, err
	}
	return buildPaymentItem(payment), nil
}

// UpdateStatus 用户变更自己的支付状态，只能取消待支付记录
func (s *PaymentService) UpdateStatus(ctx context.Context, userID, paymentID int64, req *dto.UpdatePaymentStatusRequest) (*dto.PaymentItem, error) {
	to := model.PaymentStatus(req.Status)
	if !to.Valid() {
		return nil, ErrInvalidStatusTransition
	}

	payment, err := s.getOwned(ctx, userID, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.Status.Terminal() {
		return nil, ErrPaymentFinalized
	}
	if to == payment.Status {
		return nil, ErrInvalidStatusTransition
	}
	if to != model.PaymentCancelled {
		return nil, ErrStatusNotAllowed
	}

	if err := s.transition(ctx, payment, to, nil); err != nil {
		return nil, err
	}
	return s.Get(ctx, userID, paymentID)
}

// transition 以 payment 当前状态为条件写入 to，完成支付时解除当天发推上限
func (s *PaymentService) transition(ctx context.Context, payment *model.Payment, to model.PaymentStatus, providerResponse map[string]interface{}) error {
	err := s.paymentRepo.Transaction(ctx, func(tx *gorm.DB) error {
		affected, err := s.paymentRepo.WithTx(tx).UpdateStatus(ctx, payment.ID, payment.Status, to, providerResponse)
		if err != nil {
			return err
		}
		// 并发请求已抢先变更状态
		if affected == 0 {
			return ErrPaymentFinalized
		}
		if to == model.PaymentCompleted {
			return s.quotaService.GrantUnlimited(ctx, tx, payment.UserID)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrPaymentFinalized) {
			return err
		}
		return fmt.Errorf("update payment status: %w", err)
	}
	return nil
}

// ExpirePending 取消超时未完成的待支付记录；dryRun 时只统计
func (s *PaymentService) ExpirePending(ctx context.Context, dryRun bool) (int64, error) {
	ttl := time.Duration(s.cfg.Payment.PendingTTLHours) * time.Hour
	if ttl <= 0 {
		ttl = defaultPendingTTL
	}
	before := s.now().Add(-ttl)

	if dryRun {
		return s.paymentRepo.CountPendingBefore(ctx, before)
	}
	return s.paymentRepo.CancelPendingBefore(ctx, before)
}

func (s *PaymentService) getOwned(ctx context.Context, userID, paymentID int64) (*model.Payment, error) {
	payment, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	if payment.UserID != userID {
		return nil, ErrForbidden
	}
	return payment, nil
}

func (s *PaymentService) normalizeCurrency(currency string) (string, error) {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		currency = strings.ToUpper(s.cfg.Payment.DefaultCurrency)
	}
	if currency == "" {
		currency = "USD"
	}
	if len(currency) != 3 {
		return "", ErrInvalidCurrency
	}
	for _, r := range currency {
		if r < 'A' || r > 'Z' {
			return "", ErrInvalidCurrency
		}
	}
	return currency, nil
}
