package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-order-sync/app/entity"
	"github.com/vibast-solutions/ms-go-order-sync/app/factory"
	"github.com/vibast-solutions/ms-go-order-sync/app/gateway"
	"github.com/vibast-solutions/ms-go-order-sync/app/lock"
	"github.com/vibast-solutions/ms-go-order-sync/app/settings"
	"github.com/vibast-solutions/ms-go-order-sync/config"
)

type transactionRepository interface {
	Update(ctx context.Context, tx *entity.Transaction) error
	FindByID(ctx context.Context, id uint64) (*entity.Transaction, error)
	ListStaleNonTerminal(ctx context.Context, before time.Time, limit int32) ([]*entity.Transaction, error)
}

type orderRepository interface {
	UpdatePaymentState(ctx context.Context, orderID uint64, state entity.OrderPaymentState, now time.Time) error
	MarkInvoiceAvailable(ctx context.Context, orderID uint64, now time.Time) error
}

type orderDeliveryRepository interface {
	FindByOrderID(ctx context.Context, orderID uint64) (*entity.OrderDelivery, error)
	Update(ctx context.Context, delivery *entity.OrderDelivery) error
}

type orderLineItemRepository interface {
	FindByID(ctx context.Context, id uint64) (*entity.OrderLineItem, error)
	AddRefundedQuantity(ctx context.Context, id uint64, delta int32) error
}

type refundRepository interface {
	Create(ctx context.Context, refund *entity.Refund) error
	Update(ctx context.Context, refund *entity.Refund) error
	FindByGatewayRefundID(ctx context.Context, gatewayRefundID uint64) (*entity.Refund, error)
	ListByTransactionID(ctx context.Context, transactionID uint64) ([]*entity.Refund, error)
	SumOutstandingCents(ctx context.Context, transactionID uint64) (int64, error)
}

type idempotencyRepository interface {
	Exists(ctx context.Context, spaceID, eventID uint64) (bool, error)
	Mark(ctx context.Context, spaceID, eventID uint64, processedAt time.Time) error
}

type webhookEventRepository interface {
	Create(ctx context.Context, event *entity.WebhookEvent) error
}

type paymentMethodConfigurationRepository interface {
	Upsert(ctx context.Context, cfg *entity.PaymentMethodConfiguration) error
}

// SyncService owns the webhook ingestion pipeline and the per-entity state
// machines that keep local orders in step with the payment gateway.
type SyncService struct {
	transactionRepo  transactionRepository
	orderRepo        orderRepository
	deliveryRepo     orderDeliveryRepository
	lineItemRepo     orderLineItemRepository
	refundRepo       refundRepository
	idempotencyRepo  idempotencyRepository
	webhookEventRepo webhookEventRepository
	methodConfigRepo paymentMethodConfigurationRepository

	gatewayAPI gateway.API
	settings   settings.Service
	locker     lock.EntityLocker
	syncCfg    config.SyncConfig
	logger     logrus.FieldLogger
}

func NewSyncService(
	transactionRepo transactionRepository,
	orderRepo orderRepository,
	deliveryRepo orderDeliveryRepository,
	lineItemRepo orderLineItemRepository,
	refundRepo refundRepository,
	idempotencyRepo idempotencyRepository,
	webhookEventRepo webhookEventRepository,
	methodConfigRepo paymentMethodConfigurationRepository,
	gatewayAPI gateway.API,
	settingsService settings.Service,
	locker lock.EntityLocker,
	syncCfg config.SyncConfig,
) *SyncService {
	return &SyncService{
		transactionRepo:  transactionRepo,
		orderRepo:        orderRepo,
		deliveryRepo:     deliveryRepo,
		lineItemRepo:     lineItemRepo,
		refundRepo:       refundRepo,
		idempotencyRepo:  idempotencyRepo,
		webhookEventRepo: webhookEventRepo,
		methodConfigRepo: methodConfigRepo,
		gatewayAPI:       gatewayAPI,
		settings:         settingsService,
		locker:           locker,
		syncCfg:          syncCfg,
		logger:           factory.NewModuleLogger("sync-service"),
	}
}

func (s *SyncService) batchSize() int32 {
	if s.syncCfg.JobBatchSize > 0 {
		return s.syncCfg.JobBatchSize
	}
	return 100
}
