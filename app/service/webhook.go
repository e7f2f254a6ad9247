package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vibast-solutions/ms-go-order-sync/app/entity"
	"github.com/vibast-solutions/ms-go-order-sync/app/lock"
	"github.com/vibast-solutions/ms-go-order-sync/app/metrics"
	"github.com/vibast-solutions/ms-go-order-sync/app/repository"
	"github.com/vibast-solutions/ms-go-order-sync/app/settings"
	"github.com/vibast-solutions/ms-go-order-sync/app/types"
)

// Listener entity technical names used by the gateway.
const (
	EntityNameTransaction                = "Transaction"
	EntityNameRefund                     = "Refund"
	EntityNameTransactionInvoice         = "TransactionInvoice"
	EntityNamePaymentMethodConfiguration = "PaymentMethodConfiguration"
)

// HandleWebhookEvent runs the full ingestion pipeline for one gateway
// notification: credential check, per-entity lock, idempotency lookup,
// dispatch by entity type, and the idempotency commit.
//
// The commit rule implements the redelivery contract: a retryable failure
// leaves no idempotency record so the gateway can redeliver; a non-retryable
// failure writes the record to stop the redelivery loop and journals the
// error for the operator.
func (s *SyncService) HandleWebhookEvent(ctx context.Context, envelope *types.WebhookEnvelope, payloadJSON string) error {
	start := time.Now()
	entityName := envelope.ListenerEntityTechnicalName

	snap, ok := s.settings.ForSpace(envelope.SpaceID)
	if !ok {
		metrics.WebhookEventsTotal.WithLabelValues(entityName, metrics.ResultRejected).Inc()
		return ErrSpaceNotAuthorized
	}

	release, err := s.locker.Acquire(ctx, entityLockKey(entityName, envelope.EntityID), s.syncCfg.LockAcquireTimeout)
	if err != nil {
		metrics.WebhookEventsTotal.WithLabelValues(entityName, metrics.ResultRetryable).Inc()
		if errors.Is(err, lock.ErrNotAcquired) {
			return ErrLockContended
		}
		return err
	}
	defer release()

	processed, err := s.idempotencyRepo.Exists(ctx, envelope.SpaceID, envelope.EventID)
	if err != nil {
		return err
	}
	if processed {
		metrics.WebhookEventsTotal.WithLabelValues(entityName, metrics.ResultDuplicate).Inc()
		s.logger.WithFields(map[string]interface{}{
			"space_id": envelope.SpaceID,
			"event_id": envelope.EventID,
		}).Debug("Skipping already processed webhook event")
		return nil
	}

	status := entity.WebhookEventStatusProcessed
	result := metrics.ResultProcessed

	handleErr := s.dispatchWebhookEvent(ctx, envelope, snap)
	if handleErr != nil {
		if retryableError(handleErr) {
			metrics.WebhookEventsTotal.WithLabelValues(entityName, metrics.ResultRetryable).Inc()
			s.logger.WithError(handleErr).WithFields(map[string]interface{}{
				"space_id":    envelope.SpaceID,
				"event_id":    envelope.EventID,
				"entity_id":   envelope.EntityID,
				"entity_name": entityName,
			}).Warn("Webhook reconciliation failed, awaiting redelivery")
			return handleErr
		}
		status = entity.WebhookEventStatusRejected
		result = metrics.ResultRejected
	} else if !knownEntityName(entityName) {
		status = entity.WebhookEventStatusDiscarded
		result = metrics.ResultDiscarded
	}

	if err := s.idempotencyRepo.Mark(ctx, envelope.SpaceID, envelope.EventID, time.Now().UTC()); err != nil && !errors.Is(err, repository.ErrAlreadyProcessed) {
		return err
	}
	s.journalWebhookEvent(ctx, envelope, payloadJSON, status, handleErr)

	metrics.WebhookEventsTotal.WithLabelValues(entityName, result).Inc()
	metrics.WebhookProcessingDuration.WithLabelValues(entityName).Observe(time.Since(start).Seconds())

	if handleErr != nil {
		s.logger.WithError(handleErr).WithFields(map[string]interface{}{
			"space_id":    envelope.SpaceID,
			"event_id":    envelope.EventID,
			"entity_id":   envelope.EntityID,
			"entity_name": entityName,
		}).Error("Webhook event rejected")
		return handleErr
	}

	return nil
}

func (s *SyncService) dispatchWebhookEvent(ctx context.Context, envelope *types.WebhookEnvelope, snap *settings.Snapshot) error {
	switch envelope.ListenerEntityTechnicalName {
	case EntityNameTransaction:
		return s.reconcileTransactionEvent(ctx, snap, envelope.EntityID)
	case EntityNameRefund:
		return s.ReconcileRefundNotification(ctx, snap, envelope.EntityID)
	case EntityNameTransactionInvoice:
		return s.reconcileTransactionInvoice(ctx, snap, envelope.EntityID)
	case EntityNamePaymentMethodConfiguration:
		return s.reconcilePaymentMethodConfiguration(ctx, snap, envelope.EntityID)
	default:
		s.logger.WithFields(map[string]interface{}{
			"entity_name": envelope.ListenerEntityTechnicalName,
			"event_id":    envelope.EventID,
		}).Info("Discarding webhook event for unknown entity type")
		return nil
	}
}

// reconcileTransactionEvent pulls the authoritative transaction from the
// gateway and folds its state into the local order workflow. The notification
// itself only announces that something changed; the gateway read is the
// source of truth, so delivery order does not matter.
func (s *SyncService) reconcileTransactionEvent(ctx context.Context, snap *settings.Snapshot, transactionID uint64) error {
	gatewayTx, err := s.gatewayAPI.ReadTransaction(ctx, snap.Credentials, transactionID)
	if err != nil {
		return err
	}

	return s.ApplyTransactionState(ctx, transactionID, entity.TransactionState(gatewayTx.State))
}

// reconcileTransactionInvoice marks the order's invoice document available
// once the gateway settles the invoice. The gateway reports the linked
// transaction id as the invoice notification's entity id.
func (s *SyncService) reconcileTransactionInvoice(ctx context.Context, snap *settings.Snapshot, transactionID uint64) error {
	gatewayTx, err := s.gatewayAPI.ReadTransaction(ctx, snap.Credentials, transactionID)
	if err != nil {
		return err
	}

	tx, err := s.transactionRepo.FindByID(ctx, transactionID)
	if err != nil {
		return err
	}
	if tx == nil {
		return ErrTransactionNotFound
	}

	switch gatewayTx.InvoiceState {
	case "PAID", "DERECOGNIZED":
		return s.orderRepo.MarkInvoiceAvailable(ctx, tx.OrderID, time.Now().UTC())
	default:
		return nil
	}
}

func (s *SyncService) reconcilePaymentMethodConfiguration(ctx context.Context, snap *settings.Snapshot, configurationID uint64) error {
	gatewayCfg, err := s.gatewayAPI.ReadPaymentMethodConfiguration(ctx, snap.Credentials, configurationID)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	return s.methodConfigRepo.Upsert(ctx, &entity.PaymentMethodConfiguration{
		ID:             gatewayCfg.ID,
		SpaceID:        snap.Credentials.SpaceID,
		Name:           gatewayCfg.Name,
		State:          entity.PaymentMethodConfigurationState(gatewayCfg.State),
		SupportsRefund: gatewayCfg.SupportsRefund,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
}

func (s *SyncService) journalWebhookEvent(ctx context.Context, envelope *types.WebhookEnvelope, payloadJSON string, status int32, handleErr error) {
	record := &entity.WebhookEvent{
		SpaceID:                     envelope.SpaceID,
		EventID:                     envelope.EventID,
		EntityID:                    envelope.EntityID,
		ListenerEntityID:            envelope.ListenerEntityID,
		ListenerEntityTechnicalName: envelope.ListenerEntityTechnicalName,
		WebhookListenerID:           envelope.WebhookListenerID,
		EventTimestamp:              envelope.EventTime,
		Status:                      status,
		PayloadJSON:                 payloadJSON,
		CreatedAt:                   time.Now().UTC(),
	}
	if handleErr != nil {
		message := truncate(handleErr.Error(), 1024)
		record.Error = &message
	}

	if err := s.webhookEventRepo.Create(ctx, record); err != nil {
		s.logger.WithError(err).WithField("event_id", envelope.EventID).Warn("Journaling webhook event failed")
	}
}

func knownEntityName(name string) bool {
	switch name {
	case EntityNameTransaction, EntityNameRefund, EntityNameTransactionInvoice, EntityNamePaymentMethodConfiguration:
		return true
	default:
		return false
	}
}

func entityLockKey(entityName string, entityID uint64) string {
	return fmt.Sprintf("ordersync:%s:%d", entityName, entityID)
}

func truncate(value string, max int) string {
	if len(value) <= max {
		return value
	}
	return value[:max]
}
