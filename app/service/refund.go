package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/vibast-solutions/ms-go-order-sync/app/entity"
	"github.com/vibast-solutions/ms-go-order-sync/app/gateway"
	"github.com/vibast-solutions/ms-go-order-sync/app/lock"
	"github.com/vibast-solutions/ms-go-order-sync/app/metrics"
	"github.com/vibast-solutions/ms-go-order-sync/app/settings"
)

// CreateRefund issues a refund for a quantity of one order line item. The
// derived amount is validated against the transaction's refundable balance
// before the request leaves for the gateway. Creation runs under the same
// per-transaction lock as webhook reconciliation so the balance check cannot
// race a concurrent refund.
func (s *SyncService) CreateRefund(ctx context.Context, transactionID, lineItemID uint64, quantity int32, reason string) (*entity.Refund, error) {
	release, err := s.acquireTransactionLock(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	defer release()

	tx, snap, err := s.refundableTransaction(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	lineItem, err := s.lineItemRepo.FindByID(ctx, lineItemID)
	if err != nil {
		return nil, err
	}
	if lineItem == nil || lineItem.OrderID != tx.OrderID {
		return nil, ErrLineItemNotFound
	}

	if quantity <= 0 || quantity > lineItem.RefundableQuantity() {
		return nil, ErrRefundExceedsAmount
	}

	amountCents := int64(quantity) * lineItem.UnitPriceCents
	if err := s.checkRefundableBalance(ctx, tx, amountCents); err != nil {
		return nil, err
	}

	refund, err := s.submitRefund(ctx, snap, tx, &gateway.CreateRefundInput{
		TransactionID: tx.ID,
		AmountCents:   amountCents,
		LineItemID:    &lineItemID,
		Quantity:      &quantity,
		Reason:        reason,
	})
	if err != nil {
		return nil, err
	}

	if err := s.lineItemRepo.AddRefundedQuantity(ctx, lineItemID, quantity); err != nil {
		s.logger.WithError(err).WithField("line_item_id", lineItemID).Warn("Recording refunded quantity failed")
	}

	metrics.RefundsCreatedTotal.WithLabelValues("line_item").Inc()
	return refund, nil
}

// CreateRefundByAmount issues a refund for a caller-supplied amount. The
// operation is gated by the refunds-by-amount feature toggle.
func (s *SyncService) CreateRefundByAmount(ctx context.Context, transactionID uint64, amountCents int64, reason string) (*entity.Refund, error) {
	release, err := s.acquireTransactionLock(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	defer release()

	tx, snap, err := s.refundableTransaction(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	if !snap.RefundsByAmountEnabled {
		return nil, ErrRefundsByAmountDisabled
	}

	if err := s.checkRefundableBalance(ctx, tx, amountCents); err != nil {
		return nil, err
	}

	refund, err := s.submitRefund(ctx, snap, tx, &gateway.CreateRefundInput{
		TransactionID: tx.ID,
		AmountCents:   amountCents,
		Reason:        reason,
	})
	if err != nil {
		return nil, err
	}

	metrics.RefundsCreatedTotal.WithLabelValues("amount").Inc()
	return refund, nil
}

// ListRefunds returns all refund records of a transaction.
func (s *SyncService) ListRefunds(ctx context.Context, transactionID uint64) ([]*entity.Refund, error) {
	tx, err := s.transactionRepo.FindByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, ErrTransactionNotFound
	}

	return s.refundRepo.ListByTransactionID(ctx, transactionID)
}

// GetTransaction returns the local transaction mirror.
func (s *SyncService) GetTransaction(ctx context.Context, transactionID uint64) (*entity.Transaction, error) {
	tx, err := s.transactionRepo.FindByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, ErrTransactionNotFound
	}
	return tx, nil
}

func (s *SyncService) refundableTransaction(ctx context.Context, transactionID uint64) (*entity.Transaction, *settings.Snapshot, error) {
	tx, err := s.transactionRepo.FindByID(ctx, transactionID)
	if err != nil {
		return nil, nil, err
	}
	if tx == nil {
		return nil, nil, ErrTransactionNotFound
	}
	if !tx.SupportsRefund {
		return nil, nil, ErrRefundNotSupported
	}

	snap, ok := s.settings.ForSpace(tx.SpaceID)
	if !ok {
		return nil, nil, ErrSpaceNotAuthorized
	}

	return tx, snap, nil
}

func (s *SyncService) acquireTransactionLock(ctx context.Context, transactionID uint64) (func(), error) {
	release, err := s.locker.Acquire(ctx, entityLockKey(EntityNameTransaction, transactionID), s.syncCfg.LockAcquireTimeout)
	if err != nil {
		if errors.Is(err, lock.ErrNotAcquired) {
			return nil, ErrLockContended
		}
		return nil, err
	}
	return release, nil
}

// checkRefundableBalance enforces the refund balance invariant: the amount of
// all pending and succeeded refunds never exceeds the transaction total.
func (s *SyncService) checkRefundableBalance(ctx context.Context, tx *entity.Transaction, amountCents int64) error {
	if amountCents <= 0 {
		return ErrRefundAmountZero
	}

	outstanding, err := s.refundRepo.SumOutstandingCents(ctx, tx.ID)
	if err != nil {
		return err
	}
	if amountCents > tx.AmountTotalCents-outstanding {
		return ErrRefundExceedsAmount
	}

	return nil
}

func (s *SyncService) submitRefund(ctx context.Context, snap *settings.Snapshot, tx *entity.Transaction, input *gateway.CreateRefundInput) (*entity.Refund, error) {
	input.ExternalID = uuid.NewString()

	gatewayRefund, err := s.gatewayAPI.CreateRefund(ctx, snap.Credentials, input)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	refund := &entity.Refund{
		ExternalID:      input.ExternalID,
		TransactionID:   tx.ID,
		GatewayRefundID: &gatewayRefund.ID,
		LineItemID:      input.LineItemID,
		Quantity:        input.Quantity,
		AmountCents:     input.AmountCents,
		Status:          entity.RefundStatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if input.Reason != "" {
		reason := input.Reason
		refund.Reason = &reason
	}

	if err := s.refundRepo.Create(ctx, refund); err != nil {
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"transaction_id":    tx.ID,
		"gateway_refund_id": gatewayRefund.ID,
		"amount_cents":      input.AmountCents,
	}).Info("Submitted refund to gateway")

	return refund, nil
}

// ReconcileRefundNotification folds an asynchronous refund-state notification
// into the local refund record. Terminal statuses are irreversible; repeated
// or out-of-order notifications are a no-op. All local reads and writes run
// under the refund's transaction lock; a succeeded refund mutates the
// transaction row, and that write must not interleave with a transaction
// webhook holding the same lock.
func (s *SyncService) ReconcileRefundNotification(ctx context.Context, snap *settings.Snapshot, gatewayRefundID uint64) error {
	gatewayRefund, err := s.gatewayAPI.ReadRefund(ctx, snap.Credentials, gatewayRefundID)
	if err != nil {
		return err
	}

	release, err := s.acquireTransactionLock(ctx, gatewayRefund.TransactionID)
	if err != nil {
		return err
	}
	defer release()

	refund, err := s.refundRepo.FindByGatewayRefundID(ctx, gatewayRefundID)
	if err != nil {
		return err
	}
	if refund == nil {
		// Refunds can be initiated directly in the gateway back office;
		// mirror them locally so the balance stays correct.
		refund, err = s.adoptGatewayRefund(ctx, gatewayRefund)
		if err != nil {
			return err
		}
	}

	newStatus := mapGatewayRefundState(gatewayRefund.State)
	if refund.Status.Terminal() || newStatus == refund.Status || newStatus == entity.RefundStatusPending {
		return nil
	}

	now := time.Now().UTC()
	refund.Status = newStatus
	refund.UpdatedAt = now
	if err := s.refundRepo.Update(ctx, refund); err != nil {
		return err
	}

	switch newStatus {
	case entity.RefundStatusSuccess:
		return s.applySucceededRefund(ctx, refund, now)
	case entity.RefundStatusFailed:
		return s.applyFailedRefund(ctx, refund)
	}

	return nil
}

func (s *SyncService) adoptGatewayRefund(ctx context.Context, gatewayRefund *gateway.Refund) (*entity.Refund, error) {
	tx, err := s.transactionRepo.FindByID(ctx, gatewayRefund.TransactionID)
	if err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, ErrTransactionNotFound
	}

	now := time.Now().UTC()
	refund := &entity.Refund{
		ExternalID:      gatewayRefund.ExternalID,
		TransactionID:   tx.ID,
		GatewayRefundID: &gatewayRefund.ID,
		AmountCents:     gatewayRefund.AmountCents,
		Status:          entity.RefundStatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if refund.ExternalID == "" {
		refund.ExternalID = uuid.NewString()
	}

	if err := s.refundRepo.Create(ctx, refund); err != nil {
		return nil, err
	}

	return refund, nil
}

func (s *SyncService) applySucceededRefund(ctx context.Context, refund *entity.Refund, now time.Time) error {
	tx, err := s.transactionRepo.FindByID(ctx, refund.TransactionID)
	if err != nil {
		return err
	}
	if tx == nil {
		return ErrTransactionNotFound
	}

	tx.RefundedCents += refund.AmountCents
	if tx.RefundedCents > tx.AmountTotalCents {
		tx.RefundedCents = tx.AmountTotalCents
	}
	tx.UpdatedAt = now
	if err := s.transactionRepo.Update(ctx, tx); err != nil {
		return err
	}

	if tx.RefundedCents >= tx.AmountTotalCents {
		return s.ApplyTransactionState(ctx, tx.ID, entity.TransactionStateRefunded)
	}

	return nil
}

// applyFailedRefund releases the line item quantity held by the failed
// request so it can be refunded again.
func (s *SyncService) applyFailedRefund(ctx context.Context, refund *entity.Refund) error {
	if refund.LineItemID == nil || refund.Quantity == nil {
		return nil
	}
	if err := s.lineItemRepo.AddRefundedQuantity(ctx, *refund.LineItemID, -*refund.Quantity); err != nil {
		s.logger.WithError(err).WithField("line_item_id", *refund.LineItemID).Warn("Releasing refunded quantity failed")
	}
	return nil
}

func mapGatewayRefundState(state string) entity.RefundStatus {
	switch state {
	case gateway.RefundStateSuccessful:
		return entity.RefundStatusSuccess
	case gateway.RefundStateFailed:
		return entity.RefundStatusFailed
	default:
		return entity.RefundStatusPending
	}
}
