package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vibast-solutions/ms-go-order-sync/app/entity"
)

// ApplyTransactionState maps a gateway-reported transaction state onto the
// local order workflow. States that are not strictly forward in the lifecycle
// ordering relative to the last applied state are a safe no-op, which makes
// out-of-order and duplicated notifications harmless.
func (s *SyncService) ApplyTransactionState(ctx context.Context, transactionID uint64, reported entity.TransactionState) error {
	if !reported.Known() {
		return fmt.Errorf("%w: %q", ErrUnknownTransactionState, reported)
	}

	tx, err := s.transactionRepo.FindByID(ctx, transactionID)
	if err != nil {
		return err
	}
	if tx == nil {
		return ErrTransactionNotFound
	}

	if tx.State.Terminal() || reported.Rank() <= tx.State.Rank() {
		s.logger.WithFields(map[string]interface{}{
			"transaction_id": transactionID,
			"current_state":  string(tx.State),
			"reported_state": string(reported),
		}).Debug("Skipping non-forward transaction state")
		return nil
	}

	now := time.Now().UTC()
	if err := s.applyOrderWorkflowAction(ctx, tx, reported, now); err != nil {
		return err
	}

	tx.State = reported
	tx.UpdatedAt = now
	if err := s.transactionRepo.Update(ctx, tx); err != nil {
		return err
	}

	s.logger.WithFields(map[string]interface{}{
		"transaction_id": transactionID,
		"order_id":       tx.OrderID,
		"state":          string(reported),
	}).Info("Applied transaction state")

	return nil
}

func (s *SyncService) applyOrderWorkflowAction(ctx context.Context, tx *entity.Transaction, reported entity.TransactionState, now time.Time) error {
	switch reported {
	case entity.TransactionStateConfirmed, entity.TransactionStateProcessing:
		return s.holdDeliveryQuietly(ctx, tx.OrderID)

	case entity.TransactionStateAuthorized:
		return s.orderRepo.UpdatePaymentState(ctx, tx.OrderID, entity.OrderPaymentStateAuthorized, now)

	case entity.TransactionStateCompleted:
		// Capture completed at the gateway; the order moves on FULFILL.
		return nil

	case entity.TransactionStateFulfill:
		if err := s.orderRepo.UpdatePaymentState(ctx, tx.OrderID, entity.OrderPaymentStatePaid, now); err != nil {
			return err
		}
		return s.unholdDeliveryQuietly(ctx, tx.OrderID)

	case entity.TransactionStateDecline, entity.TransactionStateFailed:
		if err := s.orderRepo.UpdatePaymentState(ctx, tx.OrderID, entity.OrderPaymentStateFailed, now); err != nil {
			return err
		}
		return s.unholdDeliveryQuietly(ctx, tx.OrderID)

	case entity.TransactionStateVoided:
		if err := s.orderRepo.UpdatePaymentState(ctx, tx.OrderID, entity.OrderPaymentStateCancelled, now); err != nil {
			return err
		}
		return s.cancelDeliveryQuietly(ctx, tx.OrderID)

	case entity.TransactionStateRefunded:
		return s.orderRepo.UpdatePaymentState(ctx, tx.OrderID, entity.OrderPaymentStateRefunded, now)

	default:
		// CREATE and PENDING carry no order-workflow action.
		return nil
	}
}

// holdDeliveryQuietly holds the order's delivery if one exists and is still
// holdable. A missing or already-terminal delivery never fails the
// transaction transition.
func (s *SyncService) holdDeliveryQuietly(ctx context.Context, orderID uint64) error {
	err := s.HoldDelivery(ctx, orderID)
	if err == nil || errors.Is(err, ErrDeliveryNotFound) || errors.Is(err, ErrDeliveryNotHoldable) {
		return nil
	}
	return err
}

func (s *SyncService) unholdDeliveryQuietly(ctx context.Context, orderID uint64) error {
	err := s.UnholdDelivery(ctx, orderID)
	if err == nil || errors.Is(err, ErrDeliveryNotFound) {
		return nil
	}
	return err
}

func (s *SyncService) cancelDeliveryQuietly(ctx context.Context, orderID uint64) error {
	err := s.CancelDelivery(ctx, orderID)
	if err == nil || errors.Is(err, ErrDeliveryNotFound) || errors.Is(err, ErrDeliveryNotCancellable) {
		return nil
	}
	return err
}
