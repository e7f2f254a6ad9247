package service

import (
	"context"
	"time"

	"github.com/vibast-solutions/ms-go-order-sync/app/entity"
)

// HoldDelivery suspends the order's delivery. Holding is permitted only from
// a non-terminal state; re-invoking while already on hold is a no-op.
func (s *SyncService) HoldDelivery(ctx context.Context, orderID uint64) error {
	delivery, err := s.deliveryRepo.FindByOrderID(ctx, orderID)
	if err != nil {
		return err
	}
	if delivery == nil {
		return ErrDeliveryNotFound
	}

	if delivery.State == entity.DeliveryStateHold {
		return nil
	}
	if delivery.State.Terminal() {
		return ErrDeliveryNotHoldable
	}

	prior := delivery.State
	delivery.State = entity.DeliveryStateHold
	delivery.PriorState = &prior
	delivery.UpdatedAt = time.Now().UTC()

	return s.deliveryRepo.Update(ctx, delivery)
}

// UnholdDelivery restores the state that existed immediately before the hold.
// Invoked from any state other than hold it is a no-op, since the unhold may
// arrive after a terminal transition already happened.
func (s *SyncService) UnholdDelivery(ctx context.Context, orderID uint64) error {
	delivery, err := s.deliveryRepo.FindByOrderID(ctx, orderID)
	if err != nil {
		return err
	}
	if delivery == nil {
		return ErrDeliveryNotFound
	}

	if delivery.State != entity.DeliveryStateHold {
		return nil
	}

	restored := entity.DeliveryStateOpen
	if delivery.PriorState != nil {
		restored = *delivery.PriorState
	}
	delivery.State = restored
	delivery.PriorState = nil
	delivery.UpdatedAt = time.Now().UTC()

	return s.deliveryRepo.Update(ctx, delivery)
}

// CancelDelivery moves the delivery to its terminal cancelled state. Allowed
// from any non-terminal state including hold; cancelling an already cancelled
// delivery is a no-op.
func (s *SyncService) CancelDelivery(ctx context.Context, orderID uint64) error {
	delivery, err := s.deliveryRepo.FindByOrderID(ctx, orderID)
	if err != nil {
		return err
	}
	if delivery == nil {
		return ErrDeliveryNotFound
	}

	if delivery.State == entity.DeliveryStateCancelled {
		return nil
	}
	if delivery.State.Terminal() {
		return ErrDeliveryNotCancellable
	}

	delivery.State = entity.DeliveryStateCancelled
	delivery.PriorState = nil
	delivery.UpdatedAt = time.Now().UTC()

	return s.deliveryRepo.Update(ctx, delivery)
}
