package service

import (
	"context"
	"errors"

	"github.com/vibast-solutions/ms-go-order-sync/app/gateway"
	"github.com/vibast-solutions/ms-go-order-sync/app/lock"
)

var (
	ErrInvalidRequest          = errors.New("invalid request")
	ErrTransactionNotFound     = errors.New("transaction not found")
	ErrOrderNotFound           = errors.New("order not found")
	ErrDeliveryNotFound        = errors.New("order delivery not found")
	ErrLineItemNotFound        = errors.New("order line item not found")
	ErrRefundNotFound          = errors.New("refund not found")
	ErrUnknownTransactionState = errors.New("unknown transaction state")
	ErrSpaceNotAuthorized      = errors.New("space is not authorized")
	ErrLockContended           = errors.New("entity is locked by another worker")
	ErrDeliveryNotHoldable     = errors.New("delivery cannot be held in its current state")
	ErrDeliveryNotCancellable  = errors.New("delivery cannot be cancelled in its current state")

	// Refund validation errors carry the symbolic reason code surfaced to
	// callers of the refund APIs.
	ErrRefundExceedsAmount     = errors.New("refundExceedsAmount")
	ErrRefundAmountZero        = errors.New("refundAmountZero")
	ErrRefundNotSupported      = errors.New("methodDoesNotSupportRefund")
	ErrRefundsByAmountDisabled = errors.New("refundsByAmountNotEnabled")
)

// IsRetryable reports whether the failure is transient and worth another
// delivery attempt.
func IsRetryable(err error) bool {
	return retryableError(err)
}

// retryableError reports whether the failure is transient: the idempotency
// record must not be written so the gateway's redelivery can retry the event.
func retryableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrLockContended) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var gatewayErr *gateway.Error
	if errors.As(err, &gatewayErr) {
		return gatewayErr.Retryable()
	}
	return errors.Is(err, lock.ErrNotAcquired)
}
