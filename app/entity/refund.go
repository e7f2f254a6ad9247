package entity

import "time"

type RefundStatus string

const (
	RefundStatusPending RefundStatus = "pending"
	RefundStatusSuccess RefundStatus = "success"
	RefundStatusFailed  RefundStatus = "failed"
)

// Terminal reports whether the refund reached a final status.
func (s RefundStatus) Terminal() bool {
	return s == RefundStatusSuccess || s == RefundStatusFailed
}

// Refund is created against exactly one transaction and, optionally, one
// order line item. Refund rows are append-only: they are never deleted, only
// transitioned to a terminal status.
type Refund struct {
	ID         uint64
	ExternalID string

	TransactionID   uint64
	GatewayRefundID *uint64

	LineItemID *uint64
	Quantity   *int32

	AmountCents int64
	Status      RefundStatus
	Reason      *string

	CreatedAt time.Time
	UpdatedAt time.Time
}
