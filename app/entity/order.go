package entity

import "time"

// OrderPaymentState is the local order-workflow payment state.
type OrderPaymentState string

const (
	OrderPaymentStateOpen       OrderPaymentState = "open"
	OrderPaymentStateAuthorized OrderPaymentState = "authorized"
	OrderPaymentStatePaid       OrderPaymentState = "paid"
	OrderPaymentStateFailed     OrderPaymentState = "failed"
	OrderPaymentStateCancelled  OrderPaymentState = "cancelled"
	OrderPaymentStateRefunded   OrderPaymentState = "refunded"
)

type Order struct {
	ID             uint64
	OrderNumber    string
	SalesChannelID string

	PaymentState     OrderPaymentState
	InvoiceAvailable bool

	AmountTotalCents int64
	Currency         string

	CreatedAt time.Time
	UpdatedAt time.Time
}

type OrderLineItem struct {
	ID      uint64
	OrderID uint64

	Label            string
	Quantity         int32
	UnitPriceCents   int64
	TotalCents       int64
	RefundedQuantity int32
}

// RefundableQuantity is the quantity not yet covered by a refund request.
func (li *OrderLineItem) RefundableQuantity() int32 {
	remaining := li.Quantity - li.RefundedQuantity
	if remaining < 0 {
		return 0
	}
	return remaining
}
