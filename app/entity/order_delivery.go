package entity

import "time"

// DeliveryState is the delivery lifecycle state, extended with the reversible
// hold state used while a payment is settling.
type DeliveryState string

const (
	DeliveryStateOpen             DeliveryState = "open"
	DeliveryStateShippedPartially DeliveryState = "shipped_partially"
	DeliveryStateShipped          DeliveryState = "shipped"
	DeliveryStateReturned         DeliveryState = "returned"
	DeliveryStateCancelled        DeliveryState = "cancelled"
	DeliveryStateHold             DeliveryState = "hold"
)

// Terminal reports whether the delivery can no longer change state.
func (s DeliveryState) Terminal() bool {
	switch s {
	case DeliveryStateShipped, DeliveryStateReturned, DeliveryStateCancelled:
		return true
	default:
		return false
	}
}

// OrderDelivery belongs to exactly one order. PriorState is set while the
// delivery is on hold so that unhold can restore the pre-hold state.
type OrderDelivery struct {
	ID      uint64
	OrderID uint64

	State      DeliveryState
	PriorState *DeliveryState

	CreatedAt time.Time
	UpdatedAt time.Time
}
