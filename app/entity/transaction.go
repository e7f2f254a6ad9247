package entity

import "time"

// TransactionState is the gateway-reported lifecycle state of a transaction.
type TransactionState string

const (
	TransactionStateCreate     TransactionState = "CREATE"
	TransactionStatePending    TransactionState = "PENDING"
	TransactionStateConfirmed  TransactionState = "CONFIRMED"
	TransactionStateProcessing TransactionState = "PROCESSING"
	TransactionStateAuthorized TransactionState = "AUTHORIZED"
	TransactionStateCompleted  TransactionState = "COMPLETED"
	TransactionStateFulfill    TransactionState = "FULFILL"
	TransactionStateRefunded   TransactionState = "REFUNDED"
	TransactionStateDecline    TransactionState = "DECLINE"
	TransactionStateFailed     TransactionState = "FAILED"
	TransactionStateVoided     TransactionState = "VOIDED"
)

// transactionStateRank defines the lifecycle ordering used by the monotonic
// transition guard. A reported state is applied only when its rank is strictly
// greater than the rank of the last applied state. DECLINE, FAILED and VOIDED
// share a rank so that no failure terminal can replace another.
var transactionStateRank = map[TransactionState]int{
	TransactionStateCreate:     10,
	TransactionStatePending:    20,
	TransactionStateConfirmed:  30,
	TransactionStateProcessing: 40,
	TransactionStateAuthorized: 50,
	TransactionStateCompleted:  60,
	TransactionStateFulfill:    70,
	TransactionStateRefunded:   80,
	TransactionStateDecline:    90,
	TransactionStateFailed:     90,
	TransactionStateVoided:     90,
}

// Rank returns the lifecycle ordering rank of the state, or 0 when the state
// is not a recognized gateway state.
func (s TransactionState) Rank() int {
	return transactionStateRank[s]
}

// Known reports whether the state is a recognized gateway state.
func (s TransactionState) Known() bool {
	_, ok := transactionStateRank[s]
	return ok
}

// Terminal reports whether no further forward transition is defined for the
// state. COMPLETED is not terminal: the gateway still moves a completed
// transaction to FULFILL or REFUNDED.
func (s TransactionState) Terminal() bool {
	switch s {
	case TransactionStateDecline, TransactionStateFailed, TransactionStateVoided, TransactionStateRefunded:
		return true
	default:
		return false
	}
}

// Transaction mirrors a gateway transaction and its association to a local
// order. ID is the gateway-assigned transaction id.
type Transaction struct {
	ID      uint64
	SpaceID uint64
	OrderID uint64

	State TransactionState

	AmountTotalCents int64
	RefundedCents    int64
	Currency         string

	PaymentMethod  string
	SupportsRefund bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// RefundableCents is the transaction total minus previously approved refunds.
func (t *Transaction) RefundableCents() int64 {
	remaining := t.AmountTotalCents - t.RefundedCents
	if remaining < 0 {
		return 0
	}
	return remaining
}
