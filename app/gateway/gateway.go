package gateway

import "context"

// Invoice states reported on a transaction read.
const (
	InvoiceStateNotApplicable = "NOT_APPLICABLE"
	InvoiceStateOpen          = "OPEN"
	InvoiceStatePaid          = "PAID"
	InvoiceStateDerecognized  = "DERECOGNIZED"
)

// Refund states used by the gateway.
const (
	RefundStatePending    = "PENDING"
	RefundStateManual     = "MANUAL_CHECK"
	RefundStateSuccessful = "SUCCESSFUL"
	RefundStateFailed     = "FAILED"
)

// Credentials authenticate API calls for a single gateway space.
type Credentials struct {
	SpaceID   uint64
	APIUserID uint64
	APIKey    string
}

// Transaction is the authoritative transaction record as reported by the
// gateway API.
type Transaction struct {
	ID               uint64 `json:"id"`
	State            string `json:"state"`
	AmountTotalCents int64  `json:"amountTotalCents"`
	Currency         string `json:"currency"`
	InvoiceState     string `json:"invoiceState"`
	PaymentMethod    string `json:"paymentMethod"`
	SupportsRefund   bool   `json:"supportsRefund"`
}

type Refund struct {
	ID            uint64 `json:"id"`
	TransactionID uint64 `json:"transactionId"`
	ExternalID    string `json:"externalId"`
	State         string `json:"state"`
	AmountCents   int64  `json:"amountCents"`
}

type PaymentMethodConfiguration struct {
	ID             uint64 `json:"id"`
	Name           string `json:"name"`
	State          string `json:"state"`
	SupportsRefund bool   `json:"supportsRefund"`
}

type CreateRefundInput struct {
	TransactionID uint64  `json:"transactionId"`
	ExternalID    string  `json:"externalId"`
	AmountCents   int64   `json:"amountCents"`
	LineItemID    *uint64 `json:"lineItemId,omitempty"`
	Quantity      *int32  `json:"quantity,omitempty"`
	Reason        string  `json:"reason,omitempty"`
}

// API is the outbound gateway collaborator consumed by the reconciliation
// core. Implementations may fail with *Error carrying a transport or
// validation kind.
type API interface {
	ReadTransaction(ctx context.Context, creds Credentials, transactionID uint64) (*Transaction, error)
	CreateRefund(ctx context.Context, creds Credentials, input *CreateRefundInput) (*Refund, error)
	ReadRefund(ctx context.Context, creds Credentials, refundID uint64) (*Refund, error)
	ReadPaymentMethodConfiguration(ctx context.Context, creds Credentials, configurationID uint64) (*PaymentMethodConfiguration, error)
}
