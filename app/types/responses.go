package types

import "time"

type ErrorResponse struct {
	Error string `json:"error"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

type TransactionResponse struct {
	ID               uint64 `json:"id"`
	OrderID          uint64 `json:"orderId"`
	State            string `json:"state"`
	AmountTotalCents int64  `json:"amountTotalCents"`
	RefundedCents    int64  `json:"refundedCents"`
	RefundableCents  int64  `json:"refundableCents"`
	Currency         string `json:"currency"`
	PaymentMethod    string `json:"paymentMethod"`
	SupportsRefund   bool   `json:"supportsRefund"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type RefundResponse struct {
	ID              uint64  `json:"id"`
	ExternalID      string  `json:"externalId"`
	TransactionID   uint64  `json:"transactionId"`
	GatewayRefundID *uint64 `json:"gatewayRefundId,omitempty"`
	LineItemID      *uint64 `json:"lineItemId,omitempty"`
	Quantity        *int32  `json:"quantity,omitempty"`
	AmountCents     int64   `json:"amountCents"`
	Status          string  `json:"status"`
	Reason          *string `json:"reason,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type RefundListResponse struct {
	Refunds []*RefundResponse `json:"refunds"`
	Total   int               `json:"total"`
}
