package types

import (
	"errors"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

type CreateRefundRequest struct {
	TransactionID uint64 `json:"transactionId"`
	LineItemID    uint64 `json:"lineItemId"`
	Quantity      int32  `json:"quantity"`
	Reason        string `json:"reason"`
}

func NewCreateRefundRequestFromContext(ctx echo.Context) (*CreateRefundRequest, error) {
	var body CreateRefundRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}
	body.Reason = strings.TrimSpace(body.Reason)
	return &body, nil
}

func (r *CreateRefundRequest) Validate() error {
	if r.TransactionID == 0 {
		return errors.New("transactionId is required")
	}
	if r.LineItemID == 0 {
		return errors.New("lineItemId is required")
	}
	if r.Quantity <= 0 {
		return errors.New("quantity must be > 0")
	}
	return nil
}

type CreateRefundByAmountRequest struct {
	TransactionID uint64 `json:"transactionId"`
	AmountCents   int64  `json:"amountCents"`
	Reason        string `json:"reason"`
}

func NewCreateRefundByAmountRequestFromContext(ctx echo.Context) (*CreateRefundByAmountRequest, error) {
	var body CreateRefundByAmountRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}
	body.Reason = strings.TrimSpace(body.Reason)
	return &body, nil
}

func (r *CreateRefundByAmountRequest) Validate() error {
	if r.TransactionID == 0 {
		return errors.New("transactionId is required")
	}
	if r.AmountCents <= 0 {
		return errors.New("amountCents must be > 0")
	}
	return nil
}

type GetTransactionRequest struct {
	ID uint64
}

func NewGetTransactionRequestFromContext(ctx echo.Context) (*GetTransactionRequest, error) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		return nil, err
	}
	return &GetTransactionRequest{ID: id}, nil
}

func (r *GetTransactionRequest) Validate() error {
	if r.ID == 0 {
		return errors.New("invalid transaction id")
	}
	return nil
}
