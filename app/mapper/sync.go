package mapper

import (
	"github.com/vibast-solutions/ms-go-order-sync/app/entity"
	"github.com/vibast-solutions/ms-go-order-sync/app/types"
)

func TransactionToResponse(item *entity.Transaction) *types.TransactionResponse {
	if item == nil {
		return nil
	}

	return &types.TransactionResponse{
		ID:               item.ID,
		OrderID:          item.OrderID,
		State:            string(item.State),
		AmountTotalCents: item.AmountTotalCents,
		RefundedCents:    item.RefundedCents,
		RefundableCents:  item.RefundableCents(),
		Currency:         item.Currency,
		PaymentMethod:    item.PaymentMethod,
		SupportsRefund:   item.SupportsRefund,
		CreatedAt:        item.CreatedAt.UTC(),
		UpdatedAt:        item.UpdatedAt.UTC(),
	}
}

func RefundToResponse(item *entity.Refund) *types.RefundResponse {
	if item == nil {
		return nil
	}

	return &types.RefundResponse{
		ID:              item.ID,
		ExternalID:      item.ExternalID,
		TransactionID:   item.TransactionID,
		GatewayRefundID: item.GatewayRefundID,
		LineItemID:      item.LineItemID,
		Quantity:        item.Quantity,
		AmountCents:     item.AmountCents,
		Status:          string(item.Status),
		Reason:          item.Reason,
		CreatedAt:       item.CreatedAt.UTC(),
		UpdatedAt:       item.UpdatedAt.UTC(),
	}
}

func RefundsToResponse(items []*entity.Refund) []*types.RefundResponse {
	result := make([]*types.RefundResponse, 0, len(items))
	for _, item := range items {
		result = append(result, RefundToResponse(item))
	}
	return result
}
