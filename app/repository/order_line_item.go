package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/vibast-solutions/ms-go-order-sync/app/entity"
)

var (
	ErrOrderLineItemNotFound    = errors.New("order line item not found")
	ErrRefundedQuantityExceeded = errors.New("refunded quantity out of range")
)

type OrderLineItemRepository struct {
	db DBTX
}

func NewOrderLineItemRepository(db DBTX) *OrderLineItemRepository {
	return &OrderLineItemRepository{db: db}
}

func (r *OrderLineItemRepository) FindByID(ctx context.Context, id uint64) (*entity.OrderLineItem, error) {
	query := `
		SELECT id, order_id, label, quantity, unit_price_cents, total_cents, refunded_quantity
		FROM order_line_items
		WHERE id = ?
	`

	item := &entity.OrderLineItem{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&item.ID,
		&item.OrderID,
		&item.Label,
		&item.Quantity,
		&item.UnitPriceCents,
		&item.TotalCents,
		&item.RefundedQuantity,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return item, nil
}

func (r *OrderLineItemRepository) AddRefundedQuantity(ctx context.Context, id uint64, delta int32) error {
	query := `
		UPDATE order_line_items
		SET refunded_quantity = refunded_quantity + ?
		WHERE id = ? AND refunded_quantity + ? <= quantity AND refunded_quantity + ? >= 0
	`

	result, err := r.db.ExecContext(ctx, query, delta, id, delta, delta)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrRefundedQuantityExceeded
	}

	return nil
}
