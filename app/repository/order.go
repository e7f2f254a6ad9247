package repository

import (
	"context"
	"errors"
	"time"

	"github.com/vibast-solutions/ms-go-order-sync/app/entity"
)

var ErrOrderNotFound = errors.New("order not found")

type OrderRepository struct {
	db DBTX
}

func NewOrderRepository(db DBTX) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) UpdatePaymentState(ctx context.Context, orderID uint64, state entity.OrderPaymentState, now time.Time) error {
	query := `UPDATE orders SET payment_state = ?, updated_at = ? WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, string(state), now, orderID)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrOrderNotFound
	}

	return nil
}

func (r *OrderRepository) MarkInvoiceAvailable(ctx context.Context, orderID uint64, now time.Time) error {
	query := `UPDATE orders SET invoice_available = TRUE, updated_at = ? WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, now, orderID)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrOrderNotFound
	}

	return nil
}
