package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/vibast-solutions/ms-go-order-sync/app/entity"
)

var ErrOrderDeliveryNotFound = errors.New("order delivery not found")

type OrderDeliveryRepository struct {
	db DBTX
}

func NewOrderDeliveryRepository(db DBTX) *OrderDeliveryRepository {
	return &OrderDeliveryRepository{db: db}
}

func (r *OrderDeliveryRepository) FindByOrderID(ctx context.Context, orderID uint64) (*entity.OrderDelivery, error) {
	query := `
		SELECT id, order_id, state, prior_state, created_at, updated_at
		FROM order_deliveries
		WHERE order_id = ?
		LIMIT 1
	`

	delivery := &entity.OrderDelivery{}
	var state string
	var priorState sql.NullString
	err := r.db.QueryRowContext(ctx, query, orderID).Scan(
		&delivery.ID,
		&delivery.OrderID,
		&state,
		&priorState,
		&delivery.CreatedAt,
		&delivery.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	delivery.State = entity.DeliveryState(state)
	if priorState.Valid {
		prior := entity.DeliveryState(priorState.String)
		delivery.PriorState = &prior
	}

	return delivery, nil
}

func (r *OrderDeliveryRepository) Update(ctx context.Context, delivery *entity.OrderDelivery) error {
	query := `
		UPDATE order_deliveries SET
			state = ?,
			prior_state = ?,
			updated_at = ?
		WHERE id = ?
	`

	var priorState interface{}
	if delivery.PriorState != nil {
		priorState = string(*delivery.PriorState)
	}

	result, err := r.db.ExecContext(ctx, query,
		string(delivery.State),
		priorState,
		delivery.UpdatedAt,
		delivery.ID,
	)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrOrderDeliveryNotFound
	}

	return nil
}
