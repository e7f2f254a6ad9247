package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/vibast-solutions/ms-go-order-sync/app/entity"
)

var ErrTransactionNotFound = errors.New("transaction not found")

type TransactionRepository struct {
	db DBTX
}

func NewTransactionRepository(db DBTX) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) Update(ctx context.Context, tx *entity.Transaction) error {
	query := `
		UPDATE transactions SET
			state = ?,
			amount_total_cents = ?,
			refunded_cents = ?,
			currency = ?,
			payment_method = ?,
			supports_refund = ?,
			updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		string(tx.State),
		tx.AmountTotalCents,
		tx.RefundedCents,
		tx.Currency,
		tx.PaymentMethod,
		tx.SupportsRefund,
		tx.UpdatedAt,
		tx.ID,
	)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrTransactionNotFound
	}

	return nil
}

func (r *TransactionRepository) FindByID(ctx context.Context, id uint64) (*entity.Transaction, error) {
	query := `
		SELECT id, space_id, order_id, state, amount_total_cents, refunded_cents,
			currency, payment_method, supports_refund, created_at, updated_at
		FROM transactions
		WHERE id = ?
	`

	tx := &entity.Transaction{}
	if err := scanTransaction(r.db.QueryRowContext(ctx, query, id), tx); err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	return tx, nil
}

func (r *TransactionRepository) ListStaleNonTerminal(ctx context.Context, before time.Time, limit int32) ([]*entity.Transaction, error) {
	query := `
		SELECT id, space_id, order_id, state, amount_total_cents, refunded_cents,
			currency, payment_method, supports_refund, created_at, updated_at
		FROM transactions
		WHERE state NOT IN (?, ?, ?, ?)
		  AND updated_at <= ?
		ORDER BY updated_at ASC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query,
		string(entity.TransactionStateDecline),
		string(entity.TransactionStateFailed),
		string(entity.TransactionStateVoided),
		string(entity.TransactionStateRefunded),
		before,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]*entity.Transaction, 0)
	for rows.Next() {
		item := &entity.Transaction{}
		if err := scanTransaction(rows, item); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTransaction(scan rowScanner, tx *entity.Transaction) error {
	var state string
	err := scan.Scan(
		&tx.ID,
		&tx.SpaceID,
		&tx.OrderID,
		&state,
		&tx.AmountTotalCents,
		&tx.RefundedCents,
		&tx.Currency,
		&tx.PaymentMethod,
		&tx.SupportsRefund,
		&tx.CreatedAt,
		&tx.UpdatedAt,
	)
	if err != nil {
		return err
	}
	tx.State = entity.TransactionState(state)
	return nil
}
