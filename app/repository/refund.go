package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/vibast-solutions/ms-go-order-sync/app/entity"
)

var (
	ErrRefundNotFound      = errors.New("refund not found")
	ErrRefundAlreadyExists = errors.New("refund already exists")
)

type RefundRepository struct {
	db DBTX
}

func NewRefundRepository(db DBTX) *RefundRepository {
	return &RefundRepository{db: db}
}

func (r *RefundRepository) Create(ctx context.Context, refund *entity.Refund) error {
	query := `
		INSERT INTO refunds (
			external_id, transaction_id, gateway_refund_id, line_item_id, quantity,
			amount_cents, status, reason, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		refund.ExternalID,
		refund.TransactionID,
		nullableUint64Value(refund.GatewayRefundID),
		nullableUint64Value(refund.LineItemID),
		nullableInt32Value(refund.Quantity),
		refund.AmountCents,
		string(refund.Status),
		nullableStringValue(refund.Reason),
		refund.CreatedAt,
		refund.UpdatedAt,
	)
	if err != nil {
		if isDuplicateEntryError(err) {
			return ErrRefundAlreadyExists
		}
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	refund.ID = uint64(id)

	return nil
}

func (r *RefundRepository) Update(ctx context.Context, refund *entity.Refund) error {
	query := `
		UPDATE refunds SET
			gateway_refund_id = ?,
			status = ?,
			reason = ?,
			updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		nullableUint64Value(refund.GatewayRefundID),
		string(refund.Status),
		nullableStringValue(refund.Reason),
		refund.UpdatedAt,
		refund.ID,
	)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrRefundNotFound
	}

	return nil
}

func (r *RefundRepository) FindByGatewayRefundID(ctx context.Context, gatewayRefundID uint64) (*entity.Refund, error) {
	query := `
		SELECT id, external_id, transaction_id, gateway_refund_id, line_item_id, quantity,
			amount_cents, status, reason, created_at, updated_at
		FROM refunds
		WHERE gateway_refund_id = ?
		LIMIT 1
	`

	refund := &entity.Refund{}
	if err := scanRefund(r.db.QueryRowContext(ctx, query, gatewayRefundID), refund); err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	return refund, nil
}

func (r *RefundRepository) ListByTransactionID(ctx context.Context, transactionID uint64) ([]*entity.Refund, error) {
	query := `
		SELECT id, external_id, transaction_id, gateway_refund_id, line_item_id, quantity,
			amount_cents, status, reason, created_at, updated_at
		FROM refunds
		WHERE transaction_id = ?
		ORDER BY id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, transactionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	refunds := make([]*entity.Refund, 0)
	for rows.Next() {
		item := &entity.Refund{}
		if err := scanRefund(rows, item); err != nil {
			return nil, err
		}
		refunds = append(refunds, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return refunds, nil
}

// SumOutstandingCents returns the amount held by refunds that are pending or
// already succeeded. Failed refunds release their amount back to the
// refundable balance.
func (r *RefundRepository) SumOutstandingCents(ctx context.Context, transactionID uint64) (int64, error) {
	query := `
		SELECT COALESCE(SUM(amount_cents), 0)
		FROM refunds
		WHERE transaction_id = ? AND status IN (?, ?)
	`

	var total int64
	err := r.db.QueryRowContext(ctx, query,
		transactionID,
		string(entity.RefundStatusPending),
		string(entity.RefundStatusSuccess),
	).Scan(&total)
	if err != nil {
		return 0, err
	}

	return total, nil
}

func scanRefund(scan rowScanner, refund *entity.Refund) error {
	var gatewayRefundID sql.NullInt64
	var lineItemID sql.NullInt64
	var quantity sql.NullInt32
	var status string
	var reason sql.NullString

	err := scan.Scan(
		&refund.ID,
		&refund.ExternalID,
		&refund.TransactionID,
		&gatewayRefundID,
		&lineItemID,
		&quantity,
		&refund.AmountCents,
		&status,
		&reason,
		&refund.CreatedAt,
		&refund.UpdatedAt,
	)
	if err != nil {
		return err
	}

	refund.GatewayRefundID = uint64PtrFromNull(gatewayRefundID)
	refund.LineItemID = uint64PtrFromNull(lineItemID)
	refund.Quantity = int32PtrFromNull(quantity)
	refund.Status = entity.RefundStatus(status)
	refund.Reason = stringPtrFromNull(reason)

	return nil
}
