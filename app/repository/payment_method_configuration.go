package repository

import (
	"context"

	"github.com/vibast-solutions/ms-go-order-sync/app/entity"
)

type PaymentMethodConfigurationRepository struct {
	db DBTX
}

func NewPaymentMethodConfigurationRepository(db DBTX) *PaymentMethodConfigurationRepository {
	return &PaymentMethodConfigurationRepository{db: db}
}

func (r *PaymentMethodConfigurationRepository) Upsert(ctx context.Context, cfg *entity.PaymentMethodConfiguration) error {
	query := `
		INSERT INTO payment_method_configurations (
			id, space_id, name, state, supports_refund, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			name = VALUES(name),
			state = VALUES(state),
			supports_refund = VALUES(supports_refund),
			updated_at = VALUES(updated_at)
	`

	_, err := r.db.ExecContext(ctx, query,
		cfg.ID,
		cfg.SpaceID,
		cfg.Name,
		string(cfg.State),
		cfg.SupportsRefund,
		cfg.CreatedAt,
		cfg.UpdatedAt,
	)

	return err
}
