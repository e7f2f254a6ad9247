package repository

import (
	"context"

	"github.com/vibast-solutions/ms-go-order-sync/app/entity"
)

type WebhookEventRepository struct {
	db DBTX
}

func NewWebhookEventRepository(db DBTX) *WebhookEventRepository {
	return &WebhookEventRepository{db: db}
}

func (r *WebhookEventRepository) Create(ctx context.Context, event *entity.WebhookEvent) error {
	query := `
		INSERT INTO webhook_events (
			space_id, event_id, entity_id, listener_entity_id, listener_entity_technical_name,
			webhook_listener_id, event_timestamp, status, error, payload_json, created_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		event.SpaceID,
		event.EventID,
		event.EntityID,
		event.ListenerEntityID,
		event.ListenerEntityTechnicalName,
		event.WebhookListenerID,
		event.EventTimestamp,
		event.Status,
		nullableStringValue(event.Error),
		event.PayloadJSON,
		event.CreatedAt,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	event.ID = uint64(id)

	return nil
}
