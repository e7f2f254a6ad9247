package entity

import "time"

const (
	WebhookEventStatusProcessed int32 = 10
	WebhookEventStatusRejected  int32 = 20
	WebhookEventStatusDiscarded int32 = 30
)

// WebhookEvent journals every inbound gateway notification together with the
// outcome of its reconciliation.
type WebhookEvent struct {
	ID uint64

	SpaceID  uint64
	EventID  uint64
	EntityID uint64

	ListenerEntityID            uint64
	ListenerEntityTechnicalName string
	WebhookListenerID           uint64

	EventTimestamp time.Time

	Status      int32
	Error       *string
	PayloadJSON string

	CreatedAt time.Time
}

// IdempotencyRecord marks a (space, event) pair as processed. Existence of a
// record makes any further processing of the pair a no-op.
type IdempotencyRecord struct {
	SpaceID     uint64
	EventID     uint64
	ProcessedAt time.Time
}
