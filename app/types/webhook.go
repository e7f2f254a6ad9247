package types

import (
	"encoding/json"
	"errors"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

// WebhookEnvelope is the notification body the gateway posts to the webhook
// endpoint. The gateway sends only identifiers; the entity payload itself is
// always re-read from the gateway API.
type WebhookEnvelope struct {
	EventID                     uint64 `json:"eventId"`
	EntityID                    uint64 `json:"entityId"`
	ListenerEntityID            uint64 `json:"listenerEntityId"`
	ListenerEntityTechnicalName string `json:"listenerEntityTechnicalName"`
	SpaceID                     uint64 `json:"spaceId"`
	WebhookListenerID           uint64 `json:"webhookListenerId"`
	Timestamp                   string `json:"timestamp"`

	EventTime  time.Time `json:"-"`
	RawPayload string    `json:"-"`
}

func NewWebhookEnvelopeFromContext(ctx echo.Context) (*WebhookEnvelope, error) {
	spaceID, err := strconv.ParseUint(ctx.Param("spaceId"), 10, 64)
	if err != nil {
		return nil, errors.New("invalid space id")
	}

	rawBody, err := io.ReadAll(ctx.Request().Body)
	if err != nil {
		return nil, err
	}

	var envelope WebhookEnvelope
	if err := json.Unmarshal(rawBody, &envelope); err != nil {
		return nil, err
	}

	if envelope.SpaceID == 0 {
		envelope.SpaceID = spaceID
	}
	if envelope.SpaceID != spaceID {
		return nil, errors.New("space id mismatch between path and body")
	}

	envelope.ListenerEntityTechnicalName = strings.TrimSpace(envelope.ListenerEntityTechnicalName)
	envelope.RawPayload = string(rawBody)

	return &envelope, nil
}

func (e *WebhookEnvelope) Validate() error {
	if e.EventID == 0 {
		return errors.New("eventId is required")
	}
	if e.EntityID == 0 {
		return errors.New("entityId is required")
	}
	if e.SpaceID == 0 {
		return errors.New("spaceId is required")
	}
	if e.ListenerEntityTechnicalName == "" {
		return errors.New("listenerEntityTechnicalName is required")
	}
	if strings.TrimSpace(e.Timestamp) == "" {
		return errors.New("timestamp is required")
	}

	eventTime, err := time.Parse(time.RFC3339, e.Timestamp)
	if err != nil {
		return errors.New("timestamp must be ISO-8601")
	}
	e.EventTime = eventTime

	return nil
}
