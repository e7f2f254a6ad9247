package controller

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-order-sync/app/factory"
	"github.com/vibast-solutions/ms-go-order-sync/app/service"
	"github.com/vibast-solutions/ms-go-order-sync/app/types"
)

type WebhookController struct {
	syncService *service.SyncService
	logger      logrus.FieldLogger
}

func NewWebhookController(syncService *service.SyncService) *WebhookController {
	return &WebhookController{
		syncService: syncService,
		logger:      factory.NewModuleLogger("webhook-controller"),
	}
}

// HandleWebhook accepts a gateway notification. The response code drives the
// gateway's redelivery behavior: 2xx stops redelivery, anything else queues
// the event for another attempt. Non-retryable reconciliation failures are
// therefore acknowledged with 200 after being journaled; only transient
// failures answer 503.
func (c *WebhookController) HandleWebhook(ctx echo.Context) error {
	envelope, err := types.NewWebhookEnvelopeFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid webhook body")
	}
	if err := envelope.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	err = c.syncService.HandleWebhookEvent(ctx.Request().Context(), envelope, envelope.RawPayload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSpaceNotAuthorized):
			return c.writeError(ctx, http.StatusUnauthorized, "space not authorized")
		case errors.Is(err, service.ErrLockContended):
			return c.writeError(ctx, http.StatusServiceUnavailable, "entity busy, retry later")
		case service.IsRetryable(err):
			return c.writeError(ctx, http.StatusServiceUnavailable, "temporary failure, retry later")
		default:
			factory.LoggerWithContext(c.logger, ctx).WithError(err).WithField("event_id", envelope.EventID).Error("Webhook event rejected")
			return ctx.JSON(http.StatusOK, &types.MessageResponse{Message: "Webhook event rejected"})
		}
	}

	return ctx.JSON(http.StatusOK, &types.MessageResponse{Message: "Webhook event processed"})
}

func (c *WebhookController) writeError(ctx echo.Context, statusCode int, message string) error {
	return ctx.JSON(statusCode, &types.ErrorResponse{Error: message})
}
