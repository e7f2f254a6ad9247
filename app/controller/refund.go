package controller

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-order-sync/app/factory"
	"github.com/vibast-solutions/ms-go-order-sync/app/mapper"
	"github.com/vibast-solutions/ms-go-order-sync/app/service"
	"github.com/vibast-solutions/ms-go-order-sync/app/types"
)

type RefundController struct {
	syncService *service.SyncService
	logger      logrus.FieldLogger
}

func NewRefundController(syncService *service.SyncService) *RefundController {
	return &RefundController{
		syncService: syncService,
		logger:      factory.NewModuleLogger("refund-controller"),
	}
}

func (c *RefundController) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, &types.HealthResponse{Status: "ok"})
}

func (c *RefundController) CreateRefund(ctx echo.Context) error {
	req, err := types.NewCreateRefundRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	item, err := c.syncService.CreateRefund(ctx.Request().Context(), req.TransactionID, req.LineItemID, req.Quantity, req.Reason)
	if err != nil {
		return c.writeRefundError(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, mapper.RefundToResponse(item))
}

func (c *RefundController) CreateRefundByAmount(ctx echo.Context) error {
	req, err := types.NewCreateRefundByAmountRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	item, err := c.syncService.CreateRefundByAmount(ctx.Request().Context(), req.TransactionID, req.AmountCents, req.Reason)
	if err != nil {
		return c.writeRefundError(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, mapper.RefundToResponse(item))
}

func (c *RefundController) GetTransaction(ctx echo.Context) error {
	req, err := types.NewGetTransactionRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	item, err := c.syncService.GetTransaction(ctx.Request().Context(), req.ID)
	if err != nil {
		if errors.Is(err, service.ErrTransactionNotFound) {
			return c.writeError(ctx, http.StatusNotFound, "transaction not found")
		}
		factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("Get transaction failed")
		return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
	}

	return ctx.JSON(http.StatusOK, mapper.TransactionToResponse(item))
}

func (c *RefundController) ListRefunds(ctx echo.Context) error {
	req, err := types.NewGetTransactionRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	items, err := c.syncService.ListRefunds(ctx.Request().Context(), req.ID)
	if err != nil {
		if errors.Is(err, service.ErrTransactionNotFound) {
			return c.writeError(ctx, http.StatusNotFound, "transaction not found")
		}
		factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("List refunds failed")
		return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
	}

	responses := mapper.RefundsToResponse(items)
	return ctx.JSON(http.StatusOK, &types.RefundListResponse{Refunds: responses, Total: len(responses)})
}

// writeRefundError maps refund orchestration failures onto HTTP codes. The
// validation errors keep their symbolic reason code as the response body so
// callers can branch on it.
func (c *RefundController) writeRefundError(ctx echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrRefundExceedsAmount),
		errors.Is(err, service.ErrRefundAmountZero),
		errors.Is(err, service.ErrRefundNotSupported),
		errors.Is(err, service.ErrRefundsByAmountDisabled):
		return c.writeError(ctx, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, service.ErrTransactionNotFound):
		return c.writeError(ctx, http.StatusNotFound, "transaction not found")
	case errors.Is(err, service.ErrLineItemNotFound):
		return c.writeError(ctx, http.StatusNotFound, "order line item not found")
	case errors.Is(err, service.ErrSpaceNotAuthorized):
		return c.writeError(ctx, http.StatusUnauthorized, "space not authorized")
	case errors.Is(err, service.ErrLockContended):
		return c.writeError(ctx, http.StatusConflict, "transaction busy, retry later")
	case service.IsRetryable(err):
		return c.writeError(ctx, http.StatusServiceUnavailable, "gateway unavailable, retry later")
	default:
		factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("Refund request failed")
		return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
	}
}

func (c *RefundController) writeError(ctx echo.Context, statusCode int, message string) error {
	return ctx.JSON(statusCode, &types.ErrorResponse{Error: message})
}
