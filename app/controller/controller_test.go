package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/vibast-solutions/ms-go-order-sync/app/entity"
	"github.com/vibast-solutions/ms-go-order-sync/app/gateway"
	"github.com/vibast-solutions/ms-go-order-sync/app/lock"
	"github.com/vibast-solutions/ms-go-order-sync/app/service"
	"github.com/vibast-solutions/ms-go-order-sync/app/settings"
	"github.com/vibast-solutions/ms-go-order-sync/app/types"
	"github.com/vibast-solutions/ms-go-order-sync/config"
)

const testSpaceID = uint64(5000)

type ctrlTransactionRepo struct {
	findByIDFn func(ctx context.Context, id uint64) (*entity.Transaction, error)
	updateFn   func(ctx context.Context, tx *entity.Transaction) error
}

func (r *ctrlTransactionRepo) Update(ctx context.Context, tx *entity.Transaction) error {
	if r.updateFn != nil {
		return r.updateFn(ctx, tx)
	}
	return nil
}

func (r *ctrlTransactionRepo) FindByID(ctx context.Context, id uint64) (*entity.Transaction, error) {
	if r.findByIDFn != nil {
		return r.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (r *ctrlTransactionRepo) ListStaleNonTerminal(context.Context, time.Time, int32) ([]*entity.Transaction, error) {
	return nil, nil
}

type ctrlOrderRepo struct{}

func (r *ctrlOrderRepo) UpdatePaymentState(context.Context, uint64, entity.OrderPaymentState, time.Time) error {
	return nil
}
func (r *ctrlOrderRepo) MarkInvoiceAvailable(context.Context, uint64, time.Time) error { return nil }

type ctrlDeliveryRepo struct{}

func (r *ctrlDeliveryRepo) FindByOrderID(context.Context, uint64) (*entity.OrderDelivery, error) {
	return nil, nil
}
func (r *ctrlDeliveryRepo) Update(context.Context, *entity.OrderDelivery) error { return nil }

type ctrlLineItemRepo struct {
	findByIDFn func(ctx context.Context, id uint64) (*entity.OrderLineItem, error)
}

func (r *ctrlLineItemRepo) FindByID(ctx context.Context, id uint64) (*entity.OrderLineItem, error) {
	if r.findByIDFn != nil {
		return r.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (r *ctrlLineItemRepo) AddRefundedQuantity(context.Context, uint64, int32) error { return nil }

type ctrlRefundRepo struct {
	outstanding int64
	created     []*entity.Refund
}

func (r *ctrlRefundRepo) Create(_ context.Context, refund *entity.Refund) error {
	refund.ID = uint64(len(r.created) + 1)
	copyItem := *refund
	r.created = append(r.created, &copyItem)
	return nil
}

func (r *ctrlRefundRepo) Update(context.Context, *entity.Refund) error { return nil }

func (r *ctrlRefundRepo) FindByGatewayRefundID(context.Context, uint64) (*entity.Refund, error) {
	return nil, nil
}

func (r *ctrlRefundRepo) ListByTransactionID(context.Context, uint64) ([]*entity.Refund, error) {
	return []*entity.Refund{}, nil
}

func (r *ctrlRefundRepo) SumOutstandingCents(context.Context, uint64) (int64, error) {
	return r.outstanding, nil
}

type ctrlIdempotencyRepo struct {
	marked map[uint64]bool
}

func (r *ctrlIdempotencyRepo) Exists(_ context.Context, _, eventID uint64) (bool, error) {
	return r.marked[eventID], nil
}

func (r *ctrlIdempotencyRepo) Mark(_ context.Context, _, eventID uint64, _ time.Time) error {
	if r.marked == nil {
		r.marked = map[uint64]bool{}
	}
	r.marked[eventID] = true
	return nil
}

type ctrlEventRepo struct{}

func (r *ctrlEventRepo) Create(context.Context, *entity.WebhookEvent) error { return nil }

type ctrlMethodConfigRepo struct{}

func (r *ctrlMethodConfigRepo) Upsert(context.Context, *entity.PaymentMethodConfiguration) error {
	return nil
}

type ctrlGateway struct {
	readTransactionFn func(transactionID uint64) (*gateway.Transaction, error)
	createRefundFn    func(input *gateway.CreateRefundInput) (*gateway.Refund, error)
}

func (g *ctrlGateway) ReadTransaction(_ context.Context, _ gateway.Credentials, transactionID uint64) (*gateway.Transaction, error) {
	if g.readTransactionFn != nil {
		return g.readTransactionFn(transactionID)
	}
	return nil, gateway.NewError(gateway.KindNotFound, 404, "transaction not found", nil)
}

func (g *ctrlGateway) CreateRefund(_ context.Context, _ gateway.Credentials, input *gateway.CreateRefundInput) (*gateway.Refund, error) {
	if g.createRefundFn != nil {
		return g.createRefundFn(input)
	}
	return &gateway.Refund{ID: 9001, TransactionID: input.TransactionID, ExternalID: input.ExternalID, State: gateway.RefundStatePending, AmountCents: input.AmountCents}, nil
}

func (g *ctrlGateway) ReadRefund(_ context.Context, _ gateway.Credentials, refundID uint64) (*gateway.Refund, error) {
	return nil, gateway.NewError(gateway.KindNotFound, 404, "refund not found", nil)
}

func (g *ctrlGateway) ReadPaymentMethodConfiguration(_ context.Context, _ gateway.Credentials, configurationID uint64) (*gateway.PaymentMethodConfiguration, error) {
	return nil, gateway.NewError(gateway.KindNotFound, 404, "configuration not found", nil)
}

type ctrlSettings struct {
	refundsByAmount bool
}

func (s *ctrlSettings) ForSpace(spaceID uint64) (*settings.Snapshot, bool) {
	if spaceID != testSpaceID {
		return nil, false
	}
	return &settings.Snapshot{
		Credentials:            gateway.Credentials{SpaceID: testSpaceID, APIUserID: 7, APIKey: "secret"},
		RefundsByAmountEnabled: s.refundsByAmount,
	}, true
}

type ctrlFixture struct {
	transactionRepo *ctrlTransactionRepo
	lineItemRepo    *ctrlLineItemRepo
	refundRepo      *ctrlRefundRepo
	gateway         *ctrlGateway
	service         *service.SyncService
}

func newCtrlFixture(refundsByAmount bool) *ctrlFixture {
	f := &ctrlFixture{
		transactionRepo: &ctrlTransactionRepo{},
		lineItemRepo:    &ctrlLineItemRepo{},
		refundRepo:      &ctrlRefundRepo{},
		gateway:         &ctrlGateway{},
	}

	f.service = service.NewSyncService(
		f.transactionRepo,
		&ctrlOrderRepo{},
		&ctrlDeliveryRepo{},
		f.lineItemRepo,
		f.refundRepo,
		&ctrlIdempotencyRepo{},
		&ctrlEventRepo{},
		&ctrlMethodConfigRepo{},
		f.gateway,
		&ctrlSettings{refundsByAmount: refundsByAmount},
		lock.NewKeyedMutex(),
		config.SyncConfig{LockAcquireTimeout: time.Second},
	)

	return f
}

func refundableTransaction() *entity.Transaction {
	return &entity.Transaction{
		ID:               88,
		SpaceID:          testSpaceID,
		OrderID:          11,
		State:            entity.TransactionStateFulfill,
		AmountTotalCents: 10000,
		Currency:         "EUR",
		PaymentMethod:    "card",
		SupportsRefund:   true,
	}
}

func jsonRequest(method, target, body string) (*http.Request, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req, httptest.NewRecorder()
}

func TestHandleWebhookProcessedEventReturnsOK(t *testing.T) {
	f := newCtrlFixture(false)
	f.transactionRepo.findByIDFn = func(_ context.Context, id uint64) (*entity.Transaction, error) {
		tx := refundableTransaction()
		tx.State = entity.TransactionStateCompleted
		return tx, nil
	}
	f.gateway.readTransactionFn = func(uint64) (*gateway.Transaction, error) {
		return &gateway.Transaction{ID: 88, State: string(entity.TransactionStateFulfill)}, nil
	}
	ctrl := NewWebhookController(f.service)

	body := `{"eventId":700,"entityId":88,"listenerEntityId":1,"listenerEntityTechnicalName":"Transaction","spaceId":5000,"webhookListenerId":42,"timestamp":"2026-08-30T12:30:00Z"}`
	req, rec := jsonRequest(http.MethodPost, "/webhooks/5000", body)
	ctx := echo.New().NewContext(req, rec)
	ctx.SetParamNames("spaceId")
	ctx.SetParamValues("5000")

	if err := ctrl.HandleWebhook(ctx); err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandleWebhookMalformedBodyReturnsBadRequest(t *testing.T) {
	ctrl := NewWebhookController(newCtrlFixture(false).service)

	req, rec := jsonRequest(http.MethodPost, "/webhooks/5000", "{not json")
	ctx := echo.New().NewContext(req, rec)
	ctx.SetParamNames("spaceId")
	ctx.SetParamValues("5000")

	if err := ctrl.HandleWebhook(ctx); err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandleWebhookUnknownSpaceReturnsUnauthorized(t *testing.T) {
	ctrl := NewWebhookController(newCtrlFixture(false).service)

	body := `{"eventId":700,"entityId":88,"listenerEntityTechnicalName":"Transaction","spaceId":6000,"timestamp":"2026-08-30T12:30:00Z"}`
	req, rec := jsonRequest(http.MethodPost, "/webhooks/6000", body)
	ctx := echo.New().NewContext(req, rec)
	ctx.SetParamNames("spaceId")
	ctx.SetParamValues("6000")

	if err := ctrl.HandleWebhook(ctx); err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestHandleWebhookTransientGatewayFailureReturnsServiceUnavailable(t *testing.T) {
	f := newCtrlFixture(false)
	f.gateway.readTransactionFn = func(uint64) (*gateway.Transaction, error) {
		return nil, gateway.NewError(gateway.KindConnection, 0, "connection refused", nil)
	}
	ctrl := NewWebhookController(f.service)

	body := `{"eventId":700,"entityId":88,"listenerEntityTechnicalName":"Transaction","spaceId":5000,"timestamp":"2026-08-30T12:30:00Z"}`
	req, rec := jsonRequest(http.MethodPost, "/webhooks/5000", body)
	ctx := echo.New().NewContext(req, rec)
	ctx.SetParamNames("spaceId")
	ctx.SetParamValues("5000")

	if err := ctrl.HandleWebhook(ctx); err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestHandleWebhookRejectedEventStillReturnsOK(t *testing.T) {
	f := newCtrlFixture(false)
	f.gateway.readTransactionFn = func(uint64) (*gateway.Transaction, error) {
		return &gateway.Transaction{ID: 88, State: "SOMETHING_NEW"}, nil
	}
	f.transactionRepo.findByIDFn = func(context.Context, uint64) (*entity.Transaction, error) {
		return refundableTransaction(), nil
	}
	ctrl := NewWebhookController(f.service)

	body := `{"eventId":700,"entityId":88,"listenerEntityTechnicalName":"Transaction","spaceId":5000,"timestamp":"2026-08-30T12:30:00Z"}`
	req, rec := jsonRequest(http.MethodPost, "/webhooks/5000", body)
	ctx := echo.New().NewContext(req, rec)
	ctx.SetParamNames("spaceId")
	ctx.SetParamValues("5000")

	if err := ctrl.HandleWebhook(ctx); err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("rejected events must stop redelivery with 200, got %d", rec.Code)
	}
}

func TestCreateRefundReturnsCreated(t *testing.T) {
	f := newCtrlFixture(false)
	f.transactionRepo.findByIDFn = func(context.Context, uint64) (*entity.Transaction, error) {
		return refundableTransaction(), nil
	}
	f.lineItemRepo.findByIDFn = func(_ context.Context, id uint64) (*entity.OrderLineItem, error) {
		return &entity.OrderLineItem{ID: id, OrderID: 11, Quantity: 4, UnitPriceCents: 2500}, nil
	}
	ctrl := NewRefundController(f.service)

	req, rec := jsonRequest(http.MethodPost, "/refunds", `{"transactionId":88,"lineItemId":301,"quantity":2,"reason":"damaged"}`)
	ctx := echo.New().NewContext(req, rec)

	if err := ctrl.CreateRefund(ctx); err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp types.RefundResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response failed: %v", err)
	}
	if resp.AmountCents != 5000 || resp.Status != string(entity.RefundStatusPending) {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestCreateRefundExceedingBalanceReturnsReasonCode(t *testing.T) {
	f := newCtrlFixture(true)
	f.transactionRepo.findByIDFn = func(context.Context, uint64) (*entity.Transaction, error) {
		return refundableTransaction(), nil
	}
	f.refundRepo.outstanding = 5000
	ctrl := NewRefundController(f.service)

	req, rec := jsonRequest(http.MethodPost, "/refunds/by-amount", `{"transactionId":88,"amountCents":5001}`)
	ctx := echo.New().NewContext(req, rec)

	if err := ctrl.CreateRefundByAmount(ctx); err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}

	var resp types.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response failed: %v", err)
	}
	if resp.Error != "refundExceedsAmount" {
		t.Fatalf("expected refundExceedsAmount reason code, got %q", resp.Error)
	}
}

func TestCreateRefundByAmountDisabledReturnsReasonCode(t *testing.T) {
	f := newCtrlFixture(false)
	f.transactionRepo.findByIDFn = func(context.Context, uint64) (*entity.Transaction, error) {
		return refundableTransaction(), nil
	}
	ctrl := NewRefundController(f.service)

	req, rec := jsonRequest(http.MethodPost, "/refunds/by-amount", `{"transactionId":88,"amountCents":1000}`)
	ctx := echo.New().NewContext(req, rec)

	if err := ctrl.CreateRefundByAmount(ctx); err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "refundsByAmountNotEnabled") {
		t.Fatalf("expected refundsByAmountNotEnabled reason code, got %s", rec.Body.String())
	}
}

func TestGetTransactionNotFound(t *testing.T) {
	ctrl := NewRefundController(newCtrlFixture(false).service)

	req, rec := jsonRequest(http.MethodGet, "/transactions/88", "")
	ctx := echo.New().NewContext(req, rec)
	ctx.SetParamNames("id")
	ctx.SetParamValues("88")

	if err := ctrl.GetTransaction(ctx); err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestGetTransactionReturnsMappedResponse(t *testing.T) {
	f := newCtrlFixture(false)
	f.transactionRepo.findByIDFn = func(context.Context, uint64) (*entity.Transaction, error) {
		tx := refundableTransaction()
		tx.RefundedCents = 2500
		return tx, nil
	}
	ctrl := NewRefundController(f.service)

	req, rec := jsonRequest(http.MethodGet, "/transactions/88", "")
	ctx := echo.New().NewContext(req, rec)
	ctx.SetParamNames("id")
	ctx.SetParamValues("88")

	if err := ctrl.GetTransaction(ctx); err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp types.TransactionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response failed: %v", err)
	}
	if resp.RefundableCents != 7500 {
		t.Fatalf("expected refundable 7500, got %d", resp.RefundableCents)
	}
}
