package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

var testCreds = Credentials{SpaceID: 5000, APIUserID: 7, APIKey: "secret"}

func newTestClient(serverURL string) *Client {
	return NewClient(ClientConfig{BaseURL: serverURL, HTTPTimeout: 2 * time.Second})
}

func TestReadTransactionSendsCredentials(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/spaces/5000/transactions/88" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("X-API-User-ID") != "7" || r.Header.Get("X-API-Key") != "secret" {
			t.Error("missing credential headers")
		}
		_ = json.NewEncoder(w).Encode(&Transaction{ID: 88, State: "FULFILL", AmountTotalCents: 10000, Currency: "EUR"})
	}))
	defer server.Close()

	tx, err := newTestClient(server.URL).ReadTransaction(context.Background(), testCreds, 88)
	if err != nil {
		t.Fatalf("read transaction failed: %v", err)
	}
	if tx.ID != 88 || tx.State != "FULFILL" {
		t.Fatalf("unexpected transaction: %+v", tx)
	}
}

func TestCreateRefundPostsInput(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/spaces/5000/refunds" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var input CreateRefundInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			t.Errorf("decoding input failed: %v", err)
		}
		if input.TransactionID != 88 || input.AmountCents != 5000 || input.ExternalID == "" {
			t.Errorf("unexpected input: %+v", input)
		}
		_ = json.NewEncoder(w).Encode(&Refund{ID: 9001, TransactionID: input.TransactionID, ExternalID: input.ExternalID, State: RefundStatePending, AmountCents: input.AmountCents})
	}))
	defer server.Close()

	refund, err := newTestClient(server.URL).CreateRefund(context.Background(), testCreds, &CreateRefundInput{
		TransactionID: 88,
		ExternalID:    "ext-1",
		AmountCents:   5000,
	})
	if err != nil {
		t.Fatalf("create refund failed: %v", err)
	}
	if refund.ID != 9001 || refund.State != RefundStatePending {
		t.Fatalf("unexpected refund: %+v", refund)
	}
}

func TestNotFoundMapsToNotFoundKind(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"transaction missing"}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).ReadTransaction(context.Background(), testCreds, 12)
	var gwErr *Error
	if !errors.As(err, &gwErr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if gwErr.Kind != KindNotFound || gwErr.Message != "transaction missing" {
		t.Fatalf("unexpected error: %+v", gwErr)
	}
	if gwErr.Retryable() {
		t.Fatal("not found must not be retryable")
	}
}

func TestValidationErrorNotRetryable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"refundExceedsAmount"}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).CreateRefund(context.Background(), testCreds, &CreateRefundInput{TransactionID: 88, AmountCents: 1})
	var gwErr *Error
	if !errors.As(err, &gwErr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if gwErr.Kind != KindValidation || gwErr.Retryable() {
		t.Fatalf("expected non-retryable validation error, got %+v", gwErr)
	}
}

func TestServerErrorRetryable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).ReadRefund(context.Background(), testCreds, 9001)
	var gwErr *Error
	if !errors.As(err, &gwErr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if !gwErr.Retryable() {
		t.Fatalf("5xx must be retryable, got %+v", gwErr)
	}
}

func TestConnectionFailureRetryable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close()

	_, err := newTestClient(server.URL).ReadTransaction(context.Background(), testCreds, 88)
	var gwErr *Error
	if !errors.As(err, &gwErr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if gwErr.Kind != KindConnection || !gwErr.Retryable() {
		t.Fatalf("expected retryable connection error, got %+v", gwErr)
	}
}

func TestTimeoutMapsToTimeoutKind(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	client := NewClient(ClientConfig{BaseURL: server.URL, HTTPTimeout: 50 * time.Millisecond})
	_, err := client.ReadTransaction(context.Background(), testCreds, 88)
	var gwErr *Error
	if !errors.As(err, &gwErr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if gwErr.Kind != KindTimeout || !gwErr.Retryable() {
		t.Fatalf("expected retryable timeout error, got %+v", gwErr)
	}
}
