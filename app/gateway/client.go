package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

type ClientConfig struct {
	BaseURL     string
	HTTPTimeout time.Duration
}

// Client talks to the gateway's REST API. All requests are scoped to a space
// and authenticated with that space's application user credentials.
type Client struct {
	cfg    ClientConfig
	client *http.Client
}

func NewClient(cfg ClientConfig) *Client {
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")

	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}
}

func (c *Client) ReadTransaction(ctx context.Context, creds Credentials, transactionID uint64) (*Transaction, error) {
	path := fmt.Sprintf("/spaces/%d/transactions/%d", creds.SpaceID, transactionID)
	body, err := c.get(ctx, creds, path)
	if err != nil {
		return nil, err
	}

	var tx Transaction
	if err := json.Unmarshal(body, &tx); err != nil {
		return nil, &Error{Kind: KindValidation, Message: "malformed transaction payload", Err: err}
	}

	return &tx, nil
}

func (c *Client) CreateRefund(ctx context.Context, creds Credentials, input *CreateRefundInput) (*Refund, error) {
	path := fmt.Sprintf("/spaces/%d/refunds", creds.SpaceID)
	body, err := c.post(ctx, creds, path, input)
	if err != nil {
		return nil, err
	}

	var refund Refund
	if err := json.Unmarshal(body, &refund); err != nil {
		return nil, &Error{Kind: KindValidation, Message: "malformed refund payload", Err: err}
	}

	return &refund, nil
}

func (c *Client) ReadRefund(ctx context.Context, creds Credentials, refundID uint64) (*Refund, error) {
	path := fmt.Sprintf("/spaces/%d/refunds/%d", creds.SpaceID, refundID)
	body, err := c.get(ctx, creds, path)
	if err != nil {
		return nil, err
	}

	var refund Refund
	if err := json.Unmarshal(body, &refund); err != nil {
		return nil, &Error{Kind: KindValidation, Message: "malformed refund payload", Err: err}
	}

	return &refund, nil
}

func (c *Client) ReadPaymentMethodConfiguration(ctx context.Context, creds Credentials, configurationID uint64) (*PaymentMethodConfiguration, error) {
	path := fmt.Sprintf("/spaces/%d/payment-method-configurations/%d", creds.SpaceID, configurationID)
	body, err := c.get(ctx, creds, path)
	if err != nil {
		return nil, err
	}

	var cfg PaymentMethodConfiguration
	if err := json.Unmarshal(body, &cfg); err != nil {
		return nil, &Error{Kind: KindValidation, Message: "malformed payment method configuration payload", Err: err}
	}

	return &cfg, nil
}

func (c *Client) get(ctx context.Context, creds Credentials, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+path, nil)
	if err != nil {
		return nil, &Error{Kind: KindValidation, Message: "invalid request", Err: err}
	}

	return c.do(req, creds)
}

func (c *Client) post(ctx context.Context, creds Credentials, path string, payload interface{}) ([]byte, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, &Error{Kind: KindValidation, Message: "invalid request payload", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return nil, &Error{Kind: KindValidation, Message: "invalid request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, creds)
}

func (c *Client) do(req *http.Request, creds Credentials) ([]byte, error) {
	req.Header.Set("X-API-User-ID", strconv.FormatUint(creds.APIUserID, 10))
	req.Header.Set("X-API-Key", creds.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Kind: KindConnection, Message: "reading response body failed", Err: err}
	}

	if resp.StatusCode >= 400 {
		return nil, classifyStatusError(resp.StatusCode, body)
	}

	return body, nil
}

func classifyTransportError(err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, Message: "request deadline exceeded", Err: err}
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &Error{Kind: KindTimeout, Message: "request timed out", Err: err}
	}
	return &Error{Kind: KindConnection, Message: "request failed", Err: err}
}

func classifyStatusError(status int, body []byte) *Error {
	message := parseErrorMessage(body)
	switch {
	case status == http.StatusNotFound:
		return &Error{Kind: KindNotFound, Status: status, Message: message}
	case status == http.StatusConflict:
		return &Error{Kind: KindVersion, Status: status, Message: message}
	case status >= 400 && status < 500:
		return &Error{Kind: KindValidation, Status: status, Message: message}
	default:
		return &Error{Kind: KindConnection, Status: status, Message: message}
	}
}

func parseErrorMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &payload) == nil && strings.TrimSpace(payload.Message) != "" {
		return strings.TrimSpace(payload.Message)
	}
	trimmed := strings.TrimSpace(string(body))
	if len(trimmed) > 256 {
		trimmed = trimmed[:256]
	}
	return trimmed
}
