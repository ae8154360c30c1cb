package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/juhi-kothari/Pranam-app/internal/config"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type CreateOrderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes,omitempty"`
}

type GatewayOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

type Gateway interface {
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*GatewayOrder, error)
	KeyID() string
	Currency() string
}

// MinorUnits converts a rupee amount to paise.
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// NewGateway returns the Razorpay client, or a mock gateway when no key is
// configured.
func NewGateway(cfg config.Payment) Gateway {
	if cfg.KeyID == "" {
		return &MockGateway{currency: cfg.Currency}
	}
	return NewClient(cfg)
}

type Client struct {
	keyID     string
	keySecret string
	baseURL   string
	currency  string
	http      *http.Client
}

func NewClient(cfg config.Payment) *Client {
	return &Client{
		keyID:     cfg.KeyID,
		keySecret: cfg.KeySecret,
		baseURL:   cfg.BaseURL,
		currency:  cfg.Currency,
		http: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   10 * time.Second,
		},
	}
}

func (c *Client) KeyID() string    { return c.keyID }
func (c *Client) Currency() string { return c.currency }

type apiError struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest) (*GatewayOrder, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/orders", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.SetBasicAuth(c.keyID, c.keySecret)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("razorpay create order: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("razorpay create order: read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var ae apiError
		if json.Unmarshal(raw, &ae) == nil && ae.Error.Description != "" {
			return nil, fmt.Errorf("razorpay create order: %d %s: %s", resp.StatusCode, ae.Error.Code, ae.Error.Description)
		}
		return nil, fmt.Errorf("razorpay create order: unexpected status %d", resp.StatusCode)
	}

	var out GatewayOrder
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("razorpay create order: decode: %w", err)
	}
	return &out, nil
}

// MockGateway issues order_mock_<millis> ids without any network call.
type MockGateway struct {
	currency string
	now      func() time.Time
}

func (m *MockGateway) KeyID() string    { return "" }
func (m *MockGateway) Currency() string { return m.currency }

func (m *MockGateway) CreateOrder(_ context.Context, req CreateOrderRequest) (*GatewayOrder, error) {
	now := time.Now
	if m.now != nil {
		now = m.now
	}
	return &GatewayOrder{
		ID:       "order_mock_" + strconv.FormatInt(now().UnixMilli(), 10),
		Amount:   req.Amount,
		Currency: req.Currency,
		Receipt:  req.Receipt,
		Status:   "created",
	}, nil
}
