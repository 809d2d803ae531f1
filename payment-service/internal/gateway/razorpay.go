package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fjod/storefront/pkg/circuitbreaker"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const DefaultBaseURL = "https://api.razorpay.com"

var ErrUnavailable = errors.New("payment gateway unavailable")

// APIError is a 4xx answer from the gateway. It does not count against the
// breaker.
type APIError struct {
	StatusCode  int
	Code        string
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gateway returned %d %s: %s", e.StatusCode, e.Code, e.Description)
}

type Config struct {
	BaseURL   string
	KeyID     string
	KeySecret string
	Timeout   time.Duration
}

// Order is the gateway-side order a checkout session pays against.
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

type createOrderRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

type errorEnvelope struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

type RazorpayClient struct {
	cfg     Config
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[*Order]
	log     *zap.Logger
}

func NewRazorpayClient(cfg Config, log *zap.Logger) *RazorpayClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &RazorpayClient{
		cfg: cfg,
		http: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		breaker: circuitbreaker.New[*Order](circuitbreaker.Settings{
			Name: "razorpay",
			IsSuccessful: func(err error) bool {
				var apiErr *APIError
				return err == nil || errors.As(err, &apiErr)
			},
		}, log),
		log: log,
	}
}

// KeyID is the public key the storefront hands to the hosted checkout.
func (c *RazorpayClient) KeyID() string {
	return c.cfg.KeyID
}

// CreateOrder registers an order of amount minor units with the gateway.
func (c *RazorpayClient) CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*Order, error) {
	order, err := c.breaker.Execute(func() (*Order, error) {
		return c.createOrder(ctx, amount, currency, receipt)
	})
	if circuitbreaker.IsOpen(err) {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return order, err
}

func (c *RazorpayClient) createOrder(ctx context.Context, amount int64, currency, receipt string) (*Order, error) {
	body, err := json.Marshal(createOrderRequest{Amount: amount, Currency: currency, Receipt: receipt})
	if err != nil {
		return nil, fmt.Errorf("encode order request: %w", err)
	}

	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/v1/orders"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build order request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.cfg.KeyID, c.cfg.KeySecret)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrUnavailable, err)
	}

	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		var env errorEnvelope
		_ = json.Unmarshal(payload, &env)
		return nil, &APIError{StatusCode: resp.StatusCode, Code: env.Error.Code, Description: env.Error.Description}
	}

	var order Order
	if err := json.Unmarshal(payload, &order); err != nil {
		return nil, fmt.Errorf("decode order response: %w", err)
	}
	if order.ID == "" {
		return nil, errors.New("gateway returned an order without id")
	}

	c.log.Info("gateway order created",
		zap.String("gateway_order_id", order.ID),
		zap.String("receipt", receipt),
		zap.Int64("amount", order.Amount))
	return &order, nil
}
