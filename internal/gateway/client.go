package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/ready2shop/storefront/internal/checkout"
)

// Error is a gateway-reported submission failure. The message is
// human-readable and surfaced to the user verbatim.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return e.Message
}

// Client submits purchases to the order gateway over HTTP. Calls go
// through a circuit breaker so a dead gateway fails fast instead of
// tying up every submit attempt.
type Client struct {
	purchaseURL string
	client      *http.Client
	breaker     *gobreaker.CircuitBreaker[*checkout.Confirmation]
}

func NewClient(purchaseURL string, timeout time.Duration) *Client {
	settings := gobreaker.Settings{
		Name:    "order-gateway",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}

	return &Client{
		purchaseURL: purchaseURL,
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		breaker: gobreaker.NewCircuitBreaker[*checkout.Confirmation](settings),
	}
}

// PlaceOrder posts the purchase payload and returns the tracking number
// on success. Gateway-reported failures come back as *Error with the
// remote message.
func (c *Client) PlaceOrder(ctx context.Context, purchase *checkout.PurchaseRequest) (*checkout.Confirmation, error) {
	body, err := json.Marshal(purchase)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal purchase: %w", err)
	}

	return c.breaker.Execute(func() (*checkout.Confirmation, error) {
		return c.post(ctx, body)
	})
}

func (c *Client) post(ctx context.Context, body []byte) (*checkout.Confirmation, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.purchaseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("could not build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("order gateway unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(resp),
		}
	}

	var confirmation checkout.Confirmation
	if err := json.NewDecoder(resp.Body).Decode(&confirmation); err != nil {
		return nil, fmt.Errorf("could not decode confirmation: %w", err)
	}
	return &confirmation, nil
}

// errorMessage digs the human-readable message out of the gateway's error
// body, falling back to the HTTP status text.
func errorMessage(resp *http.Response) string {
	data, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err == nil {
		var payload struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		if json.Unmarshal(data, &payload) == nil {
			if payload.Message != "" {
				return payload.Message
			}
			if payload.Error != "" {
				return payload.Error
			}
		}
	}
	return http.StatusText(resp.StatusCode)
}
