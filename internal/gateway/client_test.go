package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ready2shop/storefront/internal/checkout"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePurchase() *checkout.PurchaseRequest {
	return &checkout.PurchaseRequest{
		Customer: checkout.PurchaseCustomer{FirstName: "John", LastName: "Doe", Email: "john.doe@example.com"},
		Order:    checkout.PurchaseOrder{TotalPrice: 19.98, TotalQuantity: 2},
		OrderItems: []checkout.PurchaseItem{
			{ProductID: 1, Name: "Widget", UnitPrice: 9.99, Quantity: 2},
		},
	}
}

func TestPlaceOrder_Success(t *testing.T) {
	var received checkout.PurchaseRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"orderTrackingNumber":"TRK-123"}`))
	}))
	defer server.Close()

	sut := NewClient(server.URL, 5*time.Second)
	confirmation, err := sut.PlaceOrder(context.Background(), samplePurchase())

	require.NoError(t, err)
	assert.Equal(t, "TRK-123", confirmation.OrderTrackingNumber)
	assert.Equal(t, 2, received.Order.TotalQuantity)
	assert.Equal(t, "Widget", received.OrderItems[0].Name)
}

func TestPlaceOrder_GatewayErrorCarriesMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"payment was declined"}`))
	}))
	defer server.Close()

	sut := NewClient(server.URL, 5*time.Second)
	_, err := sut.PlaceOrder(context.Background(), samplePurchase())

	var gatewayErr *Error
	require.ErrorAs(t, err, &gatewayErr)
	assert.Equal(t, "payment was declined", gatewayErr.Message)
	assert.Equal(t, http.StatusUnprocessableEntity, gatewayErr.StatusCode)
}

func TestPlaceOrder_ErrorFallsBackToStatusText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	sut := NewClient(server.URL, 5*time.Second)
	_, err := sut.PlaceOrder(context.Background(), samplePurchase())

	var gatewayErr *Error
	require.ErrorAs(t, err, &gatewayErr)
	assert.Equal(t, http.StatusText(http.StatusBadGateway), gatewayErr.Message)
}

func TestPlaceOrder_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	sut := NewClient(server.URL, 5*time.Second)
	for i := 0; i < 5; i++ {
		_, err := sut.PlaceOrder(context.Background(), samplePurchase())
		var gatewayErr *Error
		assert.ErrorAs(t, err, &gatewayErr)
	}

	// breaker is open now, the request never reaches the server
	_, err := sut.PlaceOrder(context.Background(), samplePurchase())
	require.Error(t, err)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
}
