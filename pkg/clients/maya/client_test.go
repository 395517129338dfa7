package maya

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alumnilink/backend/internal/config"
)

func TestCreateCheckout(t *testing.T) {
	var received CheckoutRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/checkout/v1/checkouts", r.URL.Path)

		user, _, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "pk-test", user)

		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(CheckoutResponse{
			CheckoutID:  "chk-42",
			RedirectURL: "https://payments.maya.ph/checkout?id=chk-42",
		})
	}))
	defer server.Close()

	client := NewClient(config.MayaConfig{BaseURL: server.URL, PublicKey: "pk-test"})

	resp, err := client.CreateCheckout(context.Background(), CheckoutRequest{
		TotalAmount:            Amount{Value: 1500, Currency: "PHP"},
		RequestReferenceNumber: "ref-1",
		RedirectURL:            RedirectURLs{Success: "https://alumnilink.ph/thanks"},
	})
	require.NoError(t, err)

	assert.Equal(t, "chk-42", resp.CheckoutID)
	assert.Equal(t, int64(1500), received.TotalAmount.Value)
	assert.Equal(t, "PHP", received.TotalAmount.Currency)
	assert.Equal(t, "ref-1", received.RequestReferenceNumber)
}

func TestCreateCheckoutGatewayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error":"invalid amount"}`))
	}))
	defer server.Close()

	client := NewClient(config.MayaConfig{BaseURL: server.URL, PublicKey: "pk-test"})

	_, err := client.CreateCheckout(context.Background(), CheckoutRequest{})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "invalid amount")
}

func TestCreateCheckoutTransportError(t *testing.T) {
	client := NewClient(config.MayaConfig{BaseURL: "http://127.0.0.1:1", PublicKey: "pk-test"})

	_, err := client.CreateCheckout(context.Background(), CheckoutRequest{})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusGatewayTimeout, apiErr.StatusCode)
}
