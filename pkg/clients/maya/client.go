package maya

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/alumnilink/backend/internal/config"
)

// Client exposes the Maya checkout operations used by the application.
type Client interface {
	CreateCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutResponse, error)
}

// APIClient is a resty-backed implementation of Client.
type APIClient struct {
	httpClient *resty.Client
}

// NewClient builds a Maya API client using the provided configuration values.
func NewClient(cfg config.MayaConfig) *APIClient {
	restyClient := resty.New()
	restyClient.
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetBasicAuth(cfg.PublicKey, "").
		SetHeader("Content-Type", "application/json").
		SetTimeout(15 * time.Second)

	return &APIClient{httpClient: restyClient}
}

// Amount is a monetary value in whole currency units.
type Amount struct {
	Value    int64  `json:"value"`
	Currency string `json:"currency"`
}

// RedirectURLs tells the gateway where to send the payer afterwards.
type RedirectURLs struct {
	Success string `json:"success"`
	Failure string `json:"failure"`
	Cancel  string `json:"cancel"`
}

// CheckoutRequest is the checkout creation payload.
type CheckoutRequest struct {
	TotalAmount            Amount       `json:"totalAmount"`
	RequestReferenceNumber string       `json:"requestReferenceNumber"`
	RedirectURL            RedirectURLs `json:"redirectUrl"`
}

// CheckoutResponse mirrors the successful response from Maya.
type CheckoutResponse struct {
	CheckoutID  string `json:"checkoutId"`
	RedirectURL string `json:"redirectUrl"`
}

// WebhookEvent is the payment status callback payload.
type WebhookEvent struct {
	ID                     string `json:"id"`
	PaymentStatus          string `json:"paymentStatus"`
	RequestReferenceNumber string `json:"requestReferenceNumber"`
	TotalAmount            Amount `json:"totalAmount"`
}

// Webhook payment statuses delivered by the gateway.
const (
	PaymentStatusSuccess = "PAYMENT_SUCCESS"
	PaymentStatusFailed  = "PAYMENT_FAILED"
	PaymentStatusExpired = "PAYMENT_EXPIRED"
)

// APIError carries a non-2xx gateway response, including timeouts mapped by
// resty. Handlers surface it as an upstream failure.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("maya api error: status=%d, body=%s", e.StatusCode, e.Body)
}

// CreateCheckout creates a hosted checkout session.
func (c *APIClient) CreateCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutResponse, error) {
	result := new(CheckoutResponse)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(result).
		Post("/checkout/v1/checkouts")
	if err != nil {
		return nil, &APIError{StatusCode: http.StatusGatewayTimeout, Body: err.Error()}
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		return nil, &APIError{StatusCode: resp.StatusCode(), Body: string(resp.Body())}
	}

	return result, nil
}
