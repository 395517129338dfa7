package zeptomail

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/alumnilink/backend/internal/config"
)

// Client exposes the transactional email operations used by the application.
type Client interface {
	SendEmail(ctx context.Context, to, toName, subject, htmlBody string) error
}

// APIClient is a resty-backed implementation of Client for the ZeptoMail
// HTTP API.
type APIClient struct {
	httpClient  *resty.Client
	fromAddress string
	fromName    string
}

// NewClient builds a ZeptoMail API client using the provided configuration.
func NewClient(cfg config.MailConfig) *APIClient {
	restyClient := resty.New()
	restyClient.
		SetBaseURL(cfg.APIURL).
		SetHeader("Authorization", cfg.APIKey).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetTimeout(15 * time.Second)

	return &APIClient{
		httpClient:  restyClient,
		fromAddress: cfg.FromAddress,
		fromName:    cfg.FromName,
	}
}

type emailAddress struct {
	Address string `json:"address"`
	Name    string `json:"name,omitempty"`
}

type recipient struct {
	EmailAddress emailAddress `json:"email_address"`
}

type sendRequest struct {
	From     emailAddress `json:"from"`
	To       []recipient  `json:"to"`
	Subject  string       `json:"subject"`
	HTMLBody string       `json:"htmlbody"`
}

// SendEmail sends one HTML email.
func (c *APIClient) SendEmail(ctx context.Context, to, toName, subject, htmlBody string) error {
	payload := sendRequest{
		From:     emailAddress{Address: c.fromAddress, Name: c.fromName},
		To:       []recipient{{EmailAddress: emailAddress{Address: to, Name: toName}}},
		Subject:  subject,
		HTMLBody: htmlBody,
	}

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(payload).
		Post("")
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	if resp.StatusCode() != http.StatusOK && resp.StatusCode() != http.StatusAccepted {
		return fmt.Errorf("zeptomail api error: status=%d, body=%s", resp.StatusCode(), string(resp.Body()))
	}

	return nil
}
