package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rpupo63/blog-platform-backend/errs"
	"github.com/rs/zerolog/log"
)

const resendAPIURL = "https://api.resend.com/emails"

// Mailer delivers transactional e-mail.
type Mailer interface {
	SendEmail(ctx context.Context, subject, body string, recipients []string) error
}

// ResendEmailRequest represents the request payload for Resend API
type ResendEmailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Html    string   `json:"html,omitempty"`
	Text    string   `json:"text,omitempty"`
}

// ResendEmailResponse represents the response from Resend API
type ResendEmailResponse struct {
	ID string `json:"id"`
}

// ResendErrorResponse represents an error response from Resend API
type ResendErrorResponse struct {
	Message string `json:"message"`
}

type ResendMailer struct {
	apiKey    string
	fromEmail string
	endpoint  string
	client    *http.Client
}

type ResendOption func(*ResendMailer)

// WithResendEndpoint points the mailer at a different API URL, used by tests.
func WithResendEndpoint(endpoint string) ResendOption {
	return func(m *ResendMailer) {
		m.endpoint = endpoint
	}
}

func WithHTTPClient(client *http.Client) ResendOption {
	return func(m *ResendMailer) {
		m.client = client
	}
}

// NewResendMailer requires RESEND_API_KEY and RESEND_FROM_EMAIL
// (e.g. "Blog <no-reply@example.com>").
func NewResendMailer(apiKey, fromEmail string, opts ...ResendOption) (*ResendMailer, error) {
	if apiKey == "" {
		return nil, errs.NewConfigError("RESEND_API_KEY", nil)
	}
	if fromEmail == "" {
		return nil, errs.NewConfigError("RESEND_FROM_EMAIL", nil)
	}

	m := &ResendMailer{
		apiKey:    apiKey,
		fromEmail: fromEmail,
		endpoint:  resendAPIURL,
		client:    &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// SendEmail sends an HTML email using the Resend API
func (m *ResendMailer) SendEmail(ctx context.Context, subject, body string, recipients []string) error {
	if len(recipients) == 0 {
		return errs.BadRequest("at least one recipient is required")
	}

	payload := ResendEmailRequest{
		From:    m.fromEmail,
		To:      recipients,
		Subject: subject,
		Html:    body,
	}

	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return errs.NewInternalErrorWithCause("failed to marshal email payload", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewBuffer(jsonPayload))
	if err != nil {
		return errs.NewUpstreamError("resend", err)
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return errs.NewUpstreamError("resend", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return errs.NewUpstreamError("resend", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errorResp ResendErrorResponse
		if err := json.Unmarshal(bodyBytes, &errorResp); err == nil && errorResp.Message != "" {
			return errs.NewUpstreamError("resend", fmt.Errorf("status %d: %s", resp.StatusCode, errorResp.Message))
		}
		return errs.NewUpstreamError("resend", fmt.Errorf("status %d: %s", resp.StatusCode, string(bodyBytes)))
	}

	var emailResponse ResendEmailResponse
	if err := json.Unmarshal(bodyBytes, &emailResponse); err != nil {
		log.Warn().Err(err).Msg("Failed to parse Resend email response, but email was sent")
	} else {
		log.Info().Str("emailId", emailResponse.ID).Int("recipients", len(recipients)).Msg("Successfully sent email via Resend")
	}

	return nil
}

// LogMailer records that a message was not sent. Used when Resend is not configured.
// Bodies carry reset links, so only the subject and recipients are logged.
type LogMailer struct{}

func (LogMailer) SendEmail(_ context.Context, subject, body string, recipients []string) error {
	log.Warn().
		Strs("to", recipients).
		Str("subject", subject).
		Int("bodyBytes", len(body)).
		Msg("RESEND_API_KEY not set, email not delivered")
	return nil
}
