package emailer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog"
)

// ErrNotConfigured is returned when the Resend API key is absent. Callers
// treat it as fatal for a whole dispatch run.
var ErrNotConfigured = errors.New("resend API key is not configured")

// ResendClient delivers transactional email through the Resend HTTP API.
type ResendClient struct {
	apiKey  string
	baseURL string
	from    string
	client  *http.Client
	log     zerolog.Logger
}

func NewResendClient(
	apiKey, baseURL, from string,
	client *http.Client,
	logger zerolog.Logger,
) *ResendClient {
	logger = logger.With().Str("component", "ResendClient").Logger()
	if apiKey == "" {
		logger.Warn().Msg("Resend API key is not set, email delivery disabled")
	}
	return &ResendClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		from:    from,
		client:  client,
		log:     logger,
	}
}

// Ready reports whether the client holds the credentials needed to send.
func (c *ResendClient) Ready() error {
	if c.apiKey == "" {
		return ErrNotConfigured
	}
	return nil
}

// Send posts a single HTML email to the Resend /emails endpoint.
func (c *ResendClient) Send(ctx context.Context, to, subject, htmlBody string) error {
	if err := c.Ready(); err != nil {
		return err
	}

	payload := map[string]any{
		"from":    c.from,
		"to":      []string{to},
		"subject": subject,
		"html":    htmlBody,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/emails", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer func(body io.ReadCloser) {
		if err := body.Close(); err != nil {
			c.log.Error().Err(err).Msg("failed to close response body")
		}
	}(resp.Body)

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		c.log.Error().
			Int("status_code", resp.StatusCode).
			Str("to", to).
			Bytes("response", respBody).
			Msg("resend API rejected email")
		return fmt.Errorf("resend API error: status %d", resp.StatusCode)
	}

	c.log.Info().
		Str("to", to).
		Str("subject", subject).
		Msg("email accepted by resend")
	return nil
}
