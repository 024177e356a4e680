package pusher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/rs/zerolog"

	"github.com/rokyuddin/billping-api/internal/models"
)

// ErrNoKeys is returned when the VAPID key pair is absent; push delivery
// is then disabled for the whole process.
var ErrNoKeys = errors.New("VAPID key pair is not configured")

// Service delivers browser push notifications signed with the server's
// VAPID key pair.
type Service struct {
	publicKey  string
	privateKey string
	subject    string
	ttl        int
	client     *http.Client
	log        zerolog.Logger
}

func New(
	publicKey, privateKey, subject string,
	ttl int,
	client *http.Client,
	logger zerolog.Logger,
) *Service {
	logger = logger.With().Str("component", "Pusher").Logger()
	if publicKey == "" || privateKey == "" {
		logger.Warn().Msg("VAPID keys are not set, push delivery disabled")
	}
	return &Service{
		publicKey:  publicKey,
		privateKey: privateKey,
		subject:    subject,
		ttl:        ttl,
		client:     client,
		log:        logger,
	}
}

// PublicKey is the key shared with the browser client at subscribe time.
func (s *Service) PublicKey() string {
	return s.publicKey
}

// Send delivers one notification to a stored browser subscription. A push
// service status of 400 or above (410 Gone for expired subscriptions is
// the common case) is reported as an error.
func (s *Service) Send(
	ctx context.Context,
	sub models.PushSubscription,
	payload models.PushPayload,
) error {
	if s.publicKey == "" || s.privateKey == "" {
		return ErrNoKeys
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	target := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.Keys.P256dh,
			Auth:   sub.Keys.Auth,
		},
	}

	resp, err := webpush.SendNotificationWithContext(ctx, body, target, &webpush.Options{
		HTTPClient:      s.client,
		Subscriber:      s.subject,
		VAPIDPublicKey:  s.publicKey,
		VAPIDPrivateKey: s.privateKey,
		TTL:             s.ttl,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			s.log.Error().Err(err).Msg("failed to close push response body")
		}
	}()

	if resp.StatusCode >= http.StatusBadRequest {
		respBody, _ := io.ReadAll(resp.Body)
		s.log.Error().
			Int("status_code", resp.StatusCode).
			Str("endpoint", sub.Endpoint).
			Bytes("response", respBody).
			Msg("push service rejected notification")
		return fmt.Errorf("push service error: status %d", resp.StatusCode)
	}

	s.log.Info().
		Str("endpoint", sub.Endpoint).
		Str("tag", payload.Tag).
		Int("status_code", resp.StatusCode).
		Msg("push notification delivered")
	return nil
}
