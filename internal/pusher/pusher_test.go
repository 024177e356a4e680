//go:build unit

package pusher_test

import (
	"context"
	"crypto/ecdh"
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rokyuddin/billping-api/internal/models"
	"github.com/rokyuddin/billping-api/internal/pusher"
)

// browserSubscription builds a subscription the way a real browser would:
// a fresh P-256 key pair plus a random auth secret.
func browserSubscription(t *testing.T, endpoint string) models.PushSubscription {
	t.Helper()

	key, err := ecdh.P256().GenerateKey(rand.Reader)
	require.NoError(t, err)

	auth := make([]byte, 16)
	_, err = rand.Read(auth)
	require.NoError(t, err)

	return models.PushSubscription{
		Endpoint: endpoint,
		Keys: models.PushKeys{
			P256dh: base64.RawURLEncoding.EncodeToString(key.PublicKey().Bytes()),
			Auth:   base64.RawURLEncoding.EncodeToString(auth),
		},
	}
}

func Test_Send_DeliversEncryptedPayload(t *testing.T) {
	var (
		gotEncoding string
		gotAuth     string
		gotTTL      string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotEncoding = r.Header.Get("Content-Encoding")
		gotAuth = r.Header.Get("Authorization")
		gotTTL = r.Header.Get("TTL")
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	private, public, err := webpush.GenerateVAPIDKeys()
	require.NoError(t, err)

	svc := pusher.New(public, private, "mailto:support@billping.app", 30,
		server.Client(), zerolog.Nop())

	err = svc.Send(context.Background(),
		browserSubscription(t, server.URL),
		models.PushPayload{Title: "Netflix - Bill Due Tomorrow", Tag: "bill-sub-1"})
	require.NoError(t, err)

	assert.Equal(t, "aes128gcm", gotEncoding)
	assert.Contains(t, gotAuth, "vapid")
	assert.Equal(t, "30", gotTTL)
}

func Test_Send_ExpiredSubscription(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		// what a push service answers for a subscription the browser revoked
		w.WriteHeader(http.StatusGone)
	}))
	defer server.Close()

	private, public, err := webpush.GenerateVAPIDKeys()
	require.NoError(t, err)

	svc := pusher.New(public, private, "mailto:support@billping.app", 30,
		server.Client(), zerolog.Nop())

	err = svc.Send(context.Background(),
		browserSubscription(t, server.URL),
		models.PushPayload{Tag: "bill-sub-1"})

	assert.ErrorContains(t, err, "status 410")
}

func Test_Send_WithoutKeys(t *testing.T) {
	svc := pusher.New("", "", "mailto:support@billping.app", 30,
		http.DefaultClient, zerolog.Nop())

	err := svc.Send(context.Background(),
		models.PushSubscription{Endpoint: "https://push.example/abc"},
		models.PushPayload{})
	assert.ErrorIs(t, err, pusher.ErrNoKeys)
}

func Test_PublicKey(t *testing.T) {
	private, public, err := webpush.GenerateVAPIDKeys()
	require.NoError(t, err)

	svc := pusher.New(public, private, "mailto:support@billping.app", 30,
		http.DefaultClient, zerolog.Nop())
	assert.Equal(t, public, svc.PublicKey())
}
