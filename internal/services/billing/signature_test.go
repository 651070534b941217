package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWebhookSignature(t *testing.T) {
	t.Parallel()

	secret := "whsec_test"
	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed"}`)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("valid signature is accepted", func(t *testing.T) {
		header := SignPayload(secret, payload, now)
		assert.NoError(t, VerifySignature(secret, payload, header, now))
	})

	t.Run("signature within tolerance is accepted", func(t *testing.T) {
		header := SignPayload(secret, payload, now.Add(-4*time.Minute))
		assert.NoError(t, VerifySignature(secret, payload, header, now))
	})

	t.Run("tampered body is rejected", func(t *testing.T) {
		header := SignPayload(secret, payload, now)
		tampered := []byte(`{"id":"evt_2","type":"checkout.session.completed"}`)
		assert.ErrorIs(t, VerifySignature(secret, tampered, header, now), ErrSignatureMismatch)
	})

	t.Run("wrong secret is rejected", func(t *testing.T) {
		header := SignPayload("whsec_other", payload, now)
		assert.ErrorIs(t, VerifySignature(secret, payload, header, now), ErrSignatureMismatch)
	})

	t.Run("old timestamp is rejected", func(t *testing.T) {
		header := SignPayload(secret, payload, now.Add(-6*time.Minute))
		assert.ErrorIs(t, VerifySignature(secret, payload, header, now), ErrStaleTimestamp)
	})

	t.Run("future timestamp is rejected", func(t *testing.T) {
		header := SignPayload(secret, payload, now.Add(6*time.Minute))
		assert.ErrorIs(t, VerifySignature(secret, payload, header, now), ErrStaleTimestamp)
	})

	t.Run("malformed headers are rejected", func(t *testing.T) {
		for _, header := range []string{
			"",
			"garbage",
			"t=notanumber,v1=abc",
			"v1=deadbeef",
			"t=1748779200",
		} {
			assert.ErrorIs(t, VerifySignature(secret, payload, header, now), ErrMalformedSignature, "header: %q", header)
		}
	})

	t.Run("extra v1 entries are tolerated", func(t *testing.T) {
		header := "v1=deadbeef," + SignPayload(secret, payload, now)
		assert.NoError(t, VerifySignature(secret, payload, header, now))
	})
}
