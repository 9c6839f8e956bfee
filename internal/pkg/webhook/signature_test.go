package webhook

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func signBase64(payload []byte, key string) string {
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write(payload)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	payload := []byte(`{"event_id":"evt-1","type":"payment.updated"}`)
	key := "signature-key-1"

	t.Run("valid base64 sha256", func(t *testing.T) {
		assert.True(t, VerifySignature(payload, signBase64(payload, key), key))
	})

	t.Run("valid hex sha256", func(t *testing.T) {
		mac := hmac.New(sha256.New, []byte(key))
		mac.Write(payload)
		sig := hex.EncodeToString(mac.Sum(nil))
		assert.True(t, VerifySignature(payload, sig, key))
	})

	t.Run("valid sha1 fallback", func(t *testing.T) {
		mac := hmac.New(sha1.New, []byte(key))
		mac.Write(payload)
		sig := base64.StdEncoding.EncodeToString(mac.Sum(nil))
		assert.True(t, VerifySignature(payload, sig, key))
	})

	t.Run("tampered payload fails", func(t *testing.T) {
		sig := signBase64(payload, key)
		tampered := []byte(`{"event_id":"evt-1","type":"payment.updated","amount":1}`)
		assert.False(t, VerifySignature(tampered, sig, key))
	})

	t.Run("wrong key fails", func(t *testing.T) {
		assert.False(t, VerifySignature(payload, signBase64(payload, "other-key"), key))
	})

	t.Run("empty signature fails", func(t *testing.T) {
		assert.False(t, VerifySignature(payload, "", key))
	})

	t.Run("empty key fails", func(t *testing.T) {
		assert.False(t, VerifySignature(payload, signBase64(payload, key), ""))
	})

	t.Run("garbage signature fails", func(t *testing.T) {
		assert.False(t, VerifySignature(payload, "not-base64-and-not-hex!!", key))
	})
}
