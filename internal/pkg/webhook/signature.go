package webhook

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"hash"
	"strings"
)

// VerifySignature checks that the raw request body was signed with the shared
// webhook signature key. The provider sends base64(HMAC-SHA256(body)); hex
// encoding and the provider's older HMAC-SHA1 scheme are accepted as well.
func VerifySignature(payload []byte, signatureHeader, signatureKey string) bool {
	sig := strings.TrimSpace(signatureHeader)
	key := strings.TrimSpace(signatureKey)
	if sig == "" || key == "" {
		return false
	}

	decoded, err := base64.StdEncoding.DecodeString(sig)
	if err != nil {
		decoded, err = hex.DecodeString(strings.ToLower(sig))
		if err != nil {
			return false
		}
	}

	if verifyHMAC(payload, decoded, []byte(key), sha256.New) {
		return true
	}
	return verifyHMAC(payload, decoded, []byte(key), sha1.New)
}

func verifyHMAC(payload, expectedSig, key []byte, hashFunc func() hash.Hash) bool {
	mac := hmac.New(hashFunc, key)
	mac.Write(payload)
	return hmac.Equal(mac.Sum(nil), expectedSig)
}
