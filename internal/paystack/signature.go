package paystack

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
)

// SignatureHeader is the request header Paystack signs webhook deliveries with.
const SignatureHeader = "x-paystack-signature"

// WebhookVerifier authenticates inbound webhook bodies against the shared
// webhook secret.
type WebhookVerifier struct {
	secret []byte
}

// NewWebhookVerifier constructs a verifier for the given shared secret.
func NewWebhookVerifier(secret []byte) *WebhookVerifier {
	return &WebhookVerifier{secret: secret}
}

// Verify reports whether signature is a valid hex-encoded HMAC-SHA512 of
// rawBody under the shared secret. The body must be the exact bytes received
// on the wire; re-serializing parsed JSON changes the byte layout and breaks
// the check. Any misconfiguration or mismatch yields false, never an error.
func (v *WebhookVerifier) Verify(rawBody []byte, signature string) bool {
	if len(v.secret) == 0 || signature == "" {
		return false
	}
	provided, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	mac := hmac.New(sha512.New, v.secret)
	mac.Write(rawBody)
	return hmac.Equal(mac.Sum(nil), provided)
}
