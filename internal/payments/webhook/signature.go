// Package webhook authenticates and normalizes payment provider webhooks.
package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/felixgeelhaar/gatherly/internal/shared/apperr"
)

// ErrInvalidSignature is returned for every authentication failure so callers
// cannot tell which part was wrong.
var ErrInvalidSignature = apperr.Authentication("invalid webhook signature")

// Sign returns the lowercase hex HMAC-SHA256 of body keyed by secret.
func Sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify checks signature against the exact raw body.
func Verify(body []byte, signature, secret string) error {
	signature = strings.TrimSpace(signature)
	if signature == "" || secret == "" {
		return ErrInvalidSignature
	}
	expected := Sign(body, secret)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrInvalidSignature
	}
	return nil
}
