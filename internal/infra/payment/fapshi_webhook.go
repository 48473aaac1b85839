package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// VerifyWebhookSignature checks an HMAC-SHA256 signature over the raw webhook
// body. An empty secret disables verification (the endpoint then trusts any
// caller, matching the provider's default integration).
func VerifyWebhookSignature(secret string, body []byte, signature string) bool {
	if secret == "" {
		return true
	}
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(body)
	expected := hex.EncodeToString(h.Sum(nil))
	return strings.EqualFold(expected, signature)
}
