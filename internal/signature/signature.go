package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// VerifyWebhookSignature checks the X-Razorpay-Signature header against an
// HMAC-SHA256 digest of the exact raw request bytes. The body must never be
// re-serialized before verification: key ordering and whitespace changes
// produce a different digest.
func VerifyWebhookSignature(rawBody []byte, signatureHeader, secret string) bool {
	sig := strings.TrimSpace(signatureHeader)
	if sig == "" || secret == "" {
		return false
	}

	decodedSig, err := hex.DecodeString(strings.ToLower(sig))
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(rawBody)
	return hmac.Equal(mac.Sum(nil), decodedSig)
}

// VerifyCheckoutSignature checks the signature the Razorpay checkout hands
// to the client after payment, computed over "orderID|paymentID" with the
// API key secret. This scheme is distinct from the webhook's raw-body one.
func VerifyCheckoutSignature(orderID, paymentID, signatureHeader, secret string) bool {
	if orderID == "" || paymentID == "" {
		return false
	}
	return VerifyWebhookSignature([]byte(orderID+"|"+paymentID), signatureHeader, secret)
}

// SignWebhookBody produces the hex digest Razorpay would send for rawBody.
// Used by tests and local tooling; signs the literal bytes it is given.
func SignWebhookBody(rawBody []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(rawBody)
	return hex.EncodeToString(mac.Sum(nil))
}
