package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Sign returns the lowercase hex HMAC-SHA256 of payload.
func Sign(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// PaymentSignature is what Checkout returns for a successful payment:
// HMAC over "<gateway order id>|<payment id>".
func PaymentSignature(secret, gatewayOrderID, paymentID string) string {
	return Sign(secret, []byte(gatewayOrderID+"|"+paymentID))
}

func VerifyPaymentSignature(secret, gatewayOrderID, paymentID, signature string) bool {
	return equal(PaymentSignature(secret, gatewayOrderID, paymentID), signature)
}

// VerifyWebhookSignature checks the X-Razorpay-Signature header against the
// raw request body. The body must not be re-encoded before this call.
func VerifyWebhookSignature(secret string, body []byte, signature string) bool {
	return equal(Sign(secret, body), signature)
}

func equal(expected, got string) bool {
	if got == "" {
		return false
	}
	return hmac.Equal([]byte(expected), []byte(got))
}
