package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"
)

// SignatureVerifier checks the provider callback signature: the hex
// HMAC-SHA256 of "orderId|paymentId" keyed by the provider secret.
type SignatureVerifier struct {
	secret []byte
}

func NewSignatureVerifier(secret string) *SignatureVerifier {
	return &SignatureVerifier{secret: []byte(secret)}
}

func (v *SignatureVerifier) expected(orderID, paymentID string) string {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify compares case-insensitively and in constant time.
func (v *SignatureVerifier) Verify(orderID, paymentID, signature string) bool {
	expected := v.expected(orderID, paymentID)
	supplied := strings.ToLower(signature)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(supplied)) == 1
}
