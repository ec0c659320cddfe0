package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hmacHex(secret, data string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestSignatureVerifier_Verify(t *testing.T) {
	v := NewSignatureVerifier("s")
	expected := hmacHex("s", "o1|p1")

	require.True(t, v.Verify("o1", "p1", expected))

	// Case-insensitive compare.
	assert.True(t, v.Verify("o1", "p1", strings.ToUpper(expected)))

	assert.False(t, v.Verify("o1", "p1", "deadbeef"))
	assert.False(t, v.Verify("o1", "p1", ""))
	assert.False(t, v.Verify("o1", "p2", expected))
	assert.False(t, v.Verify("o2", "p1", expected))
}

func TestSignatureVerifier_SecretMatters(t *testing.T) {
	sig := hmacHex("secret-a", "o1|p1")

	assert.True(t, NewSignatureVerifier("secret-a").Verify("o1", "p1", sig))
	assert.False(t, NewSignatureVerifier("secret-b").Verify("o1", "p1", sig))
}
