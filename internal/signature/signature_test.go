package signature

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerify_ValidSignature(t *testing.T) {
	v := NewVerifier("test-secret")
	body := []byte(`{"order_id":"ord_1","amount":9.99,"trade_status":"SUCCESS"}`)

	sig := v.Sign(body)
	require.NotEmpty(t, sig)

	assert.True(t, v.Verify(body, sig))
}

func TestVerify_TamperedBody(t *testing.T) {
	v := NewVerifier("test-secret")
	body := []byte(`{"order_id":"ord_1","amount":9.99,"trade_status":"SUCCESS"}`)
	sig := v.Sign(body)

	// Every single-byte mutation must invalidate the signature.
	for i := range body {
		tampered := make([]byte, len(body))
		copy(tampered, body)
		tampered[i] ^= 0x01

		assert.False(t, v.Verify(tampered, sig), "byte %d", i)
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	body := []byte(`{"order_id":"ord_1"}`)
	sig := NewVerifier("secret-a").Sign(body)

	assert.False(t, NewVerifier("secret-b").Verify(body, sig))
}

func TestVerify_FailsClosed(t *testing.T) {
	v := NewVerifier("test-secret")
	body := []byte(`{}`)
	sig := v.Sign(body)

	assert.False(t, v.Verify(nil, sig), "missing body")
	assert.False(t, v.Verify(body, ""), "missing signature")
	assert.False(t, NewVerifier("").Verify(body, sig), "missing secret")
}

func TestVerify_TruncatedSignature(t *testing.T) {
	v := NewVerifier("test-secret")
	body := []byte(`{"order_id":"ord_1"}`)
	sig := v.Sign(body)

	assert.False(t, v.Verify(body, sig[:len(sig)-2]))
	assert.False(t, v.Verify(body, sig+"00"))
}
