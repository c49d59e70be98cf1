package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Verifier checks webhook signatures from the payment provider. The digest
// is an HMAC-SHA256 over the raw request body bytes, hex encoded. Signing
// the raw bytes (not re-serialized JSON) keeps the digest independent of
// key ordering and whitespace.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Verify reports whether sig is the valid signature for body. It fails
// closed: an empty body, signature, or secret is never valid.
func (v *Verifier) Verify(body []byte, sig string) bool {
	if len(v.secret) == 0 || len(body) == 0 || sig == "" {
		return false
	}

	mac := hmac.New(sha256.New, v.secret)
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(sig))
}

// Sign returns the hex digest for body. Used by tests and by the local
// checkout sandbox to fabricate provider callbacks.
func (v *Verifier) Sign(body []byte) string {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
