package controllers

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// CryptoController verifies inbound webhook authentication: an optional
// shared-secret header and an optional HMAC-SHA256 body signature. All
// comparisons are constant-time.
type CryptoController struct {
	hmacSecret   string
	sharedSecret string
}

func NewCryptoController(hmacSecret, sharedSecret string) *CryptoController {
	return &CryptoController{
		hmacSecret:   hmacSecret,
		sharedSecret: sharedSecret,
	}
}

func (c *CryptoController) Signature(payload []byte) string {
	h := hmac.New(sha256.New, []byte(c.hmacSecret))
	h.Write(payload)

	return hex.EncodeToString(h.Sum(nil))
}

func (c *CryptoController) Verify(payload []byte, signature string) bool {
	return hmac.Equal([]byte(c.Signature(payload)), []byte(signature))
}

func (c *CryptoController) VerifySecret(got string) bool {
	return subtle.ConstantTimeCompare([]byte(c.sharedSecret), []byte(got)) == 1
}

func (c *CryptoController) SecretConfigured() bool {
	return c.sharedSecret != ""
}

func (c *CryptoController) SignatureConfigured() bool {
	return c.hmacSecret != ""
}
