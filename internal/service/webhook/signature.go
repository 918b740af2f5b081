package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"strings"

	"github.com/growthloop/outreach-sync/internal/pkg/logger"
)

// Verifier checks provider webhook signatures. Providers sign the exact raw
// request body with HMAC-SHA256 and send the digest in a header, hex or
// base64 encoded depending on the provider, sometimes prefixed "sha256=".
type Verifier struct {
	secret   string
	encoding string
	provider string
}

// NewVerifier builds a verifier for one provider. encoding is "hex" or
// "base64"; anything else falls back to hex.
func NewVerifier(provider, secret, encoding string) *Verifier {
	if encoding != "base64" {
		encoding = "hex"
	}
	return &Verifier{secret: secret, encoding: encoding, provider: provider}
}

// Verify compares the presented signature against HMAC-SHA256(secret, body)
// in constant time. A verifier with no secret accepts everything and warns;
// production deployments must configure the secret.
func (v *Verifier) Verify(body []byte, signature string) error {
	if v.secret == "" {
		logger.Warn("webhook secret not configured, accepting unverified request",
			"provider", v.provider)
		return nil
	}

	sig := strings.TrimSpace(signature)
	if rest, ok := cutPrefixFold(sig, "sha256="); ok {
		sig = rest
	}
	if sig == "" {
		return ErrBadSignature
	}

	var presented []byte
	var err error
	switch v.encoding {
	case "base64":
		presented, err = base64.StdEncoding.DecodeString(sig)
		if err != nil {
			presented, err = base64.RawStdEncoding.DecodeString(sig)
		}
	default:
		presented, err = hex.DecodeString(sig)
	}
	if err != nil {
		return ErrBadSignature
	}

	mac := hmac.New(sha256.New, []byte(v.secret))
	mac.Write(body)
	if !hmac.Equal(presented, mac.Sum(nil)) {
		return ErrBadSignature
	}
	return nil
}

func cutPrefixFold(s, prefix string) (string, bool) {
	if len(s) < len(prefix) || !strings.EqualFold(s[:len(prefix)], prefix) {
		return s, false
	}
	return s[len(prefix):], true
}
