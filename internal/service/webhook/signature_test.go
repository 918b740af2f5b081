package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signHex(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func signBase64(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestVerifyHexSignature(t *testing.T) {
	body := []byte(`{"event_type":"EMAIL_OPEN","campaign_id":42}`)
	v := NewVerifier("smartlead", "s3cret", "hex")

	require.NoError(t, v.Verify(body, signHex("s3cret", body)))
}

func TestVerifyStripsSha256Prefix(t *testing.T) {
	body := []byte(`{"event_type":"EMAIL_OPEN"}`)
	v := NewVerifier("smartlead", "s3cret", "hex")

	assert.NoError(t, v.Verify(body, "sha256="+signHex("s3cret", body)))
	assert.NoError(t, v.Verify(body, "SHA256="+signHex("s3cret", body)))
}

func TestVerifyBase64Signature(t *testing.T) {
	body := []byte(`{"event":"email_opened"}`)
	v := NewVerifier("replyio", "topsecret", "base64")

	require.NoError(t, v.Verify(body, signBase64("topsecret", body)))
}

func TestVerifyMismatchRejected(t *testing.T) {
	body := []byte(`{"event_type":"EMAIL_OPEN"}`)
	v := NewVerifier("smartlead", "s3cret", "hex")

	err := v.Verify(body, signHex("wrong-secret", body))
	assert.ErrorIs(t, err, ErrBadSignature)
}

func TestVerifyTamperedBodyRejected(t *testing.T) {
	body := []byte(`{"event_type":"EMAIL_OPEN","campaign_id":42}`)
	sig := signHex("s3cret", body)
	v := NewVerifier("smartlead", "s3cret", "hex")

	tampered := []byte(`{"event_type":"EMAIL_OPEN","campaign_id":43}`)
	assert.ErrorIs(t, v.Verify(tampered, sig), ErrBadSignature)
}

func TestVerifyMissingSignatureRejected(t *testing.T) {
	v := NewVerifier("smartlead", "s3cret", "hex")
	assert.ErrorIs(t, v.Verify([]byte(`{}`), ""), ErrBadSignature)
}

func TestVerifyUndecodableSignatureRejected(t *testing.T) {
	v := NewVerifier("smartlead", "s3cret", "hex")
	assert.ErrorIs(t, v.Verify([]byte(`{}`), "not-hex-at-all!!"), ErrBadSignature)
}

// With no secret configured the verifier accepts everything; deployments
// without signing still need their webhooks delivered.
func TestVerifyUnconfiguredSecretAccepts(t *testing.T) {
	v := NewVerifier("smartlead", "", "hex")
	assert.NoError(t, v.Verify([]byte(`{}`), ""))
	assert.NoError(t, v.Verify([]byte(`{}`), "anything"))
}
