package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
)

// Algorithm is the only digest algorithm accepted in signature headers.
const Algorithm = "sha256"

var (
	ErrMissingSignature   = errors.New("signature header missing")
	ErrMissingSecret      = errors.New("signature enforcement enabled without a secret")
	ErrMalformedSignature = errors.New("signature header malformed")
	ErrSignatureMismatch  = errors.New("signature mismatch")
)

// Policy controls whether inbound signatures are enforced.
type Policy struct {
	Enforce bool
	Secret  []byte
}

// Signature is a parsed X-Hub-Signature-256 value.
type Signature struct {
	Algorithm string
	Digest    []byte
}

// ParseHeader parses a "sha256=<hex>" header value.
func ParseHeader(value string) (Signature, error) {
	parts := strings.Split(value, "=")
	if len(parts) != 2 {
		return Signature{}, ErrMalformedSignature
	}
	if parts[0] != Algorithm || parts[1] == "" {
		return Signature{}, ErrMalformedSignature
	}
	digest, err := hex.DecodeString(parts[1])
	if err != nil {
		return Signature{}, ErrMalformedSignature
	}
	return Signature{Algorithm: parts[0], Digest: digest}, nil
}

// Check reports why a request fails verification, or nil when it is trusted.
// An absent header is passed as the empty string.
func Check(policy Policy, header string, body []byte) error {
	if !policy.Enforce {
		return nil
	}
	if header == "" || header == "null" {
		return ErrMissingSignature
	}
	if len(policy.Secret) == 0 {
		return ErrMissingSecret
	}
	sig, err := ParseHeader(header)
	if err != nil {
		return err
	}
	if !hmac.Equal(digest(policy.Secret, body), sig.Digest) {
		return ErrSignatureMismatch
	}
	return nil
}

// Verify reports whether the request body is trusted under policy.
func Verify(policy Policy, header string, body []byte) bool {
	return Check(policy, header, body) == nil
}

// Sign returns the header value GitHub would send for body.
func Sign(secret, body []byte) string {
	return Algorithm + "=" + hex.EncodeToString(digest(secret, body))
}

func digest(secret, body []byte) []byte {
	mac := hmac.New(sha256.New, secret)
	_, _ = mac.Write(body)
	return mac.Sum(nil)
}
