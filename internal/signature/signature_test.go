package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"testing"

	gh "github.com/google/go-github/v81/github"
	"github.com/stretchr/testify/require"
)

func TestVerifyAcceptsValidSignature(t *testing.T) {
	t.Parallel()

	secret := []byte("test-secret")
	body := []byte(`{"action":"created","repository":{"full_name":"a/b"}}`)
	policy := Policy{Enforce: true, Secret: secret}

	if !Verify(policy, signTest(body, secret), body) {
		t.Fatal("expected valid signature to verify")
	}
}

func TestVerifyAcceptsUppercaseHexDigest(t *testing.T) {
	t.Parallel()

	secret := []byte("test-secret")
	body := []byte(`{"zen":"z"}`)
	header := "sha256=" + strings.ToUpper(strings.TrimPrefix(signTest(body, secret), "sha256="))

	if !Verify(Policy{Enforce: true, Secret: secret}, header, body) {
		t.Fatal("expected uppercase hex digest to verify")
	}
}

func TestVerifyRejectsWrongSecretOrBody(t *testing.T) {
	t.Parallel()

	secret := []byte("test-secret")
	body := []byte(`{"zen":"z"}`)
	policy := Policy{Enforce: true, Secret: secret}

	if Verify(policy, signTest(body, []byte("other-secret")), body) {
		t.Fatal("expected signature from another secret to fail")
	}
	if Verify(policy, signTest([]byte(`{"zen":"y"}`), secret), body) {
		t.Fatal("expected signature of another body to fail")
	}
}

func TestCheckRejectsMalformedHeaders(t *testing.T) {
	t.Parallel()

	policy := Policy{Enforce: true, Secret: []byte("test-secret")}
	body := []byte(`{}`)
	valid := strings.TrimPrefix(signTest(body, policy.Secret), "sha256=")

	cases := []struct {
		name   string
		header string
		want   error
	}{
		{name: "absent", header: "", want: ErrMissingSignature},
		{name: "null literal", header: "null", want: ErrMissingSignature},
		{name: "no separator", header: "sha256" + valid, want: ErrMalformedSignature},
		{name: "sha1 algorithm", header: "sha1=" + valid, want: ErrMalformedSignature},
		{name: "uppercase algorithm", header: "SHA256=" + valid, want: ErrMalformedSignature},
		{name: "empty digest", header: "sha256=", want: ErrMalformedSignature},
		{name: "odd length hex", header: "sha256=abc", want: ErrMalformedSignature},
		{name: "non hex", header: "sha256=zzzz", want: ErrMalformedSignature},
		{name: "extra separator", header: "sha256=" + valid + "=", want: ErrMalformedSignature},
		{name: "short digest", header: "sha256=deadbeef", want: ErrSignatureMismatch},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := Check(policy, tc.header, body)
			require.ErrorIs(t, err, tc.want)
			require.False(t, Verify(policy, tc.header, body))
		})
	}
}

func TestCheckRejectsEnforcementWithoutSecret(t *testing.T) {
	t.Parallel()

	body := []byte(`{}`)
	err := Check(Policy{Enforce: true}, signTest(body, []byte("x")), body)
	if !errors.Is(err, ErrMissingSecret) {
		t.Fatalf("expected ErrMissingSecret, got %v", err)
	}
}

func TestVerifyDisabledPolicyAcceptsEverything(t *testing.T) {
	t.Parallel()

	policy := Policy{Enforce: false, Secret: []byte("ignored")}
	for _, header := range []string{"", "null", "garbage", "sha256=00"} {
		if !Verify(policy, header, []byte("not even json")) {
			t.Fatalf("expected disabled policy to accept header %q", header)
		}
	}
	if !Verify(Policy{}, "", nil) {
		t.Fatal("expected zero policy to accept")
	}
}

func TestSignMatchesGitHubValidation(t *testing.T) {
	t.Parallel()

	secret := []byte("shared-secret")
	bodies := [][]byte{
		[]byte(`{}`),
		[]byte(`{"ref":"refs/heads/main","commits":[{}]}`),
		[]byte("  {\"zen\": \"Keep it logically awesome.\"}\n"),
	}
	for _, body := range bodies {
		header := Sign(secret, body)
		if err := gh.ValidateSignature(header, body, secret); err != nil {
			t.Fatalf("go-github rejected %q: %v", header, err)
		}
		if !Verify(Policy{Enforce: true, Secret: secret}, header, body) {
			t.Fatalf("expected %q to verify", header)
		}
	}
}

func TestParseHeader(t *testing.T) {
	t.Parallel()

	sig, err := ParseHeader("sha256=00ff")
	if err != nil {
		t.Fatalf("parse header: %v", err)
	}
	if sig.Algorithm != Algorithm {
		t.Fatalf("unexpected algorithm: %s", sig.Algorithm)
	}
	if len(sig.Digest) != 2 || sig.Digest[0] != 0x00 || sig.Digest[1] != 0xff {
		t.Fatalf("unexpected digest: %x", sig.Digest)
	}
}

func signTest(body, secret []byte) string {
	mac := hmac.New(sha256.New, secret)
	_, _ = mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}
