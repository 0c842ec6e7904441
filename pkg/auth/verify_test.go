package auth

import (
	"testing"
	"time"

	"github.com/glvault/glvault/pkg/crypto"
)

func signedFields(secret []byte, alias, method, path string, ts int64, nonce string) (RelayRequestFields, string) {
	f := RelayRequestFields{Alias: alias, Method: method, Path: path, Timestamp: ts, Nonce: nonce}
	return f, crypto.SignHex(secret, Canonicalize(f))
}

func TestVerifyRelayRequestHappyPath(t *testing.T) {
	secret := []byte("hmac-secret")
	v := NewVerifier(secret, "admin-token", DefaultMaxAgeMS)

	now := int64(1_700_000_000_000)
	f, sig := signedFields(secret, "weather", "GET", "/data/2.5/weather?q=Tokyo", now, "n1")

	if reason := v.VerifyRelayRequest(f, sig, now); reason != "" {
		t.Fatalf("VerifyRelayRequest() = %q, want empty", reason)
	}
}

func TestVerifyRelayRequestStale(t *testing.T) {
	secret := []byte("hmac-secret")
	v := NewVerifier(secret, "admin-token", 30_000)

	now := int64(1_700_000_000_000)
	f, sig := signedFields(secret, "weather", "GET", "/path", now-31_000, "n1")

	reason := v.VerifyRelayRequest(f, sig, now)
	if reason == "" {
		t.Fatal("VerifyRelayRequest() accepted a stale timestamp")
	}
}

func TestVerifyRelayRequestSkewBoundary(t *testing.T) {
	secret := []byte("hmac-secret")
	v := NewVerifier(secret, "admin-token", 30_000)
	now := int64(1_700_000_000_000)

	f, sig := signedFields(secret, "weather", "GET", "/path", now-29_999, "n1")
	if reason := v.VerifyRelayRequest(f, sig, now); reason != "" {
		t.Fatalf("VerifyRelayRequest() at max_age_ms-1 = %q, want accepted", reason)
	}

	f2, sig2 := signedFields(secret, "weather", "GET", "/path", now-30_001, "n1")
	if reason := v.VerifyRelayRequest(f2, sig2, now); reason == "" {
		t.Fatal("VerifyRelayRequest() at max_age_ms+1 accepted, want rejected")
	}

	f3, sig3 := signedFields(secret, "weather", "GET", "/path", now+30_001, "n1")
	if reason := v.VerifyRelayRequest(f3, sig3, now); reason == "" {
		t.Fatal("VerifyRelayRequest() with future skew beyond window accepted, want rejected")
	}
}

func TestVerifyRelayRequestMissingField(t *testing.T) {
	secret := []byte("hmac-secret")
	v := NewVerifier(secret, "admin-token", DefaultMaxAgeMS)
	now := int64(1_700_000_000_000)

	f, sig := signedFields(secret, "", "GET", "/path", now, "n1")
	if reason := v.VerifyRelayRequest(f, sig, now); reason == "" {
		t.Fatal("VerifyRelayRequest() with empty alias accepted, want rejected")
	}
}

func TestVerifyRelayRequestBadMethod(t *testing.T) {
	secret := []byte("hmac-secret")
	v := NewVerifier(secret, "admin-token", DefaultMaxAgeMS)
	now := int64(1_700_000_000_000)

	f, sig := signedFields(secret, "weather", "PATCH", "/path", now, "n1")
	if reason := v.VerifyRelayRequest(f, sig, now); reason == "" {
		t.Fatal("VerifyRelayRequest() with PATCH method accepted, want rejected")
	}
}

func TestVerifyRelayRequestBadSignature(t *testing.T) {
	secret := []byte("hmac-secret")
	v := NewVerifier(secret, "admin-token", DefaultMaxAgeMS)
	now := int64(1_700_000_000_000)

	f := RelayRequestFields{Alias: "weather", Method: "GET", Path: "/path", Timestamp: now, Nonce: "n1"}
	if reason := v.VerifyRelayRequest(f, "deadbeef", now); reason == "" {
		t.Fatal("VerifyRelayRequest() with garbage signature accepted, want rejected")
	}

	wrongSecretSig := crypto.SignHex([]byte("wrong-secret"), Canonicalize(f))
	if reason := v.VerifyRelayRequest(f, wrongSecretSig, now); reason == "" {
		t.Fatal("VerifyRelayRequest() signed under wrong secret accepted, want rejected")
	}
}

func TestVerifyAdmin(t *testing.T) {
	v := NewVerifier([]byte("hmac-secret"), "correct-token", DefaultMaxAgeMS)

	tests := []struct {
		name      string
		header    string
		wantFail  bool
	}{
		{"missing header", "", true},
		{"basic scheme", "Basic xyz", true},
		{"wrong token", "Bearer wrong", true},
		{"correct", "Bearer correct-token", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reason := v.VerifyAdmin(tt.header)
			if tt.wantFail && reason == "" {
				t.Fatalf("VerifyAdmin(%q) accepted, want rejected", tt.header)
			}
			if !tt.wantFail && reason != "" {
				t.Fatalf("VerifyAdmin(%q) = %q, want accepted", tt.header, reason)
			}
		})
	}
}

func TestNonceCacheDetectsReplay(t *testing.T) {
	c := NewNonceCache(128, 100*time.Millisecond)

	if c.SeenBefore("weather", "n1") {
		t.Fatal("first SeenBefore() reported a replay")
	}
	if !c.SeenBefore("weather", "n1") {
		t.Fatal("second SeenBefore() with same (alias, nonce) did not report a replay")
	}
	if c.SeenBefore("weather", "n2") {
		t.Fatal("SeenBefore() with a different nonce reported a false replay")
	}
	if c.SeenBefore("news", "n1") {
		t.Fatal("SeenBefore() with a different alias reported a false replay")
	}
}
