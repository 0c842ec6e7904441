package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// SignatureSize is the length, in bytes, of an HMAC-SHA-256 tag.
const SignatureSize = sha256.Size

// Sign computes the HMAC-SHA-256 tag of payload under secret.
func Sign(secret, payload []byte) []byte {
	mac := hmac.New(sha256.New, secret)
	mac.Write(payload)
	return mac.Sum(nil)
}

// SignHex computes Sign and renders it as 64 lowercase hex characters, the
// wire form used in the Authorization: Signature header.
func SignHex(secret, payload []byte) string {
	return hex.EncodeToString(Sign(secret, payload))
}

// ConstantTimeEqual reports whether a and b are byte-for-byte identical,
// in time independent of where they first differ. A length mismatch is
// reported as inequality, never distinguished from a value mismatch by
// any caller-visible signal.
func ConstantTimeEqual(a, b []byte) bool {
	if len(a) != len(b) {
		// Compare against a zeroed buffer of b's length so the work done
		// here does not vary with whether the lengths matched.
		dummy := make([]byte, len(b))
		subtle.ConstantTimeCompare(dummy, b)
		return false
	}
	return subtle.ConstantTimeCompare(a, b) == 1
}

// DeriveSubKey deterministically derives a 32-byte sub-key from the master
// key and a context string: HMAC-SHA-256(master_key, context). Unused by
// the default relay pipeline; available for operators who opt into
// per-alias key isolation.
func DeriveSubKey(masterKey []byte, context string) []byte {
	return Sign(masterKey, []byte(context))
}
