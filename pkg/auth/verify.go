package auth

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/glvault/glvault/pkg/crypto"
)

// DefaultMaxAgeMS is the default freshness window for relay requests.
const DefaultMaxAgeMS = 30_000

// allowedMethods is the enumerated verb set a signed request's method
// must belong to.
var allowedMethods = map[string]bool{
	"GET":    true,
	"POST":   true,
	"PUT":    true,
	"DELETE": true,
}

// RelayRequestFields is the subset of a relay request the signature
// canonicalizes over.
type RelayRequestFields struct {
	Alias     string
	Method    string
	Path      string
	Timestamp int64
	Nonce     string
}

// Canonicalize builds the exact byte string signed by the caller:
// alias ":" method ":" path ":" decimal(timestamp_ms) ":" nonce.
// None of these fields may themselves contain ":"; the
// alias regex and the enumerated method set guarantee this for those
// two, and path/nonce are opaque by construction.
func Canonicalize(f RelayRequestFields) []byte {
	return []byte(fmt.Sprintf("%s:%s:%s:%s:%s",
		f.Alias, f.Method, f.Path, strconv.FormatInt(f.Timestamp, 10), f.Nonce))
}

// Verifier checks relay-request signatures and admin bearer tokens
// against process-wide secrets loaded once at startup.
type Verifier struct {
	hmacSecret []byte
	adminToken string
	maxAgeMS   int64
}

// NewVerifier builds a Verifier. maxAgeMS of 0 uses DefaultMaxAgeMS.
func NewVerifier(hmacSecret []byte, adminToken string, maxAgeMS int64) *Verifier {
	if maxAgeMS <= 0 {
		maxAgeMS = DefaultMaxAgeMS
	}
	return &Verifier{hmacSecret: hmacSecret, adminToken: adminToken, maxAgeMS: maxAgeMS}
}

// VerifyRelayRequest checks a relay request's freshness, required
// fields, method, and signature. It returns an empty reason on
// success, or a short, non-secret-bearing
// rejection reason. nowMS is injected so callers (and tests) control
// the freshness comparison's reference point.
func (v *Verifier) VerifyRelayRequest(f RelayRequestFields, providedSigHex string, nowMS int64) string {
	skew := nowMS - f.Timestamp
	if skew < 0 {
		skew = -skew
	}
	if skew > v.maxAgeMS {
		return "request timestamp expired or too far in the future"
	}

	if f.Alias == "" || f.Path == "" || f.Method == "" || f.Nonce == "" {
		return "missing required field"
	}

	if !allowedMethods[strings.ToUpper(f.Method)] {
		return "unsupported method"
	}

	expected := crypto.SignHex(v.hmacSecret, Canonicalize(f))
	if !crypto.ConstantTimeEqual([]byte(expected), []byte(providedSigHex)) {
		return "signature mismatch"
	}

	return ""
}

// VerifyAdmin checks the admin bearer token: the header MUST be
// exactly "Bearer " + token with a single space. A missing header,
// wrong scheme, and wrong token all reduce to a single generic
// rejection reason; callers translate that into a more specific
// caller-visible string when the header shape itself is the defect.
func (v *Verifier) VerifyAdmin(header string) string {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "invalid admin token"
	}
	token := header[len(prefix):]
	if !crypto.ConstantTimeEqual([]byte(token), []byte(v.adminToken)) {
		return "invalid admin token"
	}
	return ""
}

// NowMS is a small convenience so callers don't each import "time"
// just to produce the reference point VerifyRelayRequest wants.
func NowMS() int64 {
	return time.Now().UnixMilli()
}
