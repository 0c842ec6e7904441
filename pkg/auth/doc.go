/*
Package auth implements request authentication: signed payload
canonicalization, relay-request verification with a freshness window,
and the admin bearer-token check. Every comparison against a secret
value goes through pkg/crypto's constant-time primitive.

The canonicalization-then-HMAC-then-constant-time-compare shape is
adapted to the vault's field set (alias, method, path, timestamp,
nonce), with rejection reasons surfaced as plain strings for callers
to log via this repo's usual structured-logging conventions.
*/
package auth
