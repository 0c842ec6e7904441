/*
Package crypto implements glvault's cryptographic primitives:
AES-256-GCM authenticated encryption of credentials at rest,
HMAC-SHA-256 request signing, constant-time comparison of secret
values, and deterministic sub-key derivation.

The AES-256-GCM shape and the HMAC/constant-time-compare shape follow
this repo's established crypto conventions, generalized from a
package-level singleton cipher to an instance-held Cipher so a single
process can, in principle, hold more than one master key.
*/
package crypto
