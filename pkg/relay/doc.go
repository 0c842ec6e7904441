/*
Package relay implements the relay handler: the
VERIFY → RATE → DECRYPT → DISPATCH → SANITIZE → AUDIT state machine
behind POST /proxy. Any step's failure is the terminal state and
determines both the HTTP response and (from RATE onward) the audit
outcome.

The request-dispatch, upstream-timeout, and error-to-status mapping
follow this repo's established reverse-proxying conventions, including
constructing an outbound *http.Request with a context-scoped timeout
and reading back a typed result, adapted from proxying an internal
service mesh to relaying a single credentialed call to a public
third-party API.
*/
package relay
