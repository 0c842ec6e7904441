/*
Package api wires the administration HTTP surface: POST /keys/register,
GET /keys/list, POST /keys/rotate, GET /keys/audit, GET /health, and
GET /metrics, plus the POST /proxy relay handler from pkg/relay mounted
on the same mux.

The mux wiring, a Start(ctx, addr) lifecycle method, and JSON response
helpers follow the same http.ServeMux + httptest/testify style used
elsewhere in this repo's HTTP-facing packages. The admin bearer-token
middleware is original to this package: the admin surface is a single
mux with one bearer token, not a multi-listener service with per-method
access classes, so it needed its own gate rather than an adapted one;
see DESIGN.md for the full reasoning.
*/
package api
