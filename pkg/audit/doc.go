/*
Package audit implements the append-only audit log: recording one
AuditEntry per attempted relay, maintaining a bounded per-alias index,
and serving the query and stats read paths used by the GET /keys/audit
endpoint.

The backend-fronting, JSON-marshal-per-record shape follows the rest
of this repo's storage-backed packages, generalized to a bounded index
that trims to the last 10,000 entries per alias. Entry IDs use
github.com/google/uuid, used throughout this repo for generated
identifiers.
*/
package audit
