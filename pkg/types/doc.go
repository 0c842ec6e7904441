/*
Package types defines the wire and storage data model shared by
pkg/vault, pkg/audit, pkg/relay, and pkg/api.

CredentialRecord is the persisted unit for one alias; RecordMetadata is
the same record with all encrypted fields stripped, the only shape ever
handed back across an admin endpoint. AuditEntry and AuditIndexEntry
back the append-only audit log in pkg/audit. The remaining types are
JSON request/response bodies for the HTTP surface in pkg/api, with
case-sensitive field names and unknown fields ignored on decode.
*/
package types
