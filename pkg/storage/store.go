package storage

import "errors"

// ErrNotFound is returned by Get when a key is absent.
var ErrNotFound = errors.New("storage: key not found")

// Key namespace prefixes, fixed so that a drop-in backend replacement
// stays interoperable with any other implementation of this contract.
const (
	NamespacePrefix  = "glvault:"
	KeyPrefix        = NamespacePrefix + "key:"
	IndexKey         = NamespacePrefix + "index"
	AuditPrefix      = NamespacePrefix + "audit:"
	AuditIndexPrefix = NamespacePrefix + "audit_index:"
)

// CredentialKey returns the backend key for a single alias's record.
func CredentialKey(alias string) string {
	return KeyPrefix + alias
}

// AuditEntryKey returns the backend key for one audit entry.
func AuditEntryKey(alias, id string) string {
	return AuditPrefix + alias + ":" + id
}

// AuditIndexKey returns the backend key for an alias's bounded audit index.
func AuditIndexKey(alias string) string {
	return AuditIndexPrefix + alias
}

// Backend is the abstract key-value contract the core consumes. Values
// are opaque octet strings; in practice they are JSON serializations
// of the types in pkg/types. Both implementations in this package, and
// any networked replacement, must satisfy it identically.
type Backend interface {
	// Get returns the value stored at key, or ErrNotFound if absent.
	Get(key string) ([]byte, error)

	// Set unconditionally overwrites the value stored at key.
	Set(key string, value []byte) error

	// Delete removes key. It is idempotent: deleting an absent key is not
	// an error.
	Delete(key string) error

	// Scan returns every key with the given prefix. It need not be
	// consistent with concurrent writes.
	Scan(prefix string) ([]string, error)

	// Close releases any resources held by the backend.
	Close() error
}
