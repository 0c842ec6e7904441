/*
Package vault implements the credential store: typed operations over
encrypted CredentialRecords, the alias index, and the fixed-window
quota counter. It is the only component that holds the master key and
the only component permitted to call pkg/crypto's decrypt path.

The backend-fronting, JSON-marshal-per-record shape follows this
repo's other storage-backed packages, generalized to CredentialRecord
and its alias index.
*/
package vault
