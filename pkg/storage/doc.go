/*
Package storage defines the abstract key-value backend glvault's core
consumes, and two implementations of it.

Backend is a four-operation contract — Get, Set, Delete, Scan — over
opaque byte values keyed by strings in the reserved "glvault:" namespace.
Neither pkg/vault nor pkg/audit touch a backend's storage medium
directly; they only call through Backend, so the two implementations
here (MemoryBackend for tests, BoltBackend for a single-node production
deployment) are interchangeable. A networked KV service is an equally
valid third implementation — nothing here assumes bbolt-specific
behavior beyond the contract.
*/
package storage
