/*
Package config loads glvault's startup configuration from the
environment: the master encryption key, HMAC secret, admin token,
rate-limit window, request freshness window, log level, and storage
backend selection. A missing or mis-sized required value fails loudly
at startup rather than falling back to a default.

The loader is env-first with an optional YAML overlay for the host →
credential-param table operators may want to extend without a code
change.
*/
package config
