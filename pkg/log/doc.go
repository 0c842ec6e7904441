/*
Package log provides structured logging for glvault using zerolog.

It wraps a single package-level zerolog.Logger, initialized once via
Init, plus child-logger constructors (WithComponent, WithAlias,
WithCaller, WithRequestID) that tag log lines without threading a
logger through every call. Output is JSON in production and a
console-formatted writer otherwise.

Never pass credential plaintext, the master key, the HMAC secret, or
the admin token to any logger call — only aliases, statuses, and
latencies are safe to log.
*/
package log
