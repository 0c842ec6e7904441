/*
Package vaulterr defines the vault's error taxonomy: a single
RelayError type carrying one of eight discriminant kinds, each mapping
to an HTTP status code and a caller-visible message.

Built on this repo's established pattern of sentinel errors plus
fmt.Errorf wrapping, generalized into a typed discriminant since the
handler boundary needs to dispatch on error kind rather than just log
and surface a string.
*/
package vaulterr
