// Package relayapi is the HTTP client for the upstream relay's row-query,
// reply, and session endpoints. All calls carry a bounded timeout; a timeout
// or non-success response surfaces as a typed relay error, never a hang.
package relayapi
