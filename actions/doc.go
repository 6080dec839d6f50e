// Package actions binds the privileged outbound capabilities (reply, react,
// share, direct talk send) to one request's resolved identifiers.
//
// Every privileged call acquires a fresh relay session immediately before
// the outbound request; nothing here caches or persists credentials.
package actions
