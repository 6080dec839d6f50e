// Package resolve enriches a classified notification with row-store
// entities. The three lookups are independent and run concurrently; a
// missing identifier or an absent row yields a nil entity, never an error.
// Only transport-level lookup failures propagate.
package resolve
