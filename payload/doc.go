// Package payload repairs raw relay notification bodies and classifies them
// into event kinds.
//
// Relay envelopes embed JSON documents as string fields and carry 64-bit
// identifiers as bare numeric literals; both are repaired before any other
// component reads the body so downstream code never sees a lossy number or
// an unparsed sub-document.
package payload
