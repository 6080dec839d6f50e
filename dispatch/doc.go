// Package dispatch routes classified events to registered handlers.
//
// Handlers for one kind run sequentially in registration order against a
// point-in-time snapshot, so registrations made during a dispatch pass do
// not run in that pass. A handler failure is converted into one error-kind
// emission; a failure inside an error-kind handler is logged and dropped so
// conversion can never recurse.
package dispatch
