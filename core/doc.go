// Package core contains canonical gateway domain contracts, entities, and
// configuration. Lower-level adapters must depend on this package; core
// must not depend on transport-specific or store-specific adapters.
package core
