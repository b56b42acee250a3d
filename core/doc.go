// Package core contains canonical connection domain contracts, entities, and
// orchestration logic. Lower-level adapters must depend on this package; core
// must not depend on storage-specific or integration-specific adapters.
package core
