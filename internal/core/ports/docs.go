// Package ports defines the contracts between the capacity core and its
// adapters: repositories bound to a unit of work, the distance oracle, the
// event publisher and the recompute scheduler.
package ports
