// Package services holds domain services that work across aggregates.
//
// RouteOptimizer orders the routable stops of one driver on one date:
//   - a nearest-neighbour construction seeded at the depot, or at the stop
//     with the earliest window when no depot is configured
//   - a bounded first-improvement local search over pairwise swaps and
//     2-opt reversals, accepting strict cost decreases only
//   - the booking order as a fallback candidate
//
// Results are deterministic for identical inputs: every enumeration has a
// fixed order and ties resolve to the lower original rank.
package services
