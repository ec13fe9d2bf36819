// Package route implements the RoutePlan aggregate and the value objects the
// optimizer produces for it.
//
// Exactly one plan per driver and date is active. A replaced plan becomes
// immutable history: completed and linked from its successor when the
// replacement came from an explicit optimization, cancelled and unlinked
// when it came from a booking change.
package route
