// Package kernel holds the value objects shared by every aggregate of the
// capacity domain: identifiers, geographic locations, civil dates and
// time-of-day windows.
//
// All values are immutable. Zero values are invalid and fail Validate, so
// callers must go through the constructors.
package kernel
