// Package errs provides the typed validation and lookup errors shared by the
// capacity service layers.
//
// Each error type follows the same shape:
//   - a sentinel variable (e.g. ErrObjectNotFound) usable with errors.Is
//   - a struct carrying the offending parameter and an optional cause
//   - constructors with and without cause
//   - Unwrap returning the sentinel
package errs
