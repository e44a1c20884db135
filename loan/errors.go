/*
errors.go - Centralized error types for the loan engine

PURPOSE:
  All error values in one place for consistency and discoverability.
  Callers match with errors.Is().

ERROR CATEGORIES:
  1. Invalid input - Non-positive principal or term passed to the calculator.
     Fatal to that single calculation, never to the caller process.
  2. Missing data  - NOT an error. Optional fields absent from a snapshot
     resolve via the documented fallback policy (see resolve.go) and the
     computations degrade to zero or nil outputs.
  3. Unparsable dates - NOT an error from this package. A free-text due-date
     string that fails to parse falls through to the next projection tier;
     the service layer is responsible for logging the degradation.
*/
package loan

import "errors"

var (
	// ErrInvalidPrincipal is returned when the amortization calculator is
	// given a non-positive principal.
	ErrInvalidPrincipal = errors.New("loan: principal must be positive")

	// ErrInvalidTerm is returned when the amortization calculator is given
	// a non-positive term. Callers substitute a minimum term of 1 before
	// invoking the calculator rather than relying on it to recover.
	ErrInvalidTerm = errors.New("loan: term must be at least one month")
)

// IsInvalidInput reports whether the error is an input-validation failure
// from the amortization calculator.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidPrincipal) || errors.Is(err, ErrInvalidTerm)
}
