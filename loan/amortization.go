/*
amortization.go - Level periodic payment and processing-fee allocation

PURPOSE:
  Computes the installment a borrower pays each month from the loan's
  principal, monthly rate, and term, using the standard annuity formula:

    payment = P * r * (1+r)^n / ((1+r)^n - 1)    when r > 0
    payment = P / n                              when r = 0

  plus the separately accounted processing fee (5% of principal) spread
  evenly across the term.

ROUNDING:
  Every monetary component is rounded to 2 decimal places, half away from
  zero, INDEPENDENTLY before any summation. PeriodicPaymentWithFee is the sum
  of the two already-rounded terms, never a rounded sum. Receipts are printed
  from the individual components, so summing first would let the displayed
  total drift a cent from the printed breakdown.
*/
package loan

import "github.com/shopspring/decimal"

// ComputeAmortization derives the level periodic payment for the given
// principal, monthly rate, and term, together with the per-period share of
// the origination fee.
//
// The rate may be zero (interest-free loans divide principal evenly), but
// principal and term must be positive; a zero upstream term is the caller's
// quirk to normalize, not this function's to absorb.
func ComputeAmortization(principal, monthlyRate decimal.Decimal, termMonths int) (AmortizationResult, error) {
	if !principal.IsPositive() {
		return AmortizationResult{}, ErrInvalidPrincipal
	}
	if termMonths <= 0 {
		return AmortizationResult{}, ErrInvalidTerm
	}

	n := decimal.NewFromInt(int64(termMonths))

	var payment decimal.Decimal
	if monthlyRate.IsPositive() {
		// (1+r)^n appears in numerator and denominator; compute it once.
		growth := decimal.NewFromInt(1).Add(monthlyRate).Pow(n)
		payment = principal.Mul(monthlyRate).Mul(growth).
			Div(growth.Sub(decimal.NewFromInt(1))).
			Round(2)
	} else {
		payment = principal.Div(n).Round(2)
	}

	fee := principal.Mul(ProcessingFeeRate)
	feePerPeriod := fee.Div(n).Round(2)

	return AmortizationResult{
		PeriodicPayment:        payment,
		FeePerPeriod:           feePerPeriod,
		PeriodicPaymentWithFee: payment.Add(feePerPeriod),
	}, nil
}
