/*
reconcile.go - Amounts due, outstanding balance, remaining installments

PURPOSE:
  Derives what a loan screen displays next to a loan: the total amount due
  over the full term (installments including the fee portion), the balance
  still outstanding after the payments actually received, and how many
  installments remain.

DEGRADATION:
  This feeds read-only displays, so nothing here returns an error. Missing
  optional inputs degrade to zero outputs. The outstanding balance is clamped
  at zero: a borrower who overpaid owes nothing, not a negative amount.
*/
package loan

import "github.com/shopspring/decimal"

// ReconcileBalance computes the total due over the term, the outstanding
// balance, and the remaining installment count.
//
// paymentsMade is optional. When known it drives the remaining-installment
// count directly; when nil the count is estimated from how many full
// installments the amount paid covers.
func ReconcileBalance(am AmortizationResult, termMonths int, amountPaid decimal.Decimal, paymentsMade *int) ReconciliationResult {
	totalDue := am.PeriodicPaymentWithFee.Mul(decimal.NewFromInt(int64(termMonths))).Round(2)

	outstanding := totalDue.Sub(amountPaid)
	if outstanding.IsNegative() {
		outstanding = decimal.Zero
	}

	remaining := 0
	switch {
	case paymentsMade != nil:
		remaining = termMonths - *paymentsMade
	case am.PeriodicPaymentWithFee.IsPositive():
		remaining = termMonths - EstimateInstallmentsPaid(amountPaid, am.PeriodicPaymentWithFee)
	}
	if remaining < 0 {
		remaining = 0
	}

	return ReconciliationResult{
		TotalDueOverTerm:      totalDue,
		OutstandingBalance:    outstanding,
		RemainingInstallments: remaining,
	}
}

// EstimateInstallmentsPaid returns how many full installments the amount paid
// covers. Zero when nothing was paid or the installment is zero. Shared by
// balance reconciliation and schedule projection so both screens agree on how
// far along a loan is.
func EstimateInstallmentsPaid(amountPaid, periodicPaymentWithFee decimal.Decimal) int {
	if !amountPaid.IsPositive() || !periodicPaymentWithFee.IsPositive() {
		return 0
	}
	return int(amountPaid.Div(periodicPaymentWithFee).Floor().IntPart())
}
