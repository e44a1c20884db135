/*
summary.go - The full computation pipeline over one snapshot

PURPOSE:
  Every screen that displays a loan runs the same pipeline: amortization
  produces the periodic payment, the payment feeds balance reconciliation,
  the payment history feeds date projection, and the reconciled balance feeds
  the penalty estimate. ComputeSummary is that pipeline, so no call site can
  re-order or re-round the steps and show a different number for the same
  loan.

NORMALIZATION AT THE BOUNDARY:
  The upstream loan service occasionally reports a zero term. The calculator
  rejects a zero term by contract, so the pipeline substitutes the minimum of
  one month here, at the caller boundary. Rate fields are collapsed to a
  single monthly fraction via ResolveMonthlyRate.
*/
package loan

// ComputeSummary runs the full pipeline over a snapshot. The only failure
// mode is a non-positive principal; everything else degrades per the
// component contracts.
func ComputeSummary(snap LoanSnapshot) (Summary, error) {
	termMonths := snap.TermMonths
	if termMonths <= 0 {
		termMonths = 1
	}

	rate := ResolveMonthlyRate(snap.MonthlyRate, snap.AnnualRate)

	am, err := ComputeAmortization(snap.Principal, rate, termMonths)
	if err != nil {
		return Summary{}, err
	}

	// A positive payment count is trusted; zero is indistinguishable from
	// "not populated" upstream, so the reconciler falls back to estimating
	// from the amount paid.
	var paymentsMade *int
	if snap.PaymentsMade > 0 {
		paymentsMade = &snap.PaymentsMade
	}

	rec := ReconcileBalance(am, termMonths, snap.AmountPaid, paymentsMade)

	next := ProjectNextDueDate(ProjectionInput{
		Schedule:             snap.Schedule,
		NextPaymentDate:      snap.NextPaymentDate,
		NextPaymentDueRaw:    snap.NextPaymentDueRaw,
		FirstInstallmentDate: snap.FirstInstallmentDate,
		AmountPaid:           snap.AmountPaid,
		Amortization:         am,
		TermMonths:           termMonths,
		Status:               snap.Status,
	})

	return Summary{
		Amortization:   am,
		Reconciliation: rec,
		NextDueDate:    next,
		Penalty:        EstimatePenalty(rec.OutstandingBalance, snap.DaysOverdue),
		Severity:       ClassifySeverity(snap.DaysOverdue),
	}, nil
}
