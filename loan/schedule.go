/*
schedule.go - Next due date projection

PURPOSE:
  Determines when the next installment falls due. The loan service is
  inconsistent about how much schedule information it returns, so projection
  works through three lookup tiers in order, first success wins:

    1. Explicit per-installment schedule: the due date of the first entry
       not yet marked Paid. A schedule with every entry Paid means the loan
       is fully serviced.
    2. An explicit next-payment-date field, including the free-text variant
       some endpoints return. An unparsable string is not an error; it falls
       through to the next tier.
    3. Reconstruction: first installment date + (estimated installments paid)
       months, for active loans only, and only while the estimate is below
       the term. At or past the term the loan is considered fully serviced.

TERMINAL STATES:
  nil means either "fully paid" or "no date basis at all". The two are
  distinguishable via ReconciliationResult.RemainingInstallments, not here.
*/
package loan

import (
	"time"

	"github.com/shopspring/decimal"
)

// rawDateLayouts are the formats observed in the free-text due-date field.
var rawDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"02/01/2006",
}

// ProjectionInput carries the date basis and payment progress for one loan.
type ProjectionInput struct {
	Schedule             []ScheduleEntry
	NextPaymentDate      *time.Time
	NextPaymentDueRaw    string
	FirstInstallmentDate *time.Time

	AmountPaid   decimal.Decimal
	Amortization AmortizationResult
	TermMonths   int
	Status       LoanStatus
}

// ProjectNextDueDate resolves the next due date through the lookup tiers.
// It returns nil when the loan is fully serviced or no date basis exists.
func ProjectNextDueDate(in ProjectionInput) *time.Time {
	// Tier 1: explicit schedule is ground truth.
	if len(in.Schedule) > 0 {
		for _, entry := range in.Schedule {
			if entry.Status != SchedulePaid {
				due := entry.DueDate
				return &due
			}
		}
		// Every installment paid.
		return nil
	}

	// Tier 2: explicit next-payment date, typed or free-text.
	if in.NextPaymentDate != nil {
		due := *in.NextPaymentDate
		return &due
	}
	if in.NextPaymentDueRaw != "" {
		if due, ok := parseRawDate(in.NextPaymentDueRaw); ok {
			return &due
		}
	}

	// Tier 3: reconstruct from the first installment date and how many
	// installments the payments received cover.
	if in.FirstInstallmentDate != nil && in.Status.IsActive() {
		paid := EstimateInstallmentsPaid(in.AmountPaid, in.Amortization.PeriodicPaymentWithFee)
		if paid < in.TermMonths {
			due := in.FirstInstallmentDate.AddDate(0, paid, 0)
			return &due
		}
	}

	return nil
}

func parseRawDate(raw string) (time.Time, bool) {
	for _, layout := range rawDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
