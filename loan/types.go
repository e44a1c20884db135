/*
Package loan provides the core loan computation engine.

PURPOSE:
  This package contains the pure calculations behind every loan display in
  the system: the periodic installment, the processing-fee allocation, the
  outstanding balance, the next due date, and overdue penalties. Every
  presentation surface (active-loan listing, loan detail, reporting, overdue
  view) calls the same functions here, so the numbers shown for a loan are
  identical everywhere.

KEY CONCEPTS IN THIS FILE (types.go):
  - LoanSnapshot: Immutable input record as supplied by the loan service
  - ScheduleEntry: Externally supplied per-installment schedule row
  - AmortizationResult / ReconciliationResult / Summary: Computed outputs
  - Severity: Overdue classification tier for collections

DESIGN PRINCIPLES:
  1. Purity: No I/O, no clocks, no ambient state. Temporal inputs are
     explicit fields. Same inputs always produce the same outputs.
  2. Precision: Uses decimal.Decimal to avoid floating-point errors.
     Monetary values round to 2 decimal places, half away from zero.
  3. Degradation over failure: Missing optional fields resolve via the
     documented fallback policy instead of raising errors. Only genuinely
     invalid numeric inputs (principal or term <= 0) are rejected.

USAGE:
  summary, err := loan.ComputeSummary(snapshot)
  if err != nil {
      // principal was non-positive; nothing displayable
  }
  fmt.Println(summary.Reconciliation.OutstandingBalance)

SEE ALSO:
  - amortization.go: Level-payment and fee calculation
  - reconcile.go: Amounts due, outstanding balance, remaining installments
  - schedule.go: Next due date projection
  - penalty.go: Overdue penalty and severity classification
  - resolve.go: Ordered-preference field resolvers
*/
package loan

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// POLICY CONSTANTS
// =============================================================================

var (
	// ProcessingFeeRate is the one-time loan origination fee, charged as a
	// fraction of principal and spread evenly across the term for display.
	ProcessingFeeRate = decimal.NewFromFloat(0.05)

	// DailyPenaltyRate is the penalty accrued per day in arrears, roughly
	// 0.5% per month.
	DailyPenaltyRate = decimal.NewFromFloat(0.00017)

	// DefaultMonthlyRate is used when the loan service populated neither a
	// monthly nor an annual interest rate.
	DefaultMonthlyRate = decimal.NewFromFloat(0.035)
)

// =============================================================================
// CURRENCY AND STATUS
// =============================================================================

// Currency identifies the denomination of a loan. The arithmetic is the same
// for both; the code travels with every displayed amount.
type Currency string

const (
	CurrencyHTG Currency = "HTG"
	CurrencyUSD Currency = "USD"
)

// LoanStatus is the lifecycle state reported by the loan service.
type LoanStatus string

const (
	StatusActive     LoanStatus = "Active"
	StatusOverdue    LoanStatus = "Overdue"
	StatusCompleted  LoanStatus = "Completed"
	StatusDefaulted  LoanStatus = "Defaulted"
	StatusWrittenOff LoanStatus = "WrittenOff"
)

// IsActive reports whether the loan is still being serviced. Schedule
// projection only reconstructs dates for loans in this state.
func (s LoanStatus) IsActive() bool {
	return s == StatusActive || s == StatusOverdue || s == ""
}

// =============================================================================
// LOAN SNAPSHOT - Immutable input from the loan service
// =============================================================================

// LoanSnapshot is the record a screen receives from the upstream loan-query
// service, already collapsed to one field per concept (the DTO layer resolves
// the upstream schema's alternate field names before building a snapshot).
type LoanSnapshot struct {
	LoanNumber string
	Currency   Currency
	Status     LoanStatus

	// Principal is the original disbursed amount. Must be positive.
	Principal decimal.Decimal

	// MonthlyRate is authoritative when positive. AnnualRate/12 is the
	// fallback derivation. Either may arrive as a fraction (0.035) or a
	// percentage (3.5); ResolveMonthlyRate normalizes both.
	MonthlyRate decimal.Decimal
	AnnualRate  decimal.Decimal

	// TermMonths is the total number of installments. Callers of the
	// amortization calculator substitute a minimum of 1 when the upstream
	// value is zero or missing; ComputeSummary does this normalization.
	TermMonths int

	// Cumulative actuals.
	PaymentsMade int
	AmountPaid   decimal.Decimal

	// ReportedBalance is the balance the upstream source computed itself.
	// Kept only as a display fallback for screens that do not recompute.
	ReportedBalance decimal.Decimal

	// Date basis for schedule projection, in decreasing order of authority.
	Schedule             []ScheduleEntry
	NextPaymentDate      *time.Time
	NextPaymentDueRaw    string
	FirstInstallmentDate *time.Time

	DaysOverdue int
}

// =============================================================================
// SCHEDULE ENTRY - Externally supplied ground truth
// =============================================================================

type ScheduleStatus string

const (
	SchedulePaid    ScheduleStatus = "Paid"
	SchedulePending ScheduleStatus = "Pending"
	ScheduleLate    ScheduleStatus = "Late"
)

// ScheduleEntry is one row of an explicit per-installment schedule. When the
// loan service supplies a schedule it is treated as read-only ground truth
// and short-circuits date projection.
type ScheduleEntry struct {
	InstallmentNumber int
	DueDate           time.Time
	PrincipalPortion  decimal.Decimal
	InterestPortion   decimal.Decimal
	FeePortion        decimal.Decimal
	TotalAmount       decimal.Decimal
	Status            ScheduleStatus
}

// =============================================================================
// COMPUTED RESULTS - Created fresh per display request, never cached upstream
// =============================================================================

// AmortizationResult is the level periodic payment plus the fee allocation.
//
// Invariant: PeriodicPaymentWithFee = PeriodicPayment + FeePerPeriod, with
// both terms rounded to 2 decimal places independently BEFORE summing. The
// reporting screens depend on this convention matching printed receipts.
type AmortizationResult struct {
	PeriodicPayment        decimal.Decimal
	FeePerPeriod           decimal.Decimal
	PeriodicPaymentWithFee decimal.Decimal
}

// ReconciliationResult carries the amounts a screen displays next to a loan.
//
// Invariant: OutstandingBalance = max(0, TotalDueOverTerm - amountPaid).
// Never negative.
type ReconciliationResult struct {
	TotalDueOverTerm      decimal.Decimal
	OutstandingBalance    decimal.Decimal
	RemainingInstallments int
}

// Summary is the full pipeline output for one loan: amortization feeds
// reconciliation, reconciliation feeds the penalty estimate, and the payment
// history feeds date projection. NextDueDate is nil when the loan is fully
// serviced or no date basis exists; RemainingInstallments distinguishes the
// two cases.
type Summary struct {
	Amortization   AmortizationResult
	Reconciliation ReconciliationResult
	NextDueDate    *time.Time
	Penalty        decimal.Decimal
	Severity       Severity
}

// =============================================================================
// SEVERITY - Overdue classification for collections
// =============================================================================

type Severity string

const (
	SeverityCurrent  Severity = "Current"
	SeverityModerate Severity = "Moderate"
	SeveritySevere   Severity = "Severe"
	SeverityCritical Severity = "Critical"
)

// Rank orders severities for sorting and grouping, most urgent first at the
// highest value.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 3
	case SeveritySevere:
		return 2
	case SeverityModerate:
		return 1
	default:
		return 0
	}
}
