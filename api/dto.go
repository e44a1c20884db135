/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication and the mapping from the
  upstream loan service's unstable schema to the internal snapshot.

UPSTREAM SCHEMA INSTABILITY:
  Depending on endpoint and API version, the loan service exposes the same
  concept under different names: paidAmount vs amountPaid, paymentsMade vs
  installmentsPaid, remainingBalance vs outstandingBalance, termMonths vs
  durationMonths, monthlyInterestRate vs (annual) interestRate, a typed
  nextPaymentDate vs a free-text nextPaymentDue. LoanRecord accepts ALL of
  them and ToSnapshot collapses each pair exactly once, through the
  ordered-preference resolvers, so no other layer ever sees the duplication.

NAMING CONVENTION:
  - LoanRecord: inbound upstream shape
  - *DTO: response types returned to clients
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/loan-engine/loan"
)

// =============================================================================
// INBOUND - Upstream loan record
// =============================================================================

// LoanRecord is a loan as the upstream service serialises it, alternate
// field names included. Decimal fields accept both JSON numbers and strings.
type LoanRecord struct {
	LoanNumber string `json:"loanNumber"`
	Currency   string `json:"currency"`
	Status     string `json:"status"`

	PrincipalAmount decimal.Decimal `json:"principalAmount"`

	// interestRate is annual; monthlyInterestRate is authoritative when set.
	InterestRate        decimal.Decimal `json:"interestRate"`
	MonthlyInterestRate decimal.Decimal `json:"monthlyInterestRate"`

	TermMonths     int `json:"termMonths"`
	DurationMonths int `json:"durationMonths"`

	PaymentsMade     int `json:"paymentsMade"`
	InstallmentsPaid int `json:"installmentsPaid"`

	// paidAmount is authoritative when both paid-amount fields are populated.
	AmountPaid decimal.Decimal `json:"amountPaid"`
	PaidAmount decimal.Decimal `json:"paidAmount"`

	RemainingBalance   decimal.Decimal `json:"remainingBalance"`
	OutstandingBalance decimal.Decimal `json:"outstandingBalance"`

	NextPaymentDate      *time.Time         `json:"nextPaymentDate,omitempty"`
	NextPaymentDue       string             `json:"nextPaymentDue,omitempty"`
	FirstInstallmentDate *time.Time         `json:"firstInstallmentDate,omitempty"`
	PaymentSchedule      []ScheduleEntryDTO `json:"paymentSchedule,omitempty"`

	DaysOverdue int `json:"daysOverdue"`
}

// ScheduleEntryDTO is one row of an upstream payment schedule.
type ScheduleEntryDTO struct {
	InstallmentNumber int             `json:"installmentNumber"`
	DueDate           time.Time       `json:"dueDate"`
	PrincipalPortion  decimal.Decimal `json:"principalPortion"`
	InterestPortion   decimal.Decimal `json:"interestPortion"`
	FeePortion        decimal.Decimal `json:"feePortion"`
	TotalAmount       decimal.Decimal `json:"totalAmount"`
	Status            string          `json:"status"`
}

// ToSnapshot collapses the record's alternate fields into a snapshot.
func (r LoanRecord) ToSnapshot() loan.LoanSnapshot {
	schedule := make([]loan.ScheduleEntry, len(r.PaymentSchedule))
	for i, e := range r.PaymentSchedule {
		schedule[i] = loan.ScheduleEntry{
			InstallmentNumber: e.InstallmentNumber,
			DueDate:           e.DueDate,
			PrincipalPortion:  e.PrincipalPortion,
			InterestPortion:   e.InterestPortion,
			FeePortion:        e.FeePortion,
			TotalAmount:       e.TotalAmount,
			Status:            loan.ScheduleStatus(e.Status),
		}
	}
	if len(schedule) == 0 {
		schedule = nil
	}

	return loan.LoanSnapshot{
		LoanNumber:           r.LoanNumber,
		Currency:             loan.Currency(r.Currency),
		Status:               loan.LoanStatus(r.Status),
		Principal:            r.PrincipalAmount,
		MonthlyRate:          r.MonthlyInterestRate,
		AnnualRate:           r.InterestRate,
		TermMonths:           loan.PreferPositiveInt(r.TermMonths, r.DurationMonths),
		PaymentsMade:         loan.PreferPositiveInt(r.PaymentsMade, r.InstallmentsPaid),
		AmountPaid:           loan.PreferPositive(r.PaidAmount, r.AmountPaid),
		ReportedBalance:      loan.PreferPositive(r.RemainingBalance, r.OutstandingBalance),
		NextPaymentDate:      r.NextPaymentDate,
		NextPaymentDueRaw:    r.NextPaymentDue,
		FirstInstallmentDate: r.FirstInstallmentDate,
		Schedule:             schedule,
		DaysOverdue:          r.DaysOverdue,
	}
}

// AmortizationRequest is the bare-calculator request body.
type AmortizationRequest struct {
	Principal   decimal.Decimal `json:"principal"`
	MonthlyRate decimal.Decimal `json:"monthlyRate"`
	AnnualRate  decimal.Decimal `json:"annualRate"`
	TermMonths  int             `json:"termMonths"`
}

// =============================================================================
// OUTBOUND - Computed display values
// =============================================================================

// SummaryDTO is the full computed view of one loan. Amounts are fixed to
// 2 decimal places and always travel with the currency code.
type SummaryDTO struct {
	LoanNumber string `json:"loan_number,omitempty"`
	Currency   string `json:"currency"`

	PeriodicPayment        string `json:"periodic_payment"`
	FeePerPeriod           string `json:"fee_per_period"`
	PeriodicPaymentWithFee string `json:"periodic_payment_with_fee"`

	TotalDueOverTerm      string `json:"total_due_over_term"`
	OutstandingBalance    string `json:"outstanding_balance"`
	ReportedBalance       string `json:"reported_balance,omitempty"`
	RemainingInstallments int    `json:"remaining_installments"`

	NextDueDate *string `json:"next_due_date"`

	DaysOverdue int    `json:"days_overdue"`
	Penalty     string `json:"penalty"`
	Severity    string `json:"severity"`
}

// AmortizationDTO is the bare-calculator response.
type AmortizationDTO struct {
	PeriodicPayment        string `json:"periodic_payment"`
	FeePerPeriod           string `json:"fee_per_period"`
	PeriodicPaymentWithFee string `json:"periodic_payment_with_fee"`
}

// LoanListItemDTO is one row of the loan listing screens.
type LoanListItemDTO struct {
	LoanNumber            string  `json:"loan_number"`
	Currency              string  `json:"currency"`
	Status                string  `json:"status"`
	Principal             string  `json:"principal"`
	MonthlyPayment        string  `json:"monthly_payment"`
	RemainingBalance      string  `json:"remaining_balance"`
	TermMonths            int     `json:"term_months"`
	RemainingInstallments int     `json:"remaining_installments"`
	NextDueDate           *string `json:"next_due_date"`
}

// OverdueLoanDTO is one row of the overdue (collections) view.
type OverdueLoanDTO struct {
	LoanNumber         string `json:"loan_number"`
	Currency           string `json:"currency"`
	OutstandingBalance string `json:"outstanding_balance"`
	DaysOverdue        int    `json:"days_overdue"`
	Penalty            string `json:"penalty"`
	Severity           string `json:"severity"`
}

// OverdueTierDTO aggregates one severity bucket.
type OverdueTierDTO struct {
	Count            int    `json:"count"`
	TotalOutstanding string `json:"total_outstanding"`
}

// OverdueReportDTO is the collections view: rows plus per-tier statistics.
type OverdueReportDTO struct {
	Loans    []OverdueLoanDTO `json:"loans"`
	Total    int              `json:"total"`
	Critical OverdueTierDTO   `json:"critical"`
	Severe   OverdueTierDTO   `json:"severe"`
	Moderate OverdueTierDTO   `json:"moderate"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toSummaryDTO(snap loan.LoanSnapshot, s loan.Summary) SummaryDTO {
	return SummaryDTO{
		LoanNumber:             snap.LoanNumber,
		Currency:               string(snap.Currency),
		PeriodicPayment:        s.Amortization.PeriodicPayment.StringFixed(2),
		FeePerPeriod:           s.Amortization.FeePerPeriod.StringFixed(2),
		PeriodicPaymentWithFee: s.Amortization.PeriodicPaymentWithFee.StringFixed(2),
		TotalDueOverTerm:       s.Reconciliation.TotalDueOverTerm.StringFixed(2),
		OutstandingBalance:     s.Reconciliation.OutstandingBalance.StringFixed(2),
		ReportedBalance:        snap.ReportedBalance.StringFixed(2),
		RemainingInstallments:  s.Reconciliation.RemainingInstallments,
		NextDueDate:            toDateString(s.NextDueDate),
		DaysOverdue:            snap.DaysOverdue,
		Penalty:                s.Penalty.StringFixed(2),
		Severity:               string(s.Severity),
	}
}

func toListItemDTO(snap loan.LoanSnapshot, s loan.Summary) LoanListItemDTO {
	return LoanListItemDTO{
		LoanNumber:            snap.LoanNumber,
		Currency:              string(snap.Currency),
		Status:                string(snap.Status),
		Principal:             snap.Principal.StringFixed(2),
		MonthlyPayment:        s.Amortization.PeriodicPaymentWithFee.StringFixed(2),
		RemainingBalance:      s.Reconciliation.OutstandingBalance.StringFixed(2),
		TermMonths:            snap.TermMonths,
		RemainingInstallments: s.Reconciliation.RemainingInstallments,
		NextDueDate:           toDateString(s.NextDueDate),
	}
}

func toOverdueLoanDTO(snap loan.LoanSnapshot, s loan.Summary) OverdueLoanDTO {
	return OverdueLoanDTO{
		LoanNumber:         snap.LoanNumber,
		Currency:           string(snap.Currency),
		OutstandingBalance: s.Reconciliation.OutstandingBalance.StringFixed(2),
		DaysOverdue:        snap.DaysOverdue,
		Penalty:            s.Penalty.StringFixed(2),
		Severity:           string(s.Severity),
	}
}

func toDateString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format("2006-01-02")
	return &s
}
