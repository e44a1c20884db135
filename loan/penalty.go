/*
penalty.go - Overdue penalty estimation and severity classification

PURPOSE:
  Once a loan is in arrears, a penalty accrues daily against the outstanding
  balance, and the loan is bucketed into a severity tier that the collections
  screens group and sort by.
*/
package loan

import "github.com/shopspring/decimal"

// EstimatePenalty computes the daily-accrual penalty on an overdue loan:
// outstanding balance x DailyPenaltyRate x days overdue. A loan that is not
// overdue carries no penalty.
func EstimatePenalty(outstandingBalance decimal.Decimal, daysOverdue int) decimal.Decimal {
	if daysOverdue <= 0 {
		return decimal.Zero
	}
	return outstandingBalance.
		Mul(DailyPenaltyRate).
		Mul(decimal.NewFromInt(int64(daysOverdue))).
		Round(2)
}

// ClassifySeverity buckets days overdue into the collections tiers:
// 60+ Critical, 31-59 Severe, 1-30 Moderate, 0 Current.
func ClassifySeverity(daysOverdue int) Severity {
	switch {
	case daysOverdue >= 60:
		return SeverityCritical
	case daysOverdue >= 31:
		return SeveritySevere
	case daysOverdue >= 1:
		return SeverityModerate
	default:
		return SeverityCurrent
	}
}
