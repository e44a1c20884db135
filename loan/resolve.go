/*
resolve.go - Ordered-preference resolvers for an unstable upstream schema

PURPOSE:
  The loan service exposes the same concept under different field names
  depending on the endpoint and API version: "remaining balance" vs
  "outstanding balance", "payments made" vs "installments paid", a monthly
  rate vs an annual rate, sometimes as a fraction and sometimes as a
  percentage. Instead of inline conditional chains at every call site, the
  preference order is declared once here and tested once.

FALLBACK POLICY:
  Prefer whichever candidate is strictly greater than zero, in declaration
  order. If every candidate is zero, the value is legitimately zero, not
  missing.
*/
package loan

import "github.com/shopspring/decimal"

// PreferPositive returns the first strictly positive candidate, or zero when
// none is positive.
func PreferPositive(candidates ...decimal.Decimal) decimal.Decimal {
	for _, c := range candidates {
		if c.IsPositive() {
			return c
		}
	}
	return decimal.Zero
}

// PreferPositiveInt is PreferPositive for integer fields such as payment
// counts and term lengths.
func PreferPositiveInt(candidates ...int) int {
	for _, c := range candidates {
		if c > 0 {
			return c
		}
	}
	return 0
}

// NormalizeRate maps a rate to a monthly/annual fraction regardless of how
// the upstream encoded it. Values >= 1 are percentages (3.5 -> 0.035);
// values below 1 are already fractions.
func NormalizeRate(v decimal.Decimal) decimal.Decimal {
	if !v.IsPositive() {
		return decimal.Zero
	}
	if v.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return v.Div(decimal.NewFromInt(100))
	}
	return v
}

// ResolveMonthlyRate collapses the rate fields of a snapshot to a single
// monthly fraction. The monthly rate is authoritative when present; the
// annual rate divided by twelve is the fallback derivation; the policy
// default applies when neither is populated.
func ResolveMonthlyRate(monthly, annual decimal.Decimal) decimal.Decimal {
	if monthly.IsPositive() {
		return NormalizeRate(monthly)
	}
	if annual.IsPositive() {
		return NormalizeRate(annual).Div(decimal.NewFromInt(12))
	}
	return DefaultMonthlyRate
}
