package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/loan-engine/cache"
	"github.com/warp/loan-engine/loan"
	"github.com/warp/loan-engine/store/memory"
)

// =============================================================================
// TEST FIXTURES
// =============================================================================

func newTestServer(t *testing.T) (http.Handler, *memory.Store, *cache.Memory) {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	snapshots := memory.New()
	summaries := cache.NewMemory()
	return NewRouter(NewHandler(snapshots, summaries, log)), snapshots, summaries
}

func doRequest(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

// standardLoan is the worked 50,000 HTG example: 3.5%/month over 12 months
// with 15,500 paid against 3 recorded installments.
func standardLoan(number string) map[string]any {
	return map[string]any{
		"loanNumber":           number,
		"currency":             "HTG",
		"status":               "Active",
		"principalAmount":      "50000",
		"monthlyInterestRate":  "0.035",
		"termMonths":           12,
		"paymentsMade":         3,
		"amountPaid":           "15500",
		"firstInstallmentDate": "2025-02-01T00:00:00Z",
	}
}

// =============================================================================
// INGESTION AND LISTING
// =============================================================================

func TestIngestLoan_ThenList(t *testing.T) {
	// GIVEN: A fresh service
	// WHEN: Ingesting a loan and listing
	// THEN: The listing row carries the computed payment and balance

	router, _, _ := newTestServer(t)

	rec := doRequest(t, router, http.MethodPost, "/api/loans", standardLoan("ML-100"))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/api/loans", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	items := decodeBody[[]LoanListItemDTO](t, rec)
	require.Len(t, items, 1)
	assert.Equal(t, "ML-100", items[0].LoanNumber)
	assert.Equal(t, "5382.53", items[0].MonthlyPayment)
	assert.Equal(t, "49090.36", items[0].RemainingBalance)
	assert.Equal(t, 9, items[0].RemainingInstallments)
}

func TestIngestLoan_Replaces(t *testing.T) {
	router, snapshots, _ := newTestServer(t)

	doRequest(t, router, http.MethodPost, "/api/loans", standardLoan("ML-101"))

	updated := standardLoan("ML-101")
	updated["amountPaid"] = "21000"
	updated["paymentsMade"] = 4
	rec := doRequest(t, router, http.MethodPost, "/api/loans", updated)
	require.Equal(t, http.StatusCreated, rec.Code)

	snap, err := snapshots.Get(context.Background(), "ML-101")
	require.NoError(t, err)
	assert.Equal(t, 4, snap.PaymentsMade)
}

func TestIngestLoan_RequiresLoanNumber(t *testing.T) {
	router, _, _ := newTestServer(t)

	rec := doRequest(t, router, http.MethodPost, "/api/loans", map[string]any{
		"principalAmount": "50000",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "bad_request", decodeBody[ErrorResponse](t, rec).Code)
}

func TestIngestLoan_RejectsInvalidJSON(t *testing.T) {
	router, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/loans", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// SUMMARY
// =============================================================================

func TestGetSummary(t *testing.T) {
	router, _, _ := newTestServer(t)

	doRequest(t, router, http.MethodPost, "/api/loans", standardLoan("ML-200"))

	rec := doRequest(t, router, http.MethodGet, "/api/loans/ML-200/summary", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	summary := decodeBody[SummaryDTO](t, rec)
	assert.Equal(t, "ML-200", summary.LoanNumber)
	assert.Equal(t, "HTG", summary.Currency)
	assert.Equal(t, "5174.20", summary.PeriodicPayment)
	assert.Equal(t, "208.33", summary.FeePerPeriod)
	assert.Equal(t, "5382.53", summary.PeriodicPaymentWithFee)
	assert.Equal(t, "64590.36", summary.TotalDueOverTerm)
	assert.Equal(t, "49090.36", summary.OutstandingBalance)
	assert.Equal(t, 9, summary.RemainingInstallments)
	require.NotNil(t, summary.NextDueDate)
	assert.Equal(t, "2025-04-01", *summary.NextDueDate)
	assert.Equal(t, string(loan.SeverityCurrent), summary.Severity)
	assert.Equal(t, "0.00", summary.Penalty)
}

func TestGetSummary_NotFound(t *testing.T) {
	router, _, _ := newTestServer(t)

	rec := doRequest(t, router, http.MethodGet, "/api/loans/ML-999/summary", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decodeBody[ErrorResponse](t, rec).Code)
}

func TestGetSummary_CachePopulatedAndConsistent(t *testing.T) {
	router, snapshots, summaries := newTestServer(t)

	doRequest(t, router, http.MethodPost, "/api/loans", standardLoan("ML-201"))

	first := doRequest(t, router, http.MethodGet, "/api/loans/ML-201/summary", nil)
	require.Equal(t, http.StatusOK, first.Code)

	snap, err := snapshots.Get(context.Background(), "ML-201")
	require.NoError(t, err)
	cached, ok := summaries.Get(context.Background(), summaryCacheKey(snap))
	require.True(t, ok, "summary should be cached after the first read")
	assert.JSONEq(t, first.Body.String(), cached)

	// The second read is served from the cache and must be byte-identical.
	second := doRequest(t, router, http.MethodGet, "/api/loans/ML-201/summary", nil)
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
}

func TestGetSummary_CacheNeverStale(t *testing.T) {
	// GIVEN: A cached summary
	// WHEN: The upstream snapshot changes
	// THEN: The next read reflects the new snapshot (the cache key is a
	//       fingerprint of the snapshot, so the old entry is never hit)

	router, _, _ := newTestServer(t)

	doRequest(t, router, http.MethodPost, "/api/loans", standardLoan("ML-202"))
	before := decodeBody[SummaryDTO](t, doRequest(t, router, http.MethodGet, "/api/loans/ML-202/summary", nil))
	assert.Equal(t, "49090.36", before.OutstandingBalance)

	updated := standardLoan("ML-202")
	updated["amountPaid"] = "21530.12" // 4 installments exactly
	updated["paymentsMade"] = 4
	doRequest(t, router, http.MethodPost, "/api/loans", updated)

	after := decodeBody[SummaryDTO](t, doRequest(t, router, http.MethodGet, "/api/loans/ML-202/summary", nil))
	assert.Equal(t, "43060.24", after.OutstandingBalance)
	assert.Equal(t, 8, after.RemainingInstallments)
}

func TestComputeSummary_NoPersistence(t *testing.T) {
	router, snapshots, _ := newTestServer(t)

	rec := doRequest(t, router, http.MethodPost, "/api/loans/compute", standardLoan("ML-300"))
	require.Equal(t, http.StatusOK, rec.Code)

	summary := decodeBody[SummaryDTO](t, rec)
	assert.Equal(t, "5382.53", summary.PeriodicPaymentWithFee)

	_, err := snapshots.Get(context.Background(), "ML-300")
	assert.Error(t, err)
}

func TestComputeSummary_InvalidPrincipal(t *testing.T) {
	router, _, _ := newTestServer(t)

	rec := doRequest(t, router, http.MethodPost, "/api/loans/compute", map[string]any{
		"loanNumber":      "ML-301",
		"principalAmount": "0",
		"termMonths":      12,
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_input", decodeBody[ErrorResponse](t, rec).Code)
}

// =============================================================================
// AMORTIZATION CALCULATOR
// =============================================================================

func TestComputeAmortization(t *testing.T) {
	router, _, _ := newTestServer(t)

	rec := doRequest(t, router, http.MethodPost, "/api/loans/amortization", map[string]any{
		"principal":   "10000",
		"monthlyRate": "0.02",
		"termMonths":  12,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	am := decodeBody[AmortizationDTO](t, rec)
	assert.Equal(t, "945.60", am.PeriodicPayment)
	assert.Equal(t, "41.67", am.FeePerPeriod)
	assert.Equal(t, "987.27", am.PeriodicPaymentWithFee)
}

func TestComputeAmortization_NormalizesZeroTerm(t *testing.T) {
	// A missing term is treated as a single-installment loan rather than
	// rejected. With no rate supplied the 3.5%/month default applies, so a
	// single installment is principal plus one month of interest plus the fee.
	router, _, _ := newTestServer(t)

	rec := doRequest(t, router, http.MethodPost, "/api/loans/amortization", map[string]any{
		"principal":  "1000",
		"termMonths": 0,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	am := decodeBody[AmortizationDTO](t, rec)
	assert.Equal(t, "1035.00", am.PeriodicPayment)
	assert.Equal(t, "50.00", am.FeePerPeriod)
	assert.Equal(t, "1085.00", am.PeriodicPaymentWithFee)
}

func TestComputeAmortization_PercentRateNormalized(t *testing.T) {
	// An upstream that sends "2" means 2 percent, not a 200% monthly rate.
	router, _, _ := newTestServer(t)

	rec := doRequest(t, router, http.MethodPost, "/api/loans/amortization", map[string]any{
		"principal":   "10000",
		"monthlyRate": "2",
		"termMonths":  12,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	am := decodeBody[AmortizationDTO](t, rec)
	assert.Equal(t, "945.60", am.PeriodicPayment)
}

// =============================================================================
// OVERDUE REPORT
// =============================================================================

func TestOverdueLoans_TiersAndOrdering(t *testing.T) {
	// Three overdue loans, one per severity tier, plus one current loan that
	// must not appear. The loans carry no rate, so the default monthly rate
	// applies; expected amounts are derived through the calculator rather
	// than hard-coded.

	router, _, _ := newTestServer(t)

	overdueLoan := func(number string, days int) map[string]any {
		return map[string]any{
			"loanNumber":      number,
			"currency":        "HTG",
			"status":          "Overdue",
			"principalAmount": "10000",
			"termMonths":      10,
			"daysOverdue":     days,
		}
	}

	doRequest(t, router, http.MethodPost, "/api/loans", overdueLoan("ML-400", 10))
	doRequest(t, router, http.MethodPost, "/api/loans", overdueLoan("ML-401", 70))
	doRequest(t, router, http.MethodPost, "/api/loans", overdueLoan("ML-402", 40))
	doRequest(t, router, http.MethodPost, "/api/loans", standardLoan("ML-403"))

	am, err := loan.ComputeAmortization(decimal.NewFromInt(10000), loan.DefaultMonthlyRate, 10)
	require.NoError(t, err)
	recon := loan.ReconcileBalance(am, 10, decimal.Zero, nil)
	outstanding := recon.OutstandingBalance

	rec := doRequest(t, router, http.MethodGet, "/api/loans/overdue", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	report := decodeBody[OverdueReportDTO](t, rec)
	require.Equal(t, 3, report.Total)

	// Most overdue first.
	assert.Equal(t, "ML-401", report.Loans[0].LoanNumber)
	assert.Equal(t, "ML-402", report.Loans[1].LoanNumber)
	assert.Equal(t, "ML-400", report.Loans[2].LoanNumber)

	assert.Equal(t, string(loan.SeverityCritical), report.Loans[0].Severity)
	assert.Equal(t, string(loan.SeveritySevere), report.Loans[1].Severity)
	assert.Equal(t, string(loan.SeverityModerate), report.Loans[2].Severity)

	assert.Equal(t, loan.EstimatePenalty(outstanding, 70).StringFixed(2), report.Loans[0].Penalty)
	assert.Equal(t, loan.EstimatePenalty(outstanding, 40).StringFixed(2), report.Loans[1].Penalty)
	assert.Equal(t, loan.EstimatePenalty(outstanding, 10).StringFixed(2), report.Loans[2].Penalty)

	want := OverdueTierDTO{Count: 1, TotalOutstanding: outstanding.StringFixed(2)}
	assert.Equal(t, want, report.Critical)
	assert.Equal(t, want, report.Severe)
	assert.Equal(t, want, report.Moderate)
}

func TestOverdueLoans_EmptyPortfolio(t *testing.T) {
	router, _, _ := newTestServer(t)

	rec := doRequest(t, router, http.MethodGet, "/api/loans/overdue", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	report := decodeBody[OverdueReportDTO](t, rec)
	assert.Equal(t, 0, report.Total)
	assert.Empty(t, report.Loans)
	assert.Equal(t, 0, report.Critical.Count)
}
