/*
handlers.go - HTTP handlers for the loan computation service

PURPOSE:
  Exposes the loan engine to presentation clients. Handlers parse the
  request, run the pure computation pipeline, and serialize display values.
  No handler mutates a computed result; every response is derived fresh from
  a snapshot (or from the summary cache, which is keyed by a fingerprint of
  the snapshot and therefore can never serve a stale computation).

ENDPOINTS:
  POST /api/loans                    Ingest/replace a loan snapshot
  GET  /api/loans                    Loan listing rows (computed)
  GET  /api/loans/{number}/summary   Full computed summary (cache-backed)
  POST /api/loans/compute            Summary from request body, no persistence
  POST /api/loans/amortization       Bare amortization calculation
  GET  /api/loans/overdue            Overdue rows + per-tier statistics

ERROR HANDLING:
  - 400: invalid JSON, missing loan number, non-positive principal/term
  - 404: unknown loan number
  - 500: storage failures
  Unparsable upstream dates and absent optional fields are NOT errors; the
  engine degrades per its fallback contracts and the degradation is logged.
*/
package api

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/warp/loan-engine/cache"
	"github.com/warp/loan-engine/loan"
	"github.com/warp/loan-engine/store"
)

// summaryCacheTTL bounds how long a computed summary lives in the cache.
// Fingerprinting already prevents staleness; the TTL only bounds memory.
const summaryCacheTTL = 24 * time.Hour

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store store.SnapshotStore
	Cache cache.Cache
	Log   *logrus.Logger
}

// NewHandler creates a handler over the given store and cache.
func NewHandler(snapshots store.SnapshotStore, summaries cache.Cache, log *logrus.Logger) *Handler {
	return &Handler{Store: snapshots, Cache: summaries, Log: log}
}

// =============================================================================
// INGESTION
// =============================================================================

// IngestLoan stores (or replaces) the snapshot for a loan.
func (h *Handler) IngestLoan(w http.ResponseWriter, r *http.Request) {
	var record LoanRecord
	if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid JSON body", "bad_request")
		return
	}
	if record.LoanNumber == "" {
		h.respondError(w, http.StatusBadRequest, "loanNumber is required", "bad_request")
		return
	}

	snap := record.ToSnapshot()
	if err := h.Store.Put(r.Context(), snap); err != nil {
		h.Log.WithError(err).WithField("loan", snap.LoanNumber).Error("failed to store snapshot")
		h.respondError(w, http.StatusInternalServerError, "failed to store snapshot", "storage_error")
		return
	}

	h.Log.WithFields(logrus.Fields{
		"loan":     snap.LoanNumber,
		"currency": snap.Currency,
		"overdue":  snap.DaysOverdue > 0,
	}).Info("loan snapshot ingested")

	h.respondJSON(w, http.StatusCreated, map[string]string{"loan_number": snap.LoanNumber})
}

// =============================================================================
// LISTING AND SUMMARIES
// =============================================================================

// ListLoans returns the computed listing rows for every stored loan.
func (h *Handler) ListLoans(w http.ResponseWriter, r *http.Request) {
	snaps, err := h.Store.List(r.Context())
	if err != nil {
		h.Log.WithError(err).Error("failed to list snapshots")
		h.respondError(w, http.StatusInternalServerError, "failed to list loans", "storage_error")
		return
	}

	items := make([]LoanListItemDTO, 0, len(snaps))
	for _, snap := range snaps {
		summary, err := loan.ComputeSummary(snap)
		if err != nil {
			// A snapshot with a non-positive principal cannot be displayed
			// as a loan row; skip it rather than failing the whole listing.
			h.Log.WithError(err).WithField("loan", snap.LoanNumber).Warn("skipping uncomputable loan")
			continue
		}
		items = append(items, toListItemDTO(snap, summary))
	}

	h.respondJSON(w, http.StatusOK, items)
}

// GetSummary returns the full computed summary for one loan.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	loanNumber := chi.URLParam(r, "loanNumber")

	snap, err := h.Store.Get(r.Context(), loanNumber)
	if errors.Is(err, store.ErrSnapshotNotFound) {
		h.respondError(w, http.StatusNotFound, "loan not found", "not_found")
		return
	}
	if err != nil {
		h.Log.WithError(err).WithField("loan", loanNumber).Error("failed to load snapshot")
		h.respondError(w, http.StatusInternalServerError, "failed to load loan", "storage_error")
		return
	}

	key := summaryCacheKey(snap)
	if cached, ok := h.Cache.Get(r.Context(), key); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, cached)
		return
	}

	summary, err := loan.ComputeSummary(snap)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error(), "invalid_input")
		return
	}

	dto := toSummaryDTO(snap, summary)
	body, err := json.Marshal(dto)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, "failed to encode summary", "internal_error")
		return
	}
	if err := h.Cache.Set(r.Context(), key, string(body), summaryCacheTTL); err != nil {
		// Cache failures degrade to recomputation on the next request.
		h.Log.WithError(err).WithField("loan", loanNumber).Warn("failed to cache summary")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// ComputeSummary computes a summary from the request body without touching
// storage. Used by screens that already hold a fresh upstream record.
func (h *Handler) ComputeSummary(w http.ResponseWriter, r *http.Request) {
	var record LoanRecord
	if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid JSON body", "bad_request")
		return
	}

	snap := record.ToSnapshot()
	summary, err := loan.ComputeSummary(snap)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error(), "invalid_input")
		return
	}

	h.respondJSON(w, http.StatusOK, toSummaryDTO(snap, summary))
}

// ComputeAmortization runs the bare calculator on explicit inputs.
func (h *Handler) ComputeAmortization(w http.ResponseWriter, r *http.Request) {
	var req AmortizationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid JSON body", "bad_request")
		return
	}

	// The calculator rejects a non-positive term by contract; the service is
	// the caller, so it applies the minimum-term normalization here.
	termMonths := req.TermMonths
	if termMonths <= 0 {
		termMonths = 1
	}
	rate := loan.ResolveMonthlyRate(req.MonthlyRate, req.AnnualRate)

	am, err := loan.ComputeAmortization(req.Principal, rate, termMonths)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error(), "invalid_input")
		return
	}

	h.respondJSON(w, http.StatusOK, AmortizationDTO{
		PeriodicPayment:        am.PeriodicPayment.StringFixed(2),
		FeePerPeriod:           am.FeePerPeriod.StringFixed(2),
		PeriodicPaymentWithFee: am.PeriodicPaymentWithFee.StringFixed(2),
	})
}

// =============================================================================
// OVERDUE REPORT
// =============================================================================

// OverdueLoans returns the collections view: overdue rows, most overdue
// first, plus per-tier counts and outstanding totals.
func (h *Handler) OverdueLoans(w http.ResponseWriter, r *http.Request) {
	snaps, err := h.Store.ListOverdue(r.Context())
	if err != nil {
		h.Log.WithError(err).Error("failed to list overdue snapshots")
		h.respondError(w, http.StatusInternalServerError, "failed to list overdue loans", "storage_error")
		return
	}

	report := OverdueReportDTO{Loans: make([]OverdueLoanDTO, 0, len(snaps))}
	tiers := map[loan.Severity]*overdueTier{
		loan.SeverityCritical: {},
		loan.SeveritySevere:   {},
		loan.SeverityModerate: {},
	}

	for _, snap := range snaps {
		summary, err := loan.ComputeSummary(snap)
		if err != nil {
			h.Log.WithError(err).WithField("loan", snap.LoanNumber).Warn("skipping uncomputable loan")
			continue
		}

		report.Loans = append(report.Loans, toOverdueLoanDTO(snap, summary))
		if tier, ok := tiers[summary.Severity]; ok {
			tier.count++
			tier.outstanding = tier.outstanding.Add(summary.Reconciliation.OutstandingBalance)
		}
	}

	report.Total = len(report.Loans)
	report.Critical = tiers[loan.SeverityCritical].dto()
	report.Severe = tiers[loan.SeveritySevere].dto()
	report.Moderate = tiers[loan.SeverityModerate].dto()

	h.respondJSON(w, http.StatusOK, report)
}

// =============================================================================
// HELPERS
// =============================================================================

// summaryCacheKey fingerprints the snapshot fields that feed the pipeline.
// Any upstream change to the loan produces a new key, so cached entries are
// immutable.
func summaryCacheKey(snap loan.LoanSnapshot) string {
	payload, _ := json.Marshal(snap)
	digest := sha256.Sum256(payload)
	return "summary:" + snap.LoanNumber + ":" + hex.EncodeToString(digest[:8])
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.Log.WithError(err).Error("failed to encode response")
	}
}

func (h *Handler) respondError(w http.ResponseWriter, status int, message, code string) {
	h.respondJSON(w, status, ErrorResponse{Error: message, Code: code})
}

type overdueTier struct {
	count       int
	outstanding decimal.Decimal
}

func (t *overdueTier) dto() OverdueTierDTO {
	return OverdueTierDTO{Count: t.count, TotalOutstanding: t.outstanding.StringFixed(2)}
}
