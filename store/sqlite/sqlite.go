/*
Package sqlite provides the SQLite-backed SnapshotStore.

PURPOSE:
  Persists the locally synced copy of each loan snapshot. The same schema
  works on PostgreSQL with minor dialect changes.

STORAGE CONVENTIONS:
  - Monetary values and rates are stored as TEXT and parsed with
    decimal.NewFromString, never as floating point.
  - Dates are stored as RFC 3339 TEXT; NULL means the upstream did not
    populate the field.
  - The explicit payment schedule is stored as a JSON column: it is opaque
    ground truth from the loan service, never queried by row.

WAL MODE:
  Opened with WAL so list-heavy screens don't block ingestion.
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/loan-engine/loan"
	"github.com/warp/loan-engine/store"
)

// Store implements store.SnapshotStore using SQLite.
type Store struct {
	db *sql.DB
}

// New creates a SQLite store at the given path. Use ":memory:" for an
// in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS loan_snapshots (
		loan_number            TEXT PRIMARY KEY,
		currency               TEXT NOT NULL,
		status                 TEXT NOT NULL,
		principal              TEXT NOT NULL,
		monthly_rate           TEXT NOT NULL,
		annual_rate            TEXT NOT NULL,
		term_months            INTEGER NOT NULL,
		payments_made          INTEGER NOT NULL,
		amount_paid            TEXT NOT NULL,
		reported_balance       TEXT NOT NULL,
		next_payment_date      TEXT,
		next_payment_due_raw   TEXT NOT NULL DEFAULT '',
		first_installment_date TEXT,
		days_overdue           INTEGER NOT NULL,
		schedule_json          TEXT NOT NULL DEFAULT '[]',
		synced_at              TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_loan_snapshots_days_overdue
		ON loan_snapshots(days_overdue);
	CREATE INDEX IF NOT EXISTS idx_loan_snapshots_status
		ON loan_snapshots(status);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Put inserts or replaces the snapshot for its loan number.
func (s *Store) Put(ctx context.Context, snap loan.LoanSnapshot) error {
	scheduleJSON, err := json.Marshal(toScheduleRows(snap.Schedule))
	if err != nil {
		return fmt.Errorf("failed to encode schedule: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO loan_snapshots (
			loan_number, currency, status, principal, monthly_rate, annual_rate,
			term_months, payments_made, amount_paid, reported_balance,
			next_payment_date, next_payment_due_raw, first_installment_date,
			days_overdue, schedule_json, synced_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(loan_number) DO UPDATE SET
			currency = excluded.currency,
			status = excluded.status,
			principal = excluded.principal,
			monthly_rate = excluded.monthly_rate,
			annual_rate = excluded.annual_rate,
			term_months = excluded.term_months,
			payments_made = excluded.payments_made,
			amount_paid = excluded.amount_paid,
			reported_balance = excluded.reported_balance,
			next_payment_date = excluded.next_payment_date,
			next_payment_due_raw = excluded.next_payment_due_raw,
			first_installment_date = excluded.first_installment_date,
			days_overdue = excluded.days_overdue,
			schedule_json = excluded.schedule_json,
			synced_at = excluded.synced_at`,
		snap.LoanNumber,
		string(snap.Currency),
		string(snap.Status),
		snap.Principal.String(),
		snap.MonthlyRate.String(),
		snap.AnnualRate.String(),
		snap.TermMonths,
		snap.PaymentsMade,
		snap.AmountPaid.String(),
		snap.ReportedBalance.String(),
		timeToNullString(snap.NextPaymentDate),
		snap.NextPaymentDueRaw,
		timeToNullString(snap.FirstInstallmentDate),
		snap.DaysOverdue,
		string(scheduleJSON),
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// Get returns the snapshot for a loan number.
func (s *Store) Get(ctx context.Context, loanNumber string) (loan.LoanSnapshot, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+` FROM loan_snapshots WHERE loan_number = ?`, loanNumber)
	snap, err := scanSnapshot(row)
	if err == sql.ErrNoRows {
		return loan.LoanSnapshot{}, store.ErrSnapshotNotFound
	}
	return snap, err
}

// List returns all snapshots ordered by loan number.
func (s *Store) List(ctx context.Context) ([]loan.LoanSnapshot, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+` FROM loan_snapshots ORDER BY loan_number`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSnapshots(rows)
}

// ListOverdue returns overdue snapshots, most overdue first.
func (s *Store) ListOverdue(ctx context.Context) ([]loan.LoanSnapshot, error) {
	rows, err := s.db.QueryContext(ctx,
		selectColumns+` FROM loan_snapshots WHERE days_overdue > 0 ORDER BY days_overdue DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSnapshots(rows)
}

// =============================================================================
// ROW MAPPING
// =============================================================================

const selectColumns = `
	SELECT loan_number, currency, status, principal, monthly_rate, annual_rate,
	       term_months, payments_made, amount_paid, reported_balance,
	       next_payment_date, next_payment_due_raw, first_installment_date,
	       days_overdue, schedule_json`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(r rowScanner) (loan.LoanSnapshot, error) {
	var (
		snap                             loan.LoanSnapshot
		currency, status                 string
		principal, monthlyRate           string
		annualRate, amountPaid           string
		reportedBalance, scheduleJSON    string
		nextPaymentDate, firstInstalment sql.NullString
	)

	err := r.Scan(
		&snap.LoanNumber, &currency, &status, &principal, &monthlyRate,
		&annualRate, &snap.TermMonths, &snap.PaymentsMade, &amountPaid,
		&reportedBalance, &nextPaymentDate, &snap.NextPaymentDueRaw,
		&firstInstalment, &snap.DaysOverdue, &scheduleJSON,
	)
	if err != nil {
		return loan.LoanSnapshot{}, err
	}

	snap.Currency = loan.Currency(currency)
	snap.Status = loan.LoanStatus(status)
	if snap.Principal, err = decimal.NewFromString(principal); err != nil {
		return loan.LoanSnapshot{}, fmt.Errorf("corrupt principal for %s: %w", snap.LoanNumber, err)
	}
	if snap.MonthlyRate, err = decimal.NewFromString(monthlyRate); err != nil {
		return loan.LoanSnapshot{}, fmt.Errorf("corrupt monthly rate for %s: %w", snap.LoanNumber, err)
	}
	if snap.AnnualRate, err = decimal.NewFromString(annualRate); err != nil {
		return loan.LoanSnapshot{}, fmt.Errorf("corrupt annual rate for %s: %w", snap.LoanNumber, err)
	}
	if snap.AmountPaid, err = decimal.NewFromString(amountPaid); err != nil {
		return loan.LoanSnapshot{}, fmt.Errorf("corrupt amount paid for %s: %w", snap.LoanNumber, err)
	}
	if snap.ReportedBalance, err = decimal.NewFromString(reportedBalance); err != nil {
		return loan.LoanSnapshot{}, fmt.Errorf("corrupt reported balance for %s: %w", snap.LoanNumber, err)
	}
	if snap.NextPaymentDate, err = nullStringToTime(nextPaymentDate); err != nil {
		return loan.LoanSnapshot{}, err
	}
	if snap.FirstInstallmentDate, err = nullStringToTime(firstInstalment); err != nil {
		return loan.LoanSnapshot{}, err
	}

	var scheduleRows []scheduleRow
	if err := json.Unmarshal([]byte(scheduleJSON), &scheduleRows); err != nil {
		return loan.LoanSnapshot{}, fmt.Errorf("corrupt schedule for %s: %w", snap.LoanNumber, err)
	}
	snap.Schedule, err = fromScheduleRows(scheduleRows)
	if err != nil {
		return loan.LoanSnapshot{}, fmt.Errorf("corrupt schedule for %s: %w", snap.LoanNumber, err)
	}

	return snap, nil
}

func scanSnapshots(rows *sql.Rows) ([]loan.LoanSnapshot, error) {
	var result []loan.LoanSnapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, snap)
	}
	return result, rows.Err()
}

// scheduleRow is the JSON shape of a schedule entry inside the schedule_json
// column. Decimals travel as strings to survive the round trip exactly.
type scheduleRow struct {
	InstallmentNumber int    `json:"installment_number"`
	DueDate           string `json:"due_date"`
	PrincipalPortion  string `json:"principal_portion"`
	InterestPortion   string `json:"interest_portion"`
	FeePortion        string `json:"fee_portion"`
	TotalAmount       string `json:"total_amount"`
	Status            string `json:"status"`
}

func toScheduleRows(entries []loan.ScheduleEntry) []scheduleRow {
	rows := make([]scheduleRow, len(entries))
	for i, e := range entries {
		rows[i] = scheduleRow{
			InstallmentNumber: e.InstallmentNumber,
			DueDate:           e.DueDate.Format(time.RFC3339),
			PrincipalPortion:  e.PrincipalPortion.String(),
			InterestPortion:   e.InterestPortion.String(),
			FeePortion:        e.FeePortion.String(),
			TotalAmount:       e.TotalAmount.String(),
			Status:            string(e.Status),
		}
	}
	return rows
}

func fromScheduleRows(rows []scheduleRow) ([]loan.ScheduleEntry, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	entries := make([]loan.ScheduleEntry, len(rows))
	for i, r := range rows {
		due, err := time.Parse(time.RFC3339, r.DueDate)
		if err != nil {
			return nil, err
		}
		principal, err := decimal.NewFromString(r.PrincipalPortion)
		if err != nil {
			return nil, err
		}
		interest, err := decimal.NewFromString(r.InterestPortion)
		if err != nil {
			return nil, err
		}
		fee, err := decimal.NewFromString(r.FeePortion)
		if err != nil {
			return nil, err
		}
		total, err := decimal.NewFromString(r.TotalAmount)
		if err != nil {
			return nil, err
		}
		entries[i] = loan.ScheduleEntry{
			InstallmentNumber: r.InstallmentNumber,
			DueDate:           due,
			PrincipalPortion:  principal,
			InterestPortion:   interest,
			FeePortion:        fee,
			TotalAmount:       total,
			Status:            loan.ScheduleStatus(r.Status),
		}
	}
	return entries, nil
}

func timeToNullString(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

func nullStringToTime(s sql.NullString) (*time.Time, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s.String)
	if err != nil {
		return nil, fmt.Errorf("corrupt date %q: %w", s.String, err)
	}
	return &t, nil
}
