/*
Package store defines persistence for ingested loan snapshots.

PURPOSE:
  The upstream loan service is the system of record; this store holds the
  most recently synced copy of each loan so listing, reporting, and overdue
  screens can be served without refetching. Snapshots are replaced wholesale
  on each sync - there is no partial update and no derived state persisted.

IMPLEMENTATIONS:
  - store/sqlite: production store
  - store/memory: tests and development
*/
package store

import (
	"context"
	"errors"

	"github.com/warp/loan-engine/loan"
)

// ErrSnapshotNotFound is returned when no snapshot exists for a loan number.
var ErrSnapshotNotFound = errors.New("store: loan snapshot not found")

// SnapshotStore persists loan snapshots keyed by loan number.
type SnapshotStore interface {
	// Put inserts or replaces the snapshot for its loan number.
	Put(ctx context.Context, snap loan.LoanSnapshot) error

	// Get returns the snapshot for a loan number.
	Get(ctx context.Context, loanNumber string) (loan.LoanSnapshot, error)

	// List returns all snapshots, ordered by loan number.
	List(ctx context.Context) ([]loan.LoanSnapshot, error)

	// ListOverdue returns snapshots with at least one day overdue, most
	// overdue first.
	ListOverdue(ctx context.Context) ([]loan.LoanSnapshot, error)
}
