// Package memory provides an in-memory SnapshotStore for tests and dev.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/loan-engine/loan"
	"github.com/warp/loan-engine/store"
)

type Store struct {
	mu        sync.RWMutex
	snapshots map[string]loan.LoanSnapshot
}

func New() *Store {
	return &Store{snapshots: make(map[string]loan.LoanSnapshot)}
}

func (s *Store) Put(_ context.Context, snap loan.LoanSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[snap.LoanNumber] = snap
	return nil
}

func (s *Store) Get(_ context.Context, loanNumber string) (loan.LoanSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.snapshots[loanNumber]
	if !ok {
		return loan.LoanSnapshot{}, store.ErrSnapshotNotFound
	}
	return snap, nil
}

func (s *Store) List(_ context.Context) ([]loan.LoanSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]loan.LoanSnapshot, 0, len(s.snapshots))
	for _, snap := range s.snapshots {
		result = append(result, snap)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].LoanNumber < result[j].LoanNumber
	})
	return result, nil
}

func (s *Store) ListOverdue(_ context.Context) ([]loan.LoanSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []loan.LoanSnapshot
	for _, snap := range s.snapshots {
		if snap.DaysOverdue > 0 {
			result = append(result, snap)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].DaysOverdue > result[j].DaysOverdue
	})
	return result, nil
}
