// Package memory provides an in-memory ledger repository used for tests and
// as the default development backend.
package memory

import (
	"context"
	"sync"

	"fintracker/internal/analytics"
	"fintracker/internal/core"
	"fintracker/internal/ledger"
)

type Store struct {
	mu     sync.Mutex
	nextID int64
	items  []core.Transaction
}

var _ ledger.Repository = (*Store)(nil)

func New() *Store {
	return &Store{nextID: 1}
}

// Append validates and stores the transaction, returning its assigned ID.
func (s *Store) Append(_ context.Context, tx core.Transaction) (int64, error) {
	if err := tx.Validate(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	tx.ID = s.nextID
	s.nextID++
	s.items = append(s.items, tx)
	return tx.ID, nil
}

func (s *Store) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, tx := range s.items {
		if tx.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return ledger.ErrNotFound
}

// List returns a copy of the transactions in insertion order.
func (s *Store) List(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Transaction, len(s.items))
	copy(out, s.items)
	return out, nil
}

func (s *Store) Balance(_ context.Context) (core.Money, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return analytics.Balance(s.items), nil
}

func (s *Store) Close() error {
	return nil
}
