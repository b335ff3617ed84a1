// Package jsonfile implements the flat-file ledger repository.
//
// The persisted document is a JSON array of transaction records, each with
// four fields: amount (number), category (string), date (YYYY-MM-DD) and
// type (Income/Expense). The whole sequence is rewritten after every
// mutation. Identifiers are assigned at load in sequence order and live for
// the lifetime of the process; they are not part of the persisted format.
package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"fintracker/internal/analytics"
	"fintracker/internal/core"
	"fintracker/internal/ledger"
)

type record struct {
	Amount   float64 `json:"amount"`
	Category string  `json:"category"`
	Date     string  `json:"date"`
	Type     string  `json:"type"`
}

type Store struct {
	mu     sync.Mutex
	path   string
	nextID int64
	items  []core.Transaction
}

var _ ledger.Repository = (*Store)(nil)

// Open loads the ledger at path. A missing file yields an empty ledger with
// no error. Content that cannot be decoded also yields an empty, fully
// usable ledger, but the returned error wraps ledger.ErrCorruptLedger so
// the caller can surface a warning instead of silently starting over.
func Open(path string) (*Store, error) {
	s := &Store{path: path, nextID: 1}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return s, fmt.Errorf("read ledger %s: %w", path, ledger.ErrCorruptLedger)
	}

	var recs []record
	if err := json.Unmarshal(data, &recs); err != nil {
		return s, fmt.Errorf("decode ledger %s: %w", path, ledger.ErrCorruptLedger)
	}

	items := make([]core.Transaction, 0, len(recs))
	for i, r := range recs {
		tx, err := r.toTransaction(s.nextID)
		if err != nil {
			return &Store{path: path, nextID: 1}, fmt.Errorf("ledger %s record %d: %w", path, i, ledger.ErrCorruptLedger)
		}
		s.nextID++
		items = append(items, tx)
	}
	s.items = items
	return s, nil
}

func (r record) toTransaction(id int64) (core.Transaction, error) {
	cents, err := core.CentsFromFloat(r.Amount)
	if err != nil {
		return core.Transaction{}, err
	}
	date, err := core.ParseISODate(r.Date)
	if err != nil {
		return core.Transaction{}, err
	}
	txType, err := core.ParseTxType(r.Type)
	if err != nil {
		return core.Transaction{}, err
	}
	return core.Transaction{
		ID:       id,
		Amount:   core.Money{Cents: cents},
		Category: r.Category,
		Date:     date,
		Type:     txType,
	}, nil
}

func toRecord(tx core.Transaction) record {
	return record{
		Amount:   tx.Amount.Float(),
		Category: tx.Category,
		Date:     tx.Date.ISO(),
		Type:     string(tx.Type),
	}
}

// Append validates and stores the transaction, then rewrites the file.
func (s *Store) Append(_ context.Context, tx core.Transaction) (int64, error) {
	if err := tx.Validate(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	tx.ID = s.nextID
	s.nextID++
	s.items = append(s.items, tx)
	if err := s.persist(); err != nil {
		s.items = s.items[:len(s.items)-1]
		s.nextID--
		return 0, err
	}
	return tx.ID, nil
}

// Delete removes the transaction with the given ID and rewrites the file.
// Unknown IDs return ledger.ErrNotFound.
func (s *Store) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, tx := range s.items {
		if tx.ID == id {
			removed := tx
			s.items = append(s.items[:i], s.items[i+1:]...)
			if err := s.persist(); err != nil {
				s.items = append(s.items[:i], append([]core.Transaction{removed}, s.items[i:]...)...)
				return err
			}
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

// persist rewrites the whole document. The write goes to a temp file in the
// same directory first and is moved into place so readers never observe a
// truncated ledger. Callers must hold s.mu.
func (s *Store) persist() error {
	recs := make([]record, len(s.items))
	for i, tx := range s.items {
		recs[i] = toRecord(tx)
	}
	data, err := json.MarshalIndent(recs, "", "    ")
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create ledger directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".ledger-*.json")
	if err != nil {
		return fmt.Errorf("create temp ledger: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write temp ledger: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp ledger: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace ledger: %w", err)
	}
	return nil
}
