// Package ledger defines the storage port for the transaction ledger.
//
// Transactions carry a stable, monotonically increasing identifier assigned
// on append; deletion addresses that identifier, never a display position.
package ledger

import (
	"context"
	"errors"

	"fintracker/internal/core"
)

var (
	// ErrNotFound is returned when a delete or lookup addresses an unknown ID.
	ErrNotFound = errors.New("transaction not found")

	// ErrCorruptLedger signals that persisted state could not be decoded and
	// the store fell back to an empty ledger. The store remains usable; the
	// caller decides whether to warn.
	ErrCorruptLedger = errors.New("corrupt ledger data")
)

// Repository owns the ordered sequence of transactions and mediates all
// mutation and persistence. List returns transactions in insertion order.
type Repository interface {
	Append(ctx context.Context, tx core.Transaction) (int64, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]core.Transaction, error)
	Balance(ctx context.Context) (core.Money, error)
	Close() error
}
