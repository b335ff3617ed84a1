// Package worker mirrors ledger transactions from SQLite to the archive
// sheet, driven by AMQP change events with a periodic pending scan as a
// backstop for lost messages.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"fintracker/internal/amqp"
	"fintracker/internal/core"
)

// Archive is the slice of the SQLite repository the worker needs.
type Archive interface {
	GetTransaction(ctx context.Context, id int64) (core.Transaction, error)
	PendingSync(ctx context.Context, limit int) ([]int64, error)
	MarkSynced(ctx context.Context, id int64) error
	MarkSyncError(ctx context.Context, id int64) error
}

// SheetWriter mirrors transactions to the external archive.
type SheetWriter interface {
	Append(ctx context.Context, tx core.Transaction) (string, error)
	Remove(ctx context.Context, tx core.Transaction) error
}

type SyncWorker struct {
	archive   Archive
	sheet     SheetWriter
	batchSize int
}

func NewSyncWorker(archive Archive, sheet SheetWriter, batchSize int) *SyncWorker {
	return &SyncWorker{
		archive:   archive,
		sheet:     sheet,
		batchSize: batchSize,
	}
}

// HandleMessage processes a single ledger change event.
func (w *SyncWorker) HandleMessage(ctx context.Context, msg *amqp.TransactionMessage) error {
	slog.InfoContext(ctx, "Processing ledger change event", "kind", msg.Kind, "id", msg.ID)

	switch msg.Kind {
	case amqp.KindSync:
		return w.syncTransaction(ctx, msg.ID)
	case amqp.KindDelete:
		return w.removeTransaction(ctx, msg.ID)
	default:
		return fmt.Errorf("unknown message kind %q", msg.Kind)
	}
}

func (w *SyncWorker) syncTransaction(ctx context.Context, id int64) error {
	tx, err := w.archive.GetTransaction(ctx, id)
	if err != nil {
		return fmt.Errorf("get transaction %d: %w", id, err)
	}

	ref, err := w.sheet.Append(ctx, tx)
	if err != nil {
		if markErr := w.archive.MarkSyncError(ctx, id); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "id", id, "error", markErr)
		}
		return fmt.Errorf("append to archive: %w", err)
	}

	if err := w.archive.MarkSynced(ctx, id); err != nil {
		// The sync itself worked, so don't fail the message
		slog.ErrorContext(ctx, "Failed to mark as synced", "id", id, "error", err)
	}

	slog.InfoContext(ctx, "Transaction mirrored to archive",
		"id", id,
		"archive_ref", ref,
		"category", tx.Category,
		"amount_cents", tx.Amount.Cents)

	return nil
}

func (w *SyncWorker) removeTransaction(ctx context.Context, id int64) error {
	tx, err := w.archive.GetTransaction(ctx, id)
	if err != nil {
		return fmt.Errorf("get transaction %d: %w", id, err)
	}

	if err := w.sheet.Remove(ctx, tx); err != nil {
		return fmt.Errorf("remove from archive: %w", err)
	}

	slog.InfoContext(ctx, "Transaction removed from archive", "id", id)
	return nil
}

// ProcessPending mirrors transactions the change feed missed. Individual
// failures are logged and skipped so one bad row cannot stall the batch.
func (w *SyncWorker) ProcessPending(ctx context.Context) error {
	ids, err := w.archive.PendingSync(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending transactions: %w", err)
	}
	if len(ids) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending transactions", "count", len(ids))

	for _, id := range ids {
		if err := w.syncTransaction(ctx, id); err != nil {
			slog.ErrorContext(ctx, "Failed to sync transaction", "id", id, "error", err)
		}
	}
	return nil
}

// StartupCheck drains a larger pending backlog once at worker startup to
// recover from downtime.
func (w *SyncWorker) StartupCheck(ctx context.Context) error {
	ids, err := w.archive.PendingSync(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("get pending transactions for startup check: %w", err)
	}
	if len(ids) == 0 {
		slog.InfoContext(ctx, "No pending transactions found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending transactions on startup", "count", len(ids))

	synced := 0
	failed := 0
	for _, id := range ids {
		if err := w.syncTransaction(ctx, id); err != nil {
			slog.ErrorContext(ctx, "Failed to sync transaction during startup", "id", id, "error", err)
			failed++
			continue
		}
		synced++
	}

	slog.InfoContext(ctx, "Startup sync completed",
		"total", len(ids),
		"synced", synced,
		"errors", failed)

	return nil
}
