// Package services orchestrates ledger operations across the repository and
// the optional AMQP change feed.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"fintracker/internal/amqp"
	"fintracker/internal/core"
	"fintracker/internal/ledger"
)

// Publisher is the slice of the AMQP client the service needs.
type Publisher interface {
	PublishSync(ctx context.Context, id int64) error
	PublishDelete(ctx context.Context, id int64) error
	Close() error
}

var _ Publisher = (*amqp.Client)(nil)

// LedgerService wraps a ledger repository and publishes change events after
// each successful mutation. Publish failures never fail the request; the
// worker's periodic pending scan backstops lost events.
type LedgerService struct {
	repo      ledger.Repository
	publisher Publisher
}

func NewLedgerService(repo ledger.Repository, publisher Publisher) *LedgerService {
	return &LedgerService{repo: repo, publisher: publisher}
}

// Add appends the transaction and publishes a sync event.
func (s *LedgerService) Add(ctx context.Context, tx core.Transaction) (int64, error) {
	id, err := s.repo.Append(ctx, tx)
	if err != nil {
		return 0, fmt.Errorf("append transaction: %w", err)
	}

	if s.publisher != nil {
		if err := s.publisher.PublishSync(ctx, id); err != nil {
			slog.ErrorContext(ctx, "Failed to publish sync event", "id", id, "error", err)
		}
	}
	return id, nil
}

// Delete removes the transaction by ID and publishes a delete event.
func (s *LedgerService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if s.publisher != nil {
		if err := s.publisher.PublishDelete(ctx, id); err != nil {
			slog.ErrorContext(ctx, "Failed to publish delete event", "id", id, "error", err)
		}
	}
	return nil
}

func (s *LedgerService) List(ctx context.Context) ([]core.Transaction, error) {
	return s.repo.List(ctx)
}

func (s *LedgerService) Balance(ctx context.Context) (core.Money, error) {
	return s.repo.Balance(ctx)
}

// Close closes the repository and the publisher.
func (s *LedgerService) Close() error {
	var errs []error

	if s.repo != nil {
		if err := s.repo.Close(); err != nil {
			errs = append(errs, fmt.Errorf("repository: %w", err))
		}
	}
	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("publisher: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close ledger service: %v", errs)
	}
	return nil
}
