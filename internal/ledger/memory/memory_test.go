package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"fintracker/internal/core"
	"fintracker/internal/ledger"
)

func TestAppendAssignsSequentialIDs(t *testing.T) {
	s := New()
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		id, err := s.Append(ctx, core.Transaction{
			Amount:   core.Money{Cents: int64(i) * 100},
			Category: "Salary",
			Date:     core.NewDate(2024, time.January, i),
			Type:     core.Income,
		})
		if err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
		if id != int64(i) {
			t.Fatalf("expected id %d, got %d", i, id)
		}
	}

	items, err := s.List(ctx)
	if err != nil || len(items) != 3 {
		t.Fatalf("unexpected list: %v err=%v", items, err)
	}
}

func TestAppendRejectsInvalid(t *testing.T) {
	s := New()
	_, err := s.Append(context.Background(), core.Transaction{
		Amount:   core.Money{Cents: 100},
		Category: core.CategoryOther,
		Date:     core.NewDate(2024, time.January, 1),
		Type:     core.Expense,
	})
	if !errors.Is(err, core.ErrReservedCategory) {
		t.Fatalf("expected ErrReservedCategory, got %v", err)
	}
}

func TestDeleteByID(t *testing.T) {
	s := New()
	ctx := context.Background()
	for i := 1; i <= 3; i++ {
		if _, err := s.Append(ctx, core.Transaction{
			Amount:   core.Money{Cents: 100},
			Category: "Rent",
			Date:     core.NewDate(2024, time.January, i),
			Type:     core.Expense,
		}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	if err := s.Delete(ctx, 2); err != nil {
		t.Fatalf("delete: %v", err)
	}
	items, _ := s.List(ctx)
	if len(items) != 2 || items[0].ID != 1 || items[1].ID != 3 {
		t.Fatalf("relative order not preserved: %v", items)
	}

	if err := s.Delete(ctx, 99); !errors.Is(err, ledger.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestBalance(t *testing.T) {
	s := New()
	ctx := context.Background()

	if b, _ := s.Balance(ctx); b.Cents != 0 {
		t.Fatalf("empty store balance should be 0, got %d", b.Cents)
	}

	_, _ = s.Append(ctx, core.Transaction{Amount: core.Money{Cents: 10000}, Category: "Salary", Date: core.NewDate(2024, time.January, 1), Type: core.Income})
	_, _ = s.Append(ctx, core.Transaction{Amount: core.Money{Cents: 7500}, Category: "Groceries", Date: core.NewDate(2024, time.January, 5), Type: core.Expense})

	b, err := s.Balance(ctx)
	if err != nil || b.Cents != 2500 {
		t.Fatalf("expected 2500, got %d (err=%v)", b.Cents, err)
	}
}
