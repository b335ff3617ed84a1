package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"fintracker/internal/core"
	"fintracker/internal/ledger"
)

func testTx(cents int64, category string, day int, txType core.TxType) core.Transaction {
	return core.Transaction{
		Amount:   core.Money{Cents: cents},
		Category: category,
		Date:     core.NewDate(2024, time.January, day),
		Type:     txType,
	}
}

func TestRoundTripPersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transactions.json")
	ctx := context.Background()

	s, err := Open(path)
	if err != nil {
		t.Fatalf("open fresh: %v", err)
	}
	want := []core.Transaction{
		testTx(10000, "Salary", 1, core.Income),
		testTx(5000, "Groceries", 5, core.Expense),
		testTx(2500, "Other-custom", 10, core.Expense),
	}
	for _, tx := range want {
		if _, err := s.Append(ctx, tx); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	// Simulate a restart
	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	items, err := reopened.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != len(want) {
		t.Fatalf("expected %d transactions, got %d", len(want), len(items))
	}
	for i, tx := range items {
		if tx.Category != want[i].Category || tx.Amount != want[i].Amount || tx.Type != want[i].Type {
			t.Fatalf("item %d mismatch: %+v", i, tx)
		}
		if !tx.Date.Equal(want[i].Date.Time) {
			t.Fatalf("item %d date mismatch: %v", i, tx.Date)
		}
	}

	b, _ := reopened.Balance(ctx)
	if b.Cents != 2500 {
		t.Fatalf("expected balance 2500, got %d", b.Cents)
	}
}

func TestPersistedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transactions.json")
	s, _ := Open(path)
	if _, err := s.Append(context.Background(), testTx(1050, "Rent", 2, core.Expense)); err != nil {
		t.Fatalf("append: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var recs []map[string]any
	if err := json.Unmarshal(data, &recs); err != nil {
		t.Fatalf("persisted document is not a JSON array: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected 1 record, got %d", len(recs))
	}
	r := recs[0]
	if r["amount"] != 10.5 || r["category"] != "Rent" || r["date"] != "2024-01-02" || r["type"] != "Expense" {
		t.Fatalf("unexpected record shape: %v", r)
	}
	if len(r) != 4 {
		t.Fatalf("record should have exactly four fields, got %d", len(r))
	}
}

func TestDeletePreservesOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transactions.json")
	ctx := context.Background()
	s, _ := Open(path)

	var ids []int64
	for i := 1; i <= 4; i++ {
		id, err := s.Append(ctx, testTx(int64(i)*100, "Recreation", i, core.Expense))
		if err != nil {
			t.Fatalf("append: %v", err)
		}
		ids = append(ids, id)
	}

	if err := s.Delete(ctx, ids[1]); err != nil {
		t.Fatalf("delete: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	items, _ := reopened.List(ctx)
	if len(items) != 3 {
		t.Fatalf("expected 3 after delete, got %d", len(items))
	}
	wantCents := []int64{100, 300, 400}
	for i, tx := range items {
		if tx.Amount.Cents != wantCents[i] {
			t.Fatalf("relative order lost at %d: %+v", i, items)
		}
	}
}

func TestDeleteUnknownID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transactions.json")
	ctx := context.Background()
	s, _ := Open(path)
	_, _ = s.Append(ctx, testTx(100, "Rent", 1, core.Expense))

	if err := s.Delete(ctx, 42); !errors.Is(err, ledger.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	items, _ := s.List(ctx)
	if len(items) != 1 {
		t.Fatalf("failed delete must leave sequence unchanged, got %d items", len(items))
	}
}

func TestOpenMissingFile(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	items, _ := s.List(context.Background())
	if len(items) != 0 {
		t.Fatalf("expected empty ledger, got %d items", len(items))
	}
}

func TestOpenCorruptFile(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"truncated", `[{"amount": 1`},
		{"not json", "garbage"},
		{"bad record", `[{"amount": 10, "category": "Rent", "date": "wrong", "type": "Expense"}]`},
		{"bad type", `[{"amount": 10, "category": "Rent", "date": "2024-01-01", "type": "Transfer"}]`},
		{"negative amount", `[{"amount": -5, "category": "Rent", "date": "2024-01-01", "type": "Expense"}]`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "transactions.json")
			if err := os.WriteFile(path, []byte(tc.content), 0o644); err != nil {
				t.Fatalf("write: %v", err)
			}

			s, err := Open(path)
			if !errors.Is(err, ledger.ErrCorruptLedger) {
				t.Fatalf("expected ErrCorruptLedger, got %v", err)
			}
			// The store recovers to an empty, usable ledger
			items, listErr := s.List(context.Background())
			if listErr != nil || len(items) != 0 {
				t.Fatalf("expected usable empty store, got %v err=%v", items, listErr)
			}
			if _, err := s.Append(context.Background(), testTx(100, "Rent", 1, core.Expense)); err != nil {
				t.Fatalf("recovered store should accept appends: %v", err)
			}
		})
	}
}
