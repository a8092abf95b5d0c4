package ledger

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/spintech/slotbank/internal/infra/dbrouter"
	"github.com/spintech/slotbank/internal/infra/pgtestutil"
	"github.com/spintech/slotbank/internal/repos/ledger"
)

func seedAccount(t *testing.T, db *sql.DB, id int64) {
	t.Helper()

	_, err := db.Exec(`INSERT INTO accounts (id, balance) VALUES ($1, 0)`, id)
	if err != nil {
		t.Fatalf("seed account: %v", err)
	}
}

func entry(id, accountID int64, kind ledger.Kind, amount string) ledger.Entry {
	return ledger.Entry{
		ID:            id,
		AccountID:     accountID,
		Kind:          kind,
		Amount:        decimal.RequireFromString(amount),
		BalanceBefore: decimal.Zero,
		BalanceAfter:  decimal.RequireFromString(amount),
		Description:   "test entry",
	}
}

// Replayed messages carry the same event id; the second insert must be a
// silent no-op and leave a single row behind.
func TestLedger_Insert_IdempotentOnReplay(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	seedAccount(t, db, 1)

	repo := New(dbrouter.New(db, nil))

	ctx, cancel := context.WithTimeout(t.Context(), 5*time.Second)
	defer cancel()

	e := entry(1001, 1, ledger.KindDeposit, "50.00")

	err := repo.Insert(ctx, e)
	if err != nil {
		t.Fatalf("first insert: %v", err)
	}

	// same id, different payload — must not overwrite either
	replay := e
	replay.Amount = decimal.RequireFromString("999.00")

	err = repo.Insert(ctx, replay)
	if err != nil {
		t.Fatalf("replay insert: %v", err)
	}

	var (
		cnt    int
		amount string
	)

	err = db.QueryRow(`SELECT COUNT(*) FROM ledger_entries WHERE id = 1001`).Scan(&cnt)
	if err != nil {
		t.Fatalf("count: %v", err)
	}

	if cnt != 1 {
		t.Fatalf("want 1 row, got %d", cnt)
	}

	err = db.QueryRow(`SELECT amount FROM ledger_entries WHERE id = 1001`).Scan(&amount)
	if err != nil {
		t.Fatalf("read amount: %v", err)
	}

	if !decimal.RequireFromString(amount).Equal(decimal.RequireFromString("50.00")) {
		t.Fatalf("first write must win: got amount %s", amount)
	}
}

func TestLedger_ListByAccount_FiltersAndPages(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	seedAccount(t, db, 1)
	seedAccount(t, db, 2)

	repo := New(dbrouter.New(db, nil))

	ctx, cancel := context.WithTimeout(t.Context(), 5*time.Second)
	defer cancel()

	for i := int64(1); i <= 5; i++ {
		err := repo.Insert(ctx, entry(i, 1, ledger.KindDeposit, "10.00"))
		if err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
	}

	// another account's entry must not leak in
	err := repo.Insert(ctx, entry(100, 2, ledger.KindDeposit, "10.00"))
	if err != nil {
		t.Fatalf("insert other account: %v", err)
	}

	f := ledger.Filter{
		From:  time.Now().Add(-time.Hour),
		To:    time.Now().Add(time.Hour),
		Limit: 2,
	}

	entries, total, err := repo.ListByAccount(ctx, 1, f)
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	if total != 5 {
		t.Fatalf("want total 5, got %d", total)
	}

	if len(entries) != 2 {
		t.Fatalf("want 2 entries, got %d", len(entries))
	}

	// newest first by id
	if entries[0].ID != 5 || entries[1].ID != 4 {
		t.Fatalf("want ids [5 4], got [%d %d]", entries[0].ID, entries[1].ID)
	}

	f.Offset = 4

	entries, _, err = repo.ListByAccount(ctx, 1, f)
	if err != nil {
		t.Fatalf("list last page: %v", err)
	}

	if len(entries) != 1 || entries[0].ID != 1 {
		t.Fatalf("want last page [1], got %v", entries)
	}
}
