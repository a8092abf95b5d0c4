package ledger

import (
	"context"
	"fmt"

	"github.com/spintech/slotbank/internal/repos/ledger"
)

// Insert appends one entry. The primary-key conflict clause makes the
// write idempotent: at-least-once delivery may replay a message, but the
// entry id is fixed at publish time, so the replay inserts nothing.
func (r *ledgerRepo) Insert(ctx context.Context, entry ledger.Entry) error {
	db := r.router.DB(ctx, "Insert")

	_, err := db.ExecContext(ctx, `
		INSERT INTO ledger_entries
			(id, account_id, kind, amount, balance_before, balance_after, description, bet_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING
	`, entry.ID, entry.AccountID, string(entry.Kind), entry.Amount,
		entry.BalanceBefore, entry.BalanceAfter, entry.Description, entry.BetID)
	if err != nil {
		return fmt.Errorf("insert ledger entry: %w", err)
	}

	return nil
}
