package ledger

import (
	"context"
	"fmt"

	"github.com/spintech/slotbank/internal/repos/ledger"
)

func (r *ledgerRepo) ListByAccount(ctx context.Context, accountID int64, f ledger.Filter) ([]ledger.Entry, int64, error) {
	db := r.router.DB(ctx, "ListByAccount")

	var total int64

	err := db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM ledger_entries
		WHERE account_id = $1 AND created_at >= $2 AND created_at <= $3
	`, accountID, f.From, f.To).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count ledger entries: %w", err)
	}

	rows, err := db.QueryContext(ctx, `
		SELECT id, account_id, kind, amount, balance_before, balance_after,
		       description, bet_id, created_at
		FROM ledger_entries
		WHERE account_id = $1 AND created_at >= $2 AND created_at <= $3
		ORDER BY id DESC
		LIMIT $4 OFFSET $5
	`, accountID, f.From, f.To, f.Limit, f.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("query ledger entries: %w", err)
	}
	defer rows.Close()

	var out []ledger.Entry

	for rows.Next() {
		var (
			e    ledger.Entry
			kind string
		)

		err = rows.Scan(&e.ID, &e.AccountID, &kind, &e.Amount, &e.BalanceBefore,
			&e.BalanceAfter, &e.Description, &e.BetID, &e.CreatedAt)
		if err != nil {
			return nil, 0, fmt.Errorf("scan ledger entry: %w", err)
		}

		e.Kind = ledger.Kind(kind)

		out = append(out, e)
	}

	err = rows.Err()
	if err != nil {
		return nil, 0, fmt.Errorf("iterate ledger entries: %w", err)
	}

	return out, total, nil
}
