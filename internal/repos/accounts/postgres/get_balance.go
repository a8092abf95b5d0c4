package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/spintech/slotbank/internal/repos/accounts"
)

func (r *accountsRepo) GetBalance(ctx context.Context, accountID int64) (decimal.Decimal, error) {
	var balance decimal.Decimal

	db := r.router.DB(ctx, "GetBalance")

	err := db.QueryRowContext(ctx, `
		SELECT balance
		FROM accounts
		WHERE id = $1
	`, accountID).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, accounts.ErrAccountNotFound
		}

		return decimal.Zero, fmt.Errorf("get balance: %w", err)
	}

	return balance, nil
}
