package accounts

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/spintech/slotbank/internal/repos/accounts"
)

// LockAndGetBalance takes the account row under FOR UPDATE. The row lock
// serializes every balance write for this account until the transaction
// ends, regardless of which distributed-lock key the caller holds.
func (r *accountsRepo) LockAndGetBalance(tx *sql.Tx, accountID int64) (decimal.Decimal, error) {
	var balance decimal.Decimal

	err := tx.QueryRow(`
		SELECT balance
		FROM accounts
		WHERE id = $1
		FOR UPDATE
	`, accountID).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, accounts.ErrAccountNotFound
		}

		return decimal.Zero, fmt.Errorf("lock/get balance: %w", err)
	}

	return balance, nil
}
