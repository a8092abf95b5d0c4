package accounts

import (
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/spintech/slotbank/internal/repos/accounts"
)

// DecreaseBalance debits amount. The WHERE guard keeps the balance from
// ever going negative at commit, even if a pre-check was skipped.
func (r *accountsRepo) DecreaseBalance(tx *sql.Tx, accountID int64, amount decimal.Decimal) error {
	res, err := tx.Exec(`
		UPDATE accounts
		SET balance = balance - $2
		WHERE id = $1
		  AND balance >= $2
	`, accountID, amount)
	if err != nil {
		return fmt.Errorf("decrease balance: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if affected == 0 {
		return accounts.ErrInsufficientFunds
	}

	return nil
}
