package accounts

import (
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"
)

func (r *accountsRepo) IncreaseBalance(tx *sql.Tx, accountID int64, amount decimal.Decimal) error {
	_, err := tx.Exec(`
		UPDATE accounts
		SET balance = balance + $2
		WHERE id = $1
	`, accountID, amount)
	if err != nil {
		return fmt.Errorf("increase balance: %w", err)
	}

	return nil
}
