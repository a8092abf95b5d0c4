package accounts

import (
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"
)

func (r *accountsRepo) Create(tx *sql.Tx, accountID int64, balance decimal.Decimal) error {
	_, err := tx.Exec(`
		INSERT INTO accounts (id, balance)
		VALUES ($1, $2)
	`, accountID, balance)
	if err != nil {
		return fmt.Errorf("insert account: %w", err)
	}

	return nil
}
