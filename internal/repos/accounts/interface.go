package accounts

import (
	"context"
	"database/sql"
	"errors"

	"github.com/shopspring/decimal"
)

var ErrAccountNotFound = errors.New("account not found")
var ErrInsufficientFunds = errors.New("insufficient funds")

// Accounts is the account persistence surface. Methods taking *sql.Tx
// participate in the caller's transaction on the primary store; the
// rest route through the datasource policy.
type Accounts interface {
	Create(tx *sql.Tx, accountID int64, balance decimal.Decimal) error
	GetBalance(ctx context.Context, accountID int64) (decimal.Decimal, error)
	LockAndGetBalance(tx *sql.Tx, accountID int64) (decimal.Decimal, error)
	IncreaseBalance(tx *sql.Tx, accountID int64, amount decimal.Decimal) error
	DecreaseBalance(tx *sql.Tx, accountID int64, amount decimal.Decimal) error
}
