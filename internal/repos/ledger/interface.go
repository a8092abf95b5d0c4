package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Kind is the ledger operation kind.
type Kind string

const (
	KindRegister Kind = "REGISTER"
	KindDeposit  Kind = "DEPOSIT"
	KindWithdraw Kind = "WITHDRAW"
	KindBet      Kind = "BET"
	KindWin      Kind = "WIN"
)

// Entry is one append-only ledger row. ID is minted by the producer at
// publish time and doubles as the idempotency key: a redelivered message
// carries the same ID and inserts as a no-op.
type Entry struct {
	ID            int64
	AccountID     int64
	Kind          Kind
	Amount        decimal.Decimal
	BalanceBefore decimal.Decimal
	BalanceAfter  decimal.Decimal
	Description   string
	BetID         *int64
	CreatedAt     time.Time
}

// Filter narrows ListByAccount.
type Filter struct {
	From   time.Time
	To     time.Time
	Limit  int
	Offset int
}

type Ledger interface {
	Insert(ctx context.Context, entry Entry) error
	ListByAccount(ctx context.Context, accountID int64, f Filter) ([]Entry, int64, error)
}
