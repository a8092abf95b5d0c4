package bets

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var ErrBetNotFound = errors.New("bet not found")

// Bet is a single spin's immutable record. Result holds the displayed
// outcome symbols in reel order.
type Bet struct {
	ID        int64
	AccountID int64
	Stake     decimal.Decimal
	Payout    decimal.Decimal
	Win       bool
	Result    []string
	GameCode  string
	CreatedAt time.Time
}

// Filter narrows ListByAccount. GameCode empty means all games.
type Filter struct {
	From     time.Time
	To       time.Time
	GameCode string
	Limit    int
	Offset   int
}

type Bets interface {
	Insert(tx *sql.Tx, bet Bet) error
	ListByAccount(ctx context.Context, accountID int64, f Filter) ([]Bet, int64, error)
}
