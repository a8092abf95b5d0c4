// Package events carries the asynchronous pipeline that trails committed
// balance mutations: message types, the fire-and-forget kafka publisher,
// and the two consumers that persist ledger history and maintain RTP
// aggregates.
package events

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerMessage describes one committed balance mutation. EventID is a
// snowflake minted at publish time; the consumer uses it as the ledger
// row's primary key, so redeliveries collapse into a single row.
type LedgerMessage struct {
	EventID       int64           `json:"eventId"`
	AccountID     int64           `json:"accountId"`
	Kind          string          `json:"kind"`
	Amount        decimal.Decimal `json:"amount"`
	BalanceBefore decimal.Decimal `json:"balanceBefore"`
	BalanceAfter  decimal.Decimal `json:"balanceAfter"`
	Description   string          `json:"description"`
	BetID         *int64          `json:"betId,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// StatsMessage is the per-bet delta for the RTP aggregates.
type StatsMessage struct {
	GameCode string          `json:"gameCode"`
	Stake    decimal.Decimal `json:"stake"`
	Payout   decimal.Decimal `json:"payout"`
}
