package wallet

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/spintech/slotbank/internal/infra/dbrouter"
	"github.com/spintech/slotbank/internal/repos/bets"
	"github.com/spintech/slotbank/internal/repos/ledger"
)

// GetBalance reads the current balance without locks; the router sends
// it to a replica. A reader may observe a balance from just before a
// concurrent critical section commits — acceptable for display reads.
func (s *Service) GetBalance(ctx context.Context, accountID int64) (decimal.Decimal, error) {
	balance, err := s.accounts.GetBalance(dbrouter.WithReadOnly(ctx), accountID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("get balance: %w", err)
	}

	return balance, nil
}

// ListBets pages through an account's bet history on a replica.
func (s *Service) ListBets(ctx context.Context, accountID int64, f bets.Filter) ([]bets.Bet, int64, error) {
	if f.Limit <= 0 {
		f.Limit = 100
	}

	// an open time range still has to match the inclusive SQL bounds
	if f.To.IsZero() {
		f.To = time.Now().Add(time.Minute)
	}

	records, total, err := s.bets.ListByAccount(dbrouter.WithReadOnly(ctx), accountID, f)
	if err != nil {
		return nil, 0, fmt.Errorf("list bets: %w", err)
	}

	return records, total, nil
}

// ListLedger pages through the account's statement on a replica. The
// entries arrive asynchronously, so a just-committed mutation may not be
// visible yet.
func (s *Service) ListLedger(ctx context.Context, accountID int64, f ledger.Filter) ([]ledger.Entry, int64, error) {
	if f.Limit <= 0 {
		f.Limit = 100
	}

	if f.To.IsZero() {
		f.To = time.Now().Add(time.Minute)
	}

	entries, total, err := s.ledger.ListByAccount(dbrouter.WithReadOnly(ctx), accountID, f)
	if err != nil {
		return nil, 0, fmt.Errorf("list ledger: %w", err)
	}

	return entries, total, nil
}
