package wallet

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/spintech/slotbank/internal/events"
	"github.com/spintech/slotbank/internal/infra/pgutils"
	"github.com/spintech/slotbank/internal/repos/ledger"
)

// WithdrawAll empties the account and returns the withdrawn amount.
// Fails unless the current balance is strictly positive.
func (s *Service) WithdrawAll(ctx context.Context, accountID int64) (decimal.Decimal, error) {
	lk, err := s.locker.Acquire(ctx, lockKey(lockWithdraw, accountID), s.lockTTL)
	if err != nil {
		return decimal.Zero, fmt.Errorf("acquire withdraw lock: %w", err)
	}
	defer releaseLock(lk, "withdraw", accountID)

	var withdrawn decimal.Decimal

	err = pgutils.WithTx(ctx, s.router.Primary(), func(ctx context.Context, tx *sql.Tx) error {
		before, err := s.accounts.LockAndGetBalance(tx, accountID)
		if err != nil {
			return fmt.Errorf("lock and get balance: %w", err)
		}

		if !before.IsPositive() {
			return fmt.Errorf("balance %s: %w", before, ErrNoBalanceToWithdraw)
		}

		err = s.accounts.DecreaseBalance(tx, accountID, before)
		if err != nil {
			return fmt.Errorf("debit full balance: %w", err)
		}

		withdrawn = before

		return nil
	})
	if err != nil {
		return decimal.Zero, fmt.Errorf("withdraw all: %w", err)
	}

	s.warnIfLeaseLost(lk, "withdraw", accountID)

	s.pub.PublishLedger(ctx, events.LedgerMessage{
		AccountID:     accountID,
		Kind:          string(ledger.KindWithdraw),
		Amount:        withdrawn,
		BalanceBefore: withdrawn,
		BalanceAfter:  decimal.Zero,
		Description:   "Withdraw all balance",
	})

	return withdrawn, nil
}
