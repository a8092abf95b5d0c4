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

// Deposit credits amount to the account and returns the new balance.
func (s *Service) Deposit(ctx context.Context, accountID int64, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("deposit %s: %w", amount, ErrAmountNotPositive)
	}

	lk, err := s.locker.Acquire(ctx, lockKey(lockDeposit, accountID), s.lockTTL)
	if err != nil {
		return decimal.Zero, fmt.Errorf("acquire deposit lock: %w", err)
	}
	defer releaseLock(lk, "deposit", accountID)

	var before, after decimal.Decimal

	err = pgutils.WithTx(ctx, s.router.Primary(), func(ctx context.Context, tx *sql.Tx) error {
		before, err = s.accounts.LockAndGetBalance(tx, accountID)
		if err != nil {
			return fmt.Errorf("lock and get balance: %w", err)
		}

		err = s.accounts.IncreaseBalance(tx, accountID, amount)
		if err != nil {
			return fmt.Errorf("credit deposit: %w", err)
		}

		after = before.Add(amount)

		return nil
	})
	if err != nil {
		return decimal.Zero, fmt.Errorf("deposit: %w", err)
	}

	s.warnIfLeaseLost(lk, "deposit", accountID)

	s.pub.PublishLedger(ctx, events.LedgerMessage{
		AccountID:     accountID,
		Kind:          string(ledger.KindDeposit),
		Amount:        amount,
		BalanceBefore: before,
		BalanceAfter:  after,
		Description:   "Deposit to wallet",
	})

	return after, nil
}
