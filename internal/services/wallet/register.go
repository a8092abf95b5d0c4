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

// Account is the registration result.
type Account struct {
	ID      int64
	Balance string
}

// Register creates a fresh account seeded with the configured initial
// balance and emits the REGISTER ledger event. The id is newly minted,
// so no lock is needed: nothing can contend on a row nobody has seen.
func (s *Service) Register(ctx context.Context) (Account, error) {
	accountID := s.ids.NextID()

	err := pgutils.WithTx(ctx, s.router.Primary(), func(ctx context.Context, tx *sql.Tx) error {
		err := s.accounts.Create(tx, accountID, s.initialBalance)
		if err != nil {
			return fmt.Errorf("create account: %w", err)
		}

		return nil
	})
	if err != nil {
		return Account{}, fmt.Errorf("register: %w", err)
	}

	s.pub.PublishLedger(ctx, events.LedgerMessage{
		AccountID:     accountID,
		Kind:          string(ledger.KindRegister),
		Amount:        s.initialBalance,
		BalanceBefore: decimal.Zero,
		BalanceAfter:  s.initialBalance,
		Description:   "Initial balance on registration",
	})

	return Account{ID: accountID, Balance: s.initialBalance.StringFixed(2)}, nil
}
