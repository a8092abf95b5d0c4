package wallet

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/spintech/slotbank/internal/events"
	"github.com/spintech/slotbank/internal/infra/pgutils"
	"github.com/spintech/slotbank/internal/repos/accounts"
	"github.com/spintech/slotbank/internal/repos/bets"
	"github.com/spintech/slotbank/internal/repos/ledger"
)

// PlaceBet runs one spin:
//
// 1) Distributed lock on (bet, account).
// 2) Game config lookup and stake-bound validation.
// 3) Single DB transaction on the primary: row lock, balance check,
//    spin, debit stake, insert bet, credit payout.
// 4) After commit: ledger events (BET, and WIN if any) plus one RTP delta.
//
// The lock release runs on every exit path.
func (s *Service) PlaceBet(ctx context.Context, accountID int64, gameCode string, stake decimal.Decimal) (BetResult, error) {
	lk, err := s.locker.Acquire(ctx, lockKey(lockBet, accountID), s.lockTTL)
	if err != nil {
		return BetResult{}, fmt.Errorf("acquire bet lock: %w", err)
	}
	defer releaseLock(lk, "bet", accountID)

	cfg, err := s.cfgs.Get(ctx, gameCode)
	if err != nil {
		return BetResult{}, fmt.Errorf("load game config: %w", err)
	}

	if stake.LessThan(cfg.MinStake) {
		return BetResult{}, fmt.Errorf("stake %s vs min %s: %w", stake, cfg.MinStake, ErrStakeBelowMinimum)
	}

	if stake.GreaterThan(cfg.MaxStake) {
		return BetResult{}, fmt.Errorf("stake %s vs max %s: %w", stake, cfg.MaxStake, ErrStakeAboveMaximum)
	}

	var (
		res    BetResult
		betID  int64
		payout decimal.Decimal
	)

	err = pgutils.WithTx(ctx, s.router.Primary(), func(ctx context.Context, tx *sql.Tx) error {
		before, err := s.accounts.LockAndGetBalance(tx, accountID)
		if err != nil {
			return fmt.Errorf("lock and get balance: %w", err)
		}

		if before.LessThan(stake) {
			return fmt.Errorf("balance %s vs stake %s: %w", before, stake, accounts.ErrInsufficientFunds)
		}

		result := s.spin(cfg)
		payout = payoutAmount(result, stake, cfg)
		win := payout.IsPositive()

		betID = s.ids.NextID()

		err = s.accounts.DecreaseBalance(tx, accountID, stake)
		if err != nil {
			return fmt.Errorf("debit stake: %w", err)
		}

		err = s.bets.Insert(tx, bets.Bet{
			ID:        betID,
			AccountID: accountID,
			Stake:     stake,
			Payout:    payout,
			Win:       win,
			Result:    displaySymbols(result, cfg),
			GameCode:  gameCode,
		})
		if err != nil {
			return fmt.Errorf("insert bet: %w", err)
		}

		if win {
			err = s.accounts.IncreaseBalance(tx, accountID, payout)
			if err != nil {
				return fmt.Errorf("credit payout: %w", err)
			}
		}

		after := before.Sub(stake).Add(payout)

		message := "Better luck next time!"
		if win {
			message = fmt.Sprintf("Congratulations! You won %s!", payout)
		}

		res = BetResult{
			BetID:         betID,
			Result:        displaySymbols(result, cfg),
			Stake:         stake,
			Payout:        payout,
			Win:           win,
			BalanceBefore: before,
			BalanceAfter:  after,
			Message:       message,
		}

		return nil
	})
	if err != nil {
		return BetResult{}, fmt.Errorf("place bet: %w", err)
	}

	s.warnIfLeaseLost(lk, "bet", accountID)

	debited := res.BalanceBefore.Sub(stake)

	s.pub.PublishLedger(ctx, events.LedgerMessage{
		AccountID:     accountID,
		Kind:          string(ledger.KindBet),
		Amount:        stake,
		BalanceBefore: res.BalanceBefore,
		BalanceAfter:  debited,
		Description:   "Slot game bet",
		BetID:         &betID,
	})

	if res.Win {
		s.pub.PublishLedger(ctx, events.LedgerMessage{
			AccountID:     accountID,
			Kind:          string(ledger.KindWin),
			Amount:        payout,
			BalanceBefore: debited,
			BalanceAfter:  res.BalanceAfter,
			Description:   "Slot game win",
			BetID:         &betID,
		})
	}

	s.pub.PublishStats(ctx, events.StatsMessage{
		GameCode: gameCode,
		Stake:    stake,
		Payout:   payout,
	})

	return res, nil
}

