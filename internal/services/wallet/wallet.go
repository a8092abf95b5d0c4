// Package wallet orchestrates every balance-affecting operation.
//
// All mutations follow the same two-tier protocol: a distributed lock
// keyed by (operation, account) shapes throughput and guards the
// non-database steps, then a pessimistic row lock on the account row —
// the final arbiter — serializes the actual balance change. Ledger and
// RTP events are published only after commit and never block the
// mutation.
package wallet

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/shopspring/decimal"

	"github.com/spintech/slotbank/internal/events"
	"github.com/spintech/slotbank/internal/infra/dbrouter"
	"github.com/spintech/slotbank/internal/repos/accounts"
	"github.com/spintech/slotbank/internal/repos/bets"
	"github.com/spintech/slotbank/internal/repos/gamecfg"
	"github.com/spintech/slotbank/internal/repos/ledger"
	"github.com/spintech/slotbank/pkg/redlock"
	"github.com/spintech/slotbank/pkg/snowflake"
)

// distributed-lock key prefixes, one per operation kind
const (
	lockBet      = "lock:bet:"
	lockDeposit  = "lock:deposit:"
	lockWithdraw = "lock:withdraw:"
)

type Service struct {
	router   *dbrouter.Router
	accounts accounts.Accounts
	bets     bets.Bets
	ledger   ledger.Ledger
	cfgs     gamecfg.Cache
	locker   *redlock.Locker
	pub      *events.Publisher
	ids      *snowflake.Generator

	lockTTL        time.Duration
	initialBalance decimal.Decimal

	// randFloat draws uniformly from [0, max); swappable in tests.
	randFloat func(max float64) float64
}

// Options carries the orchestrator's collaborators and tuning.
type Options struct {
	Router         *dbrouter.Router
	Accounts       accounts.Accounts
	Bets           bets.Bets
	Ledger         ledger.Ledger
	Configs        gamecfg.Cache
	Locker         *redlock.Locker
	Publisher      *events.Publisher
	IDs            *snowflake.Generator
	LockTTL        time.Duration
	InitialBalance decimal.Decimal
}

func New(opts Options) *Service {
	return &Service{
		router:         opts.Router,
		accounts:       opts.Accounts,
		bets:           opts.Bets,
		ledger:         opts.Ledger,
		cfgs:           opts.Configs,
		locker:         opts.Locker,
		pub:            opts.Publisher,
		ids:            opts.IDs,
		lockTTL:        opts.LockTTL,
		initialBalance: opts.InitialBalance,
		randFloat:      func(max float64) float64 { return rand.Float64() * max },
	}
}

// BetResult is what a spin returns to the caller.
type BetResult struct {
	BetID         int64
	Result        []string
	Stake         decimal.Decimal
	Payout        decimal.Decimal
	Win           bool
	BalanceBefore decimal.Decimal
	BalanceAfter  decimal.Decimal
	Message       string
}

// releaseLock is the guaranteed-cleanup step. A stale-token release means
// the lease expired mid-section; that is logged, never propagated.
func releaseLock(lk *redlock.Lock, op string, accountID int64) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err := lk.Release(ctx)
	if err != nil {
		slog.Warn("release distributed lock", "op", op, "accountId", accountID, "error", err)
	}
}

func lockKey(prefix string, accountID int64) string {
	return fmt.Sprintf("%s%d", prefix, accountID)
}

// warnIfLeaseLost reports when renewal detected the lease was taken over
// while the critical section ran. The commit already happened and the row
// lock kept it correct, but the distributed lock's exclusivity did not hold.
func (s *Service) warnIfLeaseLost(lk *redlock.Lock, op string, accountID int64) {
	select {
	case <-lk.Lost():
		slog.Warn("distributed lock lease lost during critical section",
			"op", op, "accountId", accountID)
	default:
	}
}
