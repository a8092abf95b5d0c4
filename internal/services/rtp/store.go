package rtp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// counter key layout; totals across all games plus a per-game breakdown
const (
	totalBetKey   = "rtp:total:bet"
	totalWinKey   = "rtp:total:win"
	totalCountKey = "rtp:total:count"
)

// statsTTL is the rolling expiry refreshed on every update.
const statsTTL = 30 * 24 * time.Hour

func gameBetKey(code string) string   { return "rtp:game:" + code + ":bet" }
func gameWinKey(code string) string   { return "rtp:game:" + code + ":win" }
func gameCountKey(code string) string { return "rtp:game:" + code + ":count" }

// Store owns the RTP aggregate counters. Increments are atomic and safe
// for unsynchronized concurrent writers; the aggregate is advisory only
// and never consulted for correctness decisions.
type Store struct {
	client *redis.Client
}

func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

// Apply folds one bet into the counters and refreshes the rolling TTL.
func (s *Store) Apply(ctx context.Context, gameCode string, stake, payout decimal.Decimal) error {
	keys := []string{
		gameBetKey(gameCode), gameWinKey(gameCode), gameCountKey(gameCode),
		totalBetKey, totalWinKey, totalCountKey,
	}

	pipe := s.client.Pipeline()

	pipe.IncrByFloat(ctx, keys[0], stake.InexactFloat64())
	pipe.IncrByFloat(ctx, keys[1], payout.InexactFloat64())
	pipe.Incr(ctx, keys[2])
	pipe.IncrByFloat(ctx, keys[3], stake.InexactFloat64())
	pipe.IncrByFloat(ctx, keys[4], payout.InexactFloat64())
	pipe.Incr(ctx, keys[5])

	for _, k := range keys {
		pipe.Expire(ctx, k, statsTTL)
	}

	_, err := pipe.Exec(ctx)
	if err != nil {
		return fmt.Errorf("apply rtp delta for %q: %w", gameCode, err)
	}

	return nil
}

// counters reads one game's running totals. Missing keys read as zero.
func (s *Store) counters(ctx context.Context, gameCode string) (totalBet, totalWin float64, count int64, err error) {
	pipe := s.client.Pipeline()

	betCmd := pipe.Get(ctx, gameBetKey(gameCode))
	winCmd := pipe.Get(ctx, gameWinKey(gameCode))
	countCmd := pipe.Get(ctx, gameCountKey(gameCode))

	_, err = pipe.Exec(ctx)
	if err != nil && !errors.Is(err, redis.Nil) {
		return 0, 0, 0, fmt.Errorf("read rtp counters for %q: %w", gameCode, err)
	}

	totalBet, _ = betCmd.Float64()
	totalWin, _ = winCmd.Float64()
	count, _ = countCmd.Int64()

	return totalBet, totalWin, count, nil
}

// Reset deletes one game's counters. Totals across games are untouched.
func (s *Store) Reset(ctx context.Context, gameCode string) error {
	err := s.client.Del(ctx,
		gameBetKey(gameCode), gameWinKey(gameCode), gameCountKey(gameCode)).Err()
	if err != nil {
		return fmt.Errorf("reset rtp counters for %q: %w", gameCode, err)
	}

	return nil
}
