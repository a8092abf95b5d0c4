package gamecfg

import (
	"context"
	"errors"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spintech/slotbank/internal/repos/gamecfg"
)

const testRedisAddr = "localhost:6379"

func newTestClient(t *testing.T) *goredis.Client {
	t.Helper()

	client := goredis.NewClient(&goredis.Options{Addr: testRedisAddr})

	ctx, cancel := context.WithTimeout(t.Context(), 2*time.Second)
	defer cancel()

	err := client.Ping(ctx).Err()
	if err != nil {
		t.Skipf("redis not available at %s: %v", testRedisAddr, err)
	}

	t.Cleanup(func() { _ = client.Close() })

	return client
}

func TestCache_Get(t *testing.T) {
	t.Parallel()

	client := newTestClient(t)
	ctx := t.Context()

	const gameCode = "cache-test-classic"

	payload := `{
		"gameCode": "cache-test-classic",
		"symbols": ["A", "B"],
		"symbolDisplay": {"A": "🍒", "B": "🍋"},
		"symbolWeights": {"A": 60, "B": 40},
		"payoutMultipliers": {"A": 5, "B": 10},
		"twoMatchMultiplier": "1.5",
		"minBet": "1.00",
		"maxBet": "100.00",
		"targetRtp": 95.0
	}`

	err := client.HSet(ctx, SettingsKey, gameCode, payload).Err()
	require.NoError(t, err)

	t.Cleanup(func() { _ = client.HDel(context.Background(), SettingsKey, gameCode).Err() })

	cache := New(client)

	cfg, err := cache.Get(ctx, gameCode)
	require.NoError(t, err)

	assert.Equal(t, gameCode, cfg.GameCode)
	assert.Equal(t, []string{"A", "B"}, cfg.Symbols)
	assert.InDelta(t, 60.0, cfg.SymbolWeights["A"], 1e-9)
	assert.True(t, cfg.MinStake.Equal(decimal.RequireFromString("1.00")))
	assert.True(t, cfg.TwoMatchMultiplier.Equal(decimal.RequireFromString("1.5")))
	assert.InDelta(t, 95.0, cfg.TargetRTP, 1e-9)
}

func TestCache_PutThenGet(t *testing.T) {
	t.Parallel()

	client := newTestClient(t)
	ctx := t.Context()

	const gameCode = "cache-test-put"

	cache := New(client)

	err := cache.Put(ctx, gameCode, []byte(`{
		"gameCode": "cache-test-put",
		"symbols": ["A"],
		"symbolWeights": {"A": 1},
		"payoutMultipliers": {"A": 2},
		"twoMatchMultiplier": "1.5",
		"minBet": "1.00",
		"maxBet": "10.00",
		"targetRtp": 90.0
	}`))
	require.NoError(t, err)

	t.Cleanup(func() { _ = client.HDel(context.Background(), SettingsKey, gameCode).Err() })

	cfg, err := cache.Get(ctx, gameCode)
	require.NoError(t, err)

	assert.Equal(t, gameCode, cfg.GameCode)
	assert.Equal(t, []string{"A"}, cfg.Symbols)
	assert.True(t, cfg.MaxStake.Equal(decimal.RequireFromString("10.00")))
}

func TestCache_Get_RejectsEmptySymbols(t *testing.T) {
	t.Parallel()

	client := newTestClient(t)
	ctx := t.Context()

	const gameCode = "cache-test-empty"

	cache := New(client)

	err := cache.Put(ctx, gameCode, []byte(`{"gameCode":"cache-test-empty","symbols":[]}`))
	require.NoError(t, err)

	t.Cleanup(func() { _ = client.HDel(context.Background(), SettingsKey, gameCode).Err() })

	_, err = cache.Get(ctx, gameCode)
	require.Error(t, err)
	assert.NotErrorIs(t, err, gamecfg.ErrConfigNotFound)
}

func TestCache_Get_NotConfigured(t *testing.T) {
	t.Parallel()

	client := newTestClient(t)
	cache := New(client)

	_, err := cache.Get(t.Context(), "no-such-game")
	require.Error(t, err)
	assert.True(t, errors.Is(err, gamecfg.ErrConfigNotFound))
}
