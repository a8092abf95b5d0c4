package wallet

import (
	"math/rand/v2"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spintech/slotbank/internal/repos/gamecfg"
)

func testConfig() gamecfg.Config {
	return gamecfg.Config{
		GameCode:      "classic",
		Symbols:       []string{"A", "B", "C"},
		SymbolDisplay: map[string]string{"A": "🍒", "B": "🍋", "C": "🔔"},
		SymbolWeights: map[string]float64{"A": 10, "B": 10, "C": 10},
		PayoutMultipliers: map[string]float64{
			"A": 5,
			"B": 10,
			"C": 20,
		},
		TwoMatchMultiplier: decimal.NewFromFloat(1.5),
		MinStake:           decimal.NewFromInt(1),
		MaxStake:           decimal.NewFromInt(1000),
	}
}

func seededService(seed uint64) *Service {
	rng := rand.New(rand.NewPCG(seed, 0))

	return &Service{
		randFloat: func(max float64) float64 { return rng.Float64() * max },
	}
}

func TestWeightedSymbol_Distribution(t *testing.T) {
	t.Parallel()

	svc := seededService(42)
	cfg := testConfig()

	const draws = 100_000

	counts := map[string]int{}
	for range draws {
		counts[svc.weightedSymbol(cfg)]++
	}

	// equal weights: each symbol should land near one third
	for _, sym := range cfg.Symbols {
		share := float64(counts[sym]) / draws
		assert.InDelta(t, 1.0/3.0, share, 0.01, "symbol %s share %f", sym, share)
	}
}

func TestWeightedSymbol_ZeroWeightNeverDrawn(t *testing.T) {
	t.Parallel()

	svc := seededService(7)
	cfg := testConfig()
	cfg.SymbolWeights["B"] = 0

	for range 10_000 {
		require.NotEqual(t, "B", svc.weightedSymbol(cfg))
	}
}

func TestWeightedSymbol_FloatEdgeFallsBackToFirst(t *testing.T) {
	t.Parallel()

	svc := &Service{
		// returns exactly the total weight, past every cumulative bound
		randFloat: func(max float64) float64 { return max },
	}

	got := svc.weightedSymbol(testConfig())
	assert.Equal(t, "A", got)
}

func TestPayoutAmount(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	stake := decimal.NewFromInt(10)

	tests := []struct {
		name   string
		result [3]string
		want   string
	}{
		{name: "triple_uses_symbol_multiplier", result: [3]string{"A", "A", "A"}, want: "50"},
		{name: "triple_high_symbol", result: [3]string{"C", "C", "C"}, want: "200"},
		{name: "pair_first_two", result: [3]string{"A", "A", "B"}, want: "15"},
		{name: "pair_last_two", result: [3]string{"B", "A", "A"}, want: "15"},
		{name: "pair_outer", result: [3]string{"A", "B", "A"}, want: "15"},
		{name: "no_match", result: [3]string{"A", "B", "C"}, want: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := payoutAmount(tt.result, stake, cfg)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)),
				"want %s, got %s", tt.want, got)
		})
	}
}

// A triple whose symbol has no configured multiplier still pays as a
// pair rather than nothing.
func TestPayoutAmount_TripleWithoutMultiplierPaysAsPair(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	delete(cfg.PayoutMultipliers, "A")

	got := payoutAmount([3]string{"A", "A", "A"}, decimal.NewFromInt(10), cfg)
	assert.True(t, got.Equal(decimal.NewFromInt(15)), "got %s", got)
}

func TestDisplaySymbols(t *testing.T) {
	t.Parallel()

	cfg := testConfig()

	got := displaySymbols([3]string{"A", "C", "Z"}, cfg)
	assert.Equal(t, []string{"🍒", "🔔", "Z"}, got)
}
