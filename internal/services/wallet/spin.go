package wallet

import (
	"github.com/shopspring/decimal"

	"github.com/spintech/slotbank/internal/repos/gamecfg"
)

// spin draws the outcome triple: three independent weighted draws.
func (s *Service) spin(cfg gamecfg.Config) [3]string {
	var out [3]string
	for i := range out {
		out[i] = s.weightedSymbol(cfg)
	}

	return out
}

// weightedSymbol draws one symbol with probability proportional to its
// weight, walking symbols in their configured order. If accumulated
// floating-point error leaves nothing selected, the first symbol wins.
func (s *Service) weightedSymbol(cfg gamecfg.Config) string {
	var total float64
	for _, sym := range cfg.Symbols {
		total += cfg.SymbolWeights[sym]
	}

	r := s.randFloat(total)

	var cum float64
	for _, sym := range cfg.Symbols {
		cum += cfg.SymbolWeights[sym]
		if r < cum {
			return sym
		}
	}

	return cfg.Symbols[0]
}

// payoutAmount applies the payout table. Triple match is checked before
// the pair rule since a triple also satisfies pairwise equality.
func payoutAmount(result [3]string, stake decimal.Decimal, cfg gamecfg.Config) decimal.Decimal {
	first, second, third := result[0], result[1], result[2]

	if first == second && second == third {
		mult, ok := cfg.PayoutMultipliers[first]
		if ok {
			return stake.Mul(decimal.NewFromFloat(mult))
		}
	}

	if first == second || second == third || first == third {
		return stake.Mul(cfg.TwoMatchMultiplier)
	}

	return decimal.Zero
}

// displaySymbols maps raw symbols to their configured display labels.
func displaySymbols(result [3]string, cfg gamecfg.Config) []string {
	out := make([]string, 0, len(result))
	for _, sym := range result {
		label, ok := cfg.SymbolDisplay[sym]
		if !ok {
			label = sym
		}

		out = append(out, label)
	}

	return out
}
