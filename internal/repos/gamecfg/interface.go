package gamecfg

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// ErrConfigNotFound means no configuration exists for the game code.
// A bet against an unconfigured game is a validation failure.
var ErrConfigNotFound = errors.New("game configuration not found")

// Config is a game's payout table and stake limits, loaded into the
// cache by an external collaborator. Read-only for the duration of a bet.
//
// Symbols fixes the draw order; the maps are keyed by symbol.
type Config struct {
	GameCode           string             `json:"gameCode"`
	Symbols            []string           `json:"symbols"`
	SymbolDisplay      map[string]string  `json:"symbolDisplay"`
	SymbolWeights      map[string]float64 `json:"symbolWeights"`
	PayoutMultipliers  map[string]float64 `json:"payoutMultipliers"`
	TwoMatchMultiplier decimal.Decimal    `json:"twoMatchMultiplier"`
	MinStake           decimal.Decimal    `json:"minBet"`
	MaxStake           decimal.Decimal    `json:"maxBet"`
	TargetRTP          float64            `json:"targetRtp"`
}

type Cache interface {
	Get(ctx context.Context, gameCode string) (Config, error)
}
