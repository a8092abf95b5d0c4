// Package rtp exposes the return-to-player aggregates: observed payout
// ratio versus the configured target, per game.
package rtp

import (
	"context"
	"fmt"
	"math"

	"github.com/spintech/slotbank/internal/repos/gamecfg"
)

// Status classifies how far the observed RTP drifted from the target.
type Status string

const (
	StatusOptimal Status = "OPTIMAL"
	StatusHigh    Status = "HIGH"
	StatusLow     Status = "LOW"

	// optimalBand is the tolerated drift in percentage points.
	optimalBand = 2.0
)

// Stats is the reporting view over one game's counters.
type Stats struct {
	GameCode    string  `json:"gameCode"`
	TargetRTP   float64 `json:"targetRtp"`
	ObservedRTP float64 `json:"observedRtp"`
	TotalBet    float64 `json:"totalBetAmount"`
	TotalWin    float64 `json:"totalWinAmount"`
	BetCount    int64   `json:"totalBetCount"`
	AverageBet  float64 `json:"averageBet"`
	AverageWin  float64 `json:"averageWin"`
	Difference  float64 `json:"rtpDifference"`
	Status      Status  `json:"rtpStatus"`
}

type Service struct {
	store *Store
	cfgs  gamecfg.Cache
}

func NewService(store *Store, cfgs gamecfg.Cache) *Service {
	return &Service{store: store, cfgs: cfgs}
}

// Statistics reads the counters and classifies the drift. Fails if the
// game is not configured.
func (s *Service) Statistics(ctx context.Context, gameCode string) (Stats, error) {
	cfg, err := s.cfgs.Get(ctx, gameCode)
	if err != nil {
		return Stats{}, fmt.Errorf("load game config: %w", err)
	}

	totalBet, totalWin, count, err := s.store.counters(ctx, gameCode)
	if err != nil {
		return Stats{}, err
	}

	var observed float64
	if totalBet > 0 {
		observed = totalWin / totalBet * 100
	}

	st := Stats{
		GameCode:    gameCode,
		TargetRTP:   cfg.TargetRTP,
		ObservedRTP: round2(observed),
		TotalBet:    round2(totalBet),
		TotalWin:    round2(totalWin),
		BetCount:    count,
		Difference:  round2(observed - cfg.TargetRTP),
	}

	if count > 0 {
		st.AverageBet = round2(totalBet / float64(count))
		st.AverageWin = round2(totalWin / float64(count))
	}

	st.Status = classify(observed - cfg.TargetRTP)

	return st, nil
}

// Reset clears one game's counters.
func (s *Service) Reset(ctx context.Context, gameCode string) error {
	return s.store.Reset(ctx, gameCode)
}

func classify(diff float64) Status {
	switch {
	case math.Abs(diff) <= optimalBand:
		return StatusOptimal
	case diff > optimalBand:
		return StatusHigh
	default:
		return StatusLow
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
