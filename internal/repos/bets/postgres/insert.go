package bets

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/spintech/slotbank/internal/repos/bets"
)

func (r *betsRepo) Insert(tx *sql.Tx, bet bets.Bet) error {
	_, err := tx.Exec(`
		INSERT INTO bets (id, account_id, stake, payout, is_win, result, game_code)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, bet.ID, bet.AccountID, bet.Stake, bet.Payout, bet.Win,
		strings.Join(bet.Result, ","), bet.GameCode)
	if err != nil {
		return fmt.Errorf("insert bet: %w", err)
	}

	return nil
}
