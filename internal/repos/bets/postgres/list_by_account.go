package bets

import (
	"context"
	"fmt"
	"strings"

	"github.com/spintech/slotbank/internal/repos/bets"
)

func (r *betsRepo) ListByAccount(ctx context.Context, accountID int64, f bets.Filter) ([]bets.Bet, int64, error) {
	db := r.router.DB(ctx, "ListByAccount")

	args := []any{accountID, f.From, f.To}
	where := `account_id = $1 AND created_at >= $2 AND created_at <= $3`

	if f.GameCode != "" {
		args = append(args, f.GameCode)
		where += fmt.Sprintf(` AND game_code = $%d`, len(args))
	}

	var total int64

	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bets WHERE `+where, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count bets: %w", err)
	}

	args = append(args, f.Limit, f.Offset)
	query := fmt.Sprintf(`
		SELECT id, account_id, stake, payout, is_win, result, game_code, created_at
		FROM bets
		WHERE %s
		ORDER BY id DESC
		LIMIT $%d OFFSET $%d
	`, where, len(args)-1, len(args))

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query bets: %w", err)
	}
	defer rows.Close()

	var out []bets.Bet

	for rows.Next() {
		var (
			b      bets.Bet
			result string
		)

		err = rows.Scan(&b.ID, &b.AccountID, &b.Stake, &b.Payout, &b.Win,
			&result, &b.GameCode, &b.CreatedAt)
		if err != nil {
			return nil, 0, fmt.Errorf("scan bet: %w", err)
		}

		if result != "" {
			b.Result = strings.Split(result, ",")
		}

		out = append(out, b)
	}

	err = rows.Err()
	if err != nil {
		return nil, 0, fmt.Errorf("iterate bets: %w", err)
	}

	return out, total, nil
}
