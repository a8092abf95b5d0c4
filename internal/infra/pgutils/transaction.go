package pgutils

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/spintech/slotbank/internal/infra/dbrouter"
)

// WithTx runs fn inside a transaction on db.
// It commits if fn returns nil, otherwise it rolls back.
// The context passed to fn carries an explicit-transaction routing mark.
func WithTx(ctx context.Context, db *sql.DB, fn func(ctx context.Context, tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil) // default isolation level
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	err = fn(dbrouter.WithTx(ctx, false), tx)
	if err != nil {
		rbErr := tx.Rollback()
		if rbErr != nil {
			return fmt.Errorf("rollback after fn error: %v (fn err: %w)", rbErr, err)
		}
		return fmt.Errorf("fn: %w", err)
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}
