package wallet

import "errors"

var (
	// ErrStakeBelowMinimum and ErrStakeAboveMaximum reject stakes outside
	// the game's configured bounds before any mutation.
	ErrStakeBelowMinimum = errors.New("stake below configured minimum")
	ErrStakeAboveMaximum = errors.New("stake above configured maximum")

	// ErrAmountNotPositive rejects non-positive deposit amounts.
	ErrAmountNotPositive = errors.New("amount must be positive")

	// ErrNoBalanceToWithdraw rejects withdraw-all on an empty wallet.
	ErrNoBalanceToWithdraw = errors.New("no balance to withdraw")
)
