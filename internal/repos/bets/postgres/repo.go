package bets

import (
	"github.com/spintech/slotbank/internal/infra/dbrouter"
	"github.com/spintech/slotbank/internal/repos/bets"
)

var _ bets.Bets = (*betsRepo)(nil)

type betsRepo struct{ router *dbrouter.Router }

func New(router *dbrouter.Router) *betsRepo {
	return &betsRepo{router: router}
}
