package accounts

import (
	"github.com/spintech/slotbank/internal/infra/dbrouter"
	"github.com/spintech/slotbank/internal/repos/accounts"
)

var _ accounts.Accounts = (*accountsRepo)(nil)

type accountsRepo struct{ router *dbrouter.Router }

func New(router *dbrouter.Router) *accountsRepo {
	return &accountsRepo{router: router}
}
