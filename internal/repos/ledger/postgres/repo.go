package ledger

import (
	"github.com/spintech/slotbank/internal/infra/dbrouter"
	"github.com/spintech/slotbank/internal/repos/ledger"
)

var _ ledger.Ledger = (*ledgerRepo)(nil)

type ledgerRepo struct{ router *dbrouter.Router }

func New(router *dbrouter.Router) *ledgerRepo {
	return &ledgerRepo{router: router}
}
