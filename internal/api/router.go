package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/spintech/slotbank/internal/services/rtp"
	"github.com/spintech/slotbank/internal/services/wallet"
)

// NewRouter constructs the http.Handler with all API endpoints registered.
func NewRouter(walletSvc *wallet.Service, rtpSvc *rtp.Service) http.Handler {
	h := NewHandler(walletSvc, rtpSvc)
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/accounts", func(r chi.Router) {
		r.Post("/", h.RegisterHandler)
		r.Get("/{accountId}/balance", h.GetBalanceHandler)
		r.Post("/{accountId}/deposit", h.DepositHandler)
		r.Post("/{accountId}/withdrawals", h.WithdrawAllHandler)
		r.Post("/{accountId}/bets", h.PlaceBetHandler)
		r.Get("/{accountId}/bets", h.ListBetsHandler)
		r.Get("/{accountId}/ledger", h.ListLedgerHandler)
	})

	r.Route("/games/{gameCode}/rtp", func(r chi.Router) {
		r.Get("/", h.RTPStatisticsHandler)
		r.Delete("/", h.RTPResetHandler)
	})

	return r
}
