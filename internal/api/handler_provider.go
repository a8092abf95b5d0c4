package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/spintech/slotbank/internal/repos/accounts"
	"github.com/spintech/slotbank/internal/repos/bets"
	"github.com/spintech/slotbank/internal/repos/gamecfg"
	"github.com/spintech/slotbank/internal/repos/ledger"
	"github.com/spintech/slotbank/internal/services/rtp"
	"github.com/spintech/slotbank/internal/services/wallet"
	"github.com/spintech/slotbank/pkg/redlock"
)

// HandlerProvider wraps the wallet and RTP services and exposes HTTP handlers.
type HandlerProvider struct {
	wallet *wallet.Service
	rtp    *rtp.Service
}

// NewHandler returns a new Handler provider.
func NewHandler(walletSvc *wallet.Service, rtpSvc *rtp.Service) *HandlerProvider {
	return &HandlerProvider{wallet: walletSvc, rtp: rtpSvc}
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to encode JSON response", "error", err)

		http.Error(w, `{"error":"internal json encode failure"}`, http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// parseAccountIDFromPath reads `{accountId}` from chi routes like:
//
//	GET  /accounts/{accountId}/balance
//	POST /accounts/{accountId}/bets
func parseAccountIDFromPath(r *http.Request) (int64, error) {
	idStr := chi.URLParam(r, "accountId")
	if idStr == "" {
		return 0, fmt.Errorf("missing accountId")
	}

	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid accountId: %w", err)
	}
	if id <= 0 {
		return 0, fmt.Errorf("invalid accountId: must be positive")
	}

	return id, nil
}

// parseAmount converts a decimal string with up to 2 fractional digits.
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("amount required")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount")
	}
	if d.Exponent() < -2 {
		return decimal.Zero, fmt.Errorf("amount supports up to 2 decimals")
	}

	return d, nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB cap
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(v)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("empty body")
		}

		return fmt.Errorf("invalid JSON")
	}

	return nil
}

// writeDomainError maps wallet/repo errors onto HTTP statuses; anything
// unmapped becomes a 500.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, redlock.ErrNotAcquired):
		writeError(w, http.StatusServiceUnavailable, "operation in progress, try again")
	case errors.Is(err, accounts.ErrAccountNotFound):
		writeError(w, http.StatusNotFound, "account not found")
	case errors.Is(err, gamecfg.ErrConfigNotFound):
		writeError(w, http.StatusNotFound, "game not found")
	case errors.Is(err, accounts.ErrInsufficientFunds):
		writeError(w, http.StatusConflict, "insufficient funds")
	case errors.Is(err, wallet.ErrNoBalanceToWithdraw):
		writeError(w, http.StatusConflict, "no balance to withdraw")
	case errors.Is(err, wallet.ErrStakeBelowMinimum):
		writeError(w, http.StatusUnprocessableEntity, "stake below minimum")
	case errors.Is(err, wallet.ErrStakeAboveMaximum):
		writeError(w, http.StatusUnprocessableEntity, "stake above maximum")
	case errors.Is(err, wallet.ErrAmountNotPositive):
		writeError(w, http.StatusUnprocessableEntity, "amount must be positive")
	default:
		slog.Error("unhandled service error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

type betRequest struct {
	GameCode string `json:"gameCode"`
	Stake    string `json:"stake"`
}

type amountRequest struct {
	Amount string `json:"amount"`
}

type betResponse struct {
	BetID         int64    `json:"betId"`
	Result        []string `json:"result"`
	Stake         string   `json:"stake"`
	Payout        string   `json:"payout"`
	Win           bool     `json:"win"`
	BalanceBefore string   `json:"balanceBefore"`
	BalanceAfter  string   `json:"balanceAfter"`
	Message       string   `json:"message"`
}

type betRecord struct {
	BetID     int64    `json:"betId"`
	GameCode  string   `json:"gameCode"`
	Stake     string   `json:"stake"`
	Payout    string   `json:"payout"`
	Win       bool     `json:"win"`
	Result    []string `json:"result"`
	CreatedAt string   `json:"createdAt"`
}

// --- Handlers ---

// RegisterHandler handles POST /accounts
func (h *HandlerProvider) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	acc, err := h.wallet.Register(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"accountId": acc.ID,
		"balance":   acc.Balance,
	})
}

// GetBalanceHandler handles GET /accounts/{accountId}/balance
func (h *HandlerProvider) GetBalanceHandler(w http.ResponseWriter, r *http.Request) {
	accountID, err := parseAccountIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid accountId in path")
		return
	}

	balance, err := h.wallet.GetBalance(r.Context(), accountID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"accountId": accountID,
		"balance":   balance.StringFixed(2),
	})
}

// DepositHandler handles POST /accounts/{accountId}/deposit
func (h *HandlerProvider) DepositHandler(w http.ResponseWriter, r *http.Request) {
	accountID, err := parseAccountIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid accountId in path")
		return
	}

	var req amountRequest

	err = decodeBody(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	amount, err := parseAmount(req.Amount)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	after, err := h.wallet.Deposit(r.Context(), accountID, amount)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"accountId": accountID,
		"balance":   after.StringFixed(2),
	})
}

// WithdrawAllHandler handles POST /accounts/{accountId}/withdrawals
func (h *HandlerProvider) WithdrawAllHandler(w http.ResponseWriter, r *http.Request) {
	accountID, err := parseAccountIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid accountId in path")
		return
	}

	withdrawn, err := h.wallet.WithdrawAll(r.Context(), accountID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"accountId": accountID,
		"withdrawn": withdrawn.StringFixed(2),
		"balance":   "0.00",
	})
}

// PlaceBetHandler handles POST /accounts/{accountId}/bets
func (h *HandlerProvider) PlaceBetHandler(w http.ResponseWriter, r *http.Request) {
	accountID, err := parseAccountIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid accountId in path")
		return
	}

	var req betRequest

	err = decodeBody(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if strings.TrimSpace(req.GameCode) == "" {
		writeError(w, http.StatusUnprocessableEntity, "gameCode required")
		return
	}

	stake, err := parseAmount(req.Stake)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	res, err := h.wallet.PlaceBet(r.Context(), accountID, req.GameCode, stake)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, betResponse{
		BetID:         res.BetID,
		Result:        res.Result,
		Stake:         res.Stake.StringFixed(2),
		Payout:        res.Payout.StringFixed(2),
		Win:           res.Win,
		BalanceBefore: res.BalanceBefore.StringFixed(2),
		BalanceAfter:  res.BalanceAfter.StringFixed(2),
		Message:       res.Message,
	})
}

// ListBetsHandler handles GET /accounts/{accountId}/bets
func (h *HandlerProvider) ListBetsHandler(w http.ResponseWriter, r *http.Request) {
	accountID, err := parseAccountIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid accountId in path")
		return
	}

	f, err := parseBetFilter(r)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	records, total, err := h.wallet.ListBets(r.Context(), accountID, f)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	out := make([]betRecord, 0, len(records))
	for _, b := range records {
		out = append(out, betRecord{
			BetID:     b.ID,
			GameCode:  b.GameCode,
			Stake:     b.Stake.StringFixed(2),
			Payout:    b.Payout.StringFixed(2),
			Win:       b.Win,
			Result:    b.Result,
			CreatedAt: b.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"accountId": accountID,
		"total":     total,
		"bets":      out,
	})
}

func parseBetFilter(r *http.Request) (bets.Filter, error) {
	q := r.URL.Query()

	var f bets.Filter

	f.GameCode = strings.TrimSpace(q.Get("gameCode"))

	if raw := q.Get("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return bets.Filter{}, fmt.Errorf("invalid from: expected RFC3339")
		}
		f.From = t
	}

	if raw := q.Get("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return bets.Filter{}, fmt.Errorf("invalid to: expected RFC3339")
		}
		f.To = t
	}

	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 1000 {
			return bets.Filter{}, fmt.Errorf("invalid limit")
		}
		f.Limit = n
	}

	if raw := q.Get("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return bets.Filter{}, fmt.Errorf("invalid offset")
		}
		f.Offset = n
	}

	return f, nil
}

type ledgerRecord struct {
	EventID       int64  `json:"eventId"`
	Kind          string `json:"kind"`
	Amount        string `json:"amount"`
	BalanceBefore string `json:"balanceBefore"`
	BalanceAfter  string `json:"balanceAfter"`
	Description   string `json:"description"`
	BetID         *int64 `json:"betId,omitempty"`
	CreatedAt     string `json:"createdAt"`
}

// ListLedgerHandler handles GET /accounts/{accountId}/ledger
func (h *HandlerProvider) ListLedgerHandler(w http.ResponseWriter, r *http.Request) {
	accountID, err := parseAccountIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid accountId in path")
		return
	}

	f, err := parseLedgerFilter(r)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	entries, total, err := h.wallet.ListLedger(r.Context(), accountID, f)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	out := make([]ledgerRecord, 0, len(entries))
	for _, e := range entries {
		out = append(out, ledgerRecord{
			EventID:       e.ID,
			Kind:          string(e.Kind),
			Amount:        e.Amount.StringFixed(2),
			BalanceBefore: e.BalanceBefore.StringFixed(2),
			BalanceAfter:  e.BalanceAfter.StringFixed(2),
			Description:   e.Description,
			BetID:         e.BetID,
			CreatedAt:     e.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"accountId": accountID,
		"total":     total,
		"entries":   out,
	})
}

func parseLedgerFilter(r *http.Request) (ledger.Filter, error) {
	q := r.URL.Query()

	var f ledger.Filter

	if raw := q.Get("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return ledger.Filter{}, fmt.Errorf("invalid from: expected RFC3339")
		}
		f.From = t
	}

	if raw := q.Get("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return ledger.Filter{}, fmt.Errorf("invalid to: expected RFC3339")
		}
		f.To = t
	}

	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 1000 {
			return ledger.Filter{}, fmt.Errorf("invalid limit")
		}
		f.Limit = n
	}

	if raw := q.Get("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return ledger.Filter{}, fmt.Errorf("invalid offset")
		}
		f.Offset = n
	}

	return f, nil
}

// RTPStatisticsHandler handles GET /games/{gameCode}/rtp
func (h *HandlerProvider) RTPStatisticsHandler(w http.ResponseWriter, r *http.Request) {
	gameCode := chi.URLParam(r, "gameCode")
	if gameCode == "" {
		writeError(w, http.StatusBadRequest, "missing gameCode")
		return
	}

	stats, err := h.rtp.Statistics(r.Context(), gameCode)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// RTPResetHandler handles DELETE /games/{gameCode}/rtp
func (h *HandlerProvider) RTPResetHandler(w http.ResponseWriter, r *http.Request) {
	gameCode := chi.URLParam(r, "gameCode")
	if gameCode == "" {
		writeError(w, http.StatusBadRequest, "missing gameCode")
		return
	}

	err := h.rtp.Reset(r.Context(), gameCode)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}
