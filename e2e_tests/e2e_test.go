package e2etests

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

// Expects the full stack (api, worker, postgres, redis, kafka) running
// with the DEV seed applied: account 1 holds 1000.00 and the "classic"
// game is configured with stakes 1.00..100.00.
const (
	baseURL   = "http://localhost:8080"
	timeout   = 5 * time.Second
	waitReady = 20 * time.Second
)

var httpClient = &http.Client{Timeout: timeout}

func TestE2E_WalletFlow(t *testing.T) {
	waitUntilReady(t)

	accountID := registerAccount(t)

	t.Run("fresh_account_has_initial_balance", func(t *testing.T) {
		got := getBalance(t, accountID)
		if !got.IsPositive() {
			t.Fatalf("fresh account balance: want > 0, got %s", got)
		}
	})

	t.Run("deposit_increases_balance", func(t *testing.T) {
		before := getBalance(t, accountID)

		code, body := postJSON(t, fmt.Sprintf("/accounts/%d/deposit", accountID),
			map[string]string{"amount": "25.50"})
		if code != http.StatusOK {
			t.Fatalf("deposit: want 200, got %d (%s)", code, body)
		}

		after := getBalance(t, accountID)
		if !after.Equal(before.Add(decimal.RequireFromString("25.50"))) {
			t.Fatalf("after deposit: want %s, got %s", before.Add(decimal.RequireFromString("25.50")), after)
		}
	})

	t.Run("bet_moves_balance_by_stake_minus_payout", func(t *testing.T) {
		before := getBalance(t, accountID)

		code, body := postJSON(t, fmt.Sprintf("/accounts/%d/bets", accountID),
			map[string]string{"gameCode": "classic", "stake": "10.00"})
		if code != http.StatusOK {
			t.Fatalf("bet: want 200, got %d (%s)", code, body)
		}

		var res struct {
			BetID         int64    `json:"betId"`
			Result        []string `json:"result"`
			Payout        string   `json:"payout"`
			BalanceBefore string   `json:"balanceBefore"`
			BalanceAfter  string   `json:"balanceAfter"`
		}

		err := json.Unmarshal([]byte(body), &res)
		if err != nil {
			t.Fatalf("decode bet response: %v", err)
		}

		if len(res.Result) != 3 {
			t.Fatalf("want 3 reel symbols, got %v", res.Result)
		}

		if res.BalanceBefore != before.StringFixed(2) {
			t.Fatalf("balanceBefore: want %s, got %s", before.StringFixed(2), res.BalanceBefore)
		}

		payout := decimal.RequireFromString(res.Payout)
		wantAfter := before.Sub(decimal.RequireFromString("10.00")).Add(payout)

		if res.BalanceAfter != wantAfter.StringFixed(2) {
			t.Fatalf("balanceAfter: want %s, got %s", wantAfter.StringFixed(2), res.BalanceAfter)
		}

		got := getBalance(t, accountID)
		if !got.Equal(wantAfter) {
			t.Fatalf("stored balance: want %s, got %s", wantAfter, got)
		}
	})

	t.Run("bet_appears_in_history", func(t *testing.T) {
		code, body := getPath(t, fmt.Sprintf("/accounts/%d/bets", accountID))
		if code != http.StatusOK {
			t.Fatalf("list bets: want 200, got %d (%s)", code, body)
		}

		var payload struct {
			Total int64             `json:"total"`
			Bets  []json.RawMessage `json:"bets"`
		}

		err := json.Unmarshal([]byte(body), &payload)
		if err != nil {
			t.Fatalf("decode list: %v", err)
		}

		if payload.Total < 1 || len(payload.Bets) < 1 {
			t.Fatalf("want at least one bet, got total=%d", payload.Total)
		}
	})

	t.Run("ledger_records_arrive_async", func(t *testing.T) {
		deadline := time.Now().Add(10 * time.Second)

		for {
			code, body := getPath(t, fmt.Sprintf("/accounts/%d/ledger", accountID))
			if code != http.StatusOK {
				t.Fatalf("list ledger: want 200, got %d (%s)", code, body)
			}

			var payload struct {
				Total int64 `json:"total"`
			}

			err := json.Unmarshal([]byte(body), &payload)
			if err != nil {
				t.Fatalf("decode ledger: %v", err)
			}

			// REGISTER + DEPOSIT + BET at minimum
			if payload.Total >= 3 {
				return
			}

			if time.Now().After(deadline) {
				t.Fatalf("ledger entries missing: got %d", payload.Total)
			}

			time.Sleep(300 * time.Millisecond)
		}
	})

	t.Run("withdraw_all_empties_account", func(t *testing.T) {
		code, body := postJSON(t, fmt.Sprintf("/accounts/%d/withdrawals", accountID), nil)
		if code != http.StatusOK {
			t.Fatalf("withdraw: want 200, got %d (%s)", code, body)
		}

		got := getBalance(t, accountID)
		if !got.IsZero() {
			t.Fatalf("after withdraw-all: want 0.00, got %s", got)
		}

		// nothing left to withdraw
		code, body = postJSON(t, fmt.Sprintf("/accounts/%d/withdrawals", accountID), nil)
		if code != http.StatusConflict {
			t.Fatalf("second withdraw: want 409, got %d (%s)", code, body)
		}
	})
}

func TestE2E_Validation(t *testing.T) {
	waitUntilReady(t)

	accountID := registerAccount(t)

	t.Run("stake_below_minimum", func(t *testing.T) {
		code, _ := postJSON(t, fmt.Sprintf("/accounts/%d/bets", accountID),
			map[string]string{"gameCode": "classic", "stake": "0.50"})
		if code != http.StatusUnprocessableEntity {
			t.Fatalf("low stake: want 422, got %d", code)
		}
	})

	t.Run("stake_above_maximum", func(t *testing.T) {
		code, _ := postJSON(t, fmt.Sprintf("/accounts/%d/bets", accountID),
			map[string]string{"gameCode": "classic", "stake": "100000.00"})
		if code != http.StatusUnprocessableEntity {
			t.Fatalf("high stake: want 422, got %d", code)
		}
	})

	t.Run("unknown_game", func(t *testing.T) {
		code, _ := postJSON(t, fmt.Sprintf("/accounts/%d/bets", accountID),
			map[string]string{"gameCode": "no-such-game", "stake": "10.00"})
		if code != http.StatusNotFound {
			t.Fatalf("unknown game: want 404, got %d", code)
		}
	})

	t.Run("bad_amount_precision", func(t *testing.T) {
		code, _ := postJSON(t, fmt.Sprintf("/accounts/%d/deposit", accountID),
			map[string]string{"amount": "1.234"})
		if code != http.StatusUnprocessableEntity {
			t.Fatalf("bad precision: want 422, got %d", code)
		}
	})

	t.Run("negative_deposit", func(t *testing.T) {
		code, _ := postJSON(t, fmt.Sprintf("/accounts/%d/deposit", accountID),
			map[string]string{"amount": "-5.00"})
		if code != http.StatusUnprocessableEntity {
			t.Fatalf("negative deposit: want 422, got %d", code)
		}
	})

	t.Run("unknown_account", func(t *testing.T) {
		code, _ := getPath(t, "/accounts/123456789/balance")
		if code != http.StatusNotFound {
			t.Fatalf("unknown account: want 404, got %d", code)
		}
	})
}

func TestE2E_RTPStatistics(t *testing.T) {
	waitUntilReady(t)

	accountID := registerAccount(t)

	// a few bets so the counters move
	for range 3 {
		code, body := postJSON(t, fmt.Sprintf("/accounts/%d/bets", accountID),
			map[string]string{"gameCode": "classic", "stake": "5.00"})
		if code != http.StatusOK {
			t.Fatalf("bet: want 200, got %d (%s)", code, body)
		}
	}

	// counters are folded in by the worker asynchronously
	deadline := time.Now().Add(10 * time.Second)

	for {
		code, body := getPath(t, "/games/classic/rtp")
		if code != http.StatusOK {
			t.Fatalf("rtp: want 200, got %d (%s)", code, body)
		}

		var stats struct {
			GameCode string  `json:"gameCode"`
			TotalBet float64 `json:"totalBetAmount"`
			BetCount int64   `json:"totalBetCount"`
			Status   string  `json:"rtpStatus"`
		}

		err := json.Unmarshal([]byte(body), &stats)
		if err != nil {
			t.Fatalf("decode rtp: %v", err)
		}

		if stats.BetCount >= 3 {
			if stats.GameCode != "classic" {
				t.Fatalf("gameCode: want classic, got %s", stats.GameCode)
			}

			switch stats.Status {
			case "OPTIMAL", "HIGH", "LOW":
			default:
				t.Fatalf("unexpected rtp status %q", stats.Status)
			}

			break
		}

		if time.Now().After(deadline) {
			t.Fatalf("rtp counters never reached 3 bets: %+v", stats)
		}

		time.Sleep(300 * time.Millisecond)
	}

	code, body := doRequest(t, http.MethodDelete, "/games/classic/rtp", nil)
	if code != http.StatusOK {
		t.Fatalf("rtp reset: want 200, got %d (%s)", code, body)
	}
}

/* -------------------- helpers -------------------- */

func registerAccount(t *testing.T) int64 {
	t.Helper()

	code, body := postJSON(t, "/accounts", nil)
	if code != http.StatusCreated {
		t.Fatalf("register: want 201, got %d (%s)", code, body)
	}

	var payload struct {
		AccountID int64  `json:"accountId"`
		Balance   string `json:"balance"`
	}

	err := json.Unmarshal([]byte(body), &payload)
	if err != nil {
		t.Fatalf("decode register: %v", err)
	}

	if payload.AccountID == 0 {
		t.Fatalf("register returned zero account id (%s)", body)
	}

	return payload.AccountID
}

func getBalance(t *testing.T, accountID int64) decimal.Decimal {
	t.Helper()

	code, body := getPath(t, fmt.Sprintf("/accounts/%d/balance", accountID))
	if code != http.StatusOK {
		t.Fatalf("get balance: want 200, got %d (%s)", code, body)
	}

	var payload struct {
		AccountID int64  `json:"accountId"`
		Balance   string `json:"balance"`
	}

	err := json.Unmarshal([]byte(body), &payload)
	if err != nil {
		t.Fatalf("decode balance: %v", err)
	}

	if payload.AccountID != accountID {
		t.Fatalf("accountId mismatch: want %d, got %d", accountID, payload.AccountID)
	}

	return decimal.RequireFromString(payload.Balance)
}

func getPath(t *testing.T, path string) (int, string) {
	t.Helper()
	return doRequest(t, http.MethodGet, path, nil)
}

func postJSON(t *testing.T, path string, body map[string]string) (int, string) {
	t.Helper()

	var data []byte

	if body != nil {
		var err error

		data, err = json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
	}

	return doRequest(t, http.MethodPost, path, data)
}

func doRequest(t *testing.T, method, path string, body []byte) (int, string) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequest(method, baseURL+path, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	b, _ := io.ReadAll(resp.Body)

	return resp.StatusCode, string(b)
}

// waitUntilReady polls /healthz until the API answers or the deadline hits.
func waitUntilReady(t *testing.T) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), waitReady)
	defer cancel()

	tick := time.NewTicker(200 * time.Millisecond)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			t.Skipf("service not ready at %s within %s", baseURL, waitReady)
		case <-tick.C:
			resp, err := httpClient.Get(baseURL + "/healthz")
			if err != nil {
				if strings.Contains(err.Error(), "connection refused") {
					continue
				}

				continue
			}

			_ = resp.Body.Close()

			if resp.StatusCode == http.StatusOK {
				return
			}
		}
	}
}
