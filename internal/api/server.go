package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spintech/slotbank/internal/services/rtp"
	"github.com/spintech/slotbank/internal/services/wallet"
)

// NewServer creates and returns a configured *http.Server for the wallet API.
func NewServer(port uint16, walletSvc *wallet.Service, rtpSvc *rtp.Service) *http.Server {
	mux := NewRouter(walletSvc, rtpSvc)

	addr := fmt.Sprintf(":%d", port)

	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
