package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/spintech/slotbank/internal/api"
	"github.com/spintech/slotbank/internal/events"
	"github.com/spintech/slotbank/internal/infra/dbrouter"
	"github.com/spintech/slotbank/internal/infra/logging"
	"github.com/spintech/slotbank/internal/infra/pgutils"
	"github.com/spintech/slotbank/internal/infra/redisutil"
	accountspg "github.com/spintech/slotbank/internal/repos/accounts/postgres"
	betspg "github.com/spintech/slotbank/internal/repos/bets/postgres"
	gamecfgredis "github.com/spintech/slotbank/internal/repos/gamecfg/redis"
	ledgerpg "github.com/spintech/slotbank/internal/repos/ledger/postgres"
	"github.com/spintech/slotbank/internal/services/rtp"
	"github.com/spintech/slotbank/internal/services/wallet"
	"github.com/spintech/slotbank/pkg/envconf"
	"github.com/spintech/slotbank/pkg/redlock"
	"github.com/spintech/slotbank/pkg/shutdownqueue"
	"github.com/spintech/slotbank/pkg/snowflake"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error running api: %v", err)
		//nolint:gocritic
		os.Exit(1)
	}
}

func run(ctx context.Context) (retErr error) {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg := new(apiConfig)

	err := envconf.Load(cfg)
	if err != nil {
		return fmt.Errorf("init config: %w", err)
	}

	logging.SetupJSON(cfg.LogLevel)

	initialBalance, err := decimal.NewFromString(cfg.InitialBalance)
	if err != nil {
		return fmt.Errorf("parse INITIAL_BALANCE: %w", err)
	}

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		serr := shutdownqueue.Shutdown(shutdownCtx)
		if serr != nil {
			retErr = errors.Join(retErr, serr)
		}
	}()

	// --- Infra ---
	primary, err := pgutils.OpenDB(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("open primary db: %w", err)
	}

	shutdownqueue.Add(func(context.Context) error { return primary.Close() })

	var replica *sql.DB

	if cfg.Replica.DSN != "" {
		replicaCfg := cfg.Postgres
		replicaCfg.DSN = cfg.Replica.DSN

		replica, err = pgutils.OpenDB(ctx, replicaCfg)
		if err != nil {
			return fmt.Errorf("open replica db: %w", err)
		}

		shutdownqueue.Add(func(context.Context) error { return replica.Close() })
	}

	router := dbrouter.New(primary, replica)

	redisClient, err := redisutil.Connect(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}

	shutdownqueue.Add(func(context.Context) error { return redisClient.Close() })

	ids, err := snowflake.New(cfg.MachineID)
	if err != nil {
		return fmt.Errorf("init id generator: %w", err)
	}

	publisher := events.NewPublisher(cfg.Kafka, ids)
	shutdownqueue.Add(func(context.Context) error { return publisher.Close() })

	// --- Services ---
	configs := gamecfgredis.New(redisClient)

	walletSvc := wallet.New(wallet.Options{
		Router:         router,
		Accounts:       accountspg.New(router),
		Bets:           betspg.New(router),
		Ledger:         ledgerpg.New(router),
		Configs:        configs,
		Locker:         redlock.New(redisClient, cfg.Lock.MaxRetries),
		Publisher:      publisher,
		IDs:            ids,
		LockTTL:        cfg.Lock.TTL,
		InitialBalance: initialBalance,
	})

	rtpSvc := rtp.NewService(rtp.NewStore(redisClient), configs)

	// --- HTTP server ---
	srv := api.NewServer(cfg.Port, walletSvc, rtpSvc)

	// Register HTTP server graceful shutdown
	shutdownqueue.Add(func(c context.Context) error {
		slog.Info("Shut down server")

		err := srv.Shutdown(c)
		if err != nil {
			return fmt.Errorf("shutdown srv: %w", err)
		}

		return nil
	})

	// Run server
	errCh := make(chan error, 1)

	go func() {
		serr := srv.ListenAndServe()
		// http.ErrServerClosed is the normal path during Shutdown
		if serr != nil && !errors.Is(serr, http.ErrServerClosed) {
			errCh <- serr
			return
		}

		errCh <- nil
	}()

	slog.Info("API started", "port", cfg.Port)

	// --- Wait until either context cancels or server errors out ---
	select {
	case <-ctx.Done():
		// graceful path; deferred shutdownqueue.Shutdown will run
		return nil
	case serr := <-errCh:
		if serr != nil {
			return fmt.Errorf("server error: %w", serr)
		}

		return nil
	}
}
