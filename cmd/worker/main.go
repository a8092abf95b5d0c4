package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/spintech/slotbank/internal/config"
	"github.com/spintech/slotbank/internal/events"
	"github.com/spintech/slotbank/internal/infra/dbrouter"
	"github.com/spintech/slotbank/internal/infra/logging"
	"github.com/spintech/slotbank/internal/infra/pgutils"
	"github.com/spintech/slotbank/internal/infra/redisutil"
	ledgerpg "github.com/spintech/slotbank/internal/repos/ledger/postgres"
	"github.com/spintech/slotbank/internal/services/rtp"
	"github.com/spintech/slotbank/pkg/envconf"
	"github.com/spintech/slotbank/pkg/shutdownqueue"
)

type workerConfig struct {
	LogLevel        slog.Level    `env:"APP_LOG_LEVEL" default:"INFO"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" default:"15s"`

	Postgres config.PostgresConfig
	Redis    config.RedisConfig
	Kafka    config.KafkaConfig
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error running worker: %v", err)
		//nolint:gocritic
		os.Exit(1)
	}
}

func run(ctx context.Context) (retErr error) {
	_ = godotenv.Load()

	cfg := new(workerConfig)

	err := envconf.Load(cfg)
	if err != nil {
		return fmt.Errorf("init config: %w", err)
	}

	logging.SetupJSON(cfg.LogLevel)

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		serr := shutdownqueue.Shutdown(shutdownCtx)
		if serr != nil {
			retErr = errors.Join(retErr, serr)
		}
	}()

	// --- Infra ---
	db, err := pgutils.OpenDB(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}

	shutdownqueue.Add(func(context.Context) error { return db.Close() })

	redisClient, err := redisutil.Connect(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}

	shutdownqueue.Add(func(context.Context) error { return redisClient.Close() })

	// Consumers always write; no replica here.
	router := dbrouter.New(db, nil)

	ledgerConsumer := events.NewLedgerConsumer(cfg.Kafka, ledgerpg.New(router))
	shutdownqueue.Add(func(context.Context) error { return ledgerConsumer.Close() })

	statsConsumer := events.NewStatsConsumer(cfg.Kafka, rtp.NewStore(redisClient))
	shutdownqueue.Add(func(context.Context) error { return statsConsumer.Close() })

	errCh := make(chan error, 2)

	go func() {
		errCh <- ledgerConsumer.Run(ctx)
	}()

	go func() {
		errCh <- statsConsumer.Run(ctx)
	}()

	slog.Info("Worker started")

	select {
	case <-ctx.Done():
		// graceful path; deferred shutdownqueue.Shutdown will run
		return nil
	case serr := <-errCh:
		if serr != nil {
			return fmt.Errorf("consumer error: %w", serr)
		}

		return nil
	}
}
