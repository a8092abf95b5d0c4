package main

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spintech/slotbank/internal/config"
	"github.com/spintech/slotbank/internal/infra/logging"
	"github.com/spintech/slotbank/internal/infra/redisutil"
	gamecfgredis "github.com/spintech/slotbank/internal/repos/gamecfg/redis"
	"github.com/spintech/slotbank/pkg/envconf"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var baseFS embed.FS

//go:embed test_data/*.sql
var devFS embed.FS

type migratorConfig struct {
	DSN      string     `env:"PG_DSN"`
	LogLevel slog.Level `env:"APP_LOG_LEVEL" default:"INFO"`
	AppEnv   string     `env:"APP_ENV" default:""`

	Redis config.RedisConfig
}

func main() {
	err := migrateAll()
	if err != nil {
		slog.Error("migration run failed", "error", err)
		os.Exit(1)
	}

	slog.Info("migration run finished successfully")
}

func migrateAll() error {
	_ = godotenv.Load()

	cfg := new(migratorConfig)

	err := envconf.Load(cfg)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logging.SetupJSON(cfg.LogLevel)

	db, err := sql.Open("pgx", cfg.DSN)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	//nolint:errcheck
	defer db.Close()

	err = db.Ping()
	if err != nil {
		return fmt.Errorf("ping db: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("init postgres driver: %w", err)
	}

	err = runMigrations(driver, baseFS, "migrations")
	if err != nil {
		return fmt.Errorf("base migrations failed: %w", err)
	}

	slog.Info("base migrations applied")

	if cfg.AppEnv == "DEV" {
		err = runMigrations(driver, devFS, "test_data")
		if err != nil {
			return fmt.Errorf("dev seed migrations failed: %w", err)
		}

		slog.Info("dev seed migrations applied")
	}

	err = syncGameSettings(context.Background(), db, cfg.Redis)
	if err != nil {
		return fmt.Errorf("sync game settings to redis: %w", err)
	}

	return nil
}

// syncGameSettings mirrors the game_settings rows into the redis hash the
// services read from. Postgres stays the system of record; re-running the
// migrator republishes the current rows.
func syncGameSettings(ctx context.Context, db *sql.DB, redisCfg config.RedisConfig) error {
	client, err := redisutil.Connect(ctx, redisCfg)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	//nolint:errcheck
	defer client.Close()

	rows, err := db.QueryContext(ctx, `SELECT game_code, settings FROM game_settings`)
	if err != nil {
		return fmt.Errorf("query game settings: %w", err)
	}
	defer rows.Close()

	settings := gamecfgredis.New(client)

	var published int

	for rows.Next() {
		var (
			gameCode string
			doc      []byte
		)

		err = rows.Scan(&gameCode, &doc)
		if err != nil {
			return fmt.Errorf("scan game settings row: %w", err)
		}

		err = settings.Put(ctx, gameCode, doc)
		if err != nil {
			return fmt.Errorf("publish settings for %q: %w", gameCode, err)
		}

		published++
	}

	err = rows.Err()
	if err != nil {
		return fmt.Errorf("iterate game settings: %w", err)
	}

	slog.Info("game settings published to redis", "games", published)

	return nil
}

func runMigrations(driver database.Driver, fsys embed.FS, dir string) error {
	src, err := iofs.New(fsys, dir)
	if err != nil {
		return fmt.Errorf("iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return fmt.Errorf("migrate instance: %w", err)
	}

	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("m.Up: %w", err)
	}

	return nil
}
