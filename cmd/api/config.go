package main

import (
	"log/slog"
	"time"

	"github.com/spintech/slotbank/internal/config"
)

type apiConfig struct {
	Port            uint16        `env:"API_PORT" default:"8080"`
	LogLevel        slog.Level    `env:"APP_LOG_LEVEL" default:"INFO"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" default:"15s"`
	MachineID       int64         `env:"MACHINE_ID" default:"0"`
	InitialBalance  string        `env:"INITIAL_BALANCE" default:"1000.00"`

	Postgres config.PostgresConfig
	Replica  config.ReplicaConfig
	Redis    config.RedisConfig
	Kafka    config.KafkaConfig
	Lock     config.LockConfig
}
