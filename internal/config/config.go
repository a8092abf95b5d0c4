package config

import "time"

// PostgresConfig describes one physical store. The API wires two of
// these: the write-capable primary and a read-only replica.
type PostgresConfig struct {
	DSN             string        `env:"PG_DSN"`
	MaxOpenConns    int           `env:"PG_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `env:"PG_MAX_IDLE_CONNS" default:"10"`
	ConnMaxIdleTime time.Duration `env:"PG_CONN_MAX_IDLE_TIME" default:"5m"`
	ConnMaxLifetime time.Duration `env:"PG_CONN_MAX_LIFETIME" default:"30m"`
}

// ReplicaConfig is the replica DSN. Empty means no replica; all reads
// fall back to the primary.
type ReplicaConfig struct {
	DSN string `env:"PG_REPLICA_DSN" default:""`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR" default:"localhost:6379"`
	Password string `env:"REDIS_PASSWORD" default:""`
	DB       int    `env:"REDIS_DB" default:"0"`
}

type KafkaConfig struct {
	Brokers     []string `env:"KAFKA_BROKERS" default:"localhost:9092"`
	LedgerTopic string   `env:"KAFKA_LEDGER_TOPIC" default:"wallet.ledger"`
	StatsTopic  string   `env:"KAFKA_STATS_TOPIC" default:"wallet.rtp"`
	Group       string   `env:"KAFKA_CONSUMER_GROUP" default:"slotbank-workers"`
}

// LockConfig bounds distributed-lock acquisition.
type LockConfig struct {
	TTL        time.Duration `env:"LOCK_TTL" default:"30s"`
	MaxRetries int           `env:"LOCK_MAX_RETRIES" default:"3"`
}
