package gamecfg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/spintech/slotbank/internal/repos/gamecfg"
)

// SettingsKey is the redis hash holding one JSON document per game code.
const SettingsKey = "game:settings"

var _ gamecfg.Cache = (*cache)(nil)

type cache struct{ client *redis.Client }

func New(client *redis.Client) *cache {
	return &cache{client: client}
}

func (c *cache) Get(ctx context.Context, gameCode string) (gamecfg.Config, error) {
	raw, err := c.client.HGet(ctx, SettingsKey, gameCode).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return gamecfg.Config{}, gamecfg.ErrConfigNotFound
		}

		return gamecfg.Config{}, fmt.Errorf("hget %s/%s: %w", SettingsKey, gameCode, err)
	}

	var cfg gamecfg.Config

	err = json.Unmarshal([]byte(raw), &cfg)
	if err != nil {
		return gamecfg.Config{}, fmt.Errorf("decode game config %q: %w", gameCode, err)
	}

	// a config with no symbols cannot drive a spin
	if len(cfg.Symbols) == 0 {
		return gamecfg.Config{}, fmt.Errorf("game config %q: no symbols configured", gameCode)
	}

	cfg.GameCode = gameCode

	return cfg, nil
}

// Put publishes one game's settings document into the hash. The migrator
// uses it to mirror game_settings rows into redis.
func (c *cache) Put(ctx context.Context, gameCode string, settings []byte) error {
	err := c.client.HSet(ctx, SettingsKey, gameCode, settings).Err()
	if err != nil {
		return fmt.Errorf("hset %s/%s: %w", SettingsKey, gameCode, err)
	}

	return nil
}
