package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/spintech/slotbank/internal/config"
	"github.com/spintech/slotbank/internal/services/rtp"
)

// StatsConsumer folds per-bet deltas into the RTP counters. Increments
// are atomic on the store side, so redelivered messages are the only
// source of drift — acceptable for an advisory aggregate.
type StatsConsumer struct {
	reader *kafka.Reader
	store  *rtp.Store
}

func NewStatsConsumer(cfg config.KafkaConfig, store *rtp.Store) *StatsConsumer {
	return &StatsConsumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers: cfg.Brokers,
			Topic:   cfg.StatsTopic,
			GroupID: cfg.Group,
		}),
		store: store,
	}
}

// Run consumes until ctx is canceled.
func (c *StatsConsumer) Run(ctx context.Context) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}

			return fmt.Errorf("fetch stats message: %w", err)
		}

		var m StatsMessage

		err = json.Unmarshal(msg.Value, &m)
		if err != nil {
			slog.Error("drop malformed stats message", "offset", msg.Offset, "error", err)
		} else {
			err = c.apply(ctx, m)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}

				return fmt.Errorf("apply stats message: %w", err)
			}
		}

		err = c.reader.CommitMessages(ctx, msg)
		if err != nil {
			slog.Error("commit stats offset", "error", err)
		}
	}
}

func (c *StatsConsumer) apply(ctx context.Context, m StatsMessage) error {
	for {
		err := c.store.Apply(ctx, m.GameCode, m.Stake, m.Payout)
		if err == nil {
			return nil
		}

		slog.Error("apply rtp delta, retrying", "gameCode", m.GameCode, "error", err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(processBackoff):
		}
	}
}

func (c *StatsConsumer) Close() error {
	return c.reader.Close()
}
