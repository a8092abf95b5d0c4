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
	"github.com/spintech/slotbank/internal/repos/ledger"
)

// processBackoff paces retries of a message that failed to persist.
const processBackoff = time.Second

// LedgerConsumer persists one ledger row per message. A message that
// fails to persist is retried in place until it succeeds or the context
// ends; its offset is only committed after a successful insert, so a
// crash redelivers it — the idempotent insert absorbs the replay.
type LedgerConsumer struct {
	reader *kafka.Reader
	repo   ledger.Ledger
}

func NewLedgerConsumer(cfg config.KafkaConfig, repo ledger.Ledger) *LedgerConsumer {
	return &LedgerConsumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers: cfg.Brokers,
			Topic:   cfg.LedgerTopic,
			GroupID: cfg.Group,
		}),
		repo: repo,
	}
}

// Run consumes until ctx is canceled.
func (c *LedgerConsumer) Run(ctx context.Context) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}

			return fmt.Errorf("fetch ledger message: %w", err)
		}

		err = c.process(ctx, msg)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}

			return fmt.Errorf("process ledger message: %w", err)
		}

		err = c.reader.CommitMessages(ctx, msg)
		if err != nil {
			slog.Error("commit ledger offset", "error", err)
		}
	}
}

func (c *LedgerConsumer) process(ctx context.Context, msg kafka.Message) error {
	var m LedgerMessage

	err := json.Unmarshal(msg.Value, &m)
	if err != nil {
		// malformed payloads can never succeed; drop with a trace
		slog.Error("drop malformed ledger message", "offset", msg.Offset, "error", err)
		return nil
	}

	entry := ledger.Entry{
		ID:            m.EventID,
		AccountID:     m.AccountID,
		Kind:          ledger.Kind(m.Kind),
		Amount:        m.Amount,
		BalanceBefore: m.BalanceBefore,
		BalanceAfter:  m.BalanceAfter,
		Description:   m.Description,
		BetID:         m.BetID,
	}

	for {
		err = c.repo.Insert(ctx, entry)
		if err == nil {
			return nil
		}

		slog.Error("persist ledger entry, retrying", "eventId", m.EventID, "error", err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(processBackoff):
		}
	}
}

func (c *LedgerConsumer) Close() error {
	return c.reader.Close()
}
