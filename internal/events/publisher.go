package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/spintech/slotbank/internal/config"
	"github.com/spintech/slotbank/pkg/snowflake"
)

// Publisher emits ledger and stats messages after commit. Publication is
// asynchronous and best-effort: a failed send is logged and never rolls
// back or retries the already-committed mutation.
type Publisher struct {
	ledger *kafka.Writer
	stats  *kafka.Writer
	ids    *snowflake.Generator
}

func NewPublisher(cfg config.KafkaConfig, ids *snowflake.Generator) *Publisher {
	return &Publisher{
		ledger: newWriter(cfg.Brokers, cfg.LedgerTopic),
		stats:  newWriter(cfg.Brokers, cfg.StatsTopic),
		ids:    ids,
	}
}

func newWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		Async:        true,
		MaxAttempts:  3,
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				slog.Error("async publish failed", "topic", topic,
					"messages", len(messages), "error", err)
			}
		},
	}
}

// PublishLedger assigns the event id and sends the message. Keyed by
// account id so one account's events stay ordered within a partition.
func (p *Publisher) PublishLedger(ctx context.Context, msg LedgerMessage) {
	msg.EventID = p.ids.NextID()
	msg.CreatedAt = time.Now().UTC()

	payload, err := json.Marshal(msg)
	if err != nil {
		slog.Error("marshal ledger message", "error", err)
		return
	}

	err = p.ledger.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(msg.AccountID, 10)),
		Value: payload,
	})
	if err != nil {
		slog.Error("publish ledger message", "accountId", msg.AccountID,
			"kind", msg.Kind, "error", err)
	}
}

// PublishStats sends the per-bet RTP delta, keyed by game code.
func (p *Publisher) PublishStats(ctx context.Context, msg StatsMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		slog.Error("marshal stats message", "error", err)
		return
	}

	err = p.stats.WriteMessages(ctx, kafka.Message{
		Key:   []byte(msg.GameCode),
		Value: payload,
	})
	if err != nil {
		slog.Error("publish stats message", "gameCode", msg.GameCode, "error", err)
	}
}

// Close flushes both writers.
func (p *Publisher) Close() error {
	lerr := p.ledger.Close()
	serr := p.stats.Close()

	if lerr != nil {
		return lerr
	}

	return serr
}
