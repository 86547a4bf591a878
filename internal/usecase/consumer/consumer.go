package consumer

import (
	"context"
	"strconv"
	"time"

	commandv1 "github.com/chetanguptaa/kaleshi/internal/domain/command/v1"
	eventv1 "github.com/chetanguptaa/kaleshi/internal/domain/event/v1"
	ledgerv1 "github.com/chetanguptaa/kaleshi/internal/domain/ledger/v1"
	"github.com/chetanguptaa/kaleshi/internal/usecase/engine"
	"github.com/chetanguptaa/kaleshi/internal/usecase/views"
	"github.com/chetanguptaa/kaleshi/pkg/config"
	"github.com/chetanguptaa/kaleshi/pkg/errors"
	"github.com/chetanguptaa/kaleshi/pkg/logger"
	"github.com/chetanguptaa/kaleshi/pkg/redis"
	v9 "github.com/redis/go-redis/v9"
)

// Consumer pulls commands from the inbound stream as part of a consumer group
// and drives them through the engine. Delivery is at-least-once: an entry is
// acknowledged only after it executed, reached the ledger and its events were
// published. Poison entries are acknowledged immediately so they cannot wedge
// the stream.
type Consumer struct {
	client    redis.Client
	logger    logger.Interface
	engine    *engine.Engine
	ledger    ledgerv1.Log
	publisher eventv1.Publisher
	emitter   *views.Emitter
	cfg       config.EngineConfig

	now func() int64
}

// NewConsumer wires the ingestion pipeline.
func NewConsumer(
	client redis.Client,
	log logger.Interface,
	e *engine.Engine,
	ledgerLog ledgerv1.Log,
	publisher eventv1.Publisher,
	emitter *views.Emitter,
	cfg config.EngineConfig,
) *Consumer {
	return &Consumer{
		client:    client,
		logger:    log,
		engine:    e,
		ledger:    ledgerLog,
		publisher: publisher,
		emitter:   emitter,
		cfg:       cfg,
		now:       func() int64 { return time.Now().UnixMilli() },
	}
}

// EnsureGroup creates the consumer group, creating the stream with it when it
// does not exist yet. Safe to call when the group already exists.
func (c *Consumer) EnsureGroup(ctx context.Context) error {
	return c.client.XGroupCreateMkStream(ctx, c.cfg.CommandStream, c.cfg.Group, "0")
}

// ReclaimPending takes over entries that were delivered to a consumer with
// this name but never acknowledged, typically after a crash, and processes
// them before any new entries are read.
func (c *Consumer) ReclaimPending(ctx context.Context) error {
	start := "0-0"
	for {
		messages, next, err := c.client.XAutoClaim(ctx, &v9.XAutoClaimArgs{
			Stream:   c.cfg.CommandStream,
			Group:    c.cfg.Group,
			Consumer: c.cfg.ConsumerName,
			MinIdle:  c.cfg.ReclaimMinIdle,
			Start:    start,
			Count:    c.cfg.ReadCount,
		})
		if err != nil {
			return errors.WithCode(err, errors.StreamProcessingError)
		}

		for i := range messages {
			if err := c.processEntry(ctx, messages[i]); err != nil {
				return err
			}
		}

		if next == "0-0" || len(messages) == 0 {
			return nil
		}
		start = next
	}
}

// Run reads and processes commands until the context is cancelled. Retryable
// failures leave the entry pending and keep the loop going; the entry comes
// back through reclaim.
func (c *Consumer) Run(ctx context.Context) error {
	c.logger.Info("consumer started",
		logger.Field{Key: "stream", Value: c.cfg.CommandStream},
		logger.Field{Key: "group", Value: c.cfg.Group},
		logger.Field{Key: "consumer", Value: c.cfg.ConsumerName},
	)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		streams, err := c.client.XReadGroup(ctx, &v9.XReadGroupArgs{
			Group:    c.cfg.Group,
			Consumer: c.cfg.ConsumerName,
			Streams:  []string{c.cfg.CommandStream, ">"},
			Count:    c.cfg.ReadCount,
			Block:    c.cfg.ReadBlock,
		})
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.Error(err)
			if !c.client.Reconnect(ctx) {
				return errors.WithCode(err, errors.StreamProcessingError)
			}
			continue
		}

		for _, stream := range streams {
			for i := range stream.Messages {
				if err := c.processEntry(ctx, stream.Messages[i]); err != nil {
					c.logger.ErrorContext(ctx, err, logger.Field{Key: "stream_id", Value: stream.Messages[i].ID})
				}
			}
		}
	}
}

// processEntry runs one stream entry through parse, execute, ledger append,
// event publish and ack. A returned error means the entry was left pending
// for redelivery.
func (c *Consumer) processEntry(ctx context.Context, message v9.XMessage) error {
	ctx = logger.ContextWithEntryID(ctx, message.ID)

	cmd, err := commandv1.Parse(message.Values, message.ID)
	if err != nil {
		// Malformed forever: acknowledge so it cannot wedge the stream.
		c.logger.WarnContext(ctx, "discarding malformed command",
			logger.Field{Key: "reason", Value: err.Error()},
		)
		c.ack(ctx, message.ID)
		return nil
	}

	now := c.now()
	events, err := c.engine.Execute(ctx, cmd, now)
	if err != nil {
		if errors.IsRetryable(err) {
			return err
		}
		c.logger.ErrorContext(ctx, err)
		c.ack(ctx, message.ID)
		return nil
	}

	if _, err := c.ledger.AppendCommand(ctx, c.ledgerFields(message, cmd, now)); err != nil {
		return err
	}

	if err := c.publisher.PublishEvents(ctx, events); err != nil {
		// Events may be re-published on redelivery; trade and order ids are
		// deterministic so downstream can deduplicate.
		return err
	}

	c.emitViews(ctx, events)
	c.ack(ctx, message.ID)
	return nil
}

// ledgerFields copies the entry payload, pinning the resolved order id and
// the execution timestamp so replay reproduces this execution exactly.
func (c *Consumer) ledgerFields(message v9.XMessage, cmd *commandv1.Command, now int64) map[string]interface{} {
	fields := make(map[string]interface{}, len(message.Values)+2)
	for k, v := range message.Values {
		fields[k] = v
	}
	if cmd.Kind == commandv1.KindNewOrder {
		fields["order_id"] = cmd.Order.OrderID
	}
	fields["timestamp"] = strconv.FormatInt(now, 10)
	return fields
}

// emitViews publishes the projections affected by a command. Best effort: a
// failed view does not hold back the ack, the next command on the same book
// rebuilds it.
func (c *Consumer) emitViews(ctx context.Context, events []eventv1.Event) {
	if c.emitter == nil {
		return
	}

	outcomes := make(map[string]struct{})
	markets := make(map[uint32]struct{})
	for i := range events {
		switch {
		case events[i].Order != nil && events[i].Type != eventv1.TypeOrderRejected:
			outcomes[events[i].Order.OutcomeID] = struct{}{}
			markets[events[i].Order.MarketID] = struct{}{}
		case events[i].Trade != nil:
			outcomes[events[i].Trade.OutcomeID] = struct{}{}
			markets[events[i].Trade.MarketID] = struct{}{}
		}
	}

	for outcomeID := range outcomes {
		book, ok := c.engine.Book(outcomeID)
		if !ok {
			continue
		}
		if err := c.emitter.EmitBookDepth(ctx, book); err != nil {
			c.logger.ErrorContext(ctx, err, logger.Field{Key: "outcome_id", Value: outcomeID})
		}
	}
	for marketID := range markets {
		if err := c.emitter.EmitMarketData(ctx, c.engine, marketID); err != nil {
			c.logger.ErrorContext(ctx, err, logger.Field{Key: "market_id", Value: marketID})
		}
	}
}

func (c *Consumer) ack(ctx context.Context, id string) {
	if _, err := c.client.XAck(ctx, c.cfg.CommandStream, c.cfg.Group, id); err != nil {
		// The entry will be redelivered and reprocessed; deterministic ids
		// keep that harmless downstream.
		c.logger.ErrorContext(ctx, err, logger.Field{Key: "stream_id", Value: id})
	}
}
