package eventpublisher

import (
	"context"
	"encoding/json"

	eventv1 "github.com/chetanguptaa/kaleshi/internal/domain/event/v1"
	"github.com/chetanguptaa/kaleshi/pkg/config"
	"github.com/chetanguptaa/kaleshi/pkg/errors"
	"github.com/chetanguptaa/kaleshi/pkg/logger"
	"github.com/segmentio/kafka-go"
)

var _ eventv1.Publisher = (*Publisher)(nil)

// Publisher delivers business events to Kafka. Events from one command are
// written in a single batch, keyed by outcome so per-outcome ordering is
// preserved across partitions.
type Publisher struct {
	kafkaWriter *kafka.Writer
	logger      logger.Interface
}

// NewPublisher creates a Kafka publisher for business events.
func NewPublisher(cfg config.KafkaConfig, log logger.Interface) *Publisher {
	kafkaWriter := kafka.NewWriter(kafka.WriterConfig{
		Brokers:  cfg.Brokers,
		Topic:    cfg.Topic,
		Balancer: &kafka.Hash{},
	})

	return &Publisher{
		kafkaWriter: kafkaWriter,
		logger:      log,
	}
}

// PublishEvents writes the events of one command as a single batch.
func (p *Publisher) PublishEvents(ctx context.Context, events []eventv1.Event) error {
	if len(events) == 0 {
		return nil
	}

	messages := make([]kafka.Message, 0, len(events))
	for i := range events {
		payload, err := json.Marshal(&events[i])
		if err != nil {
			return errors.WithCode(err, errors.StreamProcessingError)
		}
		messages = append(messages, kafka.Message{
			Key:   []byte(eventKey(&events[i])),
			Value: payload,
		})
	}

	if err := p.kafkaWriter.WriteMessages(ctx, messages...); err != nil {
		p.logger.ErrorContext(ctx, err, logger.Field{Key: "events", Value: len(events)})
		return errors.WithCode(err, errors.StreamProcessingError)
	}
	return nil
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	return p.kafkaWriter.Close()
}

func eventKey(event *eventv1.Event) string {
	switch {
	case event.Trade != nil:
		return event.Trade.OutcomeID
	case event.Order != nil:
		return event.Order.OutcomeID
	}
	return string(event.Type)
}
