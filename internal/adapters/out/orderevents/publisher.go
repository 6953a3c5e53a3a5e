// Package orderevents publishes order lifecycle events to Kafka.
// Messages are keyed by order ID so all events for one order land in the
// same partition and keep their relative order.
package orderevents

import (
	"context"
	"encoding/json"

	"exchange/internal/core/ports"

	"github.com/segmentio/kafka-go"
)

var _ ports.OrderEventPublisher = (*KafkaPublisher)(nil)

// KafkaPublisher implements OrderEventPublisher on top of kafka-go writers,
// one per topic.
type KafkaPublisher struct {
	stateChangedWriter *kafka.Writer
	reminderWriter     *kafka.Writer
}

// NewKafkaPublisher creates a publisher for the given brokers and topics.
// Close must be called on shutdown to flush buffered messages.
func NewKafkaPublisher(brokers []string, stateChangedTopic, reminderTopic string) *KafkaPublisher {
	return &KafkaPublisher{
		stateChangedWriter: newWriter(brokers, stateChangedTopic),
		reminderWriter:     newWriter(brokers, reminderTopic),
	}
}

func newWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
}

// PublishStateChanged emits a state-changed event keyed by order ID.
func (p *KafkaPublisher) PublishStateChanged(ctx context.Context, event ports.OrderStateChangedEvent) error {
	return publish(ctx, p.stateChangedWriter, event.OrderID, event)
}

// PublishExpirationReminder emits a deadline-approaching event keyed by order ID.
func (p *KafkaPublisher) PublishExpirationReminder(
	ctx context.Context, event ports.OrderExpirationReminderEvent,
) error {
	return publish(ctx, p.reminderWriter, event.OrderID, event)
}

// Close flushes and closes both topic writers.
func (p *KafkaPublisher) Close() error {
	stateChangedErr := p.stateChangedWriter.Close()
	if reminderErr := p.reminderWriter.Close(); reminderErr != nil {
		return reminderErr
	}
	return stateChangedErr
}

func publish(ctx context.Context, writer *kafka.Writer, key string, event any) error {
	value, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: value,
	})
}
