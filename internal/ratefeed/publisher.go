package ratefeed

import (
	"context"
	"fmt"

	"github.com/segmentio/kafka-go"
)

// MessageWriter is the part of *kafka.Writer the publisher uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher writes ticks keyed by pair, so one pair's ticks stay ordered
// within a partition.
type Publisher struct {
	writer MessageWriter
}

// NewKafkaWriter creates a writer for topic that hashes keys onto partitions.
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
}

// NewPublisher creates a Publisher over w.
func NewPublisher(w MessageWriter) *Publisher {
	return &Publisher{writer: w}
}

// Publish validates and writes ticks.
func (p *Publisher) Publish(ctx context.Context, ticks ...Tick) error {
	msgs := make([]kafka.Message, 0, len(ticks))
	for _, t := range ticks {
		if err := t.Validate(); err != nil {
			return err
		}
		value, err := EncodeTick(t)
		if err != nil {
			return err
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(t.Pair),
			Value: value,
			Time:  t.TS,
		})
	}
	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write ticks: %w", err)
	}
	return nil
}

// Close closes the underlying writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
