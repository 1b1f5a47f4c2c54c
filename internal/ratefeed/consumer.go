package ratefeed

import (
	"context"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageReader is the part of *kafka.Reader the consumer uses.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// ReaderConfig selects the topic and consumer group.
type ReaderConfig struct {
	Brokers []string
	Topic   string
	GroupID string
}

// NewKafkaReader opens a group reader that starts at the newest offset, since
// only the latest rate matters to a fresh consumer group.
func NewKafkaReader(cfg ReaderConfig) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Brokers,
		Topic:          cfg.Topic,
		GroupID:        cfg.GroupID,
		StartOffset:    kafka.LastOffset,
		CommitInterval: time.Second,
		MaxBytes:       10e6,
	})
}

// Consumer reads ticks from Kafka and hands them to a Handler.
type Consumer struct {
	reader  MessageReader
	handler *Handler
	logger  *zap.Logger

	maxAttempts int
	backoff     time.Duration
}

// NewConsumer creates a Consumer. A nil logger discards output.
func NewConsumer(reader MessageReader, handler *Handler, logger *zap.Logger) *Consumer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Consumer{
		reader:      reader,
		handler:     handler,
		logger:      logger.Named("consumer"),
		maxAttempts: 3,
		backoff:     200 * time.Millisecond,
	}
}

// Run consumes until ctx is cancelled or the reader fails. Bad ticks are
// logged and committed; store failures are retried before being skipped.
// Buffered history is flushed on return.
func (c *Consumer) Run(ctx context.Context) error {
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := c.handler.Flush(flushCtx); err != nil {
			c.logger.Warn("final history flush failed", zap.Error(err))
		}
	}()

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		c.process(ctx, msg)

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Warn("commit failed", zap.Int64("offset", msg.Offset), zap.Error(err))
		}
	}
}

func (c *Consumer) process(ctx context.Context, msg kafka.Message) {
	tick, err := DecodeTick(msg.Value, msg.Time)
	if err != nil {
		c.handler.metrics.RecordTickError("decode")
		c.logger.Warn("dropping tick",
			zap.Int("partition", msg.Partition),
			zap.Int64("offset", msg.Offset),
			zap.Error(err),
		)
		return
	}

	for attempt := 1; ; attempt++ {
		err = c.handler.Handle(ctx, tick)
		if err == nil || errors.Is(err, ErrBadTick) || attempt >= c.maxAttempts || ctx.Err() != nil {
			break
		}
		select {
		case <-ctx.Done():
		case <-time.After(c.backoff * time.Duration(attempt)):
		}
	}
	if err != nil {
		c.logger.Error("tick not stored",
			zap.String("pair", tick.Pair),
			zap.Int64("offset", msg.Offset),
			zap.Error(err),
		)
	}
}

// Close closes the underlying reader.
func (c *Consumer) Close() error {
	return c.reader.Close()
}
