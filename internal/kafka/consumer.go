package kafka

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
)

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Handler func(context.Context, kafka.Message) error

type ConsumerOption func(*Consumer)

// WithDeadLetter forwards messages the handler rejected to topic before they are committed.
func WithDeadLetter(producer *Producer, topic string) ConsumerOption {
	return func(c *Consumer) {
		c.deadLetter = producer
		c.deadLetterTopic = topic
	}
}

// Consumer drains one topic, one message at a time. Every fetched message is
// committed exactly once after handling: a failed message is never requeued.
type Consumer struct {
	newReader       func() messageReader
	deadLetter      *Producer
	deadLetterTopic string
	minBackoff      time.Duration
	maxBackoff      time.Duration

	mu     sync.Mutex
	reader messageReader
}

func NewConsumer(brokers []string, groupID, topic string, opts ...ConsumerOption) *Consumer {
	c := &Consumer{
		newReader: func() messageReader {
			return kafka.NewReader(kafka.ReaderConfig{
				Brokers:           brokers,
				GroupID:           groupID,
				Topic:             topic,
				StartOffset:       kafka.FirstOffset,
				HeartbeatInterval: 3 * time.Second,
				SessionTimeout:    30 * time.Second,
			})
		},
		minBackoff: time.Second,
		maxBackoff: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Consumer) Close() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.reader == nil {
		return nil
	}
	err := c.reader.Close()
	c.reader = nil
	return err
}

// Consume blocks until ctx is done. Broker errors drop the reader and reconnect with backoff.
func (c *Consumer) Consume(ctx context.Context, handler Handler) error {
	backoff := c.minBackoff
	for {
		r := c.acquire()
		msg, err := r.FetchMessage(ctx)
		if err != nil {
			if isContextError(ctx, err) {
				return ctx.Err()
			}
			log.Error().Err(err).Dur("backoff", backoff).Msg("kafka fetch failed, reconnecting")
			c.reset(r)
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			backoff = min(backoff*2, c.maxBackoff)
			continue
		}
		backoff = c.minBackoff

		if err := handler(ctx, msg); err != nil {
			log.Error().Err(err).
				Str("topic", msg.Topic).
				Int("partition", msg.Partition).
				Int64("offset", msg.Offset).
				Msg("message rejected, not requeued")
			c.forwardToDeadLetter(ctx, msg, err)
		}

		if err := r.CommitMessages(ctx, msg); err != nil {
			if isContextError(ctx, err) {
				return ctx.Err()
			}
			// the uncommitted message may be delivered again after rebalance
			log.Error().Err(err).Int64("offset", msg.Offset).Msg("kafka commit failed")
			c.reset(r)
		}
	}
}

func (c *Consumer) forwardToDeadLetter(ctx context.Context, msg kafka.Message, cause error) {
	if c.deadLetter == nil || c.deadLetterTopic == "" {
		return
	}

	err := c.deadLetter.publishRaw(ctx, kafka.Message{
		Topic: c.deadLetterTopic,
		Key:   msg.Key,
		Value: msg.Value,
		Headers: append(msg.Headers,
			kafka.Header{Key: "x-original-topic", Value: []byte(msg.Topic)},
			kafka.Header{Key: "x-error", Value: []byte(cause.Error())},
		),
		Time: time.Now(),
	})
	if err != nil {
		log.Error().Err(err).Str("topic", c.deadLetterTopic).Msg("dead letter publish failed")
	}
}

func (c *Consumer) acquire() messageReader {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.reader == nil {
		c.reader = c.newReader()
	}
	return c.reader
}

func (c *Consumer) reset(failed messageReader) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.reader != failed {
		return
	}
	if err := c.reader.Close(); err != nil && !errors.Is(err, context.Canceled) {
		log.Warn().Err(err).Msg("close kafka reader")
	}
	c.reader = nil
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
