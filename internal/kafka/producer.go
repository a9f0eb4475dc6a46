package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer owns one writer for the whole process. A writer that failed is closed
// and dropped so the next Publish dials a fresh one.
type Producer struct {
	brokers   []string
	newWriter func() messageWriter

	mu     sync.Mutex
	writer messageWriter
}

func NewProducer(brokers []string) *Producer {
	p := &Producer{brokers: brokers}
	p.newWriter = func() messageWriter {
		return &kafka.Writer{
			Addr:         kafka.TCP(p.brokers...),
			Balancer:     &kafka.Hash{},
			BatchTimeout: 10 * time.Millisecond,
			RequiredAcks: kafka.RequireAll,
			MaxAttempts:  1,
			Async:        false,
		}
	}
	return p
}

// Publish writes payload as JSON and returns once the broker acknowledged it.
// A non-nil error means the broker did not accept the message; Publish does not retry.
func (p *Producer) Publish(ctx context.Context, topic, key string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	return p.publishRaw(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
		Time:  time.Now(),
	})
}

func (p *Producer) publishRaw(ctx context.Context, message kafka.Message) error {
	w := p.acquire()
	if err := w.WriteMessages(ctx, message); err != nil {
		if !isContextError(ctx, err) {
			p.reset(w)
		}
		return fmt.Errorf("failed to write message to Kafka: %w", err)
	}

	log.Debug().Str("topic", message.Topic).Str("key", string(message.Key)).Msg("published to kafka")
	return nil
}

func (p *Producer) acquire() messageWriter {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.writer == nil {
		p.writer = p.newWriter()
	}
	return p.writer
}

func (p *Producer) reset(failed messageWriter) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.writer != failed {
		return
	}
	if err := p.writer.Close(); err != nil {
		log.Warn().Err(err).Msg("close kafka writer")
	}
	p.writer = nil
}

func (p *Producer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.writer == nil {
		return nil
	}
	err := p.writer.Close()
	p.writer = nil
	return err
}

func isContextError(ctx context.Context, err error) bool {
	return ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
