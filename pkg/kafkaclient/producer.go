package kafkaclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// MessageWriter is implemented by *kafka.Writer.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes JSON payloads to one topic.
type Producer struct {
	writer MessageWriter
}

// NewProducer returns a producer that hashes keys onto partitions, so
// messages sharing a key stay ordered.
func NewProducer(broker, topic string) (*Producer, error) {
	if broker == "" || topic == "" {
		return nil, errors.New("kafka producer needs a broker and a topic")
	}
	return &Producer{writer: &kafka.Writer{
		Addr:                   kafka.TCP(broker),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		BatchTimeout:           50 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}}, nil
}

// NewProducerWithWriter wraps an existing writer.
func NewProducerWithWriter(w MessageWriter) *Producer {
	return &Producer{writer: w}
}

// PublishJSON marshals v and writes it under key.
func (p *Producer) PublishJSON(ctx context.Context, key string, v any) error {
	value, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal message %s: %w", key, err)
	}
	msg := kafka.Message{
		Key:   []byte(key),
		Value: value,
		Time:  time.Now(),
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write message %s: %w", key, err)
	}
	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
