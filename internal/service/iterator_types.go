package service

import (
	"context"

	"github.com/segmentio/kafka-go"
)

// MessageIterator defines the contract for consuming messages from a Kafka
// topic. *kafkaclient.KafkaConsumer implements it.
type MessageIterator interface {
	// Messages returns a receive-only channel that is closed when the
	// consumer stops.
	Messages() <-chan kafka.Message

	// CommitOffset acknowledges that a message has been processed.
	CommitOffset(ctx context.Context, msg kafka.Message) error
}

// DecodeFunc turns a raw message into a value of type T.
type DecodeFunc[T any] func(msg kafka.Message) (T, error)

// Delivery pairs a decoded value with the message it came from.
type Delivery[T any] struct {
	Data    T
	Message kafka.Message
}
