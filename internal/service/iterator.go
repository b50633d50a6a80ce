// Package service adapts a Kafka message source into a stream of decoded
// work items whose offsets are committed once the caller is done with them.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/segmentio/kafka-go"
)

// Iterator decodes messages from a MessageIterator into values of type T.
// It does not manage the lifecycle of the underlying consumer.
type Iterator[T any] struct {
	msgIterator MessageIterator
	decode      DecodeFunc[T]
}

func NewIterator[T any](iterator MessageIterator, decode DecodeFunc[T]) *Iterator[T] {
	return &Iterator[T]{
		msgIterator: iterator,
		decode:      decode,
	}
}

// JSONDecoder decodes the message value as JSON.
func JSONDecoder[T any]() DecodeFunc[T] {
	return func(msg kafka.Message) (T, error) {
		var v T
		if err := json.Unmarshal(msg.Value, &v); err != nil {
			return v, fmt.Errorf("decode message at offset %d: %w", msg.Offset, err)
		}
		return v, nil
	}
}

// Objects streams decoded deliveries until the message channel closes or
// ctx is cancelled. Messages that fail to decode are logged and committed so
// they are not redelivered; decoded ones are committed by Commit.
func (it *Iterator[T]) Objects(ctx context.Context) <-chan *Delivery[T] {
	out := make(chan *Delivery[T])
	go func() {
		defer close(out)

		for msg := range it.msgIterator.Messages() {
			data, err := it.decode(msg)
			if err != nil {
				log.Printf("Skipping message: %v", err)
				if err := it.msgIterator.CommitOffset(ctx, msg); err != nil {
					log.Printf("Failed to commit offset: %v", err)
				}
				continue
			}

			select {
			case out <- &Delivery[T]{Data: data, Message: msg}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Commit acknowledges d after it has been processed.
func (it *Iterator[T]) Commit(ctx context.Context, d *Delivery[T]) error {
	return it.msgIterator.CommitOffset(ctx, d.Message)
}
