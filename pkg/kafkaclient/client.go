package kafkaclient

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

// KafkaReader defines the interface for a Kafka message reader.
// This allows for easy mocking in unit tests.
type KafkaReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaConsumer reads messages on its own goroutine and hands them out on a
// channel. Offsets are committed explicitly by the receiver.
type KafkaConsumer struct {
	reader KafkaReader
	// closed by Stop.
	doneChan chan struct{}
	wg       sync.WaitGroup
	// unbuffered; a message is only read once the previous one was taken.
	messageChan chan kafka.Message
	// backoff after a failed read.
	backoff time.Duration
}

func newConsumer(reader KafkaReader) *KafkaConsumer {
	return &KafkaConsumer{
		reader:      reader,
		doneChan:    make(chan struct{}),
		messageChan: make(chan kafka.Message),
		backoff:     time.Second,
	}
}

// NewKafkaConsumer creates a consumer for topic within groupID.
func NewKafkaConsumer(topic, groupID, broker string) (*KafkaConsumer, error) {
	if topic == "" || broker == "" {
		return nil, errors.New("kafka consumer needs a broker and a topic")
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: []string{broker},
		Topic:   topic,
		GroupID: groupID,
		// Offsets are committed by CommitOffset only.
		CommitInterval: 0,
		MinBytes:       1,
		MaxBytes:       10e6,
	})
	return newConsumer(reader), nil
}

// Messages returns the channel of received messages. It is closed when the
// consumer loop exits.
func (kc *KafkaConsumer) Messages() <-chan kafka.Message {
	return kc.messageChan
}

// CommitOffset marks msg as processed.
func (kc *KafkaConsumer) CommitOffset(ctx context.Context, msg kafka.Message) error {
	log.Printf("Committing offset for topic=%s, partition=%d, offset=%d", msg.Topic, msg.Partition, msg.Offset)
	return kc.reader.CommitMessages(ctx, msg)
}

// StartConsuming begins the Kafka message consumption loop in a separate goroutine.
func (kc *KafkaConsumer) StartConsuming(ctx context.Context) {
	kc.wg.Add(1)
	go func() {
		defer kc.wg.Done()
		defer close(kc.messageChan)

		log.Println("Starting Kafka consumer loop...")

		for {
			select {
			case <-ctx.Done():
				log.Println("Context canceled, stopping consumer loop.")
				return
			case <-kc.doneChan:
				log.Println("Shutdown signal received, stopping consumer loop.")
				return
			default:
			}

			msg, err := kc.reader.ReadMessage(ctx)
			if err != nil {
				if errors.Is(err, io.EOF) || ctx.Err() != nil {
					log.Printf("Reader finished: %v", err)
					return
				}
				log.Printf("Error reading message: %v", err)
				select {
				case <-time.After(kc.backoff):
				case <-ctx.Done():
					return
				case <-kc.doneChan:
					return
				}
				continue
			}

			select {
			case kc.messageChan <- msg:
				log.Printf("Message received: topic=%s, partition=%d, offset=%d", msg.Topic, msg.Partition, msg.Offset)
			case <-ctx.Done():
				log.Println("Context canceled, stopping consumer before sending message.")
				return
			case <-kc.doneChan:
				log.Println("Shutdown signal received, stopping consumer before sending message.")
				return
			}
		}
	}()
}

// Stop gracefully shuts down the Kafka consumer.
func (kc *KafkaConsumer) Stop() {
	log.Println("Attempting to stop Kafka consumer...")
	close(kc.doneChan)
	kc.wg.Wait()
	if err := kc.reader.Close(); err != nil {
		log.Printf("Failed to close Kafka reader: %v", err)
	}
	log.Println("Kafka consumer stopped gracefully.")
}
