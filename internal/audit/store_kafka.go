package audit

import (
	"context"
	"encoding/json"

	"github.com/twmb/franz-go/pkg/kgo"

	dErrors "rollcall/pkg/domain-errors"
)

// KafkaStore publishes audit events to a Kafka topic for downstream
// reporting jobs. It is write-only; querying happens on the consumer side.
type KafkaStore struct {
	client *kgo.Client
	topic  string
}

// NewKafkaStore builds a producer for the given brokers and topic.
func NewKafkaStore(brokers []string, topic string) (*KafkaStore, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
	)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "kafka client")
	}
	return &KafkaStore{client: client, topic: topic}, nil
}

func (s *KafkaStore) Append(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "encode audit event")
	}
	record := &kgo.Record{
		Topic: s.topic,
		Key:   []byte(event.Username),
		Value: payload,
	}
	if err := s.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "produce audit event")
	}
	return nil
}

// List is unsupported on the Kafka sink; the in-memory store serves reads.
func (s *KafkaStore) List(context.Context) ([]Event, error) {
	return nil, dErrors.New(dErrors.CodeInternal, "kafka audit store is write-only")
}

// Close flushes and tears down the producer.
func (s *KafkaStore) Close() {
	s.client.Close()
}
