package remote

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
)

// KafkaStore publishes records to a topic instead of posting them to an
// HTTP backend. Keyed by a fresh UUID so duplicate redeliveries land as
// separate messages for the downstream consumer to dedup.
type KafkaStore struct {
	writer *kafka.Writer
}

func NewKafkaStore(brokers []string, topic string) (*KafkaStore, error) {
	if len(brokers) == 0 {
		return nil, errors.New("kafka brokers not configured")
	}

	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers:      brokers,
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: int(kafka.RequireOne),
	})

	log.Info().Strs("brokers", brokers).Str("topic", topic).Msg("kafka store initialized")
	return &KafkaStore{writer: writer}, nil
}

func (s *KafkaStore) Name() string { return "kafka" }

func (s *KafkaStore) Insert(ctx context.Context, payload []byte) error {
	return s.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(uuid.New().String()),
		Value: payload,
	})
}

func (s *KafkaStore) Close() error {
	log.Info().Msg("closing kafka store")
	return s.writer.Close()
}
