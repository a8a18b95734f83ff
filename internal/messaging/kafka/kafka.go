package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"shopco-api/internal/messaging"

	kafkaGo "github.com/segmentio/kafka-go"
)

type kafkaPublisher struct {
	writer      *kafkaGo.Writer
	topicPrefix string
}

// NewKafkaPublisher creates a publisher sharing one writer across topics.
// Topics are prefixed with topicPrefix.
func NewKafkaPublisher(brokers []string, topicPrefix string) messaging.Publisher {
	return &kafkaPublisher{
		writer: &kafkaGo.Writer{
			Addr:                   kafkaGo.TCP(brokers...),
			Balancer:               &kafkaGo.LeastBytes{},
			RequiredAcks:           kafkaGo.RequireOne,
			AllowAutoTopicCreation: true,
			WriteTimeout:           5 * time.Second,
		},
		topicPrefix: topicPrefix,
	}
}

func (k *kafkaPublisher) PublishEvent(ctx context.Context, topic string, key string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	return k.writer.WriteMessages(ctx, kafkaGo.Message{
		Topic: k.topicPrefix + topic,
		Key:   []byte(key),
		Value: payload,
	})
}

func (k *kafkaPublisher) Close() error {
	return k.writer.Close()
}
