package sink

import (
	"context"
	"encoding/json"
	"market-node/domain"
	"time"

	"github.com/segmentio/kafka-go"
)

// KafkaSink publishes notifications as JSON on a topic read by the node's clients.
type KafkaSink struct {
	writer *kafka.Writer
}

func NewKafkaSink(brokers []string, topic string) *KafkaSink {
	return &KafkaSink{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			RequiredAcks: kafka.RequireOne,
			BatchTimeout: 10 * time.Millisecond,
		},
	}
}

func (s *KafkaSink) Publish(ctx context.Context, notification domain.Notification) error {
	value, err := toKafkaMessage(notification)
	if err != nil {
		return err
	}
	return s.writer.WriteMessages(ctx, value)
}

func (s *KafkaSink) Close() error {
	return s.writer.Close()
}

func toKafkaMessage(notification domain.Notification) (kafka.Message, error) {
	value, err := json.Marshal(notification)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:   []byte(notification.Event),
		Value: value,
		Time:  time.Now().UTC(),
	}, nil
}
