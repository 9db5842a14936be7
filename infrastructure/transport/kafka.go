package transport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"market-node/domain"
	apperrors "market-node/errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

const (
	headerFrom       = "from"
	headerTo         = "to"
	headerExpiration = "expiration"
)

type KafkaConfig struct {
	Brokers     []string
	Topic       string
	GroupID     string
	PollWindow  time.Duration
	FeePerKBDay float64
}

// messageReader is the part of a consumer group reader the transport uses.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Kafka carries envelopes over a topic shared by every node of the market.
// Each node reads with its own consumer group, offsets are committed on Ack,
// which gives the at-least-once delivery the processing pipeline expects.
// Offsets are committed per partition up to the highest acknowledged one,
// so callers acknowledge a prefix of what Poll returned. Whatever was left
// unacknowledged is fetched again from the committed offsets on the next Poll.
type Kafka struct {
	writer    *kafka.Writer
	newReader func() messageReader
	config    KafkaConfig
	log       *slog.Logger

	mu      sync.Mutex
	reader  messageReader
	fetched map[string]kafka.Message
}

func NewKafka(config KafkaConfig, log *slog.Logger) *Kafka {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(config.Brokers...),
		Topic:        config.Topic,
		RequiredAcks: kafka.RequireAll,
		Async:        false,
		BatchTimeout: 10 * time.Millisecond,
	}
	return newKafka(config, log, writer, func() messageReader {
		return kafka.NewReader(kafka.ReaderConfig{
			Brokers: config.Brokers,
			Topic:   config.Topic,
			GroupID: config.GroupID,
		})
	})
}

func newKafka(config KafkaConfig, log *slog.Logger, writer *kafka.Writer, newReader func() messageReader) *Kafka {
	return &Kafka{
		writer:    writer,
		newReader: newReader,
		config:    config,
		log:       log,
		reader:    newReader(),
		fetched:   make(map[string]kafka.Message),
	}
}

func (k *Kafka) Send(ctx context.Context, envelope domain.Envelope, options domain.SendOptions) (domain.SendReceipt, error) {
	fee := EstimateFee(len(envelope.Payload), options.DaysRetention, options.Paid, k.config.FeePerKBDay)
	if options.EstimateFee {
		return domain.SendReceipt{Fee: fee}, nil
	}
	now := time.Now().UTC()
	msgID := uuid.NewString()
	expiration := now.Add(time.Duration(Retention(options.DaysRetention, options.Paid)) * 24 * time.Hour)
	err := k.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(msgID),
		Value: envelope.Payload,
		Time:  now,
		Headers: []kafka.Header{
			{Key: headerFrom, Value: []byte(envelope.From)},
			{Key: headerTo, Value: []byte(envelope.To)},
			{Key: headerExpiration, Value: []byte(expiration.Format(time.RFC3339Nano))},
		},
	})
	if err != nil {
		return domain.SendReceipt{}, fmt.Errorf("%w: %w", apperrors.ErrTransport, err)
	}
	return domain.SendReceipt{MsgID: msgID, Fee: fee, Sent: true}, nil
}

// Poll gathers up to limit envelopes, waiting at most the configured poll window.
// On a fetch error the envelopes already fetched are returned with the error.
func (k *Kafka) Poll(ctx context.Context, limit int) ([]domain.Envelope, error) {
	reader := k.rewind()
	windowCtx, cancel := context.WithTimeout(ctx, k.config.PollWindow)
	defer cancel()

	var envelopes []domain.Envelope
	for len(envelopes) < limit {
		message, err := reader.FetchMessage(windowCtx)
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			break
		}
		if err != nil {
			return envelopes, fmt.Errorf("%w: %w", apperrors.ErrTransport, err)
		}
		envelope := toEnvelope(message)
		k.log.Debug("Envelope fetched", "msg_id", envelope.MsgID, "partition", message.Partition, "offset", message.Offset)
		k.mu.Lock()
		k.fetched[envelope.MsgID] = message
		k.mu.Unlock()
		envelopes = append(envelopes, envelope)
	}
	return envelopes, nil
}

// rewind reopens the reader when envelopes of a previous Poll were never
// acknowledged. The reader position is past them, the committed offsets are not.
func (k *Kafka) rewind() messageReader {
	k.mu.Lock()
	defer k.mu.Unlock()
	if len(k.fetched) == 0 {
		return k.reader
	}
	k.log.Warn("Unacknowledged envelopes, resuming from committed offsets", "count", len(k.fetched))
	if err := k.reader.Close(); err != nil {
		k.log.Warn("Unable to close kafka reader", "error", err)
	}
	k.reader = k.newReader()
	clear(k.fetched)
	return k.reader
}

func (k *Kafka) Ack(ctx context.Context, msgIDs ...string) error {
	k.mu.Lock()
	reader := k.reader
	var messages []kafka.Message
	for _, msgID := range msgIDs {
		if message, ok := k.fetched[msgID]; ok {
			messages = append(messages, message)
			delete(k.fetched, msgID)
		}
	}
	k.mu.Unlock()
	if len(messages) == 0 {
		return nil
	}
	if err := reader.CommitMessages(ctx, messages...); err != nil {
		k.mu.Lock()
		for _, message := range messages {
			k.fetched[string(message.Key)] = message
		}
		k.mu.Unlock()
		return fmt.Errorf("%w: %w", apperrors.ErrTransport, err)
	}
	return nil
}

func (k *Kafka) Close() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	return errors.Join(k.writer.Close(), k.reader.Close())
}

func toEnvelope(message kafka.Message) domain.Envelope {
	envelope := domain.Envelope{
		MsgID:    string(message.Key),
		Sent:     message.Time.UTC(),
		Received: time.Now().UTC(),
		Payload:  message.Value,
	}
	for _, header := range message.Headers {
		switch header.Key {
		case headerFrom:
			envelope.From = string(header.Value)
		case headerTo:
			envelope.To = string(header.Value)
		case headerExpiration:
			if expiration, err := time.Parse(time.RFC3339Nano, string(header.Value)); err == nil {
				envelope.Expiration = expiration
			}
		}
	}
	return envelope
}
