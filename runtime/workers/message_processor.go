package workers

import (
	"context"
	"log/slog"
	"market-node/domain"
	"market-node/infrastructure/storage"
	"market-node/observability"
	"time"
)

type MessageHandler interface {
	Handle(ctx context.Context, record domain.TransportMessage) (domain.MessageStatus, error)
}

// MessageProcessor sweeps pending incoming records in receipt order and hands
// them one at a time to the dispatcher. Sequential processing is what lets a
// chained action find the entity created by an earlier record.
type MessageProcessor struct {
	messages  storage.IMessageRepository
	handler   MessageHandler
	metrics   *observability.Metrics
	log       *slog.Logger
	interval  time.Duration
	batchSize int
	now       func() time.Time
}

func NewMessageProcessor(messages storage.IMessageRepository, handler MessageHandler,
	metrics *observability.Metrics, log *slog.Logger, interval time.Duration, batchSize int) *MessageProcessor {
	return &MessageProcessor{
		messages:  messages,
		handler:   handler,
		metrics:   metrics,
		log:       log,
		interval:  interval,
		batchSize: batchSize,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (w *MessageProcessor) Run(ctx context.Context) error {
	recovered, err := w.messages.RecoverInterrupted()
	if err != nil {
		return err
	}
	if recovered > 0 {
		w.log.Warn("Records interrupted by a previous run are waiting again", "count", recovered)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping message processor")
			return nil
		case <-ticker.C:
			if _, err = w.Sweep(ctx); err != nil {
				return err
			}
		}
	}
}

// Sweep handles one batch of due records and returns how many were handled.
// Cancellation is only checked between two records.
func (w *MessageProcessor) Sweep(ctx context.Context) (int, error) {
	batch, err := w.messages.GetPendingBatch(w.batchSize, w.now())
	if err != nil {
		return 0, err
	}
	w.metrics.PendingBatch(len(batch))

	handled := 0
	for _, record := range batch {
		if ctx.Err() != nil {
			return handled, nil
		}
		if _, err = w.handler.Handle(ctx, record); err != nil {
			w.log.Error("Unable to handle record", "msg_id", record.MsgID, "error", err)
		}
		handled++
	}
	return handled, nil
}
