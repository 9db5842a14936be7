package sink

import (
	"context"
	"log/slog"
	"market-node/domain"
)

// LogSink writes every notification to the node log.
type LogSink struct {
	log *slog.Logger
}

func NewLogSink(log *slog.Logger) LogSink {
	return LogSink{log: log}
}

func (s LogSink) Publish(_ context.Context, notification domain.Notification) error {
	s.log.Info("Notification", "event", notification.Event, "payload", notification.Payload)
	return nil
}
