package sink

import (
	"context"
	"errors"
	"market-node/contract"
	"market-node/domain"
)

// FanoutSink hands a notification to every sink, a failing sink doesn't
// prevent the next ones from receiving it.
type FanoutSink struct {
	sinks []contract.NotificationSink
}

func NewFanoutSink(sinks ...contract.NotificationSink) FanoutSink {
	return FanoutSink{sinks: sinks}
}

func (f FanoutSink) Publish(ctx context.Context, notification domain.Notification) error {
	var errs []error
	for _, s := range f.sinks {
		if err := s.Publish(ctx, notification); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
