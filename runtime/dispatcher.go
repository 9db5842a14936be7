package runtime

import (
	"context"
	"log/slog"
	"market-node/contract"
	"market-node/domain"
	apperrors "market-node/errors"
	"market-node/infrastructure/storage"
	"market-node/observability"
	"time"
)

// Dispatcher routes incoming transport records to the action service
// registered for their action type and drives the record status machine:
//
//	NEW -> PROCESSING -> PROCESSED | PROCESSING_FAILED | WAITING | PARSING_FAILED | UNKNOWN_ACTION
//	WAITING -> PROCESSING | PROCESSING_FAILED (expired)
//
// Errors met while processing never escape Handle, they end up in the record status.
type Dispatcher struct {
	registry *Registry
	messages storage.IMessageRepository
	sink     contract.NotificationSink
	retry    RetryPolicy
	metrics  *observability.Metrics
	log      *slog.Logger
	now      func() time.Time
}

func NewDispatcher(registry *Registry, messages storage.IMessageRepository, sink contract.NotificationSink,
	retry RetryPolicy, metrics *observability.Metrics, log *slog.Logger) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		messages: messages,
		sink:     sink,
		retry:    retry,
		metrics:  metrics,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

type outcome struct {
	status     domain.MessageStatus
	actionType domain.ActionType
	reason     string
	message    domain.MarketplaceMessage
	service    contract.ActionService
}

// HandleEnvelope records a raw envelope and handles it right away.
// A redelivered envelope is not processed twice.
func (d *Dispatcher) HandleEnvelope(ctx context.Context, envelope domain.Envelope) (domain.MessageStatus, error) {
	if envelope.Received.IsZero() {
		envelope.Received = d.now()
	}
	record, _, err := d.messages.Save(domain.NewIncomingMessage(envelope))
	if err != nil {
		return "", err
	}
	return d.Handle(ctx, record)
}

// Handle advances one incoming record and returns the status it ends in.
// The record is finished even if ctx is cancelled meanwhile.
func (d *Dispatcher) Handle(ctx context.Context, record domain.TransportMessage) (domain.MessageStatus, error) {
	ctx = context.WithoutCancel(ctx)
	now := d.now()

	current, err := d.messages.Get(record.MsgID, domain.Incoming)
	if err != nil {
		return "", err
	}
	switch {
	case current.Status.IsTerminal():
		return current.Status, nil
	case current.Status == domain.StatusProcessing:
		d.log.Warn("Record already in progress", "msg_id", current.MsgID)
		return current.Status, nil
	case current.Status == domain.StatusWaiting && current.Expired(now):
		return d.expire(current)
	}

	processing, err := d.messages.UpdateStatus(current.MsgID, domain.Incoming, domain.StatusProcessing,
		func(r *domain.TransportMessage) {
			r.Attempts++
			r.LastAttemptAt = now
		})
	if err != nil {
		return "", err
	}

	result := d.process(ctx, processing)
	if result.status == domain.StatusWaiting && processing.Expired(now) {
		result.status = domain.StatusProcessingFailed
		result.reason = "expired while waiting: " + result.reason
	}
	final, err := d.messages.UpdateStatus(processing.MsgID, domain.Incoming, result.status,
		func(r *domain.TransportMessage) {
			r.Reason = result.reason
			if result.actionType != "" {
				r.ActionType = result.actionType
			}
			if result.status == domain.StatusWaiting {
				r.NextAttemptAt = d.retry.NextAttempt(r.Attempts, now)
			}
		})
	if err != nil {
		return "", err
	}
	d.metrics.MessageHandled(final.ActionType, final.Status, float64(d.now().Sub(now).Milliseconds()))
	d.logOutcome(final)

	if final.Status == domain.StatusProcessed {
		d.notify(ctx, result, final)
	}
	return final.Status, nil
}

func (d *Dispatcher) process(ctx context.Context, record domain.TransportMessage) outcome {
	message, err := domain.DecodeMarketplaceMessage(record.Payload)
	if err != nil {
		return outcome{status: domain.StatusParsingFailed, reason: err.Error()}
	}
	actionType := message.Action.Type()
	registration, ok := d.registry.Lookup(actionType)
	if !ok {
		return outcome{status: domain.StatusUnknownAction, actionType: actionType, reason: apperrors.ErrUnknownAction.Error()}
	}
	result := outcome{actionType: actionType, message: message, service: registration.Service}

	if validator := registration.Validator; validator != nil {
		if err = validator.ValidateMessage(message, domain.Incoming); err != nil {
			return result.failed(domain.StatusProcessingFailed, err)
		}
		if err = validator.ValidateSequence(ctx, message, domain.Incoming); err != nil {
			return result.failed(statusFor(err), err)
		}
	}
	if _, err = registration.Service.ProcessMessage(ctx, message, domain.Incoming, record, nil); err != nil {
		return result.failed(statusFor(err), err)
	}
	result.status = domain.StatusProcessed
	return result
}

func (o outcome) failed(status domain.MessageStatus, err error) outcome {
	o.status = status
	o.reason = err.Error()
	return o
}

// statusFor maps an error to the status it leads to, only a missing prerequisite is retried.
func statusFor(err error) domain.MessageStatus {
	if apperrors.IsTransient(err) {
		return domain.StatusWaiting
	}
	return domain.StatusProcessingFailed
}

func (d *Dispatcher) expire(record domain.TransportMessage) (domain.MessageStatus, error) {
	final, err := d.messages.UpdateStatus(record.MsgID, domain.Incoming, domain.StatusProcessingFailed,
		func(r *domain.TransportMessage) {
			r.Reason = "expired while waiting: " + r.Reason
		})
	if err != nil {
		return "", err
	}
	d.metrics.MessageHandled(final.ActionType, final.Status, 0)
	d.logOutcome(final)
	return final.Status, nil
}

func (d *Dispatcher) logOutcome(record domain.TransportMessage) {
	attrs := []any{"msg_id", record.MsgID, "action", record.ActionType, "status", record.Status, "attempts", record.Attempts}
	switch record.Status {
	case domain.StatusProcessed:
		d.log.Debug("Message processed", attrs...)
	case domain.StatusWaiting:
		d.log.Info("Message waiting for a prerequisite", append(attrs, "reason", record.Reason, "next_attempt", record.NextAttemptAt)...)
	default:
		d.log.Warn("Message processing failed", append(attrs, "reason", record.Reason)...)
	}
}

// notify never affects the record status.
func (d *Dispatcher) notify(ctx context.Context, result outcome, record domain.TransportMessage) {
	notification, err := result.service.CreateNotification(ctx, result.message, domain.Incoming, record)
	if err != nil {
		d.log.Warn("Unable to build notification", "msg_id", record.MsgID, "action", record.ActionType, "error", err)
		return
	}
	if notification == nil || d.sink == nil {
		return
	}
	err = d.sink.Publish(ctx, *notification)
	d.metrics.NotificationPublished(err)
	if err != nil {
		d.log.Warn("Notification not delivered", "msg_id", record.MsgID, "event", notification.Event, "error", err)
	}
}
