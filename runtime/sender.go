package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"market-node/contract"
	"market-node/domain"
	apperrors "market-node/errors"
	"market-node/infrastructure/storage"
	"market-node/observability"
	"time"

	"github.com/go-playground/validator/v10"
)

// Sender runs the outgoing side of an action:
// create -> validate -> beforePost -> transport send -> afterPost -> processMessage(OUTGOING).
// Nothing is sent nor stored when the request or the message is invalid.
type Sender struct {
	registry      *Registry
	transport     contract.Transport
	messages      storage.IMessageRepository
	validate      *validator.Validate
	metrics       *observability.Metrics
	log           *slog.Logger
	daysRetention int
	now           func() time.Time
}

func NewSender(registry *Registry, transport contract.Transport, messages storage.IMessageRepository,
	metrics *observability.Metrics, log *slog.Logger, daysRetention int) *Sender {
	return &Sender{
		registry:      registry,
		transport:     transport,
		messages:      messages,
		validate:      validator.New(),
		metrics:       metrics,
		log:           log,
		daysRetention: daysRetention,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// Send returns an error only when nothing was sent. A SENT result may still carry
// a ProjectionError: the message is on the network but the local state is behind.
func (s *Sender) Send(ctx context.Context, request domain.ActionRequest) (domain.SendResult, error) {
	result, err := s.send(ctx, request)
	if err != nil {
		result = domain.FailedResult(err)
	}
	s.metrics.SendCompleted(request.ActionType(), result.Status)
	return result, err
}

// Estimate asks the transport for the fee without appending anything to the network.
func (s *Sender) Estimate(ctx context.Context, request domain.ActionRequest) (float64, error) {
	params := request.Params()
	estimate := params.EstimateFee
	params.EstimateFee = true
	defer func() { params.EstimateFee = estimate }()

	result, err := s.Send(ctx, request)
	if err != nil {
		return 0, err
	}
	return result.Fee, nil
}

func (s *Sender) send(ctx context.Context, request domain.ActionRequest) (domain.SendResult, error) {
	if err := s.validate.Struct(request); err != nil {
		return domain.SendResult{}, apperrors.Validation("%s request: %v", request.ActionType(), err)
	}
	registration, ok := s.registry.Lookup(request.ActionType())
	if !ok {
		return domain.SendResult{}, fmt.Errorf("%w: %s", apperrors.ErrUnknownAction, request.ActionType())
	}
	service := registration.Service

	message, err := service.CreateMarketplaceMessage(ctx, request)
	if err != nil {
		return domain.SendResult{}, err
	}
	if validator := registration.Validator; validator != nil {
		if err = validator.ValidateMessage(message, domain.Outgoing); err != nil {
			return domain.SendResult{}, err
		}
		if err = validator.ValidateSequence(ctx, message, domain.Outgoing); err != nil {
			return domain.SendResult{}, apperrors.Validation("%v", err)
		}
	}
	if message, err = service.BeforePost(ctx, request, message); err != nil {
		return domain.SendResult{}, err
	}
	payload, err := message.Encode()
	if err != nil {
		return domain.SendResult{}, err
	}

	params := request.Params()
	days := params.DaysRetention
	if days == 0 {
		days = s.daysRetention
	}
	receipt, err := s.transport.Send(ctx, domain.Envelope{From: params.From, To: params.To, Payload: payload},
		domain.SendOptions{EstimateFee: params.EstimateFee, DaysRetention: days, Paid: params.Paid})
	if err != nil {
		return domain.SendResult{}, fmt.Errorf("%w: %w", apperrors.ErrTransport, err)
	}
	if params.EstimateFee || !receipt.Sent {
		return domain.SendResult{Status: domain.SendStatusEstimatedOnly, Result: domain.ResultNotSent, Fee: receipt.Fee}, nil
	}

	result := domain.SendResult{Status: domain.SendStatusSent, Result: domain.ResultSent, MsgID: receipt.MsgID, Fee: receipt.Fee}
	s.log.Info("Action sent", "msg_id", receipt.MsgID, "action", request.ActionType(), "hash", message.Action.ContentHash(), "fee", receipt.Fee)

	// From here on the message is in flight, failures are reported, never rolled back.
	record, err := s.record(receipt, message, params)
	if err != nil {
		return s.partial(result, receipt.MsgID, err), nil
	}
	if afterPost, err := service.AfterPost(ctx, request, message, record, result); err != nil {
		s.log.Warn("After post hook failed", "msg_id", receipt.MsgID, "error", err)
	} else {
		result = afterPost
	}

	_, projectionErr := service.ProcessMessage(ctx, message, domain.Outgoing, record, request)
	status := domain.StatusProcessed
	reason := ""
	if projectionErr != nil {
		status, reason = domain.StatusProcessingFailed, projectionErr.Error()
	}
	if _, err = s.messages.UpdateStatus(record.MsgID, domain.Outgoing, status, func(r *domain.TransportMessage) {
		r.Reason = reason
	}); err != nil && projectionErr == nil {
		projectionErr = err
	}
	if projectionErr != nil {
		return s.partial(result, receipt.MsgID, projectionErr), nil
	}
	return result, nil
}

// record stores the OUTGOING record of a sent envelope, already in PROCESSING.
func (s *Sender) record(receipt domain.SendReceipt, message domain.MarketplaceMessage, params *domain.SendParams) (domain.TransportMessage, error) {
	payload, err := message.Encode()
	if err != nil {
		return domain.TransportMessage{}, err
	}
	now := s.now()
	if _, _, err = s.messages.Save(domain.TransportMessage{
		MsgID:      receipt.MsgID,
		Direction:  domain.Outgoing,
		Status:     domain.StatusNew,
		ActionType: message.Action.Type(),
		From:       params.From,
		To:         params.To,
		Payload:    payload,
		Sent:       now,
	}); err != nil {
		return domain.TransportMessage{}, err
	}
	return s.messages.UpdateStatus(receipt.MsgID, domain.Outgoing, domain.StatusProcessing, func(r *domain.TransportMessage) {
		r.Attempts++
		r.LastAttemptAt = now
	})
}

func (s *Sender) partial(result domain.SendResult, msgID string, err error) domain.SendResult {
	s.log.Error("Message sent but not projected locally", "msg_id", msgID, "error", err)
	result.ProjectionError = err
	return result
}
