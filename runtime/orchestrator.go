// Package runtime moves action messages between the transport, the record
// store and the action services. It owns no business rule: those live in the
// services registered for each action type.
package runtime

import (
	"context"
	"log/slog"
	"market-node/contract"
	"market-node/domain"
	"market-node/infrastructure/storage"
	"market-node/observability"
	"market-node/runtime/workers"
	"time"
)

type OrchestratorConfig struct {
	PollInterval  time.Duration
	BatchSize     int
	Retry         RetryPolicy
	DaysRetention int

	// Identities drops envelopes addressed to other nodes, nil keeps them all.
	Identities contract.IdentityChecker
}

// Orchestrator wires the outgoing Sender and the incoming pipeline
// (TransportReceiver -> MessageProcessor -> Dispatcher) around one registry.
type Orchestrator struct {
	log        *slog.Logger
	registry   *Registry
	supervisor contract.ISupervisor
	dispatcher *Dispatcher
	sender     *Sender
	receiver   *workers.TransportReceiver
	processor  *workers.MessageProcessor
}

func NewOrchestrator(config OrchestratorConfig, log *slog.Logger, supervisor contract.ISupervisor,
	transport contract.Transport, messages storage.IMessageRepository, sink contract.NotificationSink,
	metrics *observability.Metrics, registrations ...contract.Registration) (*Orchestrator, error) {
	registry := NewRegistry()
	if err := registry.Register(registrations...); err != nil {
		return nil, err
	}
	dispatcher := NewDispatcher(registry, messages, sink, config.Retry, metrics, log)
	return &Orchestrator{
		log:        log,
		registry:   registry,
		supervisor: supervisor,
		dispatcher: dispatcher,
		sender:     NewSender(registry, transport, messages, metrics, log, config.DaysRetention),
		receiver:   workers.NewTransportReceiver(transport, messages, config.Identities, metrics, log, config.PollInterval, config.BatchSize),
		processor:  workers.NewMessageProcessor(messages, dispatcher, metrics, log, config.PollInterval, config.BatchSize),
	}, nil
}

// Start runs the incoming pipeline under supervision and blocks until ctx is done.
func (o *Orchestrator) Start(ctx context.Context) {
	o.log.Info("Starting orchestrator", "actions", o.registry.Types())
	o.supervisor.Add(o.receiver, o.processor).Run(ctx)
	o.log.Info("Orchestrator stopped")
}

func (o *Orchestrator) Stop() {
	o.supervisor.Stop()
}

func (o *Orchestrator) Send(ctx context.Context, request domain.ActionRequest) (domain.SendResult, error) {
	return o.sender.Send(ctx, request)
}

func (o *Orchestrator) Estimate(ctx context.Context, request domain.ActionRequest) (float64, error) {
	return o.sender.Estimate(ctx, request)
}
