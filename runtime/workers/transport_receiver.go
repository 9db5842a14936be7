package workers

import (
	"context"
	"errors"
	"log/slog"
	"market-node/contract"
	"market-node/domain"
	"market-node/infrastructure/storage"
	"market-node/observability"
	"time"
)

// TransportReceiver polls the transport and stores every envelope as a NEW
// incoming record. An envelope is acknowledged only once its record is stored,
// a crash in between leads to a redelivery the store ignores.
// Acknowledgements cover a prefix of the polled batch: the first envelope that
// cannot be stored stops the batch so nothing after it is committed.
type TransportReceiver struct {
	transport  contract.Transport
	messages   storage.IMessageRepository
	identities contract.IdentityChecker
	metrics    *observability.Metrics
	log        *slog.Logger
	interval   time.Duration
	batchSize  int
}

// NewTransportReceiver stores every envelope when identities is nil.
// Otherwise envelopes addressed to someone else are acknowledged and dropped.
func NewTransportReceiver(transport contract.Transport, messages storage.IMessageRepository, identities contract.IdentityChecker,
	metrics *observability.Metrics, log *slog.Logger, interval time.Duration, batchSize int) *TransportReceiver {
	return &TransportReceiver{
		transport:  transport,
		messages:   messages,
		identities: identities,
		metrics:    metrics,
		log:        log,
		interval:   interval,
		batchSize:  batchSize,
	}
}

func (w *TransportReceiver) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping transport receiver")
			return nil
		case <-ticker.C:
			if _, err := w.Receive(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
		}
	}
}

// Receive moves one batch of envelopes from the transport to the record store
// and returns how many were acknowledged. Envelopes handed out together with a
// poll error are still stored before the error is returned.
func (w *TransportReceiver) Receive(ctx context.Context) (int, error) {
	envelopes, pollErr := w.transport.Poll(ctx, w.batchSize)
	if len(envelopes) == 0 {
		return 0, pollErr
	}
	w.metrics.EnvelopesReceived(len(envelopes))

	acked := make([]string, 0, len(envelopes))
	var storeErr error
	for _, envelope := range envelopes {
		if storeErr = w.store(envelope); storeErr != nil {
			w.log.Error("Unable to store envelope", "msg_id", envelope.MsgID, "error", storeErr)
			break
		}
		acked = append(acked, envelope.MsgID)
	}
	if len(acked) > 0 {
		if err := w.transport.Ack(ctx, acked...); err != nil {
			return 0, err
		}
	}
	return len(acked), errors.Join(pollErr, storeErr)
}

func (w *TransportReceiver) store(envelope domain.Envelope) error {
	foreign, err := w.foreign(envelope)
	if err != nil {
		return err
	}
	if foreign {
		w.log.Debug("Envelope addressed to another node", "msg_id", envelope.MsgID, "to", envelope.To)
		return nil
	}
	if envelope.Received.IsZero() {
		envelope.Received = time.Now().UTC()
	}
	_, created, err := w.messages.Save(domain.NewIncomingMessage(envelope))
	if err != nil {
		return err
	}
	if !created {
		w.log.Debug("Envelope redelivered", "msg_id", envelope.MsgID)
	}
	return nil
}

// foreign reports an envelope neither sent by nor addressed to a local identity.
// Echoes of what this node sent are kept.
func (w *TransportReceiver) foreign(envelope domain.Envelope) (bool, error) {
	if w.identities == nil || envelope.To == "" {
		return false, nil
	}
	for _, address := range []string{envelope.To, envelope.From} {
		local, err := w.identities.IsLocalAddress(address)
		if err != nil || local {
			return false, err
		}
	}
	return true, nil
}
