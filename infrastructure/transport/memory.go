package transport

import (
	"context"
	"market-node/domain"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// Loopback is an in-process transport: every sent envelope is delivered back
// to the node itself, which is what an echo on the real network looks like.
// Envelopes stay available to Poll until acknowledged.
type Loopback struct {
	mu          sync.Mutex
	queue       []domain.Envelope
	feePerKBDay float64
	now         func() time.Time
}

func NewLoopback(feePerKBDay float64) *Loopback {
	return &Loopback{feePerKBDay: feePerKBDay, now: time.Now}
}

func (l *Loopback) Send(_ context.Context, envelope domain.Envelope, options domain.SendOptions) (domain.SendReceipt, error) {
	fee := EstimateFee(len(envelope.Payload), options.DaysRetention, options.Paid, l.feePerKBDay)
	if options.EstimateFee {
		return domain.SendReceipt{Fee: fee}, nil
	}
	now := l.now().UTC()
	envelope.MsgID = uuid.NewString()
	envelope.Sent = now
	envelope.Received = now
	envelope.Expiration = now.Add(time.Duration(Retention(options.DaysRetention, options.Paid)) * 24 * time.Hour)
	l.Deliver(envelope)
	return domain.SendReceipt{MsgID: envelope.MsgID, Fee: fee, Sent: true}, nil
}

// Deliver enqueues an envelope as if it came from the network.
func (l *Loopback) Deliver(envelopes ...domain.Envelope) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.queue = append(l.queue, envelopes...)
}

func (l *Loopback) Poll(ctx context.Context, limit int) ([]domain.Envelope, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	// The network drops what it no longer retains.
	l.queue = lo.Reject(l.queue, func(e domain.Envelope, _ int) bool {
		return !e.Expiration.IsZero() && !now.Before(e.Expiration)
	})
	n := min(limit, len(l.queue))
	out := make([]domain.Envelope, n)
	copy(out, l.queue[:n])
	return out, nil
}

func (l *Loopback) Ack(_ context.Context, msgIDs ...string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.queue = lo.Reject(l.queue, func(e domain.Envelope, _ int) bool {
		return lo.Contains(msgIDs, e.MsgID)
	})
	return nil
}
