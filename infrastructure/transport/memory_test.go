package transport

import (
	"context"
	"market-node/domain"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoopback_Send_Poll_Ack(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	loopback := NewLoopback(0.0001)

	// Given a sent envelope
	receipt, err := loopback.Send(ctx, domain.Envelope{From: "alice", To: "bob", Payload: []byte("hello")},
		domain.SendOptions{DaysRetention: 7, Paid: true})
	req.NoError(err)
	req.True(receipt.Sent)
	req.NotEmpty(receipt.MsgID)

	// When polling twice without acknowledging
	first, err := loopback.Poll(ctx, 10)
	req.NoError(err)
	second, err := loopback.Poll(ctx, 10)
	req.NoError(err)

	// Then the envelope is delivered again
	req.Len(first, 1)
	req.Len(second, 1)
	req.Equal(receipt.MsgID, first[0].MsgID)
	req.Equal("alice", first[0].From)
	req.False(first[0].Expiration.IsZero())

	// And disappears once acknowledged
	req.NoError(loopback.Ack(ctx, receipt.MsgID))
	empty, err := loopback.Poll(ctx, 10)
	req.NoError(err)
	req.Empty(empty)
}

func TestLoopback_Estimate_Does_Not_Deliver(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	loopback := NewLoopback(1)

	receipt, err := loopback.Send(ctx, domain.Envelope{Payload: make([]byte, 1500)},
		domain.SendOptions{EstimateFee: true, DaysRetention: 3, Paid: true})
	req.NoError(err)
	req.False(receipt.Sent)
	req.Empty(receipt.MsgID)
	req.InDelta(6.0, receipt.Fee, 0.0001)

	envelopes, err := loopback.Poll(ctx, 10)
	req.NoError(err)
	req.Empty(envelopes)
}

func TestLoopback_Drops_Expired(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	loopback := NewLoopback(0)
	now := time.Now()
	loopback.now = func() time.Time { return now }

	loopback.Deliver(
		domain.Envelope{MsgID: "old", Expiration: now.Add(-time.Second)},
		domain.Envelope{MsgID: "fresh", Expiration: now.Add(time.Hour)},
		domain.Envelope{MsgID: "forever"},
	)

	envelopes, err := loopback.Poll(ctx, 1)
	req.NoError(err)
	req.Len(envelopes, 1)
	req.Equal("fresh", envelopes[0].MsgID)
}

func TestRetention(t *testing.T) {
	tests := []struct {
		name string
		days int
		paid bool
		want int
	}{
		{"default", 0, true, DefaultDaysRetention},
		{"free is capped", 10, false, DefaultDaysRetention},
		{"paid is kept", 10, true, 10},
		{"paid is bounded", 90, true, MaxDaysRetention},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Retention(tt.days, tt.paid))
		})
	}
}
