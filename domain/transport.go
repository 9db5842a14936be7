package domain

import "time"

// Envelope is an opaque message moved by the transport between two addresses.
type Envelope struct {
	MsgID      string
	From       string
	To         string
	Sent       time.Time
	Received   time.Time
	Expiration time.Time
	Payload    []byte
}

type SendOptions struct {
	EstimateFee   bool
	DaysRetention int
	Paid          bool
}

// SendReceipt is what the transport answers to a send.
// Sent is false when only a fee estimation was requested.
type SendReceipt struct {
	MsgID string
	Fee   float64
	Sent  bool
}

// TransportMessage is the local record of one envelope, sent or received.
// It is the audit trail and the idempotency key source of every projection.
type TransportMessage struct {
	MsgID         string        `json:"msgid"`
	Direction     Direction     `json:"direction"`
	Status        MessageStatus `json:"status"`
	ActionType    ActionType    `json:"action_type,omitempty"`
	From          string        `json:"from"`
	To            string        `json:"to"`
	Payload       []byte        `json:"payload"`
	Sent          time.Time     `json:"sent"`
	Received      time.Time     `json:"received"`
	Expiration    time.Time     `json:"expiration"`
	Attempts      int           `json:"attempts"`
	LastAttemptAt time.Time     `json:"last_attempt_at"`
	NextAttemptAt time.Time     `json:"next_attempt_at"`
	Reason        string        `json:"reason,omitempty"`
}

func NewIncomingMessage(envelope Envelope) TransportMessage {
	return TransportMessage{
		MsgID:      envelope.MsgID,
		Direction:  Incoming,
		Status:     StatusNew,
		From:       envelope.From,
		To:         envelope.To,
		Payload:    envelope.Payload,
		Sent:       envelope.Sent,
		Received:   envelope.Received,
		Expiration: envelope.Expiration,
	}
}

// Expired reports whether the envelope retention is over at the given time.
// A record without expiration never expires.
func (t TransportMessage) Expired(now time.Time) bool {
	return !t.Expiration.IsZero() && !now.Before(t.Expiration)
}
