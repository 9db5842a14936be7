package domain

import (
	"fmt"

	"market-node/errors"
)

type MessageStatus string

const (
	StatusNew              MessageStatus = "NEW"
	StatusProcessing       MessageStatus = "PROCESSING"
	StatusProcessed        MessageStatus = "PROCESSED"
	StatusProcessingFailed MessageStatus = "PROCESSING_FAILED"
	StatusWaiting          MessageStatus = "WAITING"
	StatusParsingFailed    MessageStatus = "PARSING_FAILED"
	StatusUnknownAction    MessageStatus = "UNKNOWN_ACTION"
)

var transitions = map[MessageStatus][]MessageStatus{
	StatusNew: {StatusProcessing},
	StatusProcessing: {
		StatusProcessed,
		StatusProcessingFailed,
		StatusWaiting,
		StatusParsingFailed,
		StatusUnknownAction,
	},
	// WAITING goes back to PROCESSING on a retry sweep, or is failed once expired.
	StatusWaiting: {StatusProcessing, StatusProcessingFailed},
}

// IsTerminal reports whether no further automatic processing happens.
func (s MessageStatus) IsTerminal() bool {
	switch s {
	case StatusProcessed, StatusProcessingFailed, StatusParsingFailed, StatusUnknownAction:
		return true
	default:
		return false
	}
}

// IsPending reports whether the record belongs to the incoming work queue.
func (s MessageStatus) IsPending() bool {
	return s == StatusNew || s == StatusWaiting
}

func (s MessageStatus) CanTransition(to MessageStatus) bool {
	for _, next := range transitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

func (s MessageStatus) Transition(to MessageStatus) (MessageStatus, error) {
	if !s.CanTransition(to) {
		return s, fmt.Errorf("%w: %s -> %s", errors.ErrInvalidTransition, s, to)
	}
	return to, nil
}
