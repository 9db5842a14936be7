// Package domain contains the core concepts of the marketplace node:
// actions exchanged over the transport, the records that carry them
// and the entities they project into.
package domain

type ActionType string

const (
	ActionMarketAdd  ActionType = "MPA_MARKET_ADD"
	ActionListingAdd ActionType = "MPA_LISTING_ADD"
	ActionCommentAdd ActionType = "MPA_COMMENT_ADD"
	ActionBid        ActionType = "MPA_BID"
	ActionAccept     ActionType = "MPA_ACCEPT"
	ActionReject     ActionType = "MPA_REJECT"
	ActionCancel     ActionType = "MPA_CANCEL"
	ActionLock       ActionType = "MPA_LOCK"
	ActionRefund     ActionType = "MPA_REFUND"
	ActionRelease    ActionType = "MPA_RELEASE"
)

// ChainedActions are the bid actions that must follow a parent in the same bid chain.
var ChainedActions = []ActionType{
	ActionAccept, ActionReject, ActionCancel, ActionLock, ActionRefund, ActionRelease,
}

func (a ActionType) IsChained() bool {
	for _, t := range ChainedActions {
		if t == a {
			return true
		}
	}
	return false
}

func (a ActionType) IsBidFamily() bool {
	return a == ActionBid || a.IsChained()
}

type Direction string

const (
	Incoming Direction = "INCOMING"
	Outgoing Direction = "OUTGOING"
)
