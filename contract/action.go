//go:generate go run go.uber.org/mock/mockgen -source=action.go -destination=../mocks/mock_action.go -package=mocks
package contract

import (
	"context"
	"market-node/domain"
)

// ActionService is the protocol contract of one action type.
// The same ProcessMessage projects OUTGOING sends and INCOMING deliveries,
// it must be safe to call twice for the same record.
type ActionService interface {
	ActionType() domain.ActionType
	CreateMarketplaceMessage(ctx context.Context, request domain.ActionRequest) (domain.MarketplaceMessage, error)
	BeforePost(ctx context.Context, request domain.ActionRequest, message domain.MarketplaceMessage) (domain.MarketplaceMessage, error)
	AfterPost(ctx context.Context, request domain.ActionRequest, message domain.MarketplaceMessage,
		record domain.TransportMessage, result domain.SendResult) (domain.SendResult, error)
	// ProcessMessage receives a nil request for INCOMING messages.
	ProcessMessage(ctx context.Context, message domain.MarketplaceMessage, direction domain.Direction,
		record domain.TransportMessage, request domain.ActionRequest) (domain.TransportMessage, error)
	// CreateNotification returns nil when nothing has to be surfaced.
	CreateNotification(ctx context.Context, message domain.MarketplaceMessage, direction domain.Direction,
		record domain.TransportMessage) (*domain.Notification, error)
}

// MessageValidator runs before a message is sent or dispatched.
// ValidateMessage is pure; ValidateSequence may look at local state and
// return a transient prerequisite error when a parent is not yet known.
type MessageValidator interface {
	ValidateMessage(message domain.MarketplaceMessage, direction domain.Direction) error
	ValidateSequence(ctx context.Context, message domain.MarketplaceMessage, direction domain.Direction) error
}

// Registration binds an action type to its service and optional validator.
type Registration struct {
	Service   ActionService
	Validator MessageValidator
}
