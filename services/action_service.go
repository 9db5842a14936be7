package services

import (
	"context"
	"log/slog"
	"market-node/contract"
	"market-node/domain"
	apperrors "market-node/errors"
	"market-node/infrastructure/search"
	"market-node/infrastructure/storage"
	"time"
)

type ICommentIndex interface {
	Index(comment domain.Comment) error
	Search(ctx context.Context, query search.Query) ([]string, error)
}

// Deps is everything the action services project into.
type Deps struct {
	Markets      storage.IMarketRepository
	Listings     storage.IListingItemRepository
	Comments     storage.ICommentRepository
	CommentIndex ICommentIndex
	Bids         storage.IBidRepository
	Orders       storage.IOrderRepository
	Identities   contract.IdentityChecker
	Log          *slog.Logger
	Now          func() time.Time
}

func (d Deps) now() time.Time {
	if d.Now == nil {
		return time.Now().UTC()
	}
	return d.Now().UTC()
}

// Registrations is the static table binding every supported action type
// to its service and validator.
func Registrations(deps Deps) []contract.Registration {
	registrations := []contract.Registration{
		{Service: NewMarketAddService(deps), Validator: MarketAddValidator{}},
		{Service: NewListingItemAddService(deps), Validator: ListingItemAddValidator{}},
		{Service: NewCommentAddService(deps), Validator: CommentAddValidator{comments: deps.Comments}},
		{Service: NewBidService(deps), Validator: BidValidator{listings: deps.Listings}},
	}
	for _, actionType := range domain.ChainedActions {
		registrations = append(registrations, contract.Registration{
			Service:   NewBidChildService(actionType, deps),
			Validator: BidChildValidator{actionType: actionType, bids: deps.Bids},
		})
	}
	return registrations
}

// hooks are the default BeforePost and AfterPost of every action service.
type hooks struct {
	log *slog.Logger
}

func (h hooks) BeforePost(_ context.Context, _ domain.ActionRequest, message domain.MarketplaceMessage) (domain.MarketplaceMessage, error) {
	h.log.Debug("Posting marketplace message", "action", message.Action.Type(), "hash", message.Action.ContentHash())
	return message, nil
}

func (h hooks) AfterPost(_ context.Context, _ domain.ActionRequest, _ domain.MarketplaceMessage,
	_ domain.TransportMessage, result domain.SendResult) (domain.SendResult, error) {
	return result, nil
}

func requestAs[T domain.ActionRequest](request domain.ActionRequest) (T, error) {
	typed, ok := request.(T)
	if !ok {
		var zero T
		return zero, apperrors.Validation("unexpected request %T", request)
	}
	return typed, nil
}

func actionAs[T domain.ActionMessage](message domain.MarketplaceMessage) (T, error) {
	typed, ok := message.Action.(T)
	if !ok {
		var zero T
		return zero, apperrors.Validation("unexpected action %T", message.Action)
	}
	return typed, nil
}

func wrap(action domain.ActionMessage) domain.MarketplaceMessage {
	return domain.MarketplaceMessage{Version: domain.ProtocolVersion, Action: action}
}

func generatedAt(action domain.ActionMessage) time.Time {
	return time.UnixMilli(action.GeneratedAt()).UTC()
}
