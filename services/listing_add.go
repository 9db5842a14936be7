package services

import (
	"context"
	"market-node/domain"
	apperrors "market-node/errors"

	"github.com/google/uuid"
)

type ListingItemAddService struct {
	hooks
	deps    Deps
	builder NotificationBuilder
}

func NewListingItemAddService(deps Deps) *ListingItemAddService {
	return &ListingItemAddService{hooks: hooks{log: deps.Log}, deps: deps, builder: NewNotificationBuilder(deps.Identities)}
}

func (s *ListingItemAddService) ActionType() domain.ActionType {
	return domain.ActionListingAdd
}

func (s *ListingItemAddService) CreateMarketplaceMessage(_ context.Context, request domain.ActionRequest) (domain.MarketplaceMessage, error) {
	r, err := requestAs[*domain.ListingItemAddRequest](request)
	if err != nil {
		return domain.MarketplaceMessage{}, err
	}
	action := domain.ListingItemAddMessage{
		ActionType:  domain.ActionListingAdd,
		Seller:      r.From,
		Market:      r.Market,
		Title:       r.Title,
		Description: r.Description,
		Category:    r.Category,
		Price:       r.Price,
		Generated:   s.deps.now().UnixMilli(),
	}
	if action.Hash, err = domain.ContentHash(action); err != nil {
		return domain.MarketplaceMessage{}, err
	}
	return wrap(action), nil
}

// AfterPost remembers the msgid and fee of the last posting of a listing item.
func (s *ListingItemAddService) AfterPost(_ context.Context, _ domain.ActionRequest, message domain.MarketplaceMessage,
	record domain.TransportMessage, result domain.SendResult) (domain.SendResult, error) {
	posting := domain.ListingPosting{
		Hash:     message.Action.ContentHash(),
		MsgID:    record.MsgID,
		Fee:      result.Fee,
		PostedAt: record.Sent,
	}
	if err := s.deps.Listings.SavePosting(posting); err != nil {
		return result, apperrors.Projection(err)
	}
	s.deps.Log.Debug("Listing item posted", "hash", posting.Hash, "msg_id", posting.MsgID, "fee", posting.Fee)
	return result, nil
}

func (s *ListingItemAddService) ProcessMessage(_ context.Context, message domain.MarketplaceMessage, direction domain.Direction,
	record domain.TransportMessage, _ domain.ActionRequest) (domain.TransportMessage, error) {
	action, err := actionAs[domain.ListingItemAddMessage](message)
	if err != nil {
		return record, err
	}
	item, created, err := s.deps.Listings.CreateIfAbsent(domain.ListingItem{
		ID:          uuid.New(),
		Hash:        action.Hash,
		Seller:      action.Seller,
		Market:      action.Market,
		Title:       action.Title,
		Description: action.Description,
		Category:    action.Category,
		Price:       action.Price,
		MsgID:       record.MsgID,
		GeneratedAt: generatedAt(action),
		PostedAt:    record.Sent,
		ReceivedAt:  record.Received,
		ExpiredAt:   record.Expiration,
		CreatedAt:   s.deps.now(),
	})
	if err != nil {
		return record, apperrors.Projection(err)
	}
	if created {
		s.deps.Log.Info("Listing item added", "hash", item.Hash, "market", item.Market, "direction", direction)
	}
	record.ActionType = domain.ActionListingAdd
	return record, nil
}

func (s *ListingItemAddService) CreateNotification(_ context.Context, message domain.MarketplaceMessage, direction domain.Direction,
	record domain.TransportMessage) (*domain.Notification, error) {
	item, err := s.deps.Listings.FindOneByHash(message.Action.ContentHash())
	if err != nil {
		return nil, err
	}
	if !projectedBy(item.MsgID, record) {
		return nil, nil
	}
	return s.builder.Build(direction, item.Seller, domain.ActionListingAdd, domain.ListingItemNotification{
		ID:     item.ID,
		Hash:   item.Hash,
		Seller: item.Seller,
		Market: item.Market,
		Title:  item.Title,
	})
}
