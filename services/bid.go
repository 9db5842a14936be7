package services

import (
	"context"
	"market-node/domain"
	apperrors "market-node/errors"

	"github.com/google/uuid"
)

// BidService opens a bid chain on a listing item.
type BidService struct {
	hooks
	chain bidChain
	deps  Deps
}

func NewBidService(deps Deps) *BidService {
	return &BidService{
		hooks: hooks{log: deps.Log},
		chain: bidChain{deps: deps, builder: NewNotificationBuilder(deps.Identities)},
		deps:  deps,
	}
}

func (s *BidService) ActionType() domain.ActionType {
	return domain.ActionBid
}

// CreateMarketplaceMessage addresses the bid to the seller when no receiver is given.
func (s *BidService) CreateMarketplaceMessage(_ context.Context, request domain.ActionRequest) (domain.MarketplaceMessage, error) {
	r, err := requestAs[*domain.BidRequest](request)
	if err != nil {
		return domain.MarketplaceMessage{}, err
	}
	item, err := s.deps.Listings.FindOneByHash(r.ListingItemHash)
	if apperrors.IsNotFound(err) {
		return domain.MarketplaceMessage{}, apperrors.Validation("unknown listing item %s", r.ListingItemHash)
	}
	if err != nil {
		return domain.MarketplaceMessage{}, err
	}
	if r.To == "" {
		r.To = item.Seller
	}
	action := domain.BidMessage{
		ActionType:      domain.ActionBid,
		ListingItemHash: r.ListingItemHash,
		Bidder:          r.From,
		Objects:         r.Objects,
		Generated:       s.deps.now().UnixMilli(),
	}
	if action.Hash, err = domain.ContentHash(action); err != nil {
		return domain.MarketplaceMessage{}, err
	}
	return wrap(action), nil
}

func (s *BidService) ProcessMessage(_ context.Context, message domain.MarketplaceMessage, _ domain.Direction,
	record domain.TransportMessage, _ domain.ActionRequest) (domain.TransportMessage, error) {
	action, err := actionAs[domain.BidMessage](message)
	if err != nil {
		return record, err
	}
	record.ActionType = domain.ActionBid
	item, err := s.deps.Listings.FindOneByHash(action.ListingItemHash)
	if apperrors.IsNotFound(err) {
		return record, apperrors.Transient("listing item %s not yet seen", action.ListingItemHash)
	}
	if err != nil {
		return record, apperrors.Projection(err)
	}
	_, err = s.chain.appendBid(domain.Bid{
		ID:              uuid.New(),
		Hash:            action.Hash,
		Type:            domain.ActionBid,
		RootHash:        action.Hash,
		ListingItemHash: item.Hash,
		Bidder:          action.Bidder,
		Seller:          item.Seller,
		Sender:          record.From,
		Objects:         action.Objects,
		MsgID:           record.MsgID,
		GeneratedAt:     generatedAt(action),
		CreatedAt:       s.deps.now(),
	})
	return record, err
}

func (s *BidService) CreateNotification(ctx context.Context, message domain.MarketplaceMessage, direction domain.Direction,
	record domain.TransportMessage) (*domain.Notification, error) {
	return s.chain.notification(ctx, message.Action.ContentHash(), direction, record)
}
