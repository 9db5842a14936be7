package services

import (
	"context"
	"market-node/domain"
	apperrors "market-node/errors"

	"github.com/google/uuid"
)

// BidChildService handles one chained action type: accept, reject, cancel,
// lock, refund or release.
type BidChildService struct {
	hooks
	actionType domain.ActionType
	chain      bidChain
	deps       Deps
}

func NewBidChildService(actionType domain.ActionType, deps Deps) *BidChildService {
	return &BidChildService{
		hooks:      hooks{log: deps.Log},
		actionType: actionType,
		chain:      bidChain{deps: deps, builder: NewNotificationBuilder(deps.Identities)},
		deps:       deps,
	}
}

func (s *BidChildService) ActionType() domain.ActionType {
	return s.actionType
}

// CreateMarketplaceMessage chains the action after the current head of the bid
// and addresses it to the counterparty when no receiver is given.
func (s *BidChildService) CreateMarketplaceMessage(_ context.Context, request domain.ActionRequest) (domain.MarketplaceMessage, error) {
	r, err := requestAs[*domain.BidChildRequest](request)
	if err != nil {
		return domain.MarketplaceMessage{}, err
	}
	if r.Type != s.actionType {
		return domain.MarketplaceMessage{}, apperrors.Validation("%s request sent to the %s service", r.Type, s.actionType)
	}
	head, err := s.deps.Bids.Head(r.BidHash)
	if apperrors.IsNotFound(err) {
		return domain.MarketplaceMessage{}, apperrors.Validation("unknown bid %s", r.BidHash)
	}
	if err != nil {
		return domain.MarketplaceMessage{}, err
	}
	if !domain.CanFollow(head.Type, s.actionType) {
		return domain.MarketplaceMessage{}, apperrors.Validation("%s cannot follow %s in chain %s", s.actionType, head.Type, r.BidHash)
	}
	if r.To == "" {
		r.To = counterparty(head, r.From)
	}
	action := domain.BidChildMessage{
		ActionType: s.actionType,
		BidHash:    r.BidHash,
		ParentHash: head.Hash,
		Objects:    r.Objects,
		Generated:  s.deps.now().UnixMilli(),
	}
	if action.Hash, err = domain.ContentHash(action); err != nil {
		return domain.MarketplaceMessage{}, err
	}
	return wrap(action), nil
}

func (s *BidChildService) ProcessMessage(_ context.Context, message domain.MarketplaceMessage, _ domain.Direction,
	record domain.TransportMessage, _ domain.ActionRequest) (domain.TransportMessage, error) {
	action, err := actionAs[domain.BidChildMessage](message)
	if err != nil {
		return record, err
	}
	record.ActionType = s.actionType
	_, err = s.chain.appendBid(domain.Bid{
		ID:          uuid.New(),
		Hash:        action.Hash,
		Type:        s.actionType,
		ParentHash:  action.ParentHash,
		RootHash:    action.BidHash,
		Sender:      record.From,
		Objects:     action.Objects,
		MsgID:       record.MsgID,
		GeneratedAt: generatedAt(action),
		CreatedAt:   s.deps.now(),
	})
	return record, err
}

func (s *BidChildService) CreateNotification(ctx context.Context, message domain.MarketplaceMessage, direction domain.Direction,
	record domain.TransportMessage) (*domain.Notification, error) {
	return s.chain.notification(ctx, message.Action.ContentHash(), direction, record)
}
