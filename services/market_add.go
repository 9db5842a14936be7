package services

import (
	"context"
	"market-node/domain"
	apperrors "market-node/errors"

	"github.com/google/uuid"
)

type MarketAddService struct {
	hooks
	deps    Deps
	builder NotificationBuilder
}

func NewMarketAddService(deps Deps) *MarketAddService {
	return &MarketAddService{hooks: hooks{log: deps.Log}, deps: deps, builder: NewNotificationBuilder(deps.Identities)}
}

func (s *MarketAddService) ActionType() domain.ActionType {
	return domain.ActionMarketAdd
}

func (s *MarketAddService) CreateMarketplaceMessage(_ context.Context, request domain.ActionRequest) (domain.MarketplaceMessage, error) {
	r, err := requestAs[*domain.MarketAddRequest](request)
	if err != nil {
		return domain.MarketplaceMessage{}, err
	}
	action := domain.MarketAddMessage{
		ActionType:  domain.ActionMarketAdd,
		Name:        r.Name,
		Description: r.Description,
		MarketType:  r.MarketType,
		Region:      r.Region,
		ReceiveKey:  r.ReceiveKey,
		PublishKey:  r.PublishKey,
		Generated:   s.deps.now().UnixMilli(),
	}
	if action.Hash, err = domain.ContentHash(action); err != nil {
		return domain.MarketplaceMessage{}, err
	}
	return wrap(action), nil
}

func (s *MarketAddService) ProcessMessage(_ context.Context, message domain.MarketplaceMessage, direction domain.Direction,
	record domain.TransportMessage, _ domain.ActionRequest) (domain.TransportMessage, error) {
	action, err := actionAs[domain.MarketAddMessage](message)
	if err != nil {
		return record, err
	}
	market, created, err := s.deps.Markets.CreateIfAbsent(domain.Market{
		ID:          uuid.New(),
		Hash:        action.Hash,
		Name:        action.Name,
		Description: action.Description,
		MarketType:  action.MarketType,
		Region:      action.Region,
		ReceiveKey:  action.ReceiveKey,
		PublishKey:  action.PublishKey,
		Publisher:   record.From,
		MsgID:       record.MsgID,
		GeneratedAt: generatedAt(action),
		CreatedAt:   s.deps.now(),
	})
	if err != nil {
		return record, apperrors.Projection(err)
	}
	if created {
		s.deps.Log.Info("Market added", "hash", market.Hash, "name", market.Name, "direction", direction)
	}
	record.ActionType = domain.ActionMarketAdd
	return record, nil
}

func (s *MarketAddService) CreateNotification(_ context.Context, message domain.MarketplaceMessage, direction domain.Direction,
	record domain.TransportMessage) (*domain.Notification, error) {
	market, err := s.deps.Markets.FindOneByHash(message.Action.ContentHash())
	if err != nil {
		return nil, err
	}
	if !projectedBy(market.MsgID, record) {
		return nil, nil
	}
	return s.builder.Build(direction, market.Publisher, domain.ActionMarketAdd, domain.MarketNotification{
		ID:   market.ID,
		Hash: market.Hash,
		Name: market.Name,
	})
}
