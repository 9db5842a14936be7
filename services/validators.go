package services

import (
	"context"
	"market-node/domain"
	apperrors "market-node/errors"
	"market-node/infrastructure/storage"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// checkMessage is shared by every validator: the action must be of the
// expected type, satisfy its field rules and carry the hash of its own content.
func checkMessage(message domain.MarketplaceMessage, expected domain.ActionType) error {
	if message.Action == nil {
		return apperrors.Validation("marketplace message without action")
	}
	if message.Action.Type() != expected {
		return apperrors.Validation("expected %s, got %s", expected, message.Action.Type())
	}
	if err := validate.Struct(message.Action); err != nil {
		return apperrors.Validation("invalid %s: %v", expected, err)
	}
	ok, err := domain.VerifyHash(message.Action)
	if err != nil {
		return apperrors.Validation("unable to hash %s: %v", expected, err)
	}
	if !ok {
		return apperrors.Validation("%s hash %s does not match its content", expected, message.Action.ContentHash())
	}
	return nil
}

type MarketAddValidator struct{}

func (MarketAddValidator) ValidateMessage(message domain.MarketplaceMessage, _ domain.Direction) error {
	return checkMessage(message, domain.ActionMarketAdd)
}

func (MarketAddValidator) ValidateSequence(context.Context, domain.MarketplaceMessage, domain.Direction) error {
	return nil
}

type ListingItemAddValidator struct{}

func (ListingItemAddValidator) ValidateMessage(message domain.MarketplaceMessage, _ domain.Direction) error {
	return checkMessage(message, domain.ActionListingAdd)
}

func (ListingItemAddValidator) ValidateSequence(context.Context, domain.MarketplaceMessage, domain.Direction) error {
	return nil
}

type CommentAddValidator struct {
	comments storage.ICommentRepository
}

func (CommentAddValidator) ValidateMessage(message domain.MarketplaceMessage, _ domain.Direction) error {
	return checkMessage(message, domain.ActionCommentAdd)
}

// ValidateSequence waits for the parent comment of a reply.
func (v CommentAddValidator) ValidateSequence(_ context.Context, message domain.MarketplaceMessage, _ domain.Direction) error {
	action, err := actionAs[domain.CommentAddMessage](message)
	if err != nil {
		return err
	}
	if action.ParentCommentHash == "" {
		return nil
	}
	return exists(v.comments.FindOneByHash, action.ParentCommentHash, "parent comment")
}

type BidValidator struct {
	listings storage.IListingItemRepository
}

func (BidValidator) ValidateMessage(message domain.MarketplaceMessage, _ domain.Direction) error {
	return checkMessage(message, domain.ActionBid)
}

// ValidateSequence waits for the listing item a bid is placed on.
func (v BidValidator) ValidateSequence(_ context.Context, message domain.MarketplaceMessage, _ domain.Direction) error {
	action, err := actionAs[domain.BidMessage](message)
	if err != nil {
		return err
	}
	return exists(v.listings.FindOneByHash, action.ListingItemHash, "listing item")
}

type BidChildValidator struct {
	actionType domain.ActionType
	bids       storage.IBidRepository
}

func (v BidChildValidator) ValidateMessage(message domain.MarketplaceMessage, _ domain.Direction) error {
	return checkMessage(message, v.actionType)
}

// ValidateSequence waits for the parent of a chained action.
// Whether the parent is still the chain head is decided when appending.
func (v BidChildValidator) ValidateSequence(_ context.Context, message domain.MarketplaceMessage, _ domain.Direction) error {
	action, err := actionAs[domain.BidChildMessage](message)
	if err != nil {
		return err
	}
	return exists(v.bids.FindOneByHash, action.ParentHash, "parent bid")
}

func exists[T any](find func(hash string) (T, error), hash, what string) error {
	_, err := find(hash)
	switch {
	case err == nil:
		return nil
	case apperrors.IsNotFound(err):
		return apperrors.Transient("%s %s not yet seen", what, hash)
	default:
		return apperrors.Projection(err)
	}
}
