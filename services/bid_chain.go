package services

import (
	"context"
	"market-node/domain"
	apperrors "market-node/errors"
	"market-node/infrastructure/storage"
)

// bidChain projects bid family actions. Both the root and the chained
// services go through it, so there is a single path mutating chain state.
type bidChain struct {
	deps    Deps
	builder NotificationBuilder
}

func (c bidChain) appendBid(bid domain.Bid) (storage.AppendResult, error) {
	var result storage.AppendResult
	var err error
	if bid.IsRoot() {
		result, err = c.deps.Bids.CreateRoot(bid)
	} else {
		result, err = c.deps.Bids.AppendChild(bid)
	}
	if err != nil {
		return result, apperrors.Projection(err)
	}
	switch result.Outcome {
	case storage.AppendCreated:
		c.deps.Log.Info("Bid chain extended", "hash", bid.Hash, "action", bid.Type, "root", bid.RootHash)
	case storage.AppendStale:
		c.deps.Log.Debug("Stale bid action ignored", "hash", bid.Hash, "action", bid.Type, "head", result.Bid.Hash)
	}
	if err = c.syncOrder(bid.RootHash); err != nil {
		return result, apperrors.Projection(err)
	}
	return result, nil
}

// syncOrder derives the order status from the current chain head.
// It is run after every append, including no-ops, so an order left behind
// by an interrupted projection catches up on redelivery.
func (c bidChain) syncOrder(rootHash string) error {
	now := c.deps.now()
	head, err := c.deps.Bids.Head(rootHash)
	if err != nil {
		return err
	}
	order, err := c.deps.Orders.FindOneByHash(rootHash)
	if apperrors.IsNotFound(err) {
		root, rootErr := c.deps.Bids.FindOneByHash(rootHash)
		if rootErr != nil {
			return rootErr
		}
		order, _, err = c.deps.Orders.CreateIfAbsent(domain.NewOrder(root, now))
	}
	if err != nil {
		return err
	}
	status := domain.OrderItemStatusFor(head.Type)
	updated, err := c.deps.Orders.UpdateItemStatus(order.Hash, rootHash, status, now)
	if err != nil {
		return err
	}
	if updated.Status != order.Status {
		c.deps.Log.Info("Order status changed", "hash", order.Hash, "from", order.Status, "to", updated.Status)
	}
	return nil
}

// notification describes the bid stored under hash, nil when the action
// was a stale no-op or was stored by another transport message.
func (c bidChain) notification(_ context.Context, hash string, direction domain.Direction,
	record domain.TransportMessage) (*domain.Notification, error) {
	bid, err := c.deps.Bids.FindOneByHash(hash)
	if apperrors.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !projectedBy(bid.MsgID, record) {
		return nil, nil
	}
	order, err := c.deps.Orders.FindOneByHash(bid.RootHash)
	if err != nil {
		return nil, err
	}
	return c.builder.Build(direction, bid.Sender, bid.Type, domain.BidNotification{
		ObjectID:        bid.ID,
		ObjectHash:      bid.Hash,
		Type:            bid.Type,
		BidHash:         bid.RootHash,
		ListingItemHash: bid.ListingItemHash,
		OrderStatus:     order.Status,
	})
}

// counterparty is who a chained action is addressed to.
func counterparty(head domain.Bid, from string) string {
	if from == head.Seller {
		return head.Bidder
	}
	return head.Seller
}
