package storage

import (
	"market-node/domain"
	apperrors "market-node/errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func rootBid(hash string, at time.Time) domain.Bid {
	return domain.Bid{
		ID:              uuid.New(),
		Hash:            hash,
		Type:            domain.ActionBid,
		RootHash:        hash,
		ListingItemHash: "listing",
		Bidder:          "buyer",
		Seller:          "seller",
		GeneratedAt:     at,
	}
}

func childBid(hash, parent, root string, actionType domain.ActionType, at time.Time) domain.Bid {
	return domain.Bid{
		ID:          uuid.New(),
		Hash:        hash,
		Type:        actionType,
		ParentHash:  parent,
		RootHash:    root,
		GeneratedAt: at,
	}
}

func TestBidRepository_Chain(t *testing.T) {
	req := require.New(t)
	repo := NewBidRepository(setupTestDB(t))
	now := time.Now().UTC()

	// Given a chain BID -> ACCEPT -> LOCK
	result, err := repo.CreateRoot(rootBid("b1", now))
	req.NoError(err)
	req.Equal(AppendCreated, result.Outcome)

	result, err = repo.AppendChild(childBid("a1", "b1", "b1", domain.ActionAccept, now.Add(time.Second)))
	req.NoError(err)
	req.Equal(AppendCreated, result.Outcome)
	req.Equal("listing", result.Bid.ListingItemHash)
	req.Equal("seller", result.Bid.Seller)

	result, err = repo.AppendChild(childBid("l1", "a1", "b1", domain.ActionLock, now.Add(2*time.Second)))
	req.NoError(err)
	req.Equal(AppendCreated, result.Outcome)

	// Then the head is the lock and the chain is ordered from the root
	head, err := repo.Head("b1")
	req.NoError(err)
	req.Equal("l1", head.Hash)

	chain, err := repo.GetChain("b1")
	req.NoError(err)
	req.Len(chain, 3)
	req.Equal([]string{"b1", "a1", "l1"}, []string{chain[0].Hash, chain[1].Hash, chain[2].Hash})

	child, err := repo.FindOneByParent("a1")
	req.NoError(err)
	req.Equal("l1", child.Hash)
}

func TestBidRepository_AppendChild_Outcomes(t *testing.T) {
	now := time.Now().UTC()
	tests := []struct {
		name      string
		bid       domain.Bid
		outcome   AppendOutcome
		headHash  string
		transient bool
		invalid   bool
	}{
		{
			name:     "duplicate hash returns the stored bid",
			bid:      childBid("a1", "b1", "b1", domain.ActionAccept, now),
			outcome:  AppendDuplicate,
			headHash: "a1",
		},
		{
			name:     "parent that is not the head is a no-op",
			bid:      childBid("c1", "b1", "b1", domain.ActionCancel, now),
			outcome:  AppendStale,
			headHash: "a1",
		},
		{
			name:      "unknown parent is transient",
			bid:       childBid("r1", "nope", "b1", domain.ActionRelease, now),
			transient: true,
		},
		{
			name:    "disallowed successor is invalid",
			bid:     childBid("r2", "a1", "b1", domain.ActionRelease, now),
			invalid: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			repo := NewBidRepository(setupTestDB(t))
			_, err := repo.CreateRoot(rootBid("b1", now))
			req.NoError(err)
			_, err = repo.AppendChild(childBid("a1", "b1", "b1", domain.ActionAccept, now))
			req.NoError(err)

			result, err := repo.AppendChild(tt.bid)

			switch {
			case tt.transient:
				req.True(apperrors.IsTransient(err))
			case tt.invalid:
				req.True(apperrors.IsValidation(err))
			default:
				req.NoError(err)
				req.Equal(tt.outcome, result.Outcome)
				req.Equal(tt.headHash, result.Bid.Hash)
			}

			chain, err := repo.GetChain("b1")
			req.NoError(err)
			req.Len(chain, 2)
		})
	}
}

func TestBidRepository_CreateRoot_Twice(t *testing.T) {
	req := require.New(t)
	repo := NewBidRepository(setupTestDB(t))
	now := time.Now().UTC()

	first := rootBid("b1", now)
	_, err := repo.CreateRoot(first)
	req.NoError(err)

	// A redelivered root keeps the first entity
	result, err := repo.CreateRoot(rootBid("b1", now))
	req.NoError(err)
	req.Equal(AppendDuplicate, result.Outcome)
	req.Equal(first.ID, result.Bid.ID)

	_, err = repo.CreateRoot(childBid("x", "b1", "b1", domain.ActionAccept, now))
	req.True(apperrors.IsValidation(err))
}

func TestOrderRepository_UpdateItemStatus(t *testing.T) {
	req := require.New(t)
	repo := NewOrderRepository(setupTestDB(t))
	now := time.Now().UTC()

	order, created, err := repo.CreateIfAbsent(domain.NewOrder(rootBid("b1", now), now))
	req.NoError(err)
	req.True(created)
	req.Equal(domain.OrderItemBidded, order.Status)

	_, created, err = repo.CreateIfAbsent(domain.NewOrder(rootBid("b1", now), now))
	req.NoError(err)
	req.False(created)

	updated, err := repo.UpdateItemStatus("b1", "b1", domain.OrderItemAccepted, now.Add(time.Second))
	req.NoError(err)
	req.Equal(domain.OrderItemAccepted, updated.Status)
	req.Equal(domain.OrderItemAccepted, updated.Items[0].Status)

	stored, err := repo.FindOneByHash("b1")
	req.NoError(err)
	req.Equal(order.ID, stored.ID)
	req.Equal(domain.OrderItemAccepted, stored.Status)
}
