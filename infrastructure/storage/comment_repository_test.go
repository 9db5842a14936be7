package storage

import (
	"market-node/domain"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestCommentRepository_CreateIfAbsent(t *testing.T) {
	req := require.New(t)
	repo := NewCommentRepository(setupTestDB(t))
	now := time.Now().UTC()

	parent := domain.Comment{ID: uuid.New(), Hash: "c1", Target: "listing", Message: "is it available?", GeneratedAt: now}
	reply := domain.Comment{ID: uuid.New(), Hash: "c2", ParentHash: "c1", Target: "listing", Message: "yes", GeneratedAt: now.Add(time.Second)}

	_, created, err := repo.CreateIfAbsent(parent)
	req.NoError(err)
	req.True(created)
	_, created, err = repo.CreateIfAbsent(reply)
	req.NoError(err)
	req.True(created)

	// The same hash seen again returns the stored comment unchanged
	again := reply
	again.ID = uuid.New()
	stored, created, err := repo.CreateIfAbsent(again)
	req.NoError(err)
	req.False(created)
	req.Equal(reply.ID, stored.ID)

	replies, err := repo.FindByParent("c1")
	req.NoError(err)
	req.Len(replies, 1)
	req.Equal("c2", replies[0].Hash)
}

func TestCommentRepository_UpdateTimes(t *testing.T) {
	req := require.New(t)
	repo := NewCommentRepository(setupTestDB(t))
	now := time.Now().UTC()

	_, _, err := repo.CreateIfAbsent(domain.Comment{ID: uuid.New(), Hash: "c1"})
	req.NoError(err)

	updated, err := repo.UpdateTimes("c1", now, now.Add(time.Second), now.Add(time.Hour))
	req.NoError(err)
	req.True(updated.ReceivedAt.Equal(now.Add(time.Second)))

	stored, err := repo.FindOneByHash("c1")
	req.NoError(err)
	req.True(stored.ExpiredAt.Equal(now.Add(time.Hour)))
}

func TestIdentityRepository_IsLocalAddress(t *testing.T) {
	req := require.New(t)
	repo, err := NewIdentityRepository(setupTestDB(t), 16)
	req.NoError(err)

	local, err := repo.IsLocalAddress("alice")
	req.NoError(err)
	req.False(local)

	// Adding an identity overrides a cached miss
	_, err = repo.Add(domain.Identity{Address: "alice", Name: "main"})
	req.NoError(err)
	local, err = repo.IsLocalAddress("alice")
	req.NoError(err)
	req.True(local)

	identities, err := repo.List()
	req.NoError(err)
	req.Len(identities, 1)
}

func TestListingRepositories(t *testing.T) {
	req := require.New(t)
	db := setupTestDB(t)
	markets := NewMarketRepository(db)
	listings := NewListingItemRepository(db)

	_, created, err := markets.CreateIfAbsent(domain.Market{ID: uuid.New(), Hash: "m1", Name: "default"})
	req.NoError(err)
	req.True(created)
	market, err := markets.FindOneByHash("m1")
	req.NoError(err)
	req.Equal("default", market.Name)

	_, created, err = listings.CreateIfAbsent(domain.ListingItem{ID: uuid.New(), Hash: "l1", Market: "m1"})
	req.NoError(err)
	req.True(created)
	items, err := listings.List(0)
	req.NoError(err)
	req.Len(items, 1)
}
