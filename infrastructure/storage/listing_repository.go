package storage

import (
	"market-node/domain"

	"github.com/dgraph-io/badger/v4"
)

type IMarketRepository interface {
	FindOneByHash(hash string) (domain.Market, error)
	CreateIfAbsent(market domain.Market) (domain.Market, bool, error)
	List(limit int) ([]domain.Market, error)
}

type IListingItemRepository interface {
	FindOneByHash(hash string) (domain.ListingItem, error)
	CreateIfAbsent(item domain.ListingItem) (domain.ListingItem, bool, error)
	List(limit int) ([]domain.ListingItem, error)
	SavePosting(posting domain.ListingPosting) error
	FindPosting(hash string) (domain.ListingPosting, error)
}

// MarketRepository stores markets under "market:{hash}".
type MarketRepository struct {
	db *badger.DB
}

func NewMarketRepository(db *badger.DB) *MarketRepository {
	return &MarketRepository{db: db}
}

func (r *MarketRepository) FindOneByHash(hash string) (domain.Market, error) {
	return findByKey[domain.Market](r.db, "market:"+hash)
}

func (r *MarketRepository) CreateIfAbsent(market domain.Market) (domain.Market, bool, error) {
	return findOrCreate(r.db, "market:"+market.Hash, market)
}

func (r *MarketRepository) List(limit int) ([]domain.Market, error) {
	return scanJSON[domain.Market](r.db, "market:", limit)
}

// ListingItemRepository stores listing items under "listing:{hash}"
// and the postings of this node under "posting:{hash}".
type ListingItemRepository struct {
	db *badger.DB
}

func NewListingItemRepository(db *badger.DB) *ListingItemRepository {
	return &ListingItemRepository{db: db}
}

func (r *ListingItemRepository) FindOneByHash(hash string) (domain.ListingItem, error) {
	return findByKey[domain.ListingItem](r.db, "listing:"+hash)
}

func (r *ListingItemRepository) CreateIfAbsent(item domain.ListingItem) (domain.ListingItem, bool, error) {
	return findOrCreate(r.db, "listing:"+item.Hash, item)
}

func (r *ListingItemRepository) List(limit int) ([]domain.ListingItem, error) {
	return scanJSON[domain.ListingItem](r.db, "listing:", limit)
}

func (r *ListingItemRepository) SavePosting(posting domain.ListingPosting) error {
	return update(r.db, func(txn *badger.Txn) error {
		return setJSON(txn, "posting:"+posting.Hash, posting)
	})
}

func (r *ListingItemRepository) FindPosting(hash string) (domain.ListingPosting, error) {
	return findByKey[domain.ListingPosting](r.db, "posting:"+hash)
}
